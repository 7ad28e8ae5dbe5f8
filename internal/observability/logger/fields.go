package logger

import (
	"time"

	"go.uber.org/zap"
)

// Typed field constructors so call sites agree on key names.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// UserID is the local account id, never the provider-side id.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Provider names the upstream provider ("social" | "scrobble").
func Provider(v string) zap.Field { return zap.String("provider", v) }

// HandshakeID is safe to log: it is an opaque id, not the request secret.
func HandshakeID(v string) zap.Field { return zap.String("handshake_id", v) }

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
