package handshake

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the distributed Store, for running more than one instance behind a
// load balancer. GETDEL gives consume-once atomicity server-side.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig configures the redis handshake store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedis connects and pings the redis backend.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("handshake: redis ping failed: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "handshake"
	}
	return &Redis{client: rdb, prefix: prefix, ttl: ttl}, nil
}

func (r *Redis) key(id string) string {
	return r.prefix + ":" + id
}

func (r *Redis) Record(ctx context.Context, id, secret string) error {
	return r.client.Set(ctx, r.key(id), secret, r.ttl).Err()
}

func (r *Redis) Consume(ctx context.Context, id string) (string, error) {
	v, err := r.client.GetDel(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Ping reports backend reachability, for readiness checks.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
