package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"app_env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Handshake struct {
		// memory | redis
		Backend string `yaml:"backend"`
		TTL     string `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"handshake"`

	Providers struct {
		Social struct {
			ConsumerKey    string `yaml:"consumer_key"`
			ConsumerSecret string `yaml:"consumer_secret"`
			CallbackURL    string `yaml:"callback_url"`
			// Endpoint overrides, mainly for tests against a fake provider.
			RequestTokenURL string `yaml:"request_token_url"`
			AuthorizeURL    string `yaml:"authorize_url"`
			AccessTokenURL  string `yaml:"access_token_url"`
			ProfileURL      string `yaml:"profile_url"`
		} `yaml:"social"`
		Scrobble struct {
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
			BaseURL   string `yaml:"base_url"`
		} `yaml:"scrobble"`
	} `yaml:"providers"`

	Crypto struct {
		Social   Keyring `yaml:"social"`
		Scrobble Keyring `yaml:"scrobble"`
	} `yaml:"crypto"`

	Session struct {
		Issuer string `yaml:"issuer"`
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"session"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Keyring is one provider's encryption keyring: several decryption keys, one
// active for new ciphertext.
type Keyring struct {
	ActiveKey string            `yaml:"active_key"`
	Keys      map[string]string `yaml:"keys"`
}

// Load reads path and applies defaults and environment overrides. A missing
// file is not an error; env-only deployments carry no config.yaml at all.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "accounts"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Handshake.Backend == "" {
		c.Handshake.Backend = "memory"
	}
	if c.Handshake.TTL == "" {
		c.Handshake.TTL = "10m"
	}
	if c.Handshake.Redis.Prefix == "" {
		c.Handshake.Redis.Prefix = "handshake"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "720h" // 30d
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "accounts"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// getEnvKVList parses "k1=v1;k2=v2" into a map.
func getEnvKVList(key string) (map[string]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	out := map[string]string{}
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		k, v, found := strings.Cut(item, "=")
		if !found {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, true
}

// applyEnvOverrides lets the environment win over config.yaml, so secrets can
// stay out of the file entirely.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	if v, ok := getEnvStr("HANDSHAKE_BACKEND"); ok {
		c.Handshake.Backend = v
	}
	if v, ok := getEnvStr("HANDSHAKE_TTL"); ok {
		c.Handshake.TTL = v
	}
	if v, ok := getEnvStr("HANDSHAKE_REDIS_ADDR"); ok {
		c.Handshake.Redis.Addr = v
	}
	if v, ok := getEnvStr("HANDSHAKE_REDIS_PASSWORD"); ok {
		c.Handshake.Redis.Password = v
	}
	if v, ok := getEnvInt("HANDSHAKE_REDIS_DB"); ok {
		c.Handshake.Redis.DB = v
	}

	if v, ok := getEnvStr("SOCIAL_CONSUMER_KEY"); ok {
		c.Providers.Social.ConsumerKey = v
	}
	if v, ok := getEnvStr("SOCIAL_CONSUMER_SECRET"); ok {
		c.Providers.Social.ConsumerSecret = v
	}
	if v, ok := getEnvStr("SOCIAL_CALLBACK_URL"); ok {
		c.Providers.Social.CallbackURL = v
	}
	if v, ok := getEnvStr("SCROBBLE_API_KEY"); ok {
		c.Providers.Scrobble.APIKey = v
	}
	if v, ok := getEnvStr("SCROBBLE_API_SECRET"); ok {
		c.Providers.Scrobble.APISecret = v
	}

	if v, ok := getEnvStr("CRYPTO_SOCIAL_ACTIVE_KEY"); ok {
		c.Crypto.Social.ActiveKey = v
	}
	if v, ok := getEnvKVList("CRYPTO_SOCIAL_KEYS"); ok {
		c.Crypto.Social.Keys = v
	}
	if v, ok := getEnvStr("CRYPTO_SCROBBLE_ACTIVE_KEY"); ok {
		c.Crypto.Scrobble.ActiveKey = v
	}
	if v, ok := getEnvKVList("CRYPTO_SCROBBLE_KEYS"); ok {
		c.Crypto.Scrobble.Keys = v
	}

	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvStr("SESSION_ISSUER"); ok {
		c.Session.Issuer = v
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate checks values the rest of the wiring depends on.
func (c *Config) Validate() error {
	for _, d := range []struct{ name, val string }{
		{"handshake.ttl", c.Handshake.TTL},
		{"session.ttl", c.Session.TTL},
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.idle_timeout", c.Server.IdleTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("config: %s: %w", d.name, err)
		}
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Handshake.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Handshake.Redis.Addr) == "" {
			return fmt.Errorf("config: handshake.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown handshake backend %q", c.Handshake.Backend)
	}

	return nil
}

// Duration returns the parsed duration for a validated field, or fallback
// when the field is empty.
func Duration(val string, fallback time.Duration) time.Duration {
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
