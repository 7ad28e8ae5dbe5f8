package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/soundfolio/accounts/internal/config"
	"github.com/soundfolio/accounts/internal/handshake"
	httpserver "github.com/soundfolio/accounts/internal/http"
	authctrl "github.com/soundfolio/accounts/internal/http/controllers/auth"
	healthctrl "github.com/soundfolio/accounts/internal/http/controllers/health"
	"github.com/soundfolio/accounts/internal/http/router"
	authsvc "github.com/soundfolio/accounts/internal/http/services/auth"
	"github.com/soundfolio/accounts/internal/linker"
	"github.com/soundfolio/accounts/internal/metrics"
	"github.com/soundfolio/accounts/internal/observability/logger"
	"github.com/soundfolio/accounts/internal/provider/scrobble"
	"github.com/soundfolio/accounts/internal/provider/social"
	"github.com/soundfolio/accounts/internal/security/tokencipher"
	"github.com/soundfolio/accounts/internal/session"
	"github.com/soundfolio/accounts/internal/store/core"
	"github.com/soundfolio/accounts/internal/store/memory"
	"github.com/soundfolio/accounts/internal/store/pg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "accounts:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	socialCipher, err := tokencipher.New(cfg.Crypto.Social.ActiveKey, cfg.Crypto.Social.Keys)
	if err != nil {
		return fmt.Errorf("social keyring: %w", err)
	}
	scrobbleCipher, err := tokencipher.New(cfg.Crypto.Scrobble.ActiveKey, cfg.Crypto.Scrobble.Keys)
	if err != nil {
		return fmt.Errorf("scrobble keyring: %w", err)
	}

	users, pingers, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	handshakes, hsCleanup, err := buildHandshakeStore(cfg, pingers)
	if err != nil {
		return err
	}
	defer hsCleanup()

	socialSession := social.New(social.Config{
		ConsumerKey:     cfg.Providers.Social.ConsumerKey,
		ConsumerSecret:  cfg.Providers.Social.ConsumerSecret,
		CallbackURL:     cfg.Providers.Social.CallbackURL,
		RequestTokenURL: cfg.Providers.Social.RequestTokenURL,
		AuthorizeURL:    cfg.Providers.Social.AuthorizeURL,
		AccessTokenURL:  cfg.Providers.Social.AccessTokenURL,
		ProfileURL:      cfg.Providers.Social.ProfileURL,
	})
	scrobbleSession := scrobble.New(scrobble.Config{
		APIKey:    cfg.Providers.Scrobble.APIKey,
		APISecret: cfg.Providers.Scrobble.APISecret,
		BaseURL:   cfg.Providers.Scrobble.BaseURL,
	})

	sessions, err := session.NewJWT([]byte(cfg.Session.Secret), cfg.Session.Issuer, config.Duration(cfg.Session.TTL, 0))
	if err != nil {
		return fmt.Errorf("session issuer: %w", err)
	}

	lk := linker.New(linker.Deps{
		Users:          users,
		SocialCipher:   socialCipher,
		ScrobbleCipher: scrobbleCipher,
		Social:         socialSession,
		Scrobble:       scrobbleSession,
		Sessions:       sessions,
	})

	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Auth: authctrl.NewControllers(
			authsvc.NewSocialLogin(socialSession, handshakes, lk),
			authsvc.NewScrobbleLink(scrobbleSession, lk),
			authsvc.NewMe(lk),
		),
		Health:   healthctrl.NewController(cfg.App.Version, pingers),
		Verifier: sessions,
		Users:    users,
		Registry: registry,
	})

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     config.Duration(cfg.Server.ReadTimeout, 0),
		WriteTimeout:    config.Duration(cfg.Server.WriteTimeout, 0),
		IdleTimeout:     config.Duration(cfg.Server.IdleTimeout, 0),
		ShutdownTimeout: config.Duration(cfg.Server.ShutdownTimeout, 0),
	}, handler)

	logger.L().Info("starting accounts service",
		logger.String("env", cfg.App.Env),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("handshake", cfg.Handshake.Backend),
	)

	return srv.Run(ctx)
}

func buildStore(ctx context.Context, cfg *config.Config) (core.UserRepository, map[string]core.Pinger, func(), error) {
	pingers := map[string]core.Pinger{}

	switch cfg.Storage.Driver {
	case "postgres":
		store, err := pg.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		pingers["postgres"] = store
		return store, pingers, store.Close, nil
	default:
		return memory.New(), pingers, func() {}, nil
	}
}

func buildHandshakeStore(cfg *config.Config, pingers map[string]core.Pinger) (handshake.Store, func(), error) {
	ttl := config.Duration(cfg.Handshake.TTL, handshake.DefaultTTL)

	switch cfg.Handshake.Backend {
	case "redis":
		store, err := handshake.NewRedis(handshake.RedisConfig{
			Addr:     cfg.Handshake.Redis.Addr,
			Password: cfg.Handshake.Redis.Password,
			DB:       cfg.Handshake.Redis.DB,
			Prefix:   cfg.Handshake.Redis.Prefix,
			TTL:      ttl,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis handshake store: %w", err)
		}
		pingers["redis"] = store
		return store, func() { _ = store.Close() }, nil
	default:
		return handshake.NewMem(ttl), func() {}, nil
	}
}
