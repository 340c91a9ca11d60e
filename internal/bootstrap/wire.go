package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stayhaven/viewer-service/internal/application/viewer"
	"github.com/stayhaven/viewer-service/internal/config"
	"github.com/stayhaven/viewer-service/internal/infrastructure/identity"
	"github.com/stayhaven/viewer-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/stayhaven/viewer-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/stayhaven/viewer-service/internal/infrastructure/postgres"
	"github.com/stayhaven/viewer-service/internal/infrastructure/redis"
	"github.com/stayhaven/viewer-service/internal/infrastructure/security"
	"github.com/stayhaven/viewer-service/internal/logger"
	http_handlers "github.com/stayhaven/viewer-service/internal/transport/http/handlers"
	"github.com/stayhaven/viewer-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing.
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewStore func(cfg *config.Config) (viewer.ViewerStore, func(), error)

	NewPublisher func(rabbitURL, exchange string) (viewer.EventPublisher, error)

	NewIdentity func(cfg *config.Config) viewer.IdentityClient

	NewRouter func(router.Deps) (http.Handler, error)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) viewer store
	store, storeCleanup, err := deps.NewStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if storeCleanup != nil {
		cleanupFns = append(cleanupFns, storeCleanup)
	}

	// 2) publisher
	pub, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher(logger.Logger)
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 3) security
	signer := security.NewCookieSigner(cfg.CookieSecret, "viewer-service", cfg.CookieTTL)
	tokens := security.RandomTokenSource{}

	// 4) identity provider
	ident := deps.NewIdentity(cfg)

	// 5) service
	svc := viewer.NewService(ident, store, tokens, signer, pub).
		WithAudit(func(action string, fields map[string]string) {
			evt := logger.Logger.Info().
				Bool("audit", true).
				Str("action", action)
			for k, v := range fields {
				evt = evt.Str(k, v)
			}
			evt.Msg("audit")
		})

	// 6) handlers + router
	viewerH := http_handlers.NewViewerHandler(svc, cfg.CookieTTL, cfg.SecureCookies())
	healthH := http_handlers.NewHealthHandler()

	mux, err := deps.NewRouter(router.Deps{
		Health:    healthH,
		Viewer:    viewerH,
		RateLimit: 10,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 7) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewStore:   newStore,
		NewPublisher: func(url, exchange string) (viewer.EventPublisher, error) {
			if url == "" {
				return nil, errors.New("rabbitmq url not configured")
			}
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewIdentity: func(cfg *config.Config) viewer.IdentityClient {
			return identity.NewGoogleClient(
				cfg.GoogleClientID,
				cfg.GoogleClientSecret,
				cfg.GoogleRedirectURL,
			)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

// newStore picks the viewer store backend from config.
func newStore(cfg *config.Config) (viewer.ViewerStore, func(), error) {
	switch cfg.StoreDriver {
	case "redis":
		cli := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cli.Ping(ctx); err != nil {
			_ = cli.Close()
			return nil, nil, fmt.Errorf("redis unavailable: %w", err)
		}
		logger.Logger.Info().Msg("redis connected")
		return redis.NewViewerStore(cli), func() { _ = cli.Close() }, nil

	case "postgres":
		db, err := config.NewDB(cfg.DBAddr)
		if err != nil {
			return nil, nil, err
		}
		logger.Logger.Info().Msg("postgres connected")
		return postgres.NewViewerStore(db), func() { _ = db.Close() }, nil

	case "memory":
		logger.Logger.Warn().Msg("using in-memory viewer store; records do not survive restarts")
		return memory.NewViewerStore(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver: %q", cfg.StoreDriver)
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
