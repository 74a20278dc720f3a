// Command server runs the record tracker HTTP service.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/config"
	"github.com/iliyamo/record-tracker/internal/database"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
	"github.com/iliyamo/record-tracker/internal/repository"
	"github.com/iliyamo/record-tracker/internal/router"
	"github.com/iliyamo/record-tracker/internal/service"
	"github.com/iliyamo/record-tracker/internal/session"
	"github.com/iliyamo/record-tracker/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.IsProd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	records := repository.NewRecordRepo(db)
	gate := authz.NewGate(records, users)

	var events service.Publisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.AMQPPublisher{URL: cfg.RabbitMQURL, Queue: cfg.EventsQueue}
		logger.Info(ctx, "account events enabled", "queue", cfg.EventsQueue)
	}

	sessions := session.NewManager(session.Options{
		Secret: []byte(cfg.SessionSecret),
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.IsProd(),
	}, users, logger)

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	limiter, err := rateLimiter(ctx, logger)
	if err != nil {
		return err
	}

	e := router.New(router.Deps{
		DB:        db,
		Sessions:  sessions,
		Accounts:  service.NewAccounts(users, gate, events, logger, cfg.BcryptCost),
		Records:   service.NewRecords(records, gate),
		Admin:     service.NewAdmin(users, gate, events, logger, cfg.BcryptCost),
		Renderer:  renderer,
		Log:       logger,
		RateLimit: limiter,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", "addr", addr, "env", cfg.Env, "db", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info(shutdownCtx, "shutting down")
	return e.Shutdown(shutdownCtx)
}

// rateLimiter returns the optional Redis-backed limiter, or nil when it is
// disabled or Redis cannot be reached.
func rateLimiter(ctx context.Context, logger logging.Logger) (echo.MiddlewareFunc, error) {
	rl, err := config.LoadRateLimitConfig()
	if err != nil {
		return nil, err
	}
	if !rl.Enabled {
		return nil, nil
	}
	rc, err := config.LoadRedisConfig()
	if err != nil {
		return nil, err
	}
	rdb := config.NewRedisClient(rc)
	if rdb == nil {
		logger.Warn(ctx, "rate limiting disabled: redis unreachable")
		return nil, nil
	}
	return middleware.RateLimit(rl, rdb, logger), nil
}
