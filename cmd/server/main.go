// @title        Crew API
// @version      1.0
// @description  Jobs, users and categories of the Mars colony crew.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/marsone/crew-api/internal/api"
	"github.com/marsone/crew-api/internal/api/handler"
	"github.com/marsone/crew-api/internal/core/ports"
	"github.com/marsone/crew-api/internal/core/service"
	"github.com/marsone/crew-api/internal/core/validation"
	"github.com/marsone/crew-api/internal/infrastructure/config"
	mongostore "github.com/marsone/crew-api/internal/infrastructure/db/mongo"
	redisstore "github.com/marsone/crew-api/internal/infrastructure/db/redis"
	"github.com/marsone/crew-api/internal/infrastructure/db/sqlstore"
	"github.com/marsone/crew-api/internal/infrastructure/queue"
	"github.com/marsone/crew-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "crew-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := sqlstore.Open(sqlstore.Config{
		Driver:   cfg.DB.Driver,
		DSN:      cfg.DB.DSN,
		LogLevel: cfg.DB.LogLevel,
		Logger:   logger.Component(log, "sqlstore"),
	})
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("driver", cfg.DB.Driver).Msg("relational store ready")

	health := map[string]handler.Pinger{"sql": store}
	opts := service.Options{Logger: logger.Component(log, "service")}
	var history ports.AuditReader

	if cfg.Mongo.URI != "" {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		audit := mongostore.NewAuditRepository(db)
		if err := audit.EnsureIndexes(ctx); err != nil {
			return err
		}
		dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, audit, logger.Component(log, "audit"))
		dispatcher.Start(context.Background())
		defer dispatcher.Stop()

		opts.Audit = dispatcher
		history = audit
		health["mongo"] = mongostore.Pinger{Client: client}
		log.Info().Str("database", cfg.Mongo.Database).Int("workers", cfg.Audit.Workers).Msg("audit trail enabled")
	}

	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		opts.Idempotency = redisstore.NewIdempotencyStore(client, cfg.Idempotency.TTL)
		health["redis"] = redisstore.Pinger{Client: client}
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Idempotency.TTL).Msg("idempotent creates enabled")
	}

	e := api.NewRouter(api.Deps{
		Logger:     logger.Component(log, "http"),
		Validator:  validation.New(),
		Jobs:       service.NewJobService(store, opts),
		Users:      service.NewUserService(store, opts),
		Categories: service.NewCategoryService(store, opts),
		History:    history,
		Health:     health,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
