package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/campusconnect/campusconnect-api/internal/api"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
	"github.com/campusconnect/campusconnect-api/internal/core/service"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/config"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/db/memory"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/db/mongo"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/db/redis"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/notify"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/security"
	"github.com/campusconnect/campusconnect-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "campusconnect",
	})

	var (
		accounts ports.AccountRepository
		db       *mongodriver.Database
		rdb      *goredis.Client
	)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory account store; data is lost on restart")
		accounts = memory.NewAccountRepository()
	default:
		client, database, err := mongo.Connect(ctx, mongo.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			Timeout:        cfg.Mongo.Timeout,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		repo := mongo.NewAccountRepository(database, cfg.Mongo.Timeout)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		accounts, db = repo, database
	}

	var dedup notify.Deduper
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		dedup = redis.NewNotificationDedup(client, cfg.Auth.CodeTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	dispatcher := notify.NewDispatcher(notify.Config{
		Workers:     cfg.Notify.Workers,
		QueueSize:   cfg.Notify.QueueSize,
		SendTimeout: cfg.Notify.Timeout,
	}, newMailer(cfg, log), notify.NewRenderer(), dedup, log)
	dispatcher.Start()
	defer dispatcher.Stop()

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	codes := security.NewDigitCodeGenerator(security.DefaultCodeLength)
	tokens := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenTTL)

	e := api.NewRouter(api.Dependencies{
		Registration: service.NewRegistrationService(accounts, hasher, codes, dispatcher, cfg.Auth.AccessCodes, cfg.Auth.CodeTTL, log),
		Verification: service.NewVerificationService(accounts, codes, tokens, dispatcher, cfg.Auth.CodeTTL, log),
		Sessions:     service.NewSessionService(accounts, hasher, tokens, log),
		Recovery:     service.NewRecoveryService(accounts, hasher, codes, dispatcher, cfg.Auth.CodeTTL, log),
		Profiles:     service.NewProfileService(accounts, tokens, log),
		Tokens:       tokens,
		Accounts:     accounts,
		Mongo:        db,
		Redis:        rdb,
		Log:          logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

func newMailer(cfg *config.Config, log zerolog.Logger) ports.Mailer {
	if cfg.Notify.Driver == config.MailBrevo {
		return notify.NewBrevoMailer(notify.BrevoConfig{
			BaseURL:  cfg.Notify.BrevoBaseURL,
			APIKey:   cfg.Notify.BrevoAPIKey,
			FromName: cfg.Notify.FromName,
			FromAddr: cfg.Notify.From,
			Timeout:  cfg.Notify.Timeout,
		})
	}
	return notify.NewLogMailer(log)
}
