// Command portal runs the real-estate investor portal: localized pages behind
// the request gatekeeper plus the JSON API.
//
// @title        Nadlan Invest Portal API
// @version      1.0
// @description  Accounts, property marketplace, documents and onboarding chat for the investor portal. Authenticated with the session cookies set by sign-in.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/api"
	"github.com/nadlan-invest/portal/internal/api/handler"
	"github.com/nadlan-invest/portal/internal/core/gatekeeper"
	"github.com/nadlan-invest/portal/internal/core/service"
	"github.com/nadlan-invest/portal/internal/infrastructure/chat"
	mongostore "github.com/nadlan-invest/portal/internal/infrastructure/db/mongo"
	redisstore "github.com/nadlan-invest/portal/internal/infrastructure/db/redis"
	"github.com/nadlan-invest/portal/internal/infrastructure/queue"
	"github.com/nadlan-invest/portal/internal/pkg/config"
	"github.com/nadlan-invest/portal/internal/web"
	"github.com/nadlan-invest/portal/pkg/logger"
)

const serviceName = "portal"

func main() {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("close mongo failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("close redis failed")
		}
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	// --- Adapters ---
	users := mongostore.NewUserRepository(db)
	properties := mongostore.NewPropertyRepository(db)
	activity := mongostore.NewActivityRepository(db)
	documents, err := mongostore.NewDocumentStore(db)
	if err != nil {
		return err
	}
	sessions := redisstore.NewSessionStore(rdb)
	limiter := redisstore.NewSignInLimiter(rdb, cfg.Auth.SignInMaxAttempts, cfg.Auth.SignInAttemptsSpan)

	// --- Services ---
	authService := service.NewAuthService(users, sessions, limiter, service.AuthConfig{
		JWTSecret:     cfg.Auth.JWTSecret,
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
		ReuseInterval: cfg.Auth.RefreshReuse,
		CookieSecure:  cfg.Auth.CookieSecure,
		CookieDomain:  cfg.Auth.CookieDomain,
	}, logger.Component("auth"))
	propertyService := service.NewPropertyService(properties, logger.Component("properties"))
	documentService := service.NewDocumentService(documents, logger.Component("documents"))

	gk := gatekeeper.New(
		gatekeeper.DefaultRouteTable(),
		gatekeeper.NewPrefixRewriter(cfg.Auth.CookieSecure),
		authService,
		logger.Component("gatekeeper"),
	)

	renderer, err := web.NewRenderer(logger.Component("web"))
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	var chatProxy *chat.Proxy
	if cfg.Chat.APIKey != "" {
		chatProxy, err = chat.NewProxy(chat.Config{
			BaseURL:   cfg.Chat.APIURL,
			APIKey:    cfg.Chat.APIKey,
			Timeout:   cfg.Chat.Timeout,
			RateLimit: cfg.Chat.RateLimit,
			Burst:     cfg.Chat.Burst,
		}, logger.Component("chat"))
		if err != nil {
			return err
		}
	} else {
		log.Warn().Msg("CHAT_API_KEY not set, onboarding chat disabled")
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, activity, logger.Component("activity"))
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Deps{
		Logger:     log,
		Gatekeeper: gk,
		Auth:       authService,
		Properties: propertyService,
		Documents:  documentService,
		Activity:   activity,
		Recorder:   dispatcher,
		Renderer:   renderer,
		Chat:       chatProxy,
		ChatModel:  cfg.Chat.Model,
		Readiness: []handler.Dependency{
			{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopWorkers()
		dispatcher.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	// Requests are done; flush their activity before the stores close.
	stopWorkers()
	dispatcher.Wait()
	return nil
}
