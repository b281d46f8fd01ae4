package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-graphql/auth"
	"auth-graphql/config"
	"auth-graphql/db"
	"auth-graphql/logging"
	"auth-graphql/metrics"
	"auth-graphql/schema"
	"auth-graphql/server"
	"auth-graphql/services"
	"auth-graphql/session"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	m := metrics.New()

	client, err := db.Connect(cfg.MongoURI, logger, m)
	if err != nil {
		logger.Error("MongoDB client setup failed", "error", err)
		os.Exit(1)
	}
	database := client.Database(cfg.Database)

	sessionRepo := session.NewMongoRepository(database)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sessionRepo.EnsureIndexes(ctx); err != nil {
			logger.Error("Failed to ensure session indexes", "error", err)
		}
	}()

	store, err := session.NewMongoStore(sessionRepo, cfg.Secret, cfg.SessionTTL, clockwork.NewRealClock())
	if err != nil {
		logger.Error("Session store setup failed", "error", err)
		os.Exit(1)
	}
	store.Options.Secure = cfg.CookieSecure

	gqlSchema, err := schema.New()
	if err != nil {
		logger.Error("GraphQL schema setup failed", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(server.Deps{
		Config:        cfg,
		Logger:        logger,
		Metrics:       m,
		SessionStore:  store,
		Authenticator: auth.New(services.NewUsers(database), logger),
		Schema:        &gqlSchema,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Addr(), router, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server failed", "error", err)
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Disconnect(disconnectCtx, client); err != nil {
		logger.Error("Failed to disconnect from MongoDB", "error", err)
	}
}
