package server

import (
	"log/slog"
	"net/http"
	"time"

	"auth-graphql/auth"
	"auth-graphql/config"
	"auth-graphql/logging"
	"auth-graphql/metrics"
	"auth-graphql/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
)

// Deps are the long-lived collaborators built once at startup.
type Deps struct {
	Config        *config.Config
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	SessionStore  sessions.Store
	Authenticator *auth.Authenticator
	Schema        *graphql.Schema
}

// NewRouter builds the engine. Middleware order: recovery, request log, metrics, CORS,
// session, auth initialize, auth session, then the route handler.
func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(deps.Logger))
	r.Use(deps.Metrics.Middleware())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	app := r.Group("/")
	app.Use(session.Middleware(session.Options{
		Name:              cfg.SessionName,
		Resave:            cfg.SessionResave,
		SaveUninitialized: cfg.SessionSaveUninitialized,
		Store:             deps.SessionStore,
		Logger:            deps.Logger,
		Metrics:           deps.Metrics,
	}))
	app.Use(deps.Authenticator.Initialize(), deps.Authenticator.Session())

	app.POST("/graphql", requireQuery(), gin.WrapH(handler.New(&handler.Config{
		Schema:   deps.Schema,
		Pretty:   true,
		GraphiQL: false,
	})))
	app.GET("/graphql", gin.WrapH(handler.New(&handler.Config{
		Schema:   deps.Schema,
		Pretty:   true,
		GraphiQL: true,
	})))
	app.StaticFile("/", cfg.StaticFile)

	return r
}
