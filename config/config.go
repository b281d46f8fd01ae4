package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DefaultDatabase = "auth"
)

// Config is the process configuration. Required values (MONGO_URI, SECRET) are not
// validated here; the component that needs them reports their absence.
type Config struct {
	AppEnv                   string        `env:"APP_ENV"`
	MongoURI                 string        `env:"MONGO_URI"`
	Database                 string        `env:"MONGO_DATABASE"`
	Secret                   string        `env:"SECRET"`
	Port                     string        `env:"PORT" envDefault:"8000"`
	StaticFile               string        `env:"STATIC_FILE" envDefault:"dist/index.html"`
	SessionName              string        `env:"SESSION_NAME" envDefault:"sid"`
	SessionTTL               time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	SessionResave            bool          `env:"SESSION_RESAVE" envDefault:"true"`
	SessionSaveUninitialized bool          `env:"SESSION_SAVE_UNINITIALIZED" envDefault:"true"`
	CookieSecure             bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CORSOrigins              []string      `env:"CORS_ORIGINS" envSeparator:","`
	LogLevel                 string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat                string        `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the configuration from the environment. Outside production the given
// dotenv files (".env" when none are given) are loaded first; variables already set in
// the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if !IsProduction(currentEnv()) {
		if err := godotenv.Load(envFiles...); err != nil {
			slog.Info("No .env file found, relying on environment variables", "error", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = currentEnv()
	}
	if cfg.Database == "" {
		cfg.Database = databaseFromURI(cfg.MongoURI)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return IsProduction(c.AppEnv)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func IsProduction(appEnv string) bool {
	return appEnv == EnvProduction
}

// databaseFromURI returns the database named in the connection string path, or
// DefaultDatabase when there is none. Invalid URIs are reported later by the db connector.
// SRV URIs are read as plain ones so no DNS lookup happens here.
func databaseFromURI(uri string) string {
	if uri == "" {
		return DefaultDatabase
	}
	if rest, ok := strings.CutPrefix(uri, "mongodb+srv://"); ok {
		uri = "mongodb://" + rest
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return DefaultDatabase
	}
	return cs.Database
}

// currentEnv prefers APP_ENV and falls back to NODE_ENV for deployments that still set it.
func currentEnv() string {
	if v := os.Getenv("APP_ENV"); v != "" {
		return v
	}
	if v := os.Getenv("NODE_ENV"); v != "" {
		return v
	}
	return EnvDevelopment
}
