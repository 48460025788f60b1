package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/chi-demo/middleware"

	"github.com/juke/dril-dao/pkg/tokenmeta/api"
	"github.com/juke/dril-dao/pkg/tokenmeta/config"
)

type Config struct {
	DB             DbConfig
	Docs           DocsConfig
	S3             S3Config
	Notice         NoticeConfig
	DefaultBaseURI string `env:"DEFAULT_BASE_URI" env-default:""`
	KeyGenerator   string `env:"KEY_GENERATOR" env-default:"flat"`
	AuthMode       string `env:"AUTH_MODE" env-default:"none"`
	ApiKeySHA256   string `env:"API_KEY_SHA256" env-default:""`
	JWTSecret      string `env:"JWT_SECRET" env-default:""`
	EnableAdminAPI bool   `env:"ENABLE_ADMIN_API" env-default:"false"`
}

type DbConfig struct {
	Type     string `env:"DATABASE_TYPE" env-default:"memory"`
	Port     uint16 `env:"TOKENMETA_PG_PORT" env-default:"5432"`
	Host     string `env:"TOKENMETA_PG_HOST" env-default:"localhost"`
	Name     string `env:"TOKENMETA_PG_NAME" env-default:"dril_dao"`
	User     string `env:"TOKENMETA_PG_USER" env-default:"tokenmeta"`
	Password string `env:"TOKENMETA_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"DB_SCHEMA" env-default:"tokenmeta"`
}

type DocsConfig struct {
	Backend     string `env:"DOCUMENT_BACKEND" env-default:"memory"`
	FsBaseDir   string `env:"FS_BASE_DIR" env-default:"./data/documents"`
	FsURLPrefix string `env:"FS_URL_PREFIX" env-default:""`
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	BucketName      string `env:"AWS_S3_BUCKET" env-default:""`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	PublicURLPrefix string `env:"PUBLIC_URL_PREFIX" env-default:""`
}

type NoticeConfig struct {
	WebhookURL    string `env:"WEBHOOK_URL" env-default:""`
	WebhookSecret string `env:"WEBHOOK_SECRET" env-default:""`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func buildOptions(cfg Config) []config.Option {
	opts := []config.Option{
		config.WithDefaultBaseURI(cfg.DefaultBaseURI),
		config.WithKeyGenerator(cfg.KeyGenerator),
		config.WithAuthMode(cfg.AuthMode),
		config.WithAdminAPI(cfg.EnableAdminAPI),
	}

	if cfg.DB.Type == "postgres" {
		opts = append(opts,
			config.WithDatabase("postgres", cfg.DB.toDatabaseUrl()),
			config.WithDatabaseSchema(cfg.DB.Schema),
		)
	}

	switch cfg.Docs.Backend {
	case "fs":
		opts = append(opts, config.WithFilesystemDocuments(cfg.Docs.FsBaseDir, cfg.Docs.FsURLPrefix))
	case "s3":
		opts = append(opts, config.WithS3Documents(cfg.S3.BucketName, cfg.S3.Region))
		if cfg.S3.AccessKeyID != "" {
			opts = append(opts, config.WithS3Credentials(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, config.WithS3Endpoint(cfg.S3.Endpoint, true))
		}
		if cfg.S3.PublicURLPrefix != "" {
			opts = append(opts, config.WithPublicDocumentURLs(cfg.S3.PublicURLPrefix))
		}
	}

	switch cfg.AuthMode {
	case "apikey":
		opts = append(opts, config.WithAPIKey(cfg.ApiKeySHA256))
	case "jwt":
		opts = append(opts, config.WithJWTSecret(cfg.JWTSecret))
	}

	if cfg.Notice.WebhookURL != "" {
		opts = append(opts, config.WithWebhook(cfg.Notice.WebhookURL, cfg.Notice.WebhookSecret))
	}

	return opts
}

func main() {
	// Load configuration
	var envConfig Config
	if err := cleanenv.ReadEnv(&envConfig); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(buildOptions(envConfig)...)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	// Build the service and the admin view over the same store
	svc, adminSvc, err := cfg.BuildServices()
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	// Initialize API handlers
	tokenHandler := api.NewTokenHandler(svc)
	collectionHandler := api.NewCollectionHandler(svc)

	// Resolve the transport auth middlewares for the configured mode
	var authMiddlewares []func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case "apikey":
		apiKeyMiddleware, err := middleware.ApiKeyMiddleware(middleware.ApiKeyConfig{
			APIKeys: map[string]string{
				"key1": envConfig.ApiKeySHA256,
			},
		})
		if err != nil {
			slog.Error("Failed initialize API Key middleware", "err", err)
			return
		}
		authMiddlewares = append(authMiddlewares, apiKeyMiddleware)
	case "jwt":
		tokenAuth := api.NewJWTAuth(cfg.JWTSecret)
		authMiddlewares = append(authMiddlewares,
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator,
			api.JWTPrincipalMiddleware,
		)
	}

	server.R.Route("/api/v1", func(r chi.Router) {
		r.Use(api.RequestIDMiddleware)
		r.Use(api.RequestSizeLimitMiddleware(1 << 20))

		r.Group(func(r chi.Router) {
			for _, mw := range authMiddlewares {
				r.Use(mw)
			}
			r.Mount("/tokens", tokenHandler.Routes())
			r.Mount("/collection", collectionHandler.Routes())
		})

		if cfg.EnableAdminAPI {
			adminHandler := api.NewAdminHandler(adminSvc)
			r.Group(func(r chi.Router) {
				for _, mw := range authMiddlewares {
					r.Use(mw)
				}
				r.Mount("/admin", adminHandler.Routes())
			})
		}
	})

	slog.Info("Token URI service configured",
		"database", cfg.DatabaseType,
		"documents", cfg.DocumentBackend.Type,
		"auth", cfg.AuthMode,
		"admin_api", cfg.EnableAdminAPI)

	// Start server
	server.Run()
}
