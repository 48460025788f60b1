package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/admin"
	"github.com/juke/dril-dao/pkg/tokenmeta/dockey"
	"github.com/juke/dril-dao/pkg/tokenmeta/notify"
	memorystore "github.com/juke/dril-dao/pkg/tokenmeta/repo/memory"
	pgstore "github.com/juke/dril-dao/pkg/tokenmeta/repo/postgres"
	fsdocs "github.com/juke/dril-dao/pkg/tokenmeta/storage/fs"
	memorydocs "github.com/juke/dril-dao/pkg/tokenmeta/storage/memory"
	s3docs "github.com/juke/dril-dao/pkg/tokenmeta/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		DBSchema:     "tokenmeta",
		DocumentBackend: DocumentBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		KeyGenerator:       "flat",
		AuthMode:           "none",
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the token metadata service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: tokenmeta)

	// DefaultBaseURI is the collection-wide fallback base URI. It is fixed
	// for the lifetime of the service.
	DefaultBaseURI string

	// Document storage configuration
	DocumentBackend DocumentBackendConfig
	KeyGenerator    string // "flat", "sharded"

	// Auth configuration for the HTTP layer
	AuthMode  string // "none", "apikey", "jwt"
	APIKey    string // static key checked when AuthMode is "apikey"
	JWTSecret string // HMAC secret when AuthMode is "jwt"

	// Event delivery
	WebhookURL         string
	WebhookSecret      string
	EnableEventLogging bool

	// Server options
	EnableAdminAPI bool
}

// DocumentBackendConfig represents configuration for the metadata document backend
type DocumentBackendConfig struct {
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.DocumentBackend.Type {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported document backend type: %s", c.DocumentBackend.Type)
	}

	switch c.KeyGenerator {
	case "", "flat", "sharded":
	default:
		return fmt.Errorf("unsupported key generator: %s (valid: flat, sharded)", c.KeyGenerator)
	}

	switch c.AuthMode {
	case "none", "apikey", "jwt":
	default:
		return fmt.Errorf("auth_mode must be 'none', 'apikey' or 'jwt', got: %s", c.AuthMode)
	}
	if c.AuthMode == "apikey" && c.APIKey == "" {
		return errors.New("api_key is required when auth_mode is 'apikey'")
	}
	if c.AuthMode == "jwt" && c.JWTSecret == "" {
		return errors.New("jwt_secret is required when auth_mode is 'jwt'")
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (tokenmeta.Service, error) {
	store, err := c.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build config store: %w", err)
	}
	return c.buildServiceWithStore(store)
}

// BuildServices creates the service together with an admin service. Both
// share one store, so admin queries observe the same records the service
// mutates.
func (c *ServerConfig) BuildServices() (tokenmeta.Service, admin.AdminService, error) {
	store, err := c.BuildStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build config store: %w", err)
	}
	svc, err := c.buildServiceWithStore(store)
	if err != nil {
		return nil, nil, err
	}
	return svc, admin.New(store), nil
}

func (c *ServerConfig) buildServiceWithStore(store tokenmeta.ConfigStore) (tokenmeta.Service, error) {
	options := []tokenmeta.Option{tokenmeta.WithConfigStore(store)}

	// Set up the document backend
	docs, err := c.buildDocumentBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to build document backend: %w", err)
	}
	options = append(options, tokenmeta.WithDocumentStore(docs))

	// Set up the document key generator
	switch c.KeyGenerator {
	case "", "flat":
		options = append(options, tokenmeta.WithKeyGenerator(dockey.NewRecommendedGenerator()))
	case "sharded":
		options = append(options, tokenmeta.WithKeyGenerator(dockey.NewLargeCollectionGenerator()))
	}

	// Set up event sink
	sink, err := c.buildEventSink()
	if err != nil {
		return nil, fmt.Errorf("failed to build event sink: %w", err)
	}
	if sink != nil {
		options = append(options, tokenmeta.WithEventSink(sink))
	}

	return tokenmeta.New(options...)
}

// BuildStore creates a ConfigStore based on the configuration
func (c *ServerConfig) BuildStore() (tokenmeta.ConfigStore, error) {
	switch c.DatabaseType {
	case "memory":
		return memorystore.New(c.DefaultBaseURI), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		// Optionally set search_path for the connection
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			// set search_path for this session
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return pgstore.NewWithPool(pool, c.DefaultBaseURI), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildDocumentBackend creates a DocumentStore based on the backend configuration
func (c *ServerConfig) buildDocumentBackend() (tokenmeta.DocumentStore, error) {
	backend := c.DocumentBackend
	switch backend.Type {
	case "memory":
		return memorydocs.New(), nil

	case "fs":
		fsConfig := fsdocs.Config{
			BaseDir:   getString(backend.Config, "base_dir", "./data/metadata"),
			URLPrefix: getString(backend.Config, "url_prefix", ""),
		}
		return fsdocs.New(fsConfig)

	case "s3":
		s3Config := s3docs.Config{
			Region:                 getString(backend.Config, "region", "us-east-1"),
			Bucket:                 getString(backend.Config, "bucket", ""),
			AccessKeyID:            getString(backend.Config, "access_key_id", ""),
			SecretAccessKey:        getString(backend.Config, "secret_access_key", ""),
			Endpoint:               getString(backend.Config, "endpoint", ""),
			UsePathStyle:           getBool(backend.Config, "use_path_style", false),
			PresignDuration:        getInt(backend.Config, "presign_duration", 3600),
			PublicURLPrefix:        getString(backend.Config, "public_url_prefix", ""),
			EnableSSE:              getBool(backend.Config, "enable_sse", false),
			SSEAlgorithm:           getString(backend.Config, "sse_algorithm", "AES256"),
			SSEKMSKeyID:            getString(backend.Config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(backend.Config, "create_bucket_if_not_exist", false),
		}
		return s3docs.New(s3Config)

	default:
		return nil, fmt.Errorf("unsupported document backend type: %s", backend.Type)
	}
}

// buildEventSink creates an EventSink based on the configuration. Returns
// nil when event delivery is disabled entirely.
func (c *ServerConfig) buildEventSink() (tokenmeta.EventSink, error) {
	if c.WebhookURL != "" {
		return notify.NewWebhookSink(notify.Config{
			URL:    c.WebhookURL,
			Secret: c.WebhookSecret,
		})
	}
	if c.EnableEventLogging {
		return tokenmeta.NewLoggingEventSink(nil), nil
	}
	return nil, nil
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}

func getInt(config map[string]interface{}, key string, defaultValue int) int {
	if value, exists := config[key]; exists {
		if i, ok := value.(int); ok {
			return i
		}
		if str, ok := value.(string); ok {
			if i, err := strconv.Atoi(str); err == nil {
				return i
			}
		}
		if f, ok := value.(float64); ok {
			return int(f)
		}
	}
	return defaultValue
}
