package presets

import (
	"fmt"
	"os"
	"testing"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/config"
	memorystore "github.com/juke/dril-dao/pkg/tokenmeta/repo/memory"
	fsdocs "github.com/juke/dril-dao/pkg/tokenmeta/storage/fs"
	memorydocs "github.com/juke/dril-dao/pkg/tokenmeta/storage/memory"
)

// Configuration Presets
//
// This package provides easy-to-use configuration presets for common use cases.
// Presets eliminate boilerplate and provide sensible defaults while remaining customizable.

// NewDevelopment creates a service configured for local development.
//
// Features:
//   - In-memory config store (instant startup, no setup required)
//   - Filesystem document storage at ./dev-data/ (persistent across restarts)
//   - Logging event sink (helpful for debugging)
//
// Returns:
//   - Service instance
//   - Cleanup function (call with defer to remove dev-data directory)
//   - Error if setup fails
//
// Example:
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
//	// Use service...
func NewDevelopment(opts ...DevelopmentOption) (tokenmeta.Service, func(), error) {
	// Default configuration
	cfg := &devConfig{
		storageDir: "./dev-data",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Create config store (in-memory for development)
	store := memorystore.New(cfg.defaultBaseURI)

	// Create filesystem document storage
	fsBackend, err := fsdocs.New(fsdocs.Config{
		BaseDir: cfg.storageDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	// Build service options
	options := []tokenmeta.Option{
		tokenmeta.WithConfigStore(store),
		tokenmeta.WithDocumentStore(fsBackend),
		tokenmeta.WithEventSink(tokenmeta.NewLoggingEventSink(nil)),
	}

	// Create service
	svc, err := tokenmeta.New(options...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	// Cleanup function
	cleanup := func() {
		os.RemoveAll(cfg.storageDir)
	}

	return svc, cleanup, nil
}

// NewTesting creates a service configured for unit and integration tests.
//
// Features:
//   - In-memory config store (isolated per test)
//   - In-memory document storage (fast, no disk I/O)
//   - No event logging (cleaner test output)
//   - Supports parallel test execution
//
// The testing.T parameter enables automatic cleanup when the test completes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t)
//
//	    // Use service in test...
//	}
func NewTesting(t *testing.T, opts ...TestingOption) tokenmeta.Service {
	// Default configuration
	cfg := &testConfig{}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Create config store (in-memory for testing)
	store := memorystore.New(cfg.defaultBaseURI)

	// Create memory document storage
	docs := memorydocs.New()

	// Build service options
	options := []tokenmeta.Option{
		tokenmeta.WithConfigStore(store),
		tokenmeta.WithDocumentStore(docs),
	}

	// Create service
	svc, err := tokenmeta.New(options...)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	return svc
}

// NewProduction creates a service configured for production deployment.
//
// Configuration is read from the environment via the config package.
// The memory store is rejected: production requires Postgres.
//
// Required Environment Variables:
//   - DATABASE_URL: PostgreSQL connection string
//   - STORAGE_URL: "s3://bucket" or "file:///path"
//
// Optional Environment Variables:
//   - DEFAULT_BASE_URI: Collection-wide fallback base URI
//   - AUTH_MODE, API_KEY, JWT_SECRET: HTTP auth settings
//   - WEBHOOK_URL, WEBHOOK_SECRET: Event delivery
//
// Example:
//
//	svc, err := presets.NewProduction()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Use service in production...
func NewProduction(opts ...config.Option) (tokenmeta.Service, error) {
	loadOpts := append([]config.Option{
		config.WithEnvironment("production"),
		config.WithEnv(""),
	}, opts...)

	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseType == "memory" {
		return nil, fmt.Errorf("production preset requires DATABASE_URL pointing at postgres (memory not allowed in production)")
	}
	if cfg.DocumentBackend.Type == "memory" {
		return nil, fmt.Errorf("production preset requires persistent document storage (s3 or fs, not memory)")
	}

	return cfg.BuildService()
}

// Option types for customization

// devConfig holds development preset configuration
type devConfig struct {
	storageDir     string
	defaultBaseURI string
}

// testConfig holds testing preset configuration
type testConfig struct {
	defaultBaseURI string
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevStorage sets the development storage directory
func WithDevStorage(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.storageDir = dir
	}
}

// WithDevDefaultBaseURI sets the collection default base URI for development
func WithDevDefaultBaseURI(uri string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.defaultBaseURI = uri
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestDefaultBaseURI sets the collection default base URI for tests
func WithTestDefaultBaseURI(uri string) TestingOption {
	return func(cfg *testConfig) {
		cfg.defaultBaseURI = uri
	}
}

// TestService is a convenience function that creates a test service
// This is an alias for NewTesting with no options
func TestService(t *testing.T) tokenmeta.Service {
	return NewTesting(t)
}
