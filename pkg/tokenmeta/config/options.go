package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithDefaultBaseURI sets the collection-wide fallback base URI
func WithDefaultBaseURI(uri string) Option {
	return func(c *ServerConfig) error {
		c.DefaultBaseURI = uri
		return nil
	}
}

// WithMemoryDocuments configures the in-memory document backend (for testing)
func WithMemoryDocuments() Option {
	return func(c *ServerConfig) error {
		c.DocumentBackend = DocumentBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		}
		return nil
	}
}

// WithFilesystemDocuments configures the filesystem document backend
func WithFilesystemDocuments(baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}

		cfg := map[string]interface{}{
			"base_dir": baseDir,
		}
		if urlPrefix != "" {
			cfg["url_prefix"] = urlPrefix
		}

		c.DocumentBackend = DocumentBackendConfig{Type: "fs", Config: cfg}
		return nil
	}
}

// WithS3Documents configures the S3 document backend
func WithS3Documents(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1" // Default region
		}

		c.DocumentBackend = DocumentBackendConfig{
			Type: "s3",
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": region,
			},
		}
		return nil
	}
}

// WithS3Credentials sets AWS credentials for the S3 document backend
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		ensureS3Backend(c)
		c.DocumentBackend.Config["access_key_id"] = accessKeyID
		c.DocumentBackend.Config["secret_access_key"] = secretAccessKey
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		ensureS3Backend(c)
		c.DocumentBackend.Config["endpoint"] = endpoint
		c.DocumentBackend.Config["use_path_style"] = usePathStyle
		return nil
	}
}

// WithS3PresignDuration sets the presigned URL duration for S3 (in seconds)
func WithS3PresignDuration(durationSeconds int) Option {
	return func(c *ServerConfig) error {
		if durationSeconds <= 0 {
			return fmt.Errorf("presign duration must be positive, got: %d", durationSeconds)
		}
		ensureS3Backend(c)
		c.DocumentBackend.Config["presign_duration"] = durationSeconds
		return nil
	}
}

// WithPublicDocumentURLs sets a stable public prefix for document download
// URLs (CDN or public bucket) instead of presigning
func WithPublicDocumentURLs(prefix string) Option {
	return func(c *ServerConfig) error {
		if prefix == "" {
			return fmt.Errorf("public URL prefix cannot be empty")
		}
		ensureS3Backend(c)
		c.DocumentBackend.Config["public_url_prefix"] = prefix
		return nil
	}
}

// WithKeyGenerator sets the document key generation strategy
// Valid values: "flat", "sharded"
func WithKeyGenerator(generator string) Option {
	return func(c *ServerConfig) error {
		validGenerators := map[string]bool{
			"flat":    true,
			"sharded": true,
		}
		if !validGenerators[generator] {
			return fmt.Errorf("invalid key generator: %s (valid: flat, sharded)", generator)
		}
		c.KeyGenerator = generator
		return nil
	}
}

// WithAuthMode sets the HTTP authentication mode
// Valid values: "none", "apikey", "jwt"
func WithAuthMode(mode string) Option {
	return func(c *ServerConfig) error {
		if mode != "none" && mode != "apikey" && mode != "jwt" {
			return fmt.Errorf("auth mode must be 'none', 'apikey' or 'jwt', got: %s", mode)
		}
		c.AuthMode = mode
		return nil
	}
}

// WithAPIKey sets the static API key for the "apikey" auth mode
func WithAPIKey(key string) Option {
	return func(c *ServerConfig) error {
		c.APIKey = key
		return nil
	}
}

// WithJWTSecret sets the HMAC secret for the "jwt" auth mode
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithWebhook configures webhook event delivery
func WithWebhook(url, secret string) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			return fmt.Errorf("webhook URL cannot be empty")
		}
		c.WebhookURL = url
		c.WebhookSecret = secret
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithAdminAPI enables or disables the admin API endpoints
func WithAdminAPI(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableAdminAPI = enabled
		return nil
	}
}

// WithDefaults is a convenience option that applies sensible defaults
// This is useful as a base before applying more specific options
func WithDefaults() Option {
	return func(c *ServerConfig) error {
		*c = defaults()
		return nil
	}
}

// ensureS3Backend switches the document backend to S3 preserving any
// settings applied so far
func ensureS3Backend(c *ServerConfig) {
	if c.DocumentBackend.Type != "s3" || c.DocumentBackend.Config == nil {
		c.DocumentBackend = DocumentBackendConfig{
			Type:   "s3",
			Config: map[string]interface{}{},
		}
	}
}
