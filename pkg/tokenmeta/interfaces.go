package tokenmeta

import (
	"context"
	"io"
	"time"
)

// ConfigStore defines the interface for token and collection configuration
// persistence. Mutations are atomic: on error the stored state is unchanged,
// and concurrent readers never observe a partially applied write.
type ConfigStore interface {
	// Collection configuration. The default base URI is fixed at store
	// construction; only the collection metadata URI is writable.
	GetCollectionConfig(ctx context.Context) (CollectionConfig, error)
	SetCollectionMetadataURI(ctx context.Context, uri string) error

	// Token configuration. GetTokenConfig returns the zero value for tokens
	// with no stored record.
	GetTokenConfig(ctx context.Context, id TokenID) (TokenURIConfig, error)
	SetBasePath(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error

	// SetExplicitURI stores a per-token URI override. The empty string clears
	// the override; clearing a token with no record is a no-op.
	SetExplicitURI(ctx context.Context, id TokenID, uri string) error

	// SetExplicitURIBatch applies overrides for all pairs or none. When an
	// identifier repeats within the batch, the last occurrence wins.
	SetExplicitURIBatch(ctx context.Context, ids []TokenID, uris []string) error

	// Administrative queries over stored records.
	ListTokenConfigs(ctx context.Context, params ListTokenConfigsParams) ([]TokenConfigEntry, error)
	CountTokenConfigs(ctx context.Context) (int64, error)
	TokenConfigStats(ctx context.Context) (TokenConfigStats, error)
}

// EventSink defines the interface for configuration change notifications.
// Sink failures never fail the mutation that produced them.
type EventSink interface {
	// BaseURIConfigured is fired when a token's base path configuration changes
	BaseURIConfigured(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error

	// TokenURIChanged is fired when a token's explicit URI is set or cleared.
	// A cleared override is reported with an empty uri.
	TokenURIChanged(ctx context.Context, id TokenID, uri string) error
}

// Operation names a mutating service operation for authorization checks.
type Operation string

// Mutating operations subject to authorization.
const (
	OpSetCollectionMetadataURI Operation = "set_collection_metadata_uri"
	OpSetTokenBaseURI          Operation = "set_token_base_uri"
	OpSetTokenURI              Operation = "set_token_uri"
	OpClearTokenURI            Operation = "clear_token_uri"
	OpSetTokenURIBatch         Operation = "set_token_uri_batch"
	OpPublishTokenMetadata     Operation = "publish_token_metadata"
	OpDeleteTokenMetadata      Operation = "delete_token_metadata"
)

// Authorizer gates mutating operations. Implementations decide whether the
// caller carried by ctx holds the administrative capability for op. A nil
// return grants the operation; any error denies it and is propagated to the
// service caller unchanged.
type Authorizer interface {
	Authorize(ctx context.Context, op Operation) error
}

// DocumentStore defines the interface for metadata document storage backends
type DocumentStore interface {
	// GetUploadURL returns a URL for uploading a document directly
	GetUploadURL(ctx context.Context, key string) (string, error)

	// Upload stores a document
	Upload(ctx context.Context, key string, reader io.Reader) error

	// UploadWithParams stores a document with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadDocumentParams) error

	// GetDownloadURL returns a URL for downloading a document
	GetDownloadURL(ctx context.Context, key string) (string, error)

	// Download retrieves a document
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a document
	Delete(ctx context.Context, key string) error

	// GetDocumentMeta retrieves metadata for a stored document
	GetDocumentMeta(ctx context.Context, key string) (*DocumentMeta, error)
}

// DocumentMeta contains metadata about a document in storage
type DocumentMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// UploadDocumentParams contains parameters for uploading a document
type UploadDocumentParams struct {
	Key      string
	MimeType string
}
