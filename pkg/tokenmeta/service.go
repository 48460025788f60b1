package tokenmeta

import (
	"context"
)

// Service defines the main interface for the token metadata library
type Service interface {
	// Resolution
	ResolveTokenURI(ctx context.Context, id TokenID) (string, error)

	// Token configuration operations
	GetTokenURIConfig(ctx context.Context, id TokenID) (TokenURIConfig, error)
	SetTokenBaseURI(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error
	SetTokenURI(ctx context.Context, id TokenID, uri string) error
	ClearTokenURI(ctx context.Context, id TokenID) error
	SetTokenURIBatch(ctx context.Context, ids []TokenID, uris []string) error

	// Collection configuration operations
	GetCollectionConfig(ctx context.Context) (CollectionConfig, error)
	SetCollectionMetadataURI(ctx context.Context, uri string) error

	// Metadata document operations
	PublishTokenMetadata(ctx context.Context, req PublishTokenMetadataRequest) error
	GetTokenMetadata(ctx context.Context, id TokenID) (*TokenMetadata, error)
	DeleteTokenMetadata(ctx context.Context, id TokenID) error
	GetTokenMetadataURL(ctx context.Context, id TokenID) (string, error)
	GetTokenMetadataUploadURL(ctx context.Context, id TokenID) (string, error)
}
