package tokenmeta

// Request/Response DTOs

// PublishTokenMetadataRequest contains parameters for publishing a token's
// metadata document to the configured document store.
type PublishTokenMetadataRequest struct {
	TokenID  TokenID
	Metadata TokenMetadata
}
