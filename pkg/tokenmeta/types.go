package tokenmeta

import (
	"strconv"
)

// MaxBatchSize caps the number of tokens accepted by a single bulk URI
// assignment. The bulk minting pipeline shares this limit; the two must move
// together.
const MaxBatchSize = 500

// TokenID identifies a token within the collection.
type TokenID uint64

// ParseTokenID parses the canonical decimal form of a token identifier.
func ParseTokenID(s string) (TokenID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TokenID(v), nil
}

// String returns the canonical decimal rendering of the identifier. All URI
// composition goes through this form.
func (id TokenID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON renders the identifier as a decimal string. Values above 2^53
// are not representable as JSON numbers in every consumer.
func (id TokenID) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, id.String()), nil
}

// UnmarshalJSON accepts both the quoted decimal form and a bare number.
func (id *TokenID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseTokenID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// TokenURIConfig holds the per-token URI configuration. The zero value is
// meaningful: a token with no stored record resolves against the collection
// default.
type TokenURIConfig struct {
	// ExplicitURI, when non-empty, overrides all other configuration.
	ExplicitURI string `json:"explicit_uri,omitempty"`

	// BaseURI is the token's own base path. It takes effect only while
	// IsConfigured is set.
	BaseURI string `json:"base_uri,omitempty"`

	// UseIDInPath appends the decimal token identifier to the base path.
	UseIDInPath bool `json:"use_id_in_path"`

	// IsConfigured records that a base path was set for this token. Once set
	// it is never reset.
	IsConfigured bool `json:"is_configured"`
}

// CollectionConfig holds collection-wide configuration. DefaultBaseURI is
// fixed when the store is constructed; MetadataURI may change at any time and
// may be empty.
type CollectionConfig struct {
	DefaultBaseURI string `json:"default_base_uri"`
	MetadataURI    string `json:"metadata_uri,omitempty"`
}

// TokenConfigEntry pairs a token identifier with its stored configuration.
type TokenConfigEntry struct {
	TokenID TokenID        `json:"token_id"`
	Config  TokenURIConfig `json:"config"`
}

// TokenMetadata is the JSON document served from a resolved token URI.
type TokenMetadata struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Image       string           `json:"image,omitempty"`
	ExternalURL string           `json:"external_url,omitempty"`
	Attributes  []TokenAttribute `json:"attributes,omitempty"`
}

// TokenAttribute is a single trait entry in a metadata document.
type TokenAttribute struct {
	TraitType   string      `json:"trait_type"`
	Value       interface{} `json:"value"`
	DisplayType string      `json:"display_type,omitempty"`
}

// TokenConfigStats aggregates configuration counts across the collection.
type TokenConfigStats struct {
	// TotalConfigured counts tokens with any live configuration record.
	TotalConfigured int64 `json:"total_configured"`
	// ExplicitURIs counts tokens with a non-empty explicit URI override.
	ExplicitURIs int64 `json:"explicit_uris"`
	// BasePathConfigs counts tokens with their own base path.
	BasePathConfigs int64 `json:"base_path_configs"`
	// IDInPath counts base path configurations that append the token ID.
	IDInPath int64 `json:"id_in_path"`
}

// ListTokenConfigsParams controls paging when listing stored token
// configurations. AfterID is a keyset cursor: only tokens with a strictly
// greater identifier are returned, in ascending order.
type ListTokenConfigsParams struct {
	AfterID *TokenID
	Limit   *int
}
