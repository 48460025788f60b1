package admin

import (
	"time"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// ListTokensRequest contains parameters for admin token listing
type ListTokensRequest struct {
	Filters TokenFilters `json:"filters"`
}

// ListTokensResponse contains one page of configuration records
type ListTokensResponse struct {
	Entries []tokenmeta.TokenConfigEntry `json:"entries"`
	Limit   int                          `json:"limit"`
	// NextAfterID is the cursor for the following page. Nil when the page
	// was empty.
	NextAfterID *tokenmeta.TokenID `json:"next_after_id,omitempty"`
	HasMore     bool               `json:"has_more"`
}

// CountResponse contains the count result
type CountResponse struct {
	Count int64 `json:"count"`
}

// StatisticsResponse contains the statistics result
type StatisticsResponse struct {
	Statistics tokenmeta.TokenConfigStats `json:"statistics"`
	ComputedAt time.Time                  `json:"computed_at"`
}

// TokenFilters defines pagination options for admin listing. Records are
// always returned in ascending token id order, so AfterID doubles as the
// page cursor.
type TokenFilters struct {
	AfterID *tokenmeta.TokenID `json:"after_id,omitempty"`
	Limit   *int               `json:"limit,omitempty"`
}

// ListTokensOption provides functional options for listing tokens
type ListTokensOption func(*TokenFilters)

// WithAfterID resumes listing after the given token id
func WithAfterID(id tokenmeta.TokenID) ListTokensOption {
	return func(f *TokenFilters) {
		f.AfterID = &id
	}
}

// WithLimit sets the page size
func WithLimit(limit int) ListTokensOption {
	return func(f *TokenFilters) {
		f.Limit = &limit
	}
}

// NewListTokensRequest builds a list request from functional options
func NewListTokensRequest(opts ...ListTokensOption) ListTokensRequest {
	var filters TokenFilters
	for _, opt := range opts {
		opt(&filters)
	}
	return ListTokensRequest{Filters: filters}
}
