package admin

import (
	"context"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// AdminService defines the interface for operational queries over token
// URI configuration records. These operations read the whole collection
// and are intended for monitoring, reconciliation, and bulk processing.
//
// IMPORTANT: Endpoints using this service should be protected with
// appropriate authentication and authorization middleware to ensure only
// authorized administrators can access these operations.
type AdminService interface {
	// ListConfiguredTokens returns one page of configuration records in
	// ascending token id order. Only tokens with a stored record appear;
	// tokens resolved purely from the collection default are not listed.
	ListConfiguredTokens(ctx context.Context, req ListTokensRequest) (*ListTokensResponse, error)

	// CountConfiguredTokens returns the number of stored configuration
	// records. Useful for pagination and monitoring.
	CountConfiguredTokens(ctx context.Context) (*CountResponse, error)

	// GetStatistics returns aggregated statistics about stored records,
	// broken down by configuration kind.
	GetStatistics(ctx context.Context) (*StatisticsResponse, error)
}

// New creates a new AdminService instance that uses the provided store.
func New(store tokenmeta.ConfigStore) AdminService {
	return &adminService{
		store: store,
	}
}
