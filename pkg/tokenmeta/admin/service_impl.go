package admin

import (
	"context"
	"time"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// adminService implements the AdminService interface
type adminService struct {
	store tokenmeta.ConfigStore
}

// Ensure adminService implements AdminService
var _ AdminService = (*adminService)(nil)

// ListConfiguredTokens returns one page of configuration records
func (s *adminService) ListConfiguredTokens(ctx context.Context, req ListTokensRequest) (*ListTokensResponse, error) {
	limit := 100 // default page size
	if req.Filters.Limit != nil {
		limit = *req.Filters.Limit
	}

	params := tokenmeta.ListTokenConfigsParams{
		AfterID: req.Filters.AfterID,
		Limit:   &limit,
	}

	entries, err := s.store.ListTokenConfigs(ctx, params)
	if err != nil {
		return nil, err
	}

	response := &ListTokensResponse{
		Entries: entries,
		Limit:   limit,
		HasMore: len(entries) == limit,
	}
	if len(entries) > 0 {
		last := entries[len(entries)-1].TokenID
		response.NextAfterID = &last
	}

	return response, nil
}

// CountConfiguredTokens returns the number of stored configuration records
func (s *adminService) CountConfiguredTokens(ctx context.Context) (*CountResponse, error) {
	count, err := s.store.CountTokenConfigs(ctx)
	if err != nil {
		return nil, err
	}

	return &CountResponse{Count: count}, nil
}

// GetStatistics returns aggregated statistics about stored records
func (s *adminService) GetStatistics(ctx context.Context) (*StatisticsResponse, error) {
	stats, err := s.store.TokenConfigStats(ctx)
	if err != nil {
		return nil, err
	}

	return &StatisticsResponse{
		Statistics: stats,
		ComputedAt: time.Now(),
	}, nil
}
