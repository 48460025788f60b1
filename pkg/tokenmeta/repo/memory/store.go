package memory

import (
	"context"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// Store implements tokenmeta.ConfigStore using in-memory storage. Token
// records are materialized lazily: a token acquires an entry on its first
// write and reads of absent tokens return the zero configuration.
type Store struct {
	mu         sync.RWMutex
	collection tokenmeta.CollectionConfig
	tokens     map[tokenmeta.TokenID]*tokenmeta.TokenURIConfig
}

// New creates a new in-memory configuration store. The default base URI is
// fixed for the lifetime of the store.
func New(defaultBaseURI string) *Store {
	return &Store{
		collection: tokenmeta.CollectionConfig{DefaultBaseURI: defaultBaseURI},
		tokens:     make(map[tokenmeta.TokenID]*tokenmeta.TokenURIConfig),
	}
}

// Collection configuration

func (s *Store) GetCollectionConfig(ctx context.Context) (tokenmeta.CollectionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collection, nil
}

func (s *Store) SetCollectionMetadataURI(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection.MetadataURI = uri
	return nil
}

// Token configuration

func (s *Store) GetTokenConfig(ctx context.Context, id tokenmeta.TokenID) (tokenmeta.TokenURIConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, exists := s.tokens[id]
	if !exists {
		return tokenmeta.TokenURIConfig{}, nil
	}

	// Return a copy to prevent external modifications
	return *cfg, nil
}

func (s *Store) SetBasePath(ctx context.Context, id tokenmeta.TokenID, baseURI string, useIDInPath bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.getOrCreate(id)
	cfg.BaseURI = baseURI
	cfg.UseIDInPath = useIDInPath
	cfg.IsConfigured = true
	return nil
}

func (s *Store) SetExplicitURI(ctx context.Context, id tokenmeta.TokenID, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uri == "" {
		cfg, exists := s.tokens[id]
		if !exists {
			return nil
		}
		cfg.ExplicitURI = ""
		// Drop records that carry no configuration at all.
		if *cfg == (tokenmeta.TokenURIConfig{}) {
			delete(s.tokens, id)
		}
		return nil
	}

	cfg := s.getOrCreate(id)
	cfg.ExplicitURI = uri
	return nil
}

func (s *Store) SetExplicitURIBatch(ctx context.Context, ids []tokenmeta.TokenID, uris []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Single critical section makes the batch all-or-nothing; later
	// occurrences of a repeated identifier win.
	for i := range ids {
		cfg := s.getOrCreate(ids[i])
		cfg.ExplicitURI = uris[i]
	}
	return nil
}

// Administrative queries

func (s *Store) ListTokenConfigs(ctx context.Context, params tokenmeta.ListTokenConfigsParams) ([]tokenmeta.TokenConfigEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := maps.Keys(s.tokens)
	slices.Sort(ids)

	var result []tokenmeta.TokenConfigEntry
	for _, id := range ids {
		if params.AfterID != nil && id <= *params.AfterID {
			continue
		}
		result = append(result, tokenmeta.TokenConfigEntry{
			TokenID: id,
			Config:  *s.tokens[id],
		})
		if params.Limit != nil && *params.Limit > 0 && len(result) >= *params.Limit {
			break
		}
	}
	return result, nil
}

func (s *Store) CountTokenConfigs(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.tokens)), nil
}

func (s *Store) TokenConfigStats(ctx context.Context) (tokenmeta.TokenConfigStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := tokenmeta.TokenConfigStats{
		TotalConfigured: int64(len(s.tokens)),
	}
	for _, cfg := range s.tokens {
		if cfg.ExplicitURI != "" {
			stats.ExplicitURIs++
		}
		if cfg.IsConfigured {
			stats.BasePathConfigs++
			if cfg.UseIDInPath {
				stats.IDInPath++
			}
		}
	}
	return stats, nil
}

// getOrCreate returns the live record for id, materializing it if needed.
// Callers must hold the write lock.
func (s *Store) getOrCreate(id tokenmeta.TokenID) *tokenmeta.TokenURIConfig {
	cfg, exists := s.tokens[id]
	if !exists {
		cfg = &tokenmeta.TokenURIConfig{}
		s.tokens[id] = cfg
	}
	return cfg
}
