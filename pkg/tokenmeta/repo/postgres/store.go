package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements tokenmeta.ConfigStore using PostgreSQL.
//
// Token identifiers are stored as NUMERIC(20,0) so the full uint64 range
// survives the round trip; parameters cross the wire as decimal strings with
// explicit casts. The collection default base URI is fixed at construction
// and never stored; only the mutable collection metadata URI lives in the
// database.
type Store struct {
	db             DBTX
	defaultBaseURI string
}

// New creates a new PostgreSQL configuration store
func New(db DBTX, defaultBaseURI string) *Store {
	return &Store{db: db, defaultBaseURI: defaultBaseURI}
}

// NewWithPool creates a new PostgreSQL configuration store with a connection pool
func NewWithPool(pool *pgxpool.Pool, defaultBaseURI string) *Store {
	return &Store{db: pool, defaultBaseURI: defaultBaseURI}
}

// Error handling helper
func (s *Store) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("token config already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "22003": // numeric_value_out_of_range
			return fmt.Errorf("token id out of range")
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Collection configuration

func (s *Store) GetCollectionConfig(ctx context.Context) (tokenmeta.CollectionConfig, error) {
	cfg := tokenmeta.CollectionConfig{DefaultBaseURI: s.defaultBaseURI}

	query := `SELECT metadata_uri FROM collection_config WHERE singleton`

	err := s.db.QueryRow(ctx, query).Scan(&cfg.MetadataURI)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row yet means no metadata URI has been set.
			return cfg, nil
		}
		return tokenmeta.CollectionConfig{}, s.handlePostgresError("get collection config", err)
	}

	return cfg, nil
}

func (s *Store) SetCollectionMetadataURI(ctx context.Context, uri string) error {
	query := `
		INSERT INTO collection_config (singleton, metadata_uri, updated_at)
		VALUES (TRUE, $1, now() AT TIME ZONE 'utc')
		ON CONFLICT (singleton) DO UPDATE SET
			metadata_uri = EXCLUDED.metadata_uri,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.Exec(ctx, query, uri)
	if err != nil {
		return s.handlePostgresError("set collection metadata uri", err)
	}

	return nil
}

// Token configuration

func (s *Store) GetTokenConfig(ctx context.Context, id tokenmeta.TokenID) (tokenmeta.TokenURIConfig, error) {
	query := `
		SELECT explicit_uri, base_uri, use_id_in_path, is_configured
		FROM token_uri_config WHERE token_id = $1::numeric`

	var cfg tokenmeta.TokenURIConfig
	err := s.db.QueryRow(ctx, query, id.String()).Scan(
		&cfg.ExplicitURI, &cfg.BaseURI, &cfg.UseIDInPath, &cfg.IsConfigured)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Absent tokens read as the zero configuration.
			return tokenmeta.TokenURIConfig{}, nil
		}
		return tokenmeta.TokenURIConfig{}, s.handlePostgresError("get token config", err)
	}

	return cfg, nil
}

func (s *Store) SetBasePath(ctx context.Context, id tokenmeta.TokenID, baseURI string, useIDInPath bool) error {
	query := `
		INSERT INTO token_uri_config (token_id, base_uri, use_id_in_path, is_configured)
		VALUES ($1::numeric, $2, $3, TRUE)
		ON CONFLICT (token_id) DO UPDATE SET
			base_uri = EXCLUDED.base_uri,
			use_id_in_path = EXCLUDED.use_id_in_path,
			is_configured = TRUE,
			updated_at = now() AT TIME ZONE 'utc'`

	_, err := s.db.Exec(ctx, query, id.String(), baseURI, useIDInPath)
	if err != nil {
		return s.handlePostgresError("set base path", err)
	}

	return nil
}

func (s *Store) SetExplicitURI(ctx context.Context, id tokenmeta.TokenID, uri string) error {
	if uri == "" {
		// Clearing drops pure-override rows and blanks the field on rows
		// that also carry a base path. A row matches at most one branch, so
		// a single statement keeps the mutation atomic.
		query := `
			WITH removed AS (
				DELETE FROM token_uri_config
				WHERE token_id = $1::numeric AND NOT is_configured
			)
			UPDATE token_uri_config SET
				explicit_uri = '',
				updated_at = now() AT TIME ZONE 'utc'
			WHERE token_id = $1::numeric AND is_configured`

		_, err := s.db.Exec(ctx, query, id.String())
		if err != nil {
			return s.handlePostgresError("clear explicit uri", err)
		}
		return nil
	}

	query := `
		INSERT INTO token_uri_config (token_id, explicit_uri)
		VALUES ($1::numeric, $2)
		ON CONFLICT (token_id) DO UPDATE SET
			explicit_uri = EXCLUDED.explicit_uri,
			updated_at = now() AT TIME ZONE 'utc'`

	_, err := s.db.Exec(ctx, query, id.String(), uri)
	if err != nil {
		return s.handlePostgresError("set explicit uri", err)
	}

	return nil
}

func (s *Store) SetExplicitURIBatch(ctx context.Context, ids []tokenmeta.TokenID, uris []string) error {
	if len(ids) == 0 {
		return nil
	}

	// ON CONFLICT cannot touch the same row twice within one statement, so
	// collapse repeated identifiers first; the last occurrence wins.
	seen := make(map[tokenmeta.TokenID]int, len(ids))
	idParams := make([]string, 0, len(ids))
	uriParams := make([]string, 0, len(uris))
	for i := range ids {
		if at, dup := seen[ids[i]]; dup {
			uriParams[at] = uris[i]
			continue
		}
		seen[ids[i]] = len(idParams)
		idParams = append(idParams, ids[i].String())
		uriParams = append(uriParams, uris[i])
	}

	query := `
		INSERT INTO token_uri_config (token_id, explicit_uri)
		SELECT t.token_id::numeric, t.uri
		FROM unnest($1::text[], $2::text[]) AS t(token_id, uri)
		ON CONFLICT (token_id) DO UPDATE SET
			explicit_uri = EXCLUDED.explicit_uri,
			updated_at = now() AT TIME ZONE 'utc'`

	_, err := s.db.Exec(ctx, query, idParams, uriParams)
	if err != nil {
		return s.handlePostgresError("set explicit uri batch", err)
	}

	return nil
}

// Administrative queries

func (s *Store) ListTokenConfigs(ctx context.Context, params tokenmeta.ListTokenConfigsParams) ([]tokenmeta.TokenConfigEntry, error) {
	query := `
		SELECT token_id::text, explicit_uri, base_uri, use_id_in_path, is_configured
		FROM token_uri_config
		WHERE ($1::numeric IS NULL OR token_id > $1::numeric)
		ORDER BY token_id
		LIMIT $2`

	var after *string
	if params.AfterID != nil {
		v := params.AfterID.String()
		after = &v
	}

	rows, err := s.db.Query(ctx, query, after, params.Limit)
	if err != nil {
		return nil, s.handlePostgresError("list token configs", err)
	}
	defer rows.Close()

	var result []tokenmeta.TokenConfigEntry
	for rows.Next() {
		var entry tokenmeta.TokenConfigEntry
		var tokenID string
		err := rows.Scan(&tokenID, &entry.Config.ExplicitURI, &entry.Config.BaseURI,
			&entry.Config.UseIDInPath, &entry.Config.IsConfigured)
		if err != nil {
			return nil, s.handlePostgresError("list token configs", err)
		}

		v, err := strconv.ParseUint(tokenID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stored token id %q is not a uint64: %w", tokenID, err)
		}
		entry.TokenID = tokenmeta.TokenID(v)
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list token configs", err)
	}

	return result, nil
}

func (s *Store) CountTokenConfigs(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM token_uri_config`).Scan(&count)
	if err != nil {
		return 0, s.handlePostgresError("count token configs", err)
	}
	return count, nil
}

func (s *Store) TokenConfigStats(ctx context.Context) (tokenmeta.TokenConfigStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE explicit_uri <> ''),
		       COUNT(*) FILTER (WHERE is_configured),
		       COUNT(*) FILTER (WHERE is_configured AND use_id_in_path)
		FROM token_uri_config`

	var stats tokenmeta.TokenConfigStats
	err := s.db.QueryRow(ctx, query).Scan(
		&stats.TotalConfigured, &stats.ExplicitURIs, &stats.BasePathConfigs, &stats.IDInPath)
	if err != nil {
		return tokenmeta.TokenConfigStats{}, s.handlePostgresError("token config stats", err)
	}

	return stats, nil
}
