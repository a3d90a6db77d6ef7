package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgx query behavior the store needs. Satisfied by
// *pgxpool.Pool and faked in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGStore reads the asset catalog from Postgres.
type PGStore struct {
	db Querier
}

// NewPGStore creates a PGStore over the given connection.
func NewPGStore(db Querier) *PGStore {
	return &PGStore{db: db}
}

// ListAssets returns all assets ordered by display name.
func (s *PGStore) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := s.db.Query(ctx,
		`SELECT slug, display_name FROM assets ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.Slug, &a.DisplayName); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}
