// Package catalog provides access to the set of known assets and their
// display names. The rest of the system reads assets through a process-wide
// cache that is invalidated externally when the catalog changes.
package catalog

import "context"

// Asset is a lightweight handle to a known physical asset.
type Asset struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
}

// Store lists the assets known to the catalog.
type Store interface {
	ListAssets(ctx context.Context) ([]Asset, error)
}

// StaticStore is an in-memory Store with a fixed asset list. Used by the
// offline evaluation command and in tests.
type StaticStore struct {
	assets []Asset
}

// NewStaticStore creates a StaticStore over the given assets.
func NewStaticStore(assets []Asset) *StaticStore {
	return &StaticStore{assets: assets}
}

// ListAssets returns a copy of the configured asset list.
func (s *StaticStore) ListAssets(_ context.Context) ([]Asset, error) {
	out := make([]Asset, len(s.assets))
	copy(out, s.assets)
	return out, nil
}
