package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingStore counts loads and can be set to fail.
type countingStore struct {
	mu     sync.Mutex
	loads  int
	assets []Asset
	err    error
}

func (s *countingStore) ListAssets(context.Context) ([]Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.assets, nil
}

func (s *countingStore) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func TestCache_ReadThrough(t *testing.T) {
	t.Parallel()
	store := &countingStore{assets: []Asset{{Slug: "godzilla-premium", DisplayName: "Godzilla (Premium)"}}}
	cache := NewCache(nil, store)
	ctx := context.Background()

	assets, err := cache.Assets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)

	_, err = cache.Assets(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, store.loadCount(), "second read must be served from cache")
}

func TestCache_InvalidateForcesReload(t *testing.T) {
	t.Parallel()
	store := &countingStore{assets: []Asset{{Slug: "a", DisplayName: "A"}}}
	cache := NewCache(nil, store)
	ctx := context.Background()

	_, err := cache.Assets(ctx)
	require.NoError(t, err)

	store.mu.Lock()
	store.assets = []Asset{{Slug: "a", DisplayName: "A"}, {Slug: "b", DisplayName: "B"}}
	store.mu.Unlock()

	cache.Invalidate()
	assets, err := cache.Assets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, 2, store.loadCount())
}

func TestCache_StoreFailureLeavesCacheUnloaded(t *testing.T) {
	t.Parallel()
	store := &countingStore{err: errors.New("db down")}
	cache := NewCache(nil, store)
	ctx := context.Background()

	_, err := cache.Assets(ctx)
	require.Error(t, err)

	store.mu.Lock()
	store.err = nil
	store.assets = []Asset{{Slug: "a", DisplayName: "A"}}
	store.mu.Unlock()

	assets, err := cache.Assets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)
}

func TestCache_BySlug(t *testing.T) {
	t.Parallel()
	store := &countingStore{assets: []Asset{
		{Slug: "godzilla-premium", DisplayName: "Godzilla (Premium)"},
		{Slug: "medieval-madness", DisplayName: "Medieval Madness"},
	}}
	cache := NewCache(nil, store)
	ctx := context.Background()

	a, found, err := cache.BySlug(ctx, "medieval-madness")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Medieval Madness", a.DisplayName)

	_, found, err = cache.BySlug(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestCache_ConcurrentReads(t *testing.T) {
	t.Parallel()
	store := &countingStore{assets: []Asset{{Slug: "a", DisplayName: "A"}}}
	cache := NewCache(nil, store)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Assets(context.Background())
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, store.loadCount())
}
