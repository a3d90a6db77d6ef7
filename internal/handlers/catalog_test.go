package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/theflipapp/intake/internal/catalog"
)

// reloadStore counts loads so invalidation is observable.
type reloadStore struct {
	loads atomic.Int32
}

func (s *reloadStore) ListAssets(context.Context) ([]catalog.Asset, error) {
	s.loads.Add(1)
	return []catalog.Asset{{Slug: "godzilla-premium", DisplayName: "Godzilla (Premium)"}}, nil
}

func TestCatalogHandler_ListAndInvalidate(t *testing.T) {
	t.Parallel()
	store := &reloadStore{}
	cache := catalog.NewCache(slog.Default(), store)

	e := echo.New()
	NewCatalogHandler(slog.Default(), cache).Register(e)

	list := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := list()
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var assets []catalog.Asset
	if err := json.Unmarshal(rec.Body.Bytes(), &assets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(assets) != 1 || assets[0].Slug != "godzilla-premium" {
		t.Fatalf("assets = %+v", assets)
	}

	list()
	if got := store.loads.Load(); got != 1 {
		t.Fatalf("loads = %d, want cached single load", got)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/assets/invalidate", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate status = %d, want 200", rec.Code)
	}

	list()
	if got := store.loads.Load(); got != 2 {
		t.Fatalf("loads = %d, want reload after invalidate", got)
	}
}
