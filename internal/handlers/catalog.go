package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/theflipapp/intake/internal/catalog"
)

// CatalogHandler exposes the asset catalog and its cache invalidation hook.
type CatalogHandler struct {
	cache  *catalog.Cache
	logger *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(log *slog.Logger, cache *catalog.Cache) *CatalogHandler {
	return &CatalogHandler{
		cache:  cache,
		logger: log.With(slog.String("handler", "catalog")),
	}
}

// Register registers catalog routes.
func (h *CatalogHandler) Register(e *echo.Echo) {
	e.GET("/api/assets", h.ListAssets)
	e.POST("/api/assets/invalidate", h.Invalidate)
}

// ListAssets returns the known assets.
func (h *CatalogHandler) ListAssets(c echo.Context) error {
	assets, err := h.cache.Assets(c.Request().Context())
	if err != nil {
		h.logger.Error("list assets failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}
	return c.JSON(http.StatusOK, assets)
}

// Invalidate drops the cached asset list. Called by the external system when
// the catalog changes.
func (h *CatalogHandler) Invalidate(c echo.Context) error {
	h.cache.Invalidate()
	return c.JSON(http.StatusOK, map[string]string{"status": "invalidated"})
}
