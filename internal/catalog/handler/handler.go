package handler

import (
	"beleads_backend/internal/catalog/service"
	"beleads_backend/internal/catalog/transport"
	"beleads_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	svc *service.Service
}

// New creates a new catalog handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListRegions returns the region codes and their fan-out cities.
// GET /api/v1/catalog/regions
func (h *Handler) ListRegions(c *gin.Context) {
	regions := h.svc.Regions()
	items := make([]transport.RegionResponse, 0, len(regions))
	for _, r := range regions {
		items = append(items, transport.RegionResponse{Code: r.Code, Name: r.Name, Cities: r.Cities})
	}
	httpkit.OK(c, transport.ListRegionsResponse{Items: items})
}
