// Package catalog provides the catalog bounded context module.
package catalog

import (
	"beleads_backend/internal/catalog/handler"
	"beleads_backend/internal/catalog/service"
	apphttp "beleads_backend/internal/http"
	"beleads_backend/platform/validator"
)

// RegionTag is the validator tag that accepts known region codes.
const RegionTag = "region"

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the catalog module and registers the region validator tag.
func NewModule(svc *service.Service, val *validator.Validator) (*Module, error) {
	if err := val.RegisterValidation(RegionTag, svc.HasRegion); err != nil {
		return nil, err
	}
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/catalog/regions", m.handler.ListRegions)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
