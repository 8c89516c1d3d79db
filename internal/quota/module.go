// Package quota provides the quota bounded context module.
package quota

import (
	apphttp "beleads_backend/internal/http"
	"beleads_backend/internal/quota/handler"
	"beleads_backend/internal/quota/repository"
	"beleads_backend/internal/quota/service"
	"beleads_backend/platform/config"
	"beleads_backend/platform/logger"
)

// Module is the quota bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	ledger  *service.Ledger
}

// NewModule creates the quota module on top of the given store.
func NewModule(store repository.Store, plans service.Plans, cfg config.AcquisitionConfig, log *logger.Logger) *Module {
	ledger := service.New(store, plans, cfg.GetReservationTimeout(), log)
	return &Module{
		handler: handler.New(ledger),
		ledger:  ledger,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quota"
}

// Ledger exposes the QuotaLedger to the acquisition module.
func (m *Module) Ledger() *service.Ledger {
	return m.ledger
}

// RegisterRoutes mounts quota routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/quota", m.handler.Get)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
