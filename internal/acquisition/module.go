// Package acquisition provides the lead acquisition bounded context module.
package acquisition

import (
	"beleads_backend/internal/acquisition/directory"
	"beleads_backend/internal/acquisition/handler"
	"beleads_backend/internal/acquisition/ports"
	"beleads_backend/internal/acquisition/repository"
	"beleads_backend/internal/acquisition/service"
	"beleads_backend/internal/events"
	apphttp "beleads_backend/internal/http"
	"beleads_backend/platform/config"
	"beleads_backend/platform/lock"
	"beleads_backend/platform/logger"
	"beleads_backend/platform/validator"
)

// Dependencies are the collaborators provided by the composition root.
type Dependencies struct {
	Ledger   ports.QuotaLedger
	Source   directory.Source
	History  repository.HistoryRepository
	Pipeline ports.PipelineReader
	Regions  ports.RegionCatalog
	Locker   lock.Locker
	Bus      events.Bus
}

// Module is the acquisition bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the acquisition module.
func NewModule(deps Dependencies, cfg config.AcquisitionConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(service.Deps{
		Ledger:   deps.Ledger,
		Source:   deps.Source,
		History:  deps.History,
		Pipeline: deps.Pipeline,
		Regions:  deps.Regions,
		Locker:   deps.Locker,
		Bus:      deps.Bus,
		Log:      log,
	}, service.Settings{
		PageSize:  cfg.GetDirectoryPageSize(),
		PageCap:   cfg.GetDirectoryPageCap(),
		PageDelay: cfg.GetDirectoryPageDelay(),
		MaxTarget: cfg.GetMaxTargetCount(),
		Timeout:   cfg.GetAcquisitionTimeout(),
	})

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "acquisition"
}

// Service returns the orchestrator for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts acquisition routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/acquisitions")
	group.POST("", m.handler.Acquire)
	group.GET("/today", m.handler.Today)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
