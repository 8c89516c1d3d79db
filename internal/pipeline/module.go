// Package pipeline provides the CRM pipeline bounded context module.
package pipeline

import (
	"context"
	"fmt"

	"beleads_backend/internal/events"
	apphttp "beleads_backend/internal/http"
	"beleads_backend/internal/pipeline/handler"
	"beleads_backend/internal/pipeline/repository"
	"beleads_backend/internal/pipeline/service"
	"beleads_backend/platform/config"
	"beleads_backend/platform/logger"
	"beleads_backend/platform/validator"
)

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the pipeline module. queue may be nil.
func NewModule(store repository.Store, queue service.Queue, bus events.Bus, cfg config.PipelineConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(store, queue, bus, cfg.GetRecycleCooldown(), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Service returns the pipeline service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterHandlers subscribes the module to acquisition events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadsAcquired{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadsAcquired)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		return m.service.HandleLeadsAcquired(ctx, e)
	}))
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/pipeline/leads")
	leads.GET("", m.handler.List)
	leads.POST("", m.handler.Add)
	leads.GET("/:id", m.handler.Get)
	leads.PATCH("/:id", m.handler.Update)
	leads.DELETE("/:id", m.handler.Delete)
	leads.PUT("/:id/status", m.handler.ChangeStatus)

	ctx.Protected.GET("/pipeline/goal", m.handler.GetGoal)
	ctx.Protected.PUT("/pipeline/goal", m.handler.SetGoal)
	ctx.Protected.GET("/pipeline/revenue", m.handler.Revenue)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
