// Package leads provides the lead storage and assignment bounded context.
package leads

import (
	"context"

	"intake_backend/internal/events"
	apphttp "intake_backend/internal/http"
	"intake_backend/internal/leads/handler"
	"intake_backend/internal/leads/repository"
	"intake_backend/internal/leads/service"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule wires lead storage, the assignment flow, and the event
// subscription that sends assignment links when a lead qualifies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, messenger service.Messenger, cfg config.NotifierConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, messenger, cfg.GetLawyerRoster(), cfg.GetAPIBaseURL(), log)

	eventBus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadQualified)
		if !ok {
			return nil
		}
		svc.SendAssignmentLinks(ctx, e.LeadID)
		return nil
	}))

	return &Module{
		handler: handler.New(svc),
		service: svc,
		repo:    repo,
	}
}

// Compile-time check that Module implements the http.Module interface.
var _ apphttp.Module = (*Module)(nil)

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the leads endpoints under /api/v1/leads.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Service exposes lead operations for the conversation module and the
// follow-up worker.
func (m *Module) Service() *service.Service { return m.service }

// Repository exposes the raw store for health checks.
func (m *Module) Repository() *repository.Repository { return m.repo }
