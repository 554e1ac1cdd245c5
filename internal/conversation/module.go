// Package conversation provides the lead-intake conversation bounded
// context: the scripted flow, session storage, and its HTTP endpoints.
package conversation

import (
	"intake_backend/internal/conversation/handler"
	"intake_backend/internal/conversation/repository"
	"intake_backend/internal/conversation/service"
	"intake_backend/internal/events"
	apphttp "intake_backend/internal/http"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"
	"intake_backend/platform/validator"
)

// Gateway is the outbound WhatsApp client the module depends on. It serves
// both the flow (strategic follow-up messages) and the webhook handler
// (replies, instance status).
type Gateway interface {
	service.Messenger
	handler.Gateway
}

// Module is the conversation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the conversation flow with its collaborators. scheduler
// and fallback may be nil.
func NewModule(
	log *logger.Logger,
	cfg config.ConversationConfig,
	sessions repository.SessionStore,
	leads service.LeadWriter,
	notifier service.Notifier,
	gateway Gateway,
	scheduler service.FollowUpScheduler,
	fallback service.FallbackResponder,
	bus events.Bus,
	val *validator.Validator,
) *Module {
	svc := service.New(log, cfg, sessions, leads, notifier, gateway, scheduler, fallback, bus)
	h := handler.New(svc, gateway, val, log)
	return &Module{handler: h, service: svc}
}

// Compile-time check that Module implements the http.Module interface.
var _ apphttp.Module = (*Module)(nil)

// Name returns the module identifier.
func (m *Module) Name() string { return "conversation" }

// RegisterRoutes mounts the conversation endpoints under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1)
}

// Service exposes the orchestrator for other modules and the scheduler
// worker.
func (m *Module) Service() *service.Service { return m.service }
