// Package service implements the conversation orchestrator: the scripted
// intake flow, lead finalization, and the channel entry points consumed by
// the HTTP layer.
package service

import (
	"context"
	"time"

	"intake_backend/internal/conversation/domain"
	"intake_backend/internal/conversation/repository"
	"intake_backend/internal/conversation/transport"
	"intake_backend/internal/events"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"
)

const noSessionMessage = "⚠️ Para continuar, você precisa gerar sua ficha na nossa landing page."

// Service drives the intake conversation. One logical operation per inbound
// message: load session, mutate in memory, persist. A per-session mutex
// serializes the whole cycle so rapid double-sends cannot race the
// read-modify-write or fire duplicate notifications.
type Service struct {
	log       *logger.Logger
	cfg       config.ConversationConfig
	sessions  repository.SessionStore
	leads     LeadWriter
	notifier  Notifier
	messenger Messenger
	scheduler FollowUpScheduler
	fallback  FallbackResponder
	bus       events.Bus

	locks *keyedMutex
	now   func() time.Time
}

// New wires the orchestrator. scheduler and fallback may be nil; the
// corresponding features are then skipped.
func New(
	log *logger.Logger,
	cfg config.ConversationConfig,
	sessions repository.SessionStore,
	leads LeadWriter,
	notifier Notifier,
	messenger Messenger,
	scheduler FollowUpScheduler,
	fallback FallbackResponder,
	bus events.Bus,
) *Service {
	return &Service{
		log:       log,
		cfg:       cfg,
		sessions:  sessions,
		leads:     leads,
		notifier:  notifier,
		messenger: messenger,
		scheduler: scheduler,
		fallback:  fallback,
		bus:       bus,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessMessage handles one inbound message for a session. It never
// returns an error: every failure path degrades into a structured result
// with a safe user-facing response.
func (s *Service) ProcessMessage(ctx context.Context, message, sessionID, phoneNumber string, platform domain.Platform) (result transport.ProcessMessageResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic while processing message",
				"session_id", sessionID,
				"panic", r)
			result = transport.ProcessMessageResult{
				ResponseType: "orchestration_error",
				Platform:     string(platform),
				SessionID:    sessionID,
				Response:     domain.Greeting(s.cfg.GetFirmName(), s.now()),
			}
		}
	}()

	if sessionID == "" {
		return transport.ProcessMessageResult{
			ResponseType: "no_session",
			Platform:     string(platform),
			Response:     noSessionMessage,
		}
	}

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session := s.getOrCreateSession(ctx, sessionID, platform, phoneNumber)

	if platform == domain.PlatformWhatsApp {
		if !session.WhatsAppAuthorized && session.LeadData.IsEmpty() {
			s.log.Warn("unauthorized whatsapp sender", "session_id", sessionID)
			return transport.ProcessMessageResult{
				ResponseType: "whatsapp_unauthorized",
				Platform:     string(platform),
				SessionID:    sessionID,
				Response:     domain.UnauthorizedMessage(s.cfg.GetFirmName(), s.cfg.GetLandingPageURL()),
			}
		}

		// A session carrying lead data came from the landing page even if
		// the explicit authorization event never arrived.
		if !session.WhatsAppAuthorized {
			session.WhatsAppAuthorized = true
			s.save(ctx, session)
		}

		if phoneNumber != "" {
			session.PhoneNumber = phoneNumber
			session.LeadData.Phone = phoneNumber
		}
	}

	response := s.advance(ctx, session, message)

	session.MessageCount++
	s.save(ctx, session)

	if response == "" {
		s.log.Warn("empty flow response corrected", "session_id", sessionID)
		response = "Como posso ajudá-lo hoje?"
	}

	return transport.ProcessMessageResult{
		ResponseType:       string(platform) + "_flow",
		Platform:           string(platform),
		SessionID:          sessionID,
		Response:           response,
		CurrentStep:        string(session.CurrentStep),
		FlowCompleted:      session.FlowCompleted,
		LawyersNotified:    session.LawyersNotified,
		PhoneSubmitted:     session.PhoneSubmitted,
		LeadData:           session.LeadData,
		MessageCount:       session.MessageCount,
		WhatsAppAuthorized: session.WhatsAppAuthorized,
		SessionEnded:       session.SessionEnded,
		QualificationScore: domain.Score(session.LeadData, platform),
	}
}

// getOrCreateSession loads the session, resetting terminal ones so a
// returning visitor starts a fresh flow, and creating a new session when
// none exists.
func (s *Service) getOrCreateSession(ctx context.Context, sessionID string, platform domain.Platform, phoneNumber string) *domain.Session {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.log.CollaboratorError("session_store", "get", err)
	}

	switch {
	case session == nil:
		session = domain.NewSession(sessionID, platform, s.now())
		s.save(ctx, session)
		s.log.Info("session created", "session_id", sessionID, "platform", string(platform))
	case session.SessionEnded || session.FlowCompleted:
		session = session.Reset(s.now())
		s.save(ctx, session)
		s.log.Info("terminal session reset",
			"session_id", sessionID,
			"reset_count", session.ResetCount)
	}

	if phoneNumber != "" {
		session.PhoneNumber = phoneNumber
	}
	return session
}

// NotifyIfQualified is the opportunistic mid-flow notification path: it
// consults the gate and dispatches only when the session already meets the
// platform's qualification criteria. Shares the single-fire flag with
// finalization.
func (s *Service) NotifyIfQualified(ctx context.Context, session *domain.Session) bool {
	decision := domain.EvaluateNotification(session)
	if !decision.ShouldNotify {
		s.log.NotificationEvent(session.SessionID, false, decision.Reason)
		return decision.Reason == domain.ReasonAlreadyNotified
	}

	userName := session.LeadData.Identification
	if userName == "" {
		userName = "Lead Qualificado"
	}
	area := session.LeadData.AreaQualification
	if area == "" {
		area = "não especificada"
	}

	return s.notifyOnce(ctx, session, userName, session.LeadData.Phone, area,
		string(session.Platform)+"_qualified_lead")
}

// HandleWhatsAppAuthorization processes a landing-page authorization event.
// When the event carries collected lead data, it synthesizes a session
// already at completed and runs the notification gate immediately; otherwise
// it flags the session (existing or new) as authorized.
func (s *Service) HandleWhatsAppAuthorization(ctx context.Context, req transport.AuthorizationRequest) transport.AuthorizationResult {
	s.locks.Lock(req.SessionID)
	defer s.locks.Unlock(req.SessionID)

	prePopulated := req.UserData != nil && req.Source == "landing_chat"

	if prePopulated {
		now := s.now()
		session := domain.NewSession(req.SessionID, domain.PlatformWhatsApp, now)
		session.FirstInteraction = false
		session.CurrentStep = domain.StepCompleted
		session.PhoneNumber = req.PhoneNumber
		session.MessageCount = 1
		session.FlowCompleted = true
		session.PhoneSubmitted = true
		session.LeadQualified = true
		session.WhatsAppAuthorized = true
		session.AuthorizationSource = req.Source
		session.LeadData = domain.LeadData{
			Identification:    req.UserData.Name,
			AreaQualification: orDefault(req.UserData.Area, "não especificada"),
			CaseDetails:       orDefault(req.UserData.Problem, "Detalhes do chat da landing"),
			Phone:             req.PhoneNumber,
			Confirmation:      "sim",
		}
		s.save(ctx, session)

		s.NotifyIfQualified(ctx, session)
		s.log.Info("pre-populated session created from landing lead",
			"session_id", req.SessionID)
	} else {
		session, err := s.sessions.Get(ctx, req.SessionID)
		if err != nil {
			s.log.CollaboratorError("session_store", "get", err)
		}
		if session == nil {
			session = domain.NewSession(req.SessionID, domain.PlatformWhatsApp, s.now())
			session.PhoneNumber = req.PhoneNumber
		}
		session.WhatsAppAuthorized = true
		session.AuthorizationSource = req.Source
		s.save(ctx, session)
		s.log.Info("session authorized", "session_id", req.SessionID, "source", req.Source)
	}

	return transport.AuthorizationResult{
		Status:             "authorization_processed",
		SessionID:          req.SessionID,
		PhoneNumber:        req.PhoneNumber,
		Source:             req.Source,
		WhatsAppAuthorized: true,
		PrePopulated:       prePopulated,
	}
}

// EndSession marks a conversation ended. Subsequent messages to the same
// identifier will reset into a fresh flow.
func (s *Service) EndSession(ctx context.Context, sessionID string) transport.EndSessionResult {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.log.CollaboratorError("session_store", "get", err)
	}
	if session == nil {
		return transport.EndSessionResult{Status: "not_found", SessionID: sessionID}
	}

	session.End(s.now())
	s.save(ctx, session)

	s.bus.Publish(ctx, events.SessionEnded{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sessionID,
		Platform:  string(session.Platform),
	})

	return transport.EndSessionResult{
		Status:       "session_ended",
		SessionID:    sessionID,
		SessionEnded: true,
	}
}

// GetSessionContext returns a read-only snapshot of a stored session.
func (s *Service) GetSessionContext(ctx context.Context, sessionID string) transport.SessionContext {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.log.CollaboratorError("session_store", "get", err)
	}
	if session == nil {
		return transport.SessionContext{Exists: false}
	}

	return transport.SessionContext{
		Exists:             true,
		SessionID:          session.SessionID,
		Platform:           string(session.Platform),
		CurrentStep:        string(session.CurrentStep),
		LeadData:           session.LeadData,
		MessageCount:       session.MessageCount,
		FlowCompleted:      session.FlowCompleted,
		LawyersNotified:    session.LawyersNotified,
		WhatsAppAuthorized: session.WhatsAppAuthorized,
		SessionEnded:       session.SessionEnded,
		QualificationScore: domain.Score(session.LeadData, session.Platform),
		CreatedAt:          session.CreatedAt,
		LastUpdated:        session.LastUpdated,
	}
}

// Respond proxies free chat outside the scripted flow to the generative
// fallback when one is configured.
func (s *Service) Respond(ctx context.Context, text, sessionID string) (string, error) {
	if s.fallback == nil {
		return "", nil
	}
	return s.fallback.Respond(ctx, text, sessionID)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
