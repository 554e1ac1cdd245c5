package service

import (
	"context"
	"strings"

	"intake_backend/internal/conversation/domain"
	"intake_backend/platform/phone"
)

// advance runs one transition of the conversation state machine and returns
// the outgoing message. It mutates the session in memory; the caller owns
// the final persist, but intermediate saves happen at each committed
// transition so a crash mid-turn never replays a side effect.
func (s *Service) advance(ctx context.Context, session *domain.Session, message string) string {
	if session.SessionEnded {
		return domain.ClosedMessage(session.LeadData)
	}

	steps := domain.Steps(session.Platform)

	if session.FirstInteraction {
		session.FirstInteraction = false
		session.CurrentStep = domain.StepName
		s.save(ctx, session)
		s.log.FlowStep(session.SessionID, string(session.Platform), string(domain.StepGreeting), string(domain.StepName))

		greeting := domain.Greeting(s.cfg.GetFirmName(), s.now())
		return greeting + "\n\n" + steps[domain.StepName].Question
	}

	if session.CurrentStep == domain.StepGreeting {
		session.CurrentStep = domain.StepName
		s.save(ctx, session)
		return steps[domain.StepName].Question
	}

	if session.CurrentStep == domain.StepCompleted {
		return domain.CompletedAcknowledgement(session.LeadData)
	}

	if session.CurrentStep == domain.StepPhone {
		return s.advancePhoneCollection(ctx, session, message, steps)
	}

	if cfg, ok := steps[session.CurrentStep]; ok {
		valid, errMsg := domain.Validate(message, session.CurrentStep, session.Platform)
		if !valid {
			return errMsg
		}

		if cfg.Field != domain.FieldNone {
			session.LeadData.Set(cfg.Field, strings.TrimSpace(message))
		}

		if cfg.Next == domain.StepCompleted {
			from := session.CurrentStep
			session.CurrentStep = domain.StepCompleted
			session.FlowCompleted = true
			s.save(ctx, session)
			s.log.FlowStep(session.SessionID, string(session.Platform), string(from), string(domain.StepCompleted))
			return s.finalize(ctx, session)
		}

		from := session.CurrentStep
		session.CurrentStep = cfg.Next
		s.save(ctx, session)
		s.log.FlowStep(session.SessionID, string(session.Platform), string(from), string(cfg.Next))
		return domain.Interpolate(steps[cfg.Next].Question, session.LeadData)
	}

	// Unrecognized step value. Self-heal by restarting the flow.
	s.log.Warn("unknown conversation step, resetting to greeting",
		"session_id", session.SessionID,
		"current_step", string(session.CurrentStep))
	session.CurrentStep = domain.StepGreeting
	session.FirstInteraction = true
	s.save(ctx, session)
	return domain.Greeting(s.cfg.GetFirmName(), s.now())
}

// advancePhoneCollection handles the channel divergence at phone_collection:
// WhatsApp already knows the sender's number and collects a preferred
// contact window instead, while the web widget collects the number itself.
func (s *Service) advancePhoneCollection(ctx context.Context, session *domain.Session, message string, steps map[domain.Step]domain.StepConfig) string {
	valid, errMsg := domain.Validate(message, domain.StepPhone, session.Platform)
	if !valid {
		return errMsg
	}

	if session.Platform == domain.PlatformWhatsApp {
		session.LeadData.PreferredContactTime = strings.TrimSpace(message)
		if session.PhoneNumber != "" {
			session.LeadData.Phone = session.PhoneNumber
		} else {
			s.log.Warn("whatsapp session has no phone number at collection step",
				"session_id", session.SessionID)
		}
	} else {
		session.LeadData.Phone = phone.Digits(message)
	}

	session.PhoneSubmitted = true
	session.CurrentStep = domain.StepConfirmation
	s.save(ctx, session)
	s.log.FlowStep(session.SessionID, string(session.Platform), string(domain.StepPhone), string(domain.StepConfirmation))

	return domain.Interpolate(steps[domain.StepConfirmation].Question, session.LeadData)
}

// save persists the session, logging failures without interrupting the
// conversation. The caller's final persist will retry; last write wins.
func (s *Service) save(ctx context.Context, session *domain.Session) {
	session.Touch(s.now())
	if err := s.sessions.Put(ctx, session); err != nil {
		s.log.CollaboratorError("session_store", "put", err)
	}
}
