package service

import (
	"context"
	"strconv"

	"intake_backend/internal/conversation/domain"
	"intake_backend/internal/events"
	"intake_backend/platform/phone"

	"github.com/google/uuid"
)

// finalize runs once when the flow reaches completed. Each side effect is
// isolated: a failing collaborator is logged and degrades a status flag,
// never the remaining steps or the user-facing reply.
func (s *Service) finalize(ctx context.Context, session *domain.Session) string {
	lead := session.LeadData
	firstName := lead.FirstName()
	userName := lead.Identification
	if userName == "" {
		userName = "Cliente"
	}
	area := lead.AreaQualification
	if area == "" {
		area = "não especificada"
	}

	phoneClean := phone.Digits(lead.Phone)
	if phoneClean == "" {
		phoneClean = phone.Digits(session.PhoneNumber)
	}
	if len(phoneClean) < 10 {
		// Recoverable: ask again without marking anything complete.
		return domain.PhoneReprompt(firstName)
	}

	phoneFormatted := phone.NormalizeBR(phoneClean)

	session.PhoneNumber = phoneClean
	session.PhoneFormatted = phoneFormatted
	session.PhoneSubmitted = true
	session.LeadQualified = true
	session.LeadData.Phone = phoneClean
	s.save(ctx, session)

	notified := s.notifyOnce(ctx, session, userName, phoneClean, area, string(session.Platform)+"_completed_flow")

	leadID := s.appendLead(ctx, session, phoneClean, phoneFormatted, notified)

	whatsappSent := false
	if session.Platform == domain.PlatformWeb {
		text := domain.StrategicWhatsAppMessage(userName, area)
		if err := s.messenger.SendText(ctx, phoneFormatted, text); err != nil {
			s.log.CollaboratorError("messenger", "send_strategic_message", err)
		} else {
			whatsappSent = true
		}
	}

	if notified && leadID != uuid.Nil && s.scheduler != nil {
		if err := s.scheduler.ScheduleFollowUp(ctx, leadID, session.SessionID); err != nil {
			s.log.CollaboratorError("scheduler", "schedule_follow_up", err)
		}
	}

	return domain.FinalMessage(firstName, notified, whatsappSent)
}

// notifyOnce dispatches the lawyer alert unless the session already fired
// one. The lawyers_notified flag is the only duplicate-prevention
// mechanism, so it is persisted immediately after a successful send.
func (s *Service) notifyOnce(ctx context.Context, session *domain.Session, userName, phoneClean, area, leadSource string) bool {
	if session.LawyersNotified {
		return true
	}

	lead := session.LeadData
	details := lead.CaseDetails
	if details == "" {
		details = "aguardando mais detalhes"
	}
	contactTime := lead.PreferredContactTime
	if contactTime == "" {
		contactTime = "não informado"
	}
	urgency := "normal"
	if session.Platform == domain.PlatformWhatsApp {
		urgency = "high"
	}

	ok, err := s.notifier.Notify(ctx, Notification{
		LeadName:  userName,
		LeadPhone: phoneClean,
		Category:  area,
		Details: map[string]string{
			"case_details":           details,
			"urgency":                urgency,
			"platform":               string(session.Platform),
			"session_id":             session.SessionID,
			"engagement_level":       strconv.Itoa(session.MessageCount),
			"current_step":           string(session.CurrentStep),
			"lead_source":            leadSource,
			"preferred_contact_time": contactTime,
		},
	})
	if err != nil {
		s.log.CollaboratorError("notifier", "notify", err)
		s.log.NotificationEvent(session.SessionID, false, "dispatch_error")
		return false
	}
	if !ok {
		s.log.NotificationEvent(session.SessionID, false, "dispatch_rejected")
		return false
	}

	session.MarkNotified(s.now())
	s.save(ctx, session)
	s.log.NotificationEvent(session.SessionID, true, "completed_flow")

	s.bus.Publish(ctx, events.LawyersNotified{
		BaseEvent: events.NewBaseEvent(),
		SessionID: session.SessionID,
		Name:      userName,
		Phone:     phoneClean,
		Category:  area,
	})

	return true
}

// appendLead writes the finalized lead as a standalone record, independent
// of the session document. Returns uuid.Nil when the write fails.
func (s *Service) appendLead(ctx context.Context, session *domain.Session, phoneClean, phoneFormatted string, notified bool) uuid.UUID {
	lead := session.LeadData
	score := domain.Score(lead, session.Platform)

	leadID, err := s.leads.Append(ctx, LeadRecord{
		SessionID:            session.SessionID,
		Platform:             string(session.Platform),
		Name:                 lead.Identification,
		Phone:                phoneClean,
		PhoneFormatted:       phoneFormatted,
		Area:                 lead.AreaQualification,
		CaseDetails:          lead.CaseDetails,
		PreferredContactTime: lead.PreferredContactTime,
		Confirmation:         lead.Confirmation,
		Score:                score,
		Notified:             notified,
	})
	if err != nil {
		s.log.CollaboratorError("lead_store", "append", err)
		return uuid.Nil
	}

	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		SessionID: session.SessionID,
		Platform:  string(session.Platform),
		Name:      lead.Identification,
		Phone:     phoneClean,
		Area:      lead.AreaQualification,
		Score:     score,
	})

	return leadID
}
