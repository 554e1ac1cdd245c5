package domain

import "strings"

// Gate decision reasons.
const (
	ReasonAlreadyNotified = "already_notified"
	ReasonWebQualified    = "web_flow_completed"
	ReasonWhatsAppLead    = "whatsapp_qualified"
	ReasonNotQualified    = "not_qualified_yet"
)

// Missing-criteria diagnostic labels. Reported for observability only; they
// never drive control flow.
const (
	missingName         = "nome_completo"
	missingPhone        = "telefone"
	missingArea         = "area_juridica"
	missingDetails      = "detalhes_caso"
	missingConfirmation = "confirmacao"
	missingFlow         = "fluxo_incompleto"
	missingEngagement   = "engajamento_insuficiente"
)

const (
	webScoreThreshold      = 0.8
	whatsappScoreThreshold = 0.7
	minEngagementMessages  = 3
)

// Decision is the outcome of a notification gate evaluation.
type Decision struct {
	ShouldNotify    bool     `json:"should_notify"`
	Reason          string   `json:"reason"`
	Score           float64  `json:"qualification_score"`
	MissingCriteria []string `json:"missing_criteria,omitempty"`
}

// EvaluateNotification decides whether lawyer notification should fire for
// the session. The already-notified short-circuit runs before anything else;
// it is the idempotency guard that keeps the dispatcher at one invocation
// per session lifetime.
func EvaluateNotification(s *Session) Decision {
	if s.LawyersNotified {
		return Decision{ShouldNotify: false, Reason: ReasonAlreadyNotified}
	}

	score := Score(s.LeadData, s.Platform)

	switch s.Platform {
	case PlatformWeb:
		if webCriteriaMet(s) && score >= webScoreThreshold {
			return Decision{ShouldNotify: true, Reason: ReasonWebQualified, Score: score}
		}
	case PlatformWhatsApp:
		if whatsappCriteriaMet(s) && score >= whatsappScoreThreshold {
			return Decision{ShouldNotify: true, Reason: ReasonWhatsAppLead, Score: score}
		}
	}

	return Decision{
		ShouldNotify:    false,
		Reason:          ReasonNotQualified,
		Score:           score,
		MissingCriteria: missingCriteria(s),
	}
}

func webCriteriaMet(s *Session) bool {
	lead := s.LeadData
	return s.FlowCompleted &&
		lead.Identification != "" &&
		lead.AreaQualification != "" &&
		lead.CaseDetails != "" &&
		lead.Phone != "" &&
		lead.Confirmation != "" &&
		len(strings.TrimSpace(lead.Identification)) >= 3 &&
		len(strings.TrimSpace(lead.CaseDetails)) >= 15 &&
		len(strings.TrimSpace(lead.Phone)) >= 10
}

func whatsappCriteriaMet(s *Session) bool {
	lead := s.LeadData
	engaged := s.MessageCount >= minEngagementMessages &&
		lead.Identification != "" &&
		lead.AreaQualification != "" &&
		lead.Phone != "" &&
		len(strings.TrimSpace(lead.Identification)) >= 3 &&
		len(strings.TrimSpace(lead.AreaQualification)) >= 3 &&
		len(strings.TrimSpace(lead.Phone)) >= 10

	advanced := s.CurrentStep == StepConfirmation || s.CurrentStep == StepCompleted

	return engaged && advanced
}

func missingCriteria(s *Session) []string {
	var missing []string
	lead := s.LeadData

	if lead.Identification == "" {
		missing = append(missing, missingName)
	}
	if lead.Phone == "" {
		missing = append(missing, missingPhone)
	}
	if lead.AreaQualification == "" {
		missing = append(missing, missingArea)
	}

	switch s.Platform {
	case PlatformWeb:
		if lead.CaseDetails == "" {
			missing = append(missing, missingDetails)
		}
		if lead.Confirmation == "" {
			missing = append(missing, missingConfirmation)
		}
		if !s.FlowCompleted {
			missing = append(missing, missingFlow)
		}
	case PlatformWhatsApp:
		if s.MessageCount < minEngagementMessages {
			missing = append(missing, missingEngagement)
		}
	}

	return missing
}
