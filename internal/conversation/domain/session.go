package domain

import (
	"strings"
	"time"
)

// LeadData holds the answers collected over a conversation.
type LeadData struct {
	Identification       string `json:"identification,omitempty"`
	AreaQualification    string `json:"area_qualification,omitempty"`
	CaseDetails          string `json:"case_details,omitempty"`
	Phone                string `json:"phone,omitempty"`
	PreferredContactTime string `json:"preferred_contact_time,omitempty"`
	Confirmation         string `json:"confirmation,omitempty"`
}

// Get returns the value stored in the named field.
func (d LeadData) Get(f Field) string {
	switch f {
	case FieldIdentification:
		return d.Identification
	case FieldAreaQualification:
		return d.AreaQualification
	case FieldCaseDetails:
		return d.CaseDetails
	case FieldPhone:
		return d.Phone
	case FieldPreferredContactTime:
		return d.PreferredContactTime
	case FieldConfirmation:
		return d.Confirmation
	}
	return ""
}

// Set writes the value into the named field. FieldNone is a no-op.
func (d *LeadData) Set(f Field, value string) {
	switch f {
	case FieldIdentification:
		d.Identification = value
	case FieldAreaQualification:
		d.AreaQualification = value
	case FieldCaseDetails:
		d.CaseDetails = value
	case FieldPhone:
		d.Phone = value
	case FieldPreferredContactTime:
		d.PreferredContactTime = value
	case FieldConfirmation:
		d.Confirmation = value
	}
}

// IsEmpty reports whether no answer has been collected yet.
func (d LeadData) IsEmpty() bool {
	return d == LeadData{}
}

// FirstName returns the first whitespace-delimited token of the collected
// name, or "" when no name was given.
func (d LeadData) FirstName() string {
	fields := strings.Fields(d.Identification)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Session is the durable record of one conversation. One session exists per
// session identifier; identifiers are sender phone numbers for WhatsApp and
// caller-supplied tokens for the web widget.
type Session struct {
	SessionID string   `json:"session_id"`
	Platform  Platform `json:"platform"`

	CurrentStep Step     `json:"current_step"`
	LeadData    LeadData `json:"lead_data"`

	MessageCount  int  `json:"message_count"`
	FlowCompleted bool `json:"flow_completed"`
	LeadQualified bool `json:"lead_qualified"`

	PhoneNumber    string `json:"phone_number,omitempty"`
	PhoneFormatted string `json:"phone_formatted,omitempty"`
	PhoneSubmitted bool   `json:"phone_submitted"`

	LawyersNotified   bool       `json:"lawyers_notified"`
	LawyersNotifiedAt *time.Time `json:"lawyers_notified_at,omitempty"`

	WhatsAppAuthorized  bool   `json:"whatsapp_authorized"`
	AuthorizationSource string `json:"authorization_source,omitempty"`

	SessionEnded bool       `json:"session_ended"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`

	FirstInteraction bool `json:"first_interaction"`
	ResetCount       int  `json:"reset_count"`

	PreviousSessionEndedAt *time.Time `json:"previous_session_ended_at,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewSession creates a fresh session at the greeting step.
func NewSession(sessionID string, platform Platform, now time.Time) *Session {
	now = EnsureUTC(now)
	return &Session{
		SessionID:        sessionID,
		Platform:         platform,
		CurrentStep:      StepGreeting,
		FirstInteraction: true,
		CreatedAt:        now,
		LastUpdated:      now,
	}
}

// IsTerminal reports whether the session may no longer accept step
// transitions in place. A terminal session is replaced by a reset on the
// next inbound message, never revived.
func (s *Session) IsTerminal() bool {
	return s.SessionEnded || s.FlowCompleted
}

// Reset recycles a terminal session into a new conversation under the same
// identifier. WhatsApp authorization, its provenance, and the transport
// phone number survive the reset; everything else starts over.
func (s *Session) Reset(now time.Time) *Session {
	now = EnsureUTC(now)

	fresh := NewSession(s.SessionID, s.Platform, now)
	fresh.ResetCount = s.ResetCount + 1
	fresh.PreviousSessionEndedAt = s.EndedAt

	if s.Platform == PlatformWhatsApp {
		fresh.WhatsAppAuthorized = s.WhatsAppAuthorized
		fresh.AuthorizationSource = s.AuthorizationSource
		fresh.PhoneNumber = s.PhoneNumber
	}

	return fresh
}

// End marks the session as forcibly closed, distinct from a normally
// completed flow.
func (s *Session) End(now time.Time) {
	now = EnsureUTC(now)
	s.SessionEnded = true
	s.EndedAt = &now
	s.CurrentStep = StepEnded
	s.LastUpdated = now
}

// MarkNotified records the single allowed false→true transition of the
// lawyers-notified flag.
func (s *Session) MarkNotified(now time.Time) {
	now = EnsureUTC(now)
	s.LawyersNotified = true
	s.LawyersNotifiedAt = &now
}

// Touch updates the last-modified timestamp.
func (s *Session) Touch(now time.Time) {
	s.LastUpdated = EnsureUTC(now)
}

// EnsureUTC converts t to UTC, substituting the current time for a zero
// value. All stored timestamps go through here so the canonical
// representation is timezone independent.
func EnsureUTC(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
