// Package events provides domain event definitions for decoupled
// communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"intake_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Conversation Domain Events
// =============================================================================

// LeadQualified is published when a finalized conversation produces a
// qualified lead record.
type LeadQualified struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	SessionID string    `json:"sessionId"`
	Platform  string    `json:"platform"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Area      string    `json:"area"`
	Score     float64   `json:"score"`
}

func (e LeadQualified) EventName() string { return "conversation.lead.qualified" }

// LawyersNotified is published after the lawyer roster has been pinged
// for a lead. Fired at most once per session.
type LawyersNotified struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Category  string `json:"category"`
}

func (e LawyersNotified) EventName() string { return "conversation.lawyers.notified" }

// SessionEnded is published when a conversation is explicitly closed.
type SessionEnded struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Platform  string `json:"platform"`
}

func (e SessionEnded) EventName() string { return "conversation.session.ended" }

// LeadAssigned is published when a lawyer claims a lead through an
// assignment link.
type LeadAssigned struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Lawyer string    `json:"lawyer"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }
