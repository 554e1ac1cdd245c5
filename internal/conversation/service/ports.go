package service

import (
	"context"

	"github.com/google/uuid"
)

// Messenger sends outbound WhatsApp text messages. The destination is a
// normalized Brazilian phone number; address formatting is the client's
// concern.
type Messenger interface {
	SendText(ctx context.Context, phone, text string) error
}

// Notification is the payload handed to the lawyer roster dispatcher.
type Notification struct {
	LeadName  string
	LeadPhone string
	Category  string
	Details   map[string]string
}

// Notifier dispatches a new-lead alert to the lawyer roster. It returns
// whether the dispatch succeeded; no idempotency key is passed, so callers
// must guard against duplicate sends themselves.
type Notifier interface {
	Notify(ctx context.Context, n Notification) (bool, error)
}

// LeadRecord is the finalized lead persisted independently of the session.
type LeadRecord struct {
	SessionID            string
	Platform             string
	Name                 string
	Phone                string
	PhoneFormatted       string
	Area                 string
	CaseDetails          string
	PreferredContactTime string
	Confirmation         string
	Score                float64
	Notified             bool
}

// LeadWriter appends finalized leads to durable storage.
type LeadWriter interface {
	Append(ctx context.Context, record LeadRecord) (uuid.UUID, error)
}

// FollowUpScheduler enqueues a deferred reminder to re-ping the roster if
// a lead is still unassigned after the configured delay.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, leadID uuid.UUID, sessionID string) error
}

// FallbackResponder produces a generative reply for free chat outside the
// scripted flow. Optional; the state machine itself never calls it.
type FallbackResponder interface {
	Respond(ctx context.Context, text, sessionID string) (string, error)
}
