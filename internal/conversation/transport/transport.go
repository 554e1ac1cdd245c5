// Package transport defines the request and response shapes exchanged with
// the conversation endpoints.
package transport

import (
	"time"

	"intake_backend/internal/conversation/domain"
)

// ChatRequest is an inbound message from the web chat widget.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id" validate:"required,min=1"`
}

// WebhookRequest is an inbound WhatsApp message relayed by the Evolution
// gateway. "from" carries the sender JID or bare phone number.
type WebhookRequest struct {
	Message     string `json:"message"`
	From        string `json:"from"`
	PhoneNumber string `json:"phone_number"`
	MessageID   string `json:"messageId"`
}

// Sender returns whichever sender field the gateway populated.
func (r WebhookRequest) Sender() string {
	if r.From != "" {
		return r.From
	}
	return r.PhoneNumber
}

// ProcessMessageResult is the structured outcome of one processed message.
// It is always populated, even when processing degrades to a fallback
// response.
type ProcessMessageResult struct {
	ResponseType       string          `json:"response_type"`
	Platform           string          `json:"platform"`
	SessionID          string          `json:"session_id"`
	Response           string          `json:"response"`
	CurrentStep        string          `json:"current_step,omitempty"`
	FlowCompleted      bool            `json:"flow_completed"`
	LawyersNotified    bool            `json:"lawyers_notified"`
	PhoneSubmitted     bool            `json:"phone_submitted"`
	LeadData           domain.LeadData `json:"lead_data"`
	MessageCount       int             `json:"message_count"`
	WhatsAppAuthorized bool            `json:"whatsapp_authorized"`
	SessionEnded       bool            `json:"session_ended"`
	QualificationScore float64         `json:"qualification_score"`
}

// WebhookResponse acknowledges a processed WhatsApp webhook delivery.
type WebhookResponse struct {
	Status          string     `json:"status"`
	SessionID       string     `json:"session_id"`
	Phone           string     `json:"phone"`
	IncomingMessage string     `json:"incoming_message"`
	BotResponse     string     `json:"bot_response"`
	MessageID       string     `json:"message_id,omitempty"`
	SendStatus      SendStatus `json:"evolution_send_status"`
	FlowInfo        FlowInfo   `json:"flow_info"`
}

// SendStatus reports the outbound delivery attempt for the bot reply.
type SendStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FlowInfo is a compact progress snapshot included in webhook replies.
type FlowInfo struct {
	CurrentStep        string  `json:"current_step"`
	FlowCompleted      bool    `json:"flow_completed"`
	LawyersNotified    bool    `json:"lawyers_notified"`
	QualificationScore float64 `json:"qualification_score"`
}

// UserData carries the lead fields collected on the landing page before
// the conversation moved to WhatsApp.
type UserData struct {
	Name    string `json:"name"`
	Area    string `json:"area"`
	Problem string `json:"problem"`
}

// AuthorizationRequest is sent by the landing page when a visitor opts in
// to continue on WhatsApp.
type AuthorizationRequest struct {
	SessionID   string    `json:"session_id" validate:"required,min=1"`
	PhoneNumber string    `json:"phone_number"`
	Source      string    `json:"source"`
	UserData    *UserData `json:"user_data,omitempty"`
}

// AuthorizationResult reports the outcome of an authorization event.
type AuthorizationResult struct {
	Status             string `json:"status"`
	SessionID          string `json:"session_id"`
	PhoneNumber        string `json:"phone_number"`
	Source             string `json:"source"`
	WhatsAppAuthorized bool   `json:"whatsapp_authorized"`
	PrePopulated       bool   `json:"pre_populated"`
}

// EndSessionRequest closes a conversation explicitly.
type EndSessionRequest struct {
	SessionID string `json:"session_id" validate:"required,min=1"`
}

// EndSessionResult reports the outcome of an end-session request.
type EndSessionResult struct {
	Status       string `json:"status"`
	SessionID    string `json:"session_id"`
	SessionEnded bool   `json:"session_ended"`
}

// SessionContext is a read-only snapshot of a stored session.
type SessionContext struct {
	Exists             bool            `json:"exists"`
	SessionID          string          `json:"session_id,omitempty"`
	Platform           string          `json:"platform,omitempty"`
	CurrentStep        string          `json:"current_step,omitempty"`
	LeadData           domain.LeadData `json:"lead_data,omitempty"`
	MessageCount       int             `json:"message_count,omitempty"`
	FlowCompleted      bool            `json:"flow_completed,omitempty"`
	LawyersNotified    bool            `json:"lawyers_notified,omitempty"`
	WhatsAppAuthorized bool            `json:"whatsapp_authorized,omitempty"`
	SessionEnded       bool            `json:"session_ended,omitempty"`
	QualificationScore float64         `json:"qualification_score,omitempty"`
	CreatedAt          time.Time       `json:"created_at,omitempty"`
	LastUpdated        time.Time       `json:"last_updated,omitempty"`
}
