// Package transport defines the response shapes for the leads endpoints.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// LeadResponse is the public representation of a lead record.
type LeadResponse struct {
	ID                   uuid.UUID  `json:"id"`
	SessionID            string     `json:"session_id"`
	Platform             string     `json:"platform"`
	Name                 string     `json:"name"`
	Phone                string     `json:"phone"`
	PhoneFormatted       string     `json:"phone_formatted"`
	Area                 string     `json:"area"`
	CaseDetails          string     `json:"case_details"`
	PreferredContactTime string     `json:"preferred_contact_time,omitempty"`
	Score                float64    `json:"qualification_score"`
	Notified             bool       `json:"lawyers_notified"`
	AssignedLawyer       string     `json:"assigned_lawyer,omitempty"`
	AssignedAt           *time.Time `json:"assigned_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// AssignResult reports the outcome of an assignment claim.
type AssignResult struct {
	Status string       `json:"status"`
	Lead   LeadResponse `json:"lead"`
}
