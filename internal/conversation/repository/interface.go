// Package repository provides the durable session store for conversations.
package repository

import (
	"context"

	"intake_backend/internal/conversation/domain"
)

// SessionStore is the durable mapping from session identifier to session
// record. Last write wins; there is no compare-and-swap. Absence is a
// normal condition (a new conversation), reported as (nil, nil).
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Put(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}
