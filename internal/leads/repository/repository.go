// Package repository persists finalized leads and their assignment state.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("lead not found")
	ErrAlreadyAssigned = errors.New("lead already assigned")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the durable lead record. Append-only except for assignment.
type Lead struct {
	ID                   uuid.UUID
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
	AssignedLawyer       *string
	AssignedAt           *time.Time
	CreatedAt            time.Time
}

// CreateLeadParams carries the fields written on append.
type CreateLeadParams struct {
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

// Create appends a lead record and returns its identifier.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			session_id, platform, name, phone, phone_formatted,
			area, case_details, preferred_contact_time, confirmation,
			score, notified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		params.SessionID, params.Platform, params.Name, params.Phone,
		params.PhoneFormatted, params.Area, params.CaseDetails,
		params.PreferredContactTime, params.Confirmation,
		params.Score, params.Notified,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetByID loads one lead record.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, session_id, platform, name, phone, phone_formatted,
		       area, case_details, preferred_contact_time, confirmation,
		       score, notified, assigned_lawyer, assigned_at, created_at
		FROM leads
		WHERE id = $1
	`, id).Scan(
		&lead.ID, &lead.SessionID, &lead.Platform, &lead.Name, &lead.Phone,
		&lead.PhoneFormatted, &lead.Area, &lead.CaseDetails,
		&lead.PreferredContactTime, &lead.Confirmation,
		&lead.Score, &lead.Notified, &lead.AssignedLawyer, &lead.AssignedAt,
		&lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// Assign claims the lead for a lawyer. The conditional update makes the
// claim first-wins: a second claimant gets ErrAlreadyAssigned.
func (r *Repository) Assign(ctx context.Context, id uuid.UUID, lawyer string) (Lead, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET assigned_lawyer = $2, assigned_at = now()
		WHERE id = $1 AND assigned_lawyer IS NULL
	`, id, lawyer)
	if err != nil {
		return Lead{}, err
	}

	lead, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return Lead{}, getErr
	}

	if tag.RowsAffected() == 0 {
		// Idempotent for the winning lawyer, conflict for everyone else.
		if lead.AssignedLawyer != nil && *lead.AssignedLawyer == lawyer {
			return lead, nil
		}
		return lead, ErrAlreadyAssigned
	}
	return lead, nil
}

// IsAssigned reports whether the lead has been claimed. Used by the
// follow-up worker to decide whether to re-ping the roster.
func (r *Repository) IsAssigned(ctx context.Context, id uuid.UUID) (bool, error) {
	var assigned bool
	err := r.pool.QueryRow(ctx, `
		SELECT assigned_lawyer IS NOT NULL FROM leads WHERE id = $1
	`, id).Scan(&assigned)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return assigned, nil
}

// Ping verifies database connectivity for the readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
