// Package service exposes lead persistence and the first-wins assignment
// flow.
package service

import (
	"context"
	"errors"
	"fmt"

	convservice "intake_backend/internal/conversation/service"
	"intake_backend/internal/events"
	"intake_backend/internal/leads/repository"
	"intake_backend/internal/leads/transport"
	"intake_backend/platform/apperr"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"
	"intake_backend/platform/phone"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrAlreadyAssigned = errors.New("lead already assigned")
)

// Messenger sends WhatsApp texts to lawyers (assignment links, claim
// confirmations).
type Messenger interface {
	SendText(ctx context.Context, phone, text string) error
}

// Store is the lead persistence surface. Implemented by
// repository.Repository.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Assign(ctx context.Context, id uuid.UUID, lawyer string) (repository.Lead, error)
	IsAssigned(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo      Store
	bus       events.Bus
	messenger Messenger
	roster    []config.Lawyer
	baseURL   string
	log       *logger.Logger
}

func New(repo Store, bus events.Bus, messenger Messenger, roster []config.Lawyer, baseURL string, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, messenger: messenger, roster: roster, baseURL: baseURL, log: log}
}

// Compile-time check: the conversation flow appends leads through this
// service.
var _ convservice.LeadWriter = (*Service)(nil)

// Append persists a finalized lead.
func (s *Service) Append(ctx context.Context, record convservice.LeadRecord) (uuid.UUID, error) {
	return s.repo.Create(ctx, repository.CreateLeadParams{
		SessionID:            record.SessionID,
		Platform:             record.Platform,
		Name:                 record.Name,
		Phone:                record.Phone,
		PhoneFormatted:       record.PhoneFormatted,
		Area:                 record.Area,
		CaseDetails:          record.CaseDetails,
		PreferredContactTime: record.PreferredContactTime,
		Confirmation:         record.Confirmation,
		Score:                record.Score,
		Notified:             record.Notified,
	})
}

// Get returns one lead record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindNotFound, "lead not found", ErrLeadNotFound)
	}
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	return toResponse(lead), nil
}

// Assign claims a lead for a lawyer. The first claim wins; repeating the
// same claim is idempotent, and any later claimant gets ErrAlreadyAssigned.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, lawyer string) (transport.LeadResponse, error) {
	lead, err := s.repo.Assign(ctx, id, lawyer)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindNotFound, "lead not found", ErrLeadNotFound)
	case errors.Is(err, repository.ErrAlreadyAssigned):
		return toResponse(lead), ErrAlreadyAssigned
	case err != nil:
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to assign lead", err)
	}

	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Lawyer:    lawyer,
	})
	s.notifyCaseTaken(ctx, lead, lawyer)
	return toResponse(lead), nil
}

// IsAssigned reports whether the lead has been claimed.
func (s *Service) IsAssigned(ctx context.Context, id uuid.UUID) (bool, error) {
	assigned, err := s.repo.IsAssigned(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, ErrLeadNotFound
	}
	return assigned, err
}

// SendAssignmentLinks messages every roster lawyer a claim link for the
// lead. First to click gets the case.
func (s *Service) SendAssignmentLinks(ctx context.Context, leadID uuid.UUID) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		s.log.Error("assignment links skipped, lead load failed", "leadId", leadID, "error", err)
		return
	}

	for _, lawyer := range s.roster {
		link := fmt.Sprintf("%s/api/v1/leads/%s/assign/%s", s.baseURL, lead.ID, lawyer.Name)
		msg := fmt.Sprintf(
			"📋 Caso disponível para atribuição:\n\nNome: %s\nÁrea jurídica: %s\n\n👇 Clique no link abaixo se você deseja assumir este caso:\n%s",
			lead.Name, lead.Area, link)

		if err := s.messenger.SendText(ctx, phone.NormalizeBR(lawyer.Phone), msg); err != nil {
			s.log.Error("assignment link delivery failed",
				"lawyer", lawyer.Name,
				"leadId", lead.ID,
				"error", err)
		}
	}
}

// notifyCaseTaken confirms the claim to the winner and tells the rest of
// the roster the case is gone. Best effort.
func (s *Service) notifyCaseTaken(ctx context.Context, lead repository.Lead, winner string) {
	for _, lawyer := range s.roster {
		var msg string
		if lawyer.Name == winner {
			msg = fmt.Sprintf("✅ Caso atribuído a você!\n\nNome: %s\nTelefone: %s\nÁrea jurídica: %s",
				lead.Name, lead.PhoneFormatted, lead.Area)
		} else {
			msg = fmt.Sprintf("ℹ️ O caso de %s (%s) já foi assumido por %s.",
				lead.Name, lead.Area, winner)
		}
		if err := s.messenger.SendText(ctx, phone.NormalizeBR(lawyer.Phone), msg); err != nil {
			s.log.Error("case-taken notice delivery failed",
				"lawyer", lawyer.Name,
				"error", err)
		}
	}
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                   lead.ID,
		SessionID:            lead.SessionID,
		Platform:             lead.Platform,
		Name:                 lead.Name,
		Phone:                lead.Phone,
		PhoneFormatted:       lead.PhoneFormatted,
		Area:                 lead.Area,
		CaseDetails:          lead.CaseDetails,
		PreferredContactTime: lead.PreferredContactTime,
		Score:                lead.Score,
		Notified:             lead.Notified,
		AssignedAt:           lead.AssignedAt,
		CreatedAt:            lead.CreatedAt,
	}
	if lead.AssignedLawyer != nil {
		resp.AssignedLawyer = *lead.AssignedLawyer
	}
	return resp
}
