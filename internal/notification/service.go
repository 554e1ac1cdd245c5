// Package notification dispatches new-lead alerts to the lawyer roster
// over WhatsApp, with an optional email copy to the office inbox.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	convservice "intake_backend/internal/conversation/service"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"
	"intake_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

// Messenger sends the WhatsApp alert to one roster member.
type Messenger interface {
	SendText(ctx context.Context, phone, text string) error
}

// EmailCopier sends the email copy of an alert. Implemented by SMTPSender.
type EmailCopier interface {
	SendLeadAlert(ctx context.Context, subject, body string) error
}

// Service fans an alert out to every lawyer on the roster. The dispatch is
// considered successful when at least one delivery succeeds.
type Service struct {
	cfg       config.NotifierConfig
	messenger Messenger
	email     EmailCopier
	log       *logger.Logger
}

// New creates the dispatcher. email may be nil when the copy is disabled.
func New(cfg config.NotifierConfig, messenger Messenger, email EmailCopier, log *logger.Logger) *Service {
	return &Service{cfg: cfg, messenger: messenger, email: email, log: log}
}

// Compile-time check against the conversation orchestrator's contract.
var _ convservice.Notifier = (*Service)(nil)

// Notify delivers the alert to the roster. There is no idempotency key; the
// caller's single-fire flag is the only duplicate prevention.
func (s *Service) Notify(ctx context.Context, n convservice.Notification) (bool, error) {
	roster := s.cfg.GetLawyerRoster()
	if len(roster) == 0 {
		return false, fmt.Errorf("lawyer roster is empty")
	}

	message := alertMessage(n)

	// Deliveries run in parallel; a failed send is logged and skipped so one
	// unreachable lawyer never blocks the rest of the roster.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	var delivered atomic.Int64
	for _, lawyer := range roster {
		g.Go(func() error {
			target := phone.NormalizeBR(lawyer.Phone)
			if err := s.messenger.SendText(gctx, target, message); err != nil {
				s.log.Error("lawyer alert delivery failed",
					"lawyer", lawyer.Name,
					"error", err)
				return nil
			}
			delivered.Add(1)
			s.log.Info("lawyer alerted", "lawyer", lawyer.Name, "category", n.Category)
			return nil
		})
	}
	_ = g.Wait()

	if s.email != nil {
		subject := fmt.Sprintf("Novo lead: %s (%s)", n.LeadName, n.Category)
		if err := s.email.SendLeadAlert(ctx, subject, message); err != nil {
			s.log.Error("lead alert email failed", "error", err)
		}
	}

	return delivered.Load() > 0, nil
}

// alertMessage builds the Portuguese roster alert.
func alertMessage(n convservice.Notification) string {
	situation := n.Details["case_details"]
	if r := []rune(situation); len(r) > 200 {
		situation = string(r[:200]) + "..."
	}

	var b strings.Builder
	b.WriteString("🚨 Novo cliente recebido!\n\n")
	fmt.Fprintf(&b, "Nome: %s\n", n.LeadName)
	fmt.Fprintf(&b, "Telefone: %s\n", n.LeadPhone)
	fmt.Fprintf(&b, "Área jurídica: %s\n", n.Category)
	fmt.Fprintf(&b, "Situação: %s\n", situation)

	if t := n.Details["preferred_contact_time"]; t != "" && t != "não informado" {
		fmt.Fprintf(&b, "Horário preferido: %s\n", t)
	}
	if n.Details["urgency"] == "high" {
		b.WriteString("\n⚡ Lead com urgência alta!\n")
	}
	fmt.Fprintf(&b, "\nOrigem: %s", n.Details["lead_source"])

	return b.String()
}
