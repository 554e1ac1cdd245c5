package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"intake_backend/internal/events"
	"intake_backend/internal/leads/repository"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"

	"github.com/google/uuid"
)

// memRepo is an in-memory Store with the repository's first-wins
// assignment semantics.
type memRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]repository.Lead
}

func newMemRepo() *memRepo {
	return &memRepo{leads: make(map[uuid.UUID]repository.Lead)}
}

func (m *memRepo) Create(_ context.Context, params repository.CreateLeadParams) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.leads[id] = repository.Lead{
		ID:             id,
		SessionID:      params.SessionID,
		Platform:       params.Platform,
		Name:           params.Name,
		Phone:          params.Phone,
		PhoneFormatted: params.PhoneFormatted,
		Area:           params.Area,
		CaseDetails:    params.CaseDetails,
		Score:          params.Score,
		Notified:       params.Notified,
		CreatedAt:      time.Now(),
	}
	return id, nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (m *memRepo) Assign(_ context.Context, id uuid.UUID, lawyer string) (repository.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	if lead.AssignedLawyer != nil {
		if *lead.AssignedLawyer == lawyer {
			return lead, nil
		}
		return lead, repository.ErrAlreadyAssigned
	}
	now := time.Now()
	lead.AssignedLawyer = &lawyer
	lead.AssignedAt = &now
	m.leads[id] = lead
	return lead, nil
}

func (m *memRepo) IsAssigned(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	return lead.AssignedLawyer != nil, nil
}

type recordingMessenger struct {
	mu    sync.Mutex
	sends []string
}

func (r *recordingMessenger) SendText(_ context.Context, phone, text string) error {
	r.mu.Lock()
	r.sends = append(r.sends, phone+"|"+text)
	r.mu.Unlock()
	return nil
}

func (r *recordingMessenger) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sends...)
}

var testRoster = []config.Lawyer{
	{Name: "Dr. Lima", Phone: "11911112222"},
	{Name: "Dra. Costa", Phone: "11933334444"},
}

type fixture struct {
	svc       *Service
	repo      *memRepo
	bus       *events.InMemoryBus
	messenger *recordingMessenger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.New("development")
	f := &fixture{
		repo:      newMemRepo(),
		bus:       events.NewInMemoryBus(log),
		messenger: &recordingMessenger{},
	}
	f.svc = New(f.repo, f.bus, f.messenger, testRoster, "http://localhost:8080", log)
	return f
}

func (f *fixture) seedLead(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := f.repo.Create(context.Background(), repository.CreateLeadParams{
		SessionID:      "web-1",
		Platform:       "web",
		Name:           "Maria Souza",
		Phone:          "11987654321",
		PhoneFormatted: "5511987654321",
		Area:           "Direito Penal",
		Score:          0.9,
		Notified:       true,
	})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return id
}

func TestAssignFirstWinsPublishesEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seedLead(t)

	assigned := make(chan events.LeadAssigned, 1)
	f.bus.Subscribe(events.LeadAssigned{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if le, ok := e.(events.LeadAssigned); ok {
			assigned <- le
		}
		return nil
	}))

	lead, err := f.svc.Assign(ctx, id, "Dr. Lima")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if lead.AssignedLawyer != "Dr. Lima" {
		t.Fatalf("assigned lawyer = %q", lead.AssignedLawyer)
	}

	select {
	case e := <-assigned:
		if e.LeadID != id || e.Lawyer != "Dr. Lima" {
			t.Fatalf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("lead assignment did not publish an event")
	}
}

func TestAssignIsIdempotentForWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seedLead(t)

	if _, err := f.svc.Assign(ctx, id, "Dr. Lima"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := f.svc.Assign(ctx, id, "Dr. Lima"); err != nil {
		t.Fatalf("repeated claim by the winner must succeed: %v", err)
	}
}

func TestAssignConflictsForSecondLawyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seedLead(t)

	if _, err := f.svc.Assign(ctx, id, "Dr. Lima"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	lead, err := f.svc.Assign(ctx, id, "Dra. Costa")
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("second claimant err = %v, want ErrAlreadyAssigned", err)
	}
	if lead.AssignedLawyer != "Dr. Lima" {
		t.Fatalf("conflict response carries lawyer %q, want the winner", lead.AssignedLawyer)
	}
}

func TestAssignNotifiesRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seedLead(t)

	if _, err := f.svc.Assign(ctx, id, "Dr. Lima"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	sends := f.messenger.sent()
	if len(sends) != len(testRoster) {
		t.Fatalf("notices sent = %d, want %d", len(sends), len(testRoster))
	}

	var winnerMsg, loserMsg string
	for _, s := range sends {
		switch {
		case strings.HasPrefix(s, "5511911112222|"):
			winnerMsg = s
		case strings.HasPrefix(s, "5511933334444|"):
			loserMsg = s
		}
	}
	if !strings.Contains(winnerMsg, "atribuído a você") {
		t.Fatalf("winner notice = %q", winnerMsg)
	}
	if !strings.Contains(loserMsg, "já foi assumido por Dr. Lima") {
		t.Fatalf("roster notice = %q", loserMsg)
	}
}

func TestSendAssignmentLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seedLead(t)

	f.svc.SendAssignmentLinks(ctx, id)

	sends := f.messenger.sent()
	if len(sends) != len(testRoster) {
		t.Fatalf("links sent = %d, want %d", len(sends), len(testRoster))
	}
	wantLink := "http://localhost:8080/api/v1/leads/" + id.String() + "/assign/Dr. Lima"
	if !strings.Contains(sends[0], wantLink) {
		t.Fatalf("link missing from %q, want %q", sends[0], wantLink)
	}
}

func TestGetUnknownLeadIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("err = %v, want ErrLeadNotFound", err)
	}
}
