package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"intake_backend/internal/conversation/domain"
	"intake_backend/internal/conversation/transport"
	"intake_backend/internal/events"
	"intake_backend/platform/logger"

	"github.com/google/uuid"
)

// memStore is an in-memory SessionStore. Get returns a deep copy so tests
// observe exactly what was persisted, like a real store would.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memStore) Put(_ context.Context, s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[s.SessionID] = raw
	m.mu.Unlock()
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

type fakeNotifier struct {
	mu      sync.Mutex
	calls   []Notification
	succeed bool
}

func (f *fakeNotifier) Notify(_ context.Context, n Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, n)
	return f.succeed, nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMessenger struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeMessenger) SendText(_ context.Context, phone, text string) error {
	f.mu.Lock()
	f.sends = append(f.sends, phone+"|"+text)
	f.mu.Unlock()
	return nil
}

type fakeLeadWriter struct {
	mu      sync.Mutex
	records []LeadRecord
}

func (f *fakeLeadWriter) Append(_ context.Context, r LeadRecord) (uuid.UUID, error) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
	return uuid.New(), nil
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []string
}

func (f *fakeScheduler) ScheduleFollowUp(_ context.Context, leadID uuid.UUID, sessionID string) error {
	f.mu.Lock()
	f.tasks = append(f.tasks, sessionID)
	f.mu.Unlock()
	return nil
}

type testConfig struct{}

func (testConfig) GetLandingPageURL() string { return "https://example.test" }
func (testConfig) GetFirmName() string       { return "m.lima Advogados Associados" }

type fixture struct {
	svc       *Service
	store     *memStore
	notifier  *fakeNotifier
	messenger *fakeMessenger
	leads     *fakeLeadWriter
	scheduler *fakeScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New("development")
	f := &fixture{
		store:     newMemStore(),
		notifier:  &fakeNotifier{succeed: true},
		messenger: &fakeMessenger{},
		leads:     &fakeLeadWriter{},
		scheduler: &fakeScheduler{},
	}
	f.svc = New(log, testConfig{}, f.store, f.leads, f.notifier, f.messenger,
		f.scheduler, nil, events.NewInMemoryBus(log))
	return f
}

var webScenario = []string{
	"",
	"Maria Souza",
	"Direito Penal",
	"Fui acusada injustamente de um crime que não cometi, preciso de defesa urgente",
	"11987654321",
	"sim",
}

func runScenario(t *testing.T, f *fixture, sessionID string, inputs []string) []transport.ProcessMessageResult {
	t.Helper()
	ctx := context.Background()
	results := make([]transport.ProcessMessageResult, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, f.svc.ProcessMessage(ctx, in, sessionID, "", domain.PlatformWeb))
	}
	return results
}

func TestEndToEndWebScenario(t *testing.T) {
	f := newFixture(t)
	results := runScenario(t, f, "web-e2e", webScenario)

	final := results[len(results)-1]
	if final.CurrentStep != string(domain.StepCompleted) {
		t.Fatalf("final step = %s, want completed", final.CurrentStep)
	}
	if !final.FlowCompleted {
		t.Fatal("flow not marked completed")
	}
	if !final.LawyersNotified {
		t.Fatal("lawyers not notified")
	}

	if got := f.notifier.count(); got != 1 {
		t.Fatalf("notifier called %d times, want 1", got)
	}
	if !strings.Contains(f.notifier.calls[0].Category, "Penal") {
		t.Fatalf("notification category = %q, want it to contain Penal", f.notifier.calls[0].Category)
	}
	if f.notifier.calls[0].LeadPhone != "11987654321" {
		t.Fatalf("notification phone = %q", f.notifier.calls[0].LeadPhone)
	}

	if len(f.leads.records) != 1 {
		t.Fatalf("lead records = %d, want 1", len(f.leads.records))
	}
	if f.leads.records[0].PhoneFormatted != "5511987654321" {
		t.Fatalf("formatted phone = %q", f.leads.records[0].PhoneFormatted)
	}

	// Web channel follow-up WhatsApp message.
	if len(f.messenger.sends) != 1 {
		t.Fatalf("strategic messages sent = %d, want 1", len(f.messenger.sends))
	}
}

func TestMonotonicProgression(t *testing.T) {
	f := newFixture(t)
	results := runScenario(t, f, "web-mono", webScenario)

	want := []string{"step1_name", "step3_area", "step4_details", "phone_collection", "step5_confirmation", "completed"}
	seen := make(map[string]bool)
	for i, r := range results {
		if r.CurrentStep != want[i] {
			t.Fatalf("step after message %d = %s, want %s", i, r.CurrentStep, want[i])
		}
		if seen[r.CurrentStep] {
			t.Fatalf("step %s revisited", r.CurrentStep)
		}
		seen[r.CurrentStep] = true
	}
}

func TestFinalizationIsSingleFire(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	runScenario(t, f, "web-fire", webScenario)

	session, err := f.store.Get(ctx, "web-fire")
	if err != nil || session == nil {
		t.Fatalf("session missing after scenario: %v", err)
	}
	if !session.LawyersNotified {
		t.Fatal("session not marked notified")
	}

	// A second finalization for the same session must not dispatch again.
	f.svc.finalize(ctx, session)
	if got := f.notifier.count(); got != 1 {
		t.Fatalf("notifier called %d times after repeat finalization, want 1", got)
	}
}

func TestMidFlowGateRespectsSingleFire(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session := domain.NewSession("wa-gate", domain.PlatformWhatsApp, time.Now().UTC())
	session.FirstInteraction = false
	session.CurrentStep = domain.StepConfirmation
	session.MessageCount = 4
	session.LeadData = domain.LeadData{
		Identification:    "Carlos Pereira",
		AreaQualification: "Direito Penal",
		CaseDetails:       "Processo criminal em andamento, audiência marcada para semana que vem",
		Phone:             "11987654321",
		Confirmation:      "sim",
	}

	if !f.svc.NotifyIfQualified(ctx, session) {
		t.Fatal("qualified whatsapp session should notify")
	}
	f.svc.NotifyIfQualified(ctx, session)
	f.svc.NotifyIfQualified(ctx, session)

	if got := f.notifier.count(); got != 1 {
		t.Fatalf("notifier called %d times, want 1", got)
	}
}

func TestResetOnTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	runScenario(t, f, "web-reset", webScenario)

	r := f.svc.ProcessMessage(ctx, "olá de novo", "web-reset", "", domain.PlatformWeb)
	if r.FlowCompleted {
		t.Fatal("reset session still marked completed")
	}
	if !r.LeadData.IsEmpty() {
		t.Fatalf("reset session kept lead data: %+v", r.LeadData)
	}
	if r.CurrentStep != string(domain.StepName) {
		t.Fatalf("step after reset = %s, want step1_name", r.CurrentStep)
	}
	if r.MessageCount != 1 {
		t.Fatalf("message count after reset = %d, want 1", r.MessageCount)
	}

	session, _ := f.store.Get(ctx, "web-reset")
	if session.ResetCount != 1 {
		t.Fatalf("reset count = %d, want 1", session.ResetCount)
	}
}

func TestChannelDivergenceAtPhoneCollection(t *testing.T) {
	ctx := context.Background()
	shared := domain.LeadData{
		Identification:    "Ana Lima",
		AreaQualification: "Direito da Saúde",
		CaseDetails:       "Plano de saúde negou cobertura de cirurgia urgente",
	}

	t.Run("whatsapp writes contact time", func(t *testing.T) {
		f := newFixture(t)
		session := domain.NewSession("5511912345678", domain.PlatformWhatsApp, time.Now().UTC())
		session.FirstInteraction = false
		session.CurrentStep = domain.StepPhone
		session.PhoneNumber = "5511912345678"
		session.WhatsAppAuthorized = true
		session.LeadData = shared
		if err := f.store.Put(ctx, session); err != nil {
			t.Fatal(err)
		}

		r := f.svc.ProcessMessage(ctx, "Manhã, por favor", "5511912345678", "5511912345678", domain.PlatformWhatsApp)
		if r.CurrentStep != string(domain.StepConfirmation) {
			t.Fatalf("step = %s, want step5_confirmation", r.CurrentStep)
		}
		if r.LeadData.PreferredContactTime != "Manhã, por favor" {
			t.Fatalf("contact time = %q", r.LeadData.PreferredContactTime)
		}
		if r.LeadData.Phone != "5511912345678" {
			t.Fatalf("phone = %q, want session phone", r.LeadData.Phone)
		}
	})

	t.Run("web writes digits", func(t *testing.T) {
		f := newFixture(t)
		session := domain.NewSession("web-div", domain.PlatformWeb, time.Now().UTC())
		session.FirstInteraction = false
		session.CurrentStep = domain.StepPhone
		session.LeadData = shared
		if err := f.store.Put(ctx, session); err != nil {
			t.Fatal(err)
		}

		r := f.svc.ProcessMessage(ctx, "(11) 98765-4321", "web-div", "", domain.PlatformWeb)
		if r.CurrentStep != string(domain.StepConfirmation) {
			t.Fatalf("step = %s, want step5_confirmation", r.CurrentStep)
		}
		if r.LeadData.Phone != "11987654321" {
			t.Fatalf("phone = %q, want digits only", r.LeadData.Phone)
		}
		if r.LeadData.PreferredContactTime != "" {
			t.Fatalf("web session wrote contact time %q", r.LeadData.PreferredContactTime)
		}
	})
}

func TestValidationFailureDoesNotAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.ProcessMessage(ctx, "", "web-val", "", domain.PlatformWeb)
	r := f.svc.ProcessMessage(ctx, "Jo", "web-val", "", domain.PlatformWeb)
	if r.CurrentStep != string(domain.StepName) {
		t.Fatalf("step advanced on invalid name: %s", r.CurrentStep)
	}
	if r.LeadData.Identification != "" {
		t.Fatal("invalid answer was stored")
	}
}

func TestUnauthorizedWhatsAppIsBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.svc.ProcessMessage(ctx, "oi", "5511900001111", "5511900001111", domain.PlatformWhatsApp)
	if r.ResponseType != "whatsapp_unauthorized" {
		t.Fatalf("response type = %s", r.ResponseType)
	}
	if !strings.Contains(r.Response, "example.test") {
		t.Fatalf("response does not redirect to landing page: %q", r.Response)
	}
}

func TestEmptySessionIDRejected(t *testing.T) {
	f := newFixture(t)

	r := f.svc.ProcessMessage(context.Background(), "oi", "", "", domain.PlatformWeb)
	if r.ResponseType != "no_session" {
		t.Fatalf("response type = %s, want no_session", r.ResponseType)
	}
}

func TestAuthorizationPrePopulatesLandingLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.svc.HandleWhatsAppAuthorization(ctx, transport.AuthorizationRequest{
		SessionID:   "5511933334444",
		PhoneNumber: "5511933334444",
		Source:      "landing_chat",
		UserData: &transport.UserData{
			Name:    "Pedro Santos",
			Area:    "Direito Penal",
			Problem: "Intimado a depor em inquérito policial",
		},
	})
	if !res.PrePopulated {
		t.Fatal("authorization not marked pre-populated")
	}

	session, err := f.store.Get(ctx, "5511933334444")
	if err != nil || session == nil {
		t.Fatalf("pre-populated session missing: %v", err)
	}
	if session.CurrentStep != domain.StepCompleted {
		t.Fatalf("step = %s, want completed", session.CurrentStep)
	}
	if !session.FlowCompleted || !session.WhatsAppAuthorized {
		t.Fatal("pre-populated session flags not set")
	}
	if session.LeadData.Identification != "Pedro Santos" {
		t.Fatalf("lead name = %q", session.LeadData.Identification)
	}
	if session.LeadData.Confirmation != "sim" {
		t.Fatalf("confirmation = %q", session.LeadData.Confirmation)
	}

	// Engagement gate: one message is below the WhatsApp threshold, so the
	// immediate check must not dispatch.
	if got := f.notifier.count(); got != 0 {
		t.Fatalf("notifier called %d times for unengaged landing lead", got)
	}
}

func TestResultEchoesStoredAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A fresh web session has never been authorized for WhatsApp, and the
	// result reports the stored flag as-is.
	r := f.svc.ProcessMessage(ctx, "", "web-flag", "", domain.PlatformWeb)
	if r.WhatsAppAuthorized {
		t.Fatal("new web session reported as whatsapp-authorized")
	}

	f.svc.HandleWhatsAppAuthorization(ctx, transport.AuthorizationRequest{
		SessionID: "web-flag",
		Source:    "button",
	})
	r = f.svc.ProcessMessage(ctx, "Maria Souza", "web-flag", "", domain.PlatformWeb)
	if !r.WhatsAppAuthorized {
		t.Fatal("authorized session reported as unauthorized")
	}
}

func TestAuthorizationFlagsExistingSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.ProcessMessage(ctx, "", "web-auth", "", domain.PlatformWeb)

	res := f.svc.HandleWhatsAppAuthorization(ctx, transport.AuthorizationRequest{
		SessionID:   "web-auth",
		PhoneNumber: "5511955556666",
		Source:      "button",
	})
	if res.PrePopulated {
		t.Fatal("button authorization must not pre-populate")
	}

	session, _ := f.store.Get(ctx, "web-auth")
	if !session.WhatsAppAuthorized || session.AuthorizationSource != "button" {
		t.Fatal("existing session not authorized")
	}
}

func TestEndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.ProcessMessage(ctx, "", "web-end", "", domain.PlatformWeb)
	res := f.svc.EndSession(ctx, "web-end")
	if res.Status != "session_ended" || !res.SessionEnded {
		t.Fatalf("unexpected end result: %+v", res)
	}

	session, _ := f.store.Get(ctx, "web-end")
	if !session.SessionEnded {
		t.Fatal("session not marked ended")
	}

	if res := f.svc.EndSession(ctx, "unknown"); res.Status != "not_found" {
		t.Fatalf("ending unknown session: %+v", res)
	}
}

func TestGetSessionContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if sc := f.svc.GetSessionContext(ctx, "nope"); sc.Exists {
		t.Fatal("context for unknown session claims existence")
	}

	f.svc.ProcessMessage(ctx, "", "web-ctx", "", domain.PlatformWeb)
	f.svc.ProcessMessage(ctx, "Maria Souza", "web-ctx", "", domain.PlatformWeb)

	sc := f.svc.GetSessionContext(ctx, "web-ctx")
	if !sc.Exists {
		t.Fatal("context missing for stored session")
	}
	if sc.CurrentStep != string(domain.StepArea) {
		t.Fatalf("context step = %s", sc.CurrentStep)
	}
	if sc.LeadData.Identification != "Maria Souza" {
		t.Fatalf("context lead name = %q", sc.LeadData.Identification)
	}
	if sc.MessageCount != 2 {
		t.Fatalf("context message count = %d", sc.MessageCount)
	}
}

func TestFollowUpScheduledAfterNotification(t *testing.T) {
	f := newFixture(t)
	runScenario(t, f, "web-follow", webScenario)

	f.scheduler.mu.Lock()
	defer f.scheduler.mu.Unlock()
	if len(f.scheduler.tasks) != 1 {
		t.Fatalf("follow-ups scheduled = %d, want 1", len(f.scheduler.tasks))
	}
	if f.scheduler.tasks[0] != "web-follow" {
		t.Fatalf("follow-up session = %q", f.scheduler.tasks[0])
	}
}

func TestPhoneRepromptWhenMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session := domain.NewSession("wa-nophone", domain.PlatformWhatsApp, time.Now().UTC())
	session.CurrentStep = domain.StepCompleted
	session.FlowCompleted = true
	session.LeadData = domain.LeadData{
		Identification:    "Julia Costa",
		AreaQualification: "Direito da Saúde",
	}

	msg := f.svc.finalize(ctx, session)
	if !strings.Contains(msg, "DDD") {
		t.Fatalf("expected phone re-prompt, got %q", msg)
	}
	if f.notifier.count() != 0 {
		t.Fatal("notifier fired without a valid phone")
	}
	if len(f.leads.records) != 0 {
		t.Fatal("lead persisted without a valid phone")
	}
}

func TestUnknownStepSelfHeals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session := domain.NewSession("web-corrupt", domain.PlatformWeb, time.Now().UTC())
	session.FirstInteraction = false
	session.CurrentStep = domain.Step("step9_bogus")
	if err := f.store.Put(ctx, session); err != nil {
		t.Fatal(err)
	}

	f.svc.ProcessMessage(ctx, "oi", "web-corrupt", "", domain.PlatformWeb)

	stored, _ := f.store.Get(ctx, "web-corrupt")
	if stored.CurrentStep != domain.StepGreeting {
		t.Fatalf("corrupted session not reset: %s", stored.CurrentStep)
	}
	if !stored.FirstInteraction {
		t.Fatal("reset session should replay the greeting next turn")
	}
}

func TestConcurrentMessagesSerializePerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.ProcessMessage(ctx, "", "web-conc", "", domain.PlatformWeb)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.svc.ProcessMessage(ctx, "x", "web-conc", "", domain.PlatformWeb)
		}()
	}
	wg.Wait()

	session, _ := f.store.Get(ctx, "web-conc")
	if session.MessageCount != 11 {
		t.Fatalf("message count = %d, want 11 (no lost updates)", session.MessageCount)
	}
}
