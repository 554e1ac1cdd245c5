package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	convservice "intake_backend/internal/conversation/service"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"
)

type rosterConfig struct {
	roster []config.Lawyer
}

func (c rosterConfig) GetLawyerRoster() []config.Lawyer { return c.roster }
func (c rosterConfig) GetAPIBaseURL() string            { return "http://localhost:8080" }
func (c rosterConfig) GetNotifyEmailEnabled() bool      { return false }
func (c rosterConfig) GetSMTPHost() string              { return "" }
func (c rosterConfig) GetSMTPPort() int                 { return 587 }
func (c rosterConfig) GetSMTPUser() string              { return "" }
func (c rosterConfig) GetSMTPPassword() string          { return "" }
func (c rosterConfig) GetNotifyEmailFrom() string       { return "" }
func (c rosterConfig) GetNotifyEmailTo() string         { return "" }

type recordingMessenger struct {
	mu   sync.Mutex
	sent map[string]string
	fail map[string]bool
}

func (m *recordingMessenger) SendText(_ context.Context, phone, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[phone] {
		return errors.New("send failed")
	}
	if m.sent == nil {
		m.sent = make(map[string]string)
	}
	m.sent[phone] = text
	return nil
}

var sampleNotification = convservice.Notification{
	LeadName:  "Maria Souza",
	LeadPhone: "11987654321",
	Category:  "Direito Penal",
	Details: map[string]string{
		"case_details":           "Fui acusada injustamente de um crime que não cometi",
		"urgency":                "normal",
		"lead_source":            "web_completed_flow",
		"preferred_contact_time": "não informado",
	},
}

func TestNotifyFansOutToRoster(t *testing.T) {
	cfg := rosterConfig{roster: []config.Lawyer{
		{Name: "Dr. Lima", Phone: "11911112222"},
		{Name: "Dra. Costa", Phone: "5511933334444"},
	}}
	messenger := &recordingMessenger{}
	svc := New(cfg, messenger, nil, logger.New("development"))

	ok, err := svc.Notify(context.Background(), sampleNotification)
	if err != nil || !ok {
		t.Fatalf("notify = %v, %v", ok, err)
	}
	if len(messenger.sent) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(messenger.sent))
	}

	msg, found := messenger.sent["5511911112222"]
	if !found {
		t.Fatal("roster phone not normalized to country-code form")
	}
	for _, want := range []string{"Maria Souza", "11987654321", "Direito Penal", "Novo cliente"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("alert missing %q:\n%s", want, msg)
		}
	}
}

func TestNotifySucceedsWithPartialDelivery(t *testing.T) {
	cfg := rosterConfig{roster: []config.Lawyer{
		{Name: "Dr. Lima", Phone: "11911112222"},
		{Name: "Dra. Costa", Phone: "11933334444"},
	}}
	messenger := &recordingMessenger{fail: map[string]bool{"5511911112222": true}}
	svc := New(cfg, messenger, nil, logger.New("development"))

	ok, err := svc.Notify(context.Background(), sampleNotification)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !ok {
		t.Fatal("one successful delivery should count as success")
	}
}

func TestNotifyFailsWithEmptyRoster(t *testing.T) {
	svc := New(rosterConfig{}, &recordingMessenger{}, nil, logger.New("development"))

	ok, err := svc.Notify(context.Background(), sampleNotification)
	if ok || err == nil {
		t.Fatalf("empty roster should fail, got %v, %v", ok, err)
	}
}

func TestAlertMessageTruncatesSituation(t *testing.T) {
	n := sampleNotification
	n.Details = map[string]string{
		"case_details": strings.Repeat("çã", 150),
		"lead_source":  "web_completed_flow",
	}

	msg := alertMessage(n)
	if !strings.Contains(msg, "...") {
		t.Fatal("long situation not truncated")
	}
}

func TestAlertMessageFlagsUrgency(t *testing.T) {
	n := sampleNotification
	n.Details = map[string]string{
		"case_details": "detalhes",
		"urgency":      "high",
		"lead_source":  "whatsapp_completed_flow",
	}

	if !strings.Contains(alertMessage(n), "urgência alta") {
		t.Fatal("high urgency not surfaced in alert")
	}
}
