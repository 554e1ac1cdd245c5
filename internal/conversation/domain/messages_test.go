package domain

import (
	"strings"
	"testing"
	"time"
)

func TestInterpolate(t *testing.T) {
	lead := LeadData{Identification: "Maria Souza", AreaQualification: "Direito Penal"}

	got := Interpolate("Olá {user_name}, sobre {area}.", lead)
	if got != "Olá Maria, sobre Direito Penal." {
		t.Fatalf("Interpolate = %q", got)
	}

	// Absent values leave the placeholder untouched.
	got = Interpolate("Olá {user_name}", LeadData{})
	if got != "Olá {user_name}" {
		t.Fatalf("Interpolate with empty lead = %q", got)
	}

	if got := Interpolate("", lead); got == "" {
		t.Fatal("empty template must fall back to a generic prompt")
	}
}

func TestGreetingSalutationFollowsHour(t *testing.T) {
	// 14:00 UTC = 11:00 in São Paulo (UTC-3): morning.
	morning := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	if !strings.HasPrefix(Greeting("m.lima", morning), "Bom dia") {
		t.Fatal("expected morning salutation")
	}

	// 18:00 UTC = 15:00 local: afternoon.
	afternoon := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	if !strings.HasPrefix(Greeting("m.lima", afternoon), "Boa tarde") {
		t.Fatal("expected afternoon salutation")
	}

	// 23:00 UTC = 20:00 local: evening.
	evening := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	if !strings.HasPrefix(Greeting("m.lima", evening), "Boa noite") {
		t.Fatal("expected evening salutation")
	}
}

func TestStrategicMessageVariesByArea(t *testing.T) {
	penal := StrategicWhatsAppMessage("Maria Souza", "Direito Penal")
	saude := StrategicWhatsAppMessage("Maria Souza", "plano de saúde")
	other := StrategicWhatsAppMessage("Maria Souza", "trabalhista")

	if !strings.Contains(penal, "Direito Penal") {
		t.Fatal("penal copy missing")
	}
	if !strings.Contains(saude, "Direito da Saúde") {
		t.Fatal("health copy missing")
	}
	if penal == other || saude == other {
		t.Fatal("default copy must differ from matched areas")
	}
	if !strings.HasPrefix(penal, "🚀 Maria,") {
		t.Fatalf("first name not interpolated: %q", penal[:30])
	}
}

func TestFinalMessageReflectsOutcomes(t *testing.T) {
	notified := FinalMessage("Maria", true, true)
	if !strings.Contains(notified, "imediatamente notificada") {
		t.Fatal("notified wording missing")
	}
	if !strings.Contains(notified, "WhatsApp") {
		t.Fatal("whatsapp confirmation wording missing")
	}

	degraded := FinalMessage("Maria", false, false)
	if strings.Contains(degraded, "imediatamente notificada") {
		t.Fatal("degraded message must not claim notification")
	}
	if !strings.Contains(degraded, "salvas com segurança") {
		t.Fatal("degraded message must still reassure")
	}
}
