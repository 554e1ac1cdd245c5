package phone

import "testing"

func TestNormalizeBR(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"eleven digit mobile", "11987654321", "5511987654321"},
		{"ten digit mobile gains nine", "1187654321", "5511987654321"},
		{"ten digit landline unchanged", "1133334444", "551133334444"},
		{"nine digits without ddd", "987654321", "55987654321"},
		{"eight digits without ddd", "87654321", "5587654321"},
		{"already has country code", "5511987654321", "5511987654321"},
		{"ddd 55 mobile keeps its ddd", "55987654321", "5555987654321"},
		{"formatted input", "(11) 98765-4321", "5511987654321"},
		{"seven digits pass through", "1234567", "551234567"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeBR(tt.input); got != tt.want {
				t.Fatalf("NormalizeBR(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWhatsAppJID(t *testing.T) {
	if got := WhatsAppJID("11987654321"); got != "5511987654321@s.whatsapp.net" {
		t.Fatalf("unexpected JID: %q", got)
	}
	// Re-formatting an address that already carries the suffix must not
	// double it.
	if got := WhatsAppJID("5511987654321@s.whatsapp.net"); got != "5511987654321@s.whatsapp.net" {
		t.Fatalf("unexpected JID for suffixed input: %q", got)
	}
}

func TestStripJID(t *testing.T) {
	if got := StripJID("5511987654321@s.whatsapp.net"); got != "5511987654321" {
		t.Fatalf("unexpected stripped number: %q", got)
	}
	if got := StripJID("5511987654321"); got != "5511987654321" {
		t.Fatalf("bare number should pass through, got %q", got)
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("+55 (11) 98765-4321"); got != "5511987654321" {
		t.Fatalf("Digits = %q", got)
	}
}

func TestNormalizeE164(t *testing.T) {
	if got := NormalizeE164("11987654321"); got != "+5511987654321" {
		t.Fatalf("NormalizeE164 = %q", got)
	}
	if got := NormalizeE164(""); got != "" {
		t.Fatalf("empty input should stay empty, got %q", got)
	}
}
