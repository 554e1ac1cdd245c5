package domain

import "testing"

func TestValidateTable(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		step     Step
		platform Platform
		accept   bool
	}{
		{"single token name rejected", "Jo", StepName, PlatformWeb, false},
		{"full name accepted", "João Silva", StepName, PlatformWeb, true},
		{"area without keyword rejected", "preciso de ajuda", StepArea, PlatformWeb, false},
		{"area with penal keyword accepted", "preciso de um advogado penal", StepArea, PlatformWeb, true},
		{"area with health keyword accepted", "meu plano de saúde negou cobertura", StepArea, PlatformWeb, true},
		{"web phone accepted", "11999999999", StepPhone, PlatformWeb, true},
		{"web phone too short rejected", "123", StepPhone, PlatformWeb, false},
		{"web phone too long rejected", "123456789012345", StepPhone, PlatformWeb, false},
		{"whatsapp time keyword accepted", "de manhã, por favor", StepPhone, PlatformWhatsApp, true},
		{"whatsapp colon time accepted", "10:30", StepPhone, PlatformWhatsApp, true},
		{"whatsapp digit accepted", "depois das 14", StepPhone, PlatformWhatsApp, true},
		{"whatsapp no intent rejected", "pode ser", StepPhone, PlatformWhatsApp, false},
		{"short details rejected", "fui preso", StepDetails, PlatformWeb, false},
		{"long details accepted", "fui acusado injustamente e tenho audiência marcada", StepDetails, PlatformWeb, true},
		{"confirmation keyword accepted", "sim, vamos", StepConfirmation, PlatformWeb, true},
		{"confirmation without keyword rejected", "talvez depois", StepConfirmation, PlatformWeb, false},
		{"empty answer rejected everywhere", "", StepName, PlatformWeb, false},
		{"single char rejected everywhere", "a", StepArea, PlatformWeb, false},
		{"greeting step only universal check", "oi", StepGreeting, PlatformWeb, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accept, errMsg := Validate(tt.answer, tt.step, tt.platform)
			if accept != tt.accept {
				t.Fatalf("Validate(%q, %s, %s) = %v, want %v", tt.answer, tt.step, tt.platform, accept, tt.accept)
			}
			if !accept && errMsg == "" {
				t.Fatal("rejection must carry a guidance message")
			}
			if accept && errMsg != "" {
				t.Fatalf("acceptance must not carry an error, got %q", errMsg)
			}
		})
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		accept, msg := Validate("Maria Souza", StepName, PlatformWeb)
		if !accept || msg != "" {
			t.Fatalf("run %d: verdict changed", i)
		}
	}
}

func TestKeywordSetsAreAccepted(t *testing.T) {
	for _, kw := range AreaKeywords {
		if ok, _ := Validate("tenho um caso de "+kw, StepArea, PlatformWeb); !ok {
			t.Fatalf("area keyword %q not accepted", kw)
		}
	}
	for _, kw := range ConfirmationKeywords {
		if ok, _ := Validate(kw+" claro", StepConfirmation, PlatformWeb); !ok {
			t.Fatalf("confirmation keyword %q not accepted", kw)
		}
	}
}
