package domain

import "testing"

func TestScoreEmptyIsZero(t *testing.T) {
	if got := Score(LeadData{}, PlatformWeb); got != 0.0 {
		t.Fatalf("empty lead scored %f, want 0.0", got)
	}
}

func TestScoreMaximalLead(t *testing.T) {
	lead := LeadData{
		Identification:    "Maria Aparecida Souza",
		AreaQualification: "Direito Penal",
		CaseDetails:       "Fui acusada injustamente de um crime que não cometi, preciso de defesa urgente",
		Phone:             "11987654321",
		Confirmation:      "sim",
	}

	got := Score(lead, PlatformWeb)
	if got < 0.95 {
		t.Fatalf("maximal lead scored %f, want >= 0.95", got)
	}
	if got > 1.0 {
		t.Fatalf("score %f exceeds cap", got)
	}
}

func TestScoreBounds(t *testing.T) {
	leads := []LeadData{
		{},
		{Identification: "Jo"},
		{Identification: "João Silva", Phone: "11987654321"},
		{AreaQualification: "saúde", CaseDetails: "detalhes curtos aqui mesmo"},
		{
			Identification:    "Nome Muito Comprido De Teste",
			AreaQualification: "Direito da Saúde com plano",
			CaseDetails:       "uma descrição extremamente longa do caso com muito mais de cinquenta caracteres no total",
			Phone:             "5511987654321",
			Confirmation:      "claro, pode prosseguir",
		},
	}

	for i, lead := range leads {
		got := Score(lead, PlatformWhatsApp)
		if got < 0.0 || got > 1.0 {
			t.Fatalf("lead %d scored %f, out of [0,1]", i, got)
		}
	}
}

func TestScoreComponentWeights(t *testing.T) {
	// Name alone: presence (0.15) + two tokens (0.10).
	if got := Score(LeadData{Identification: "João Silva"}, PlatformWeb); !close(got, 0.25) {
		t.Fatalf("name-only lead scored %f, want 0.25", got)
	}
	// A high-value area earns the extra bump on top of presence.
	if got := Score(LeadData{AreaQualification: "penal"}, PlatformWeb); !close(got, 0.25) {
		t.Fatalf("high-value area scored %f, want 0.25", got)
	}
	if got := Score(LeadData{AreaQualification: "trabalhista"}, PlatformWeb); !close(got, 0.15) {
		t.Fatalf("other area scored %f, want 0.15", got)
	}
	// Phone below ten digits earns nothing.
	if got := Score(LeadData{Phone: "123"}, PlatformWeb); got != 0.0 {
		t.Fatalf("short phone scored %f, want 0.0", got)
	}
}

func close(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
