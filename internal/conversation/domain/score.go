package domain

import "strings"

// HighValueAreaKeywords mark practice areas worth an extra score bump.
var HighValueAreaKeywords = []string{"penal", "saude", "saúde", "criminal", "plano"}

// Score estimates lead readiness for lawyer follow-up on a [0,1] scale.
// It is an additive point system, channel independent, capped at 1.0:
// name presence and shape, phone, area (plus high-value bump), case detail
// depth, and final confirmation each contribute a fixed share.
func Score(lead LeadData, platform Platform) float64 {
	score := 0.0

	name := strings.TrimSpace(lead.Identification)
	if len(name) >= 3 {
		score += 0.15
	}
	if len(strings.Fields(name)) >= 2 {
		score += 0.10
	}

	phone := strings.TrimSpace(lead.Phone)
	if len(phone) >= 10 {
		score += 0.25
	}

	area := strings.TrimSpace(lead.AreaQualification)
	if area != "" {
		score += 0.15
		if containsAny(area, HighValueAreaKeywords) {
			score += 0.10
		}
	}

	details := strings.TrimSpace(lead.CaseDetails)
	if details != "" {
		score += 0.08
		if len(details) >= 20 {
			score += 0.04
		}
		if len(details) >= 50 {
			score += 0.03
		}
	}

	if strings.TrimSpace(lead.Confirmation) != "" {
		score += 0.10
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
