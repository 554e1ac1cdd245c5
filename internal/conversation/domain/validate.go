package domain

import (
	"strings"
	"unicode"
)

// Keyword sets used by answer validation. They are exported so tests can
// enumerate the accepted vocabulary exactly; there is no intent
// classification beyond these substring matches.
var (
	// AreaKeywords mark an answer as naming one of the two supported
	// practice areas (criminal law, health/insurance law).
	AreaKeywords = []string{"penal", "saude", "saúde", "criminal", "liminar", "medic", "plano"}

	// ContactTimeKeywords mark a WhatsApp answer as expressing a
	// time-of-day preference.
	ContactTimeKeywords = []string{"manhã", "manha", "tarde", "noite", "horário", "horario", "h", ":", "qualquer", "tanto faz", "não me importo"}

	// ConfirmationKeywords mark an answer as affirmative.
	ConfirmationKeywords = []string{"sim", "ok", "pode", "vamos", "claro", "aceito", "concordo"}
)

// Validation error messages returned to the user on rejection.
const (
	msgInvalidAnswer     = "Por favor, forneça uma resposta válida."
	msgNeedFullName      = "Por favor, informe seu nome completo (nome e sobrenome)."
	msgChooseArea        = "Por favor, escolha entre Direito Penal ou Direito da Saúde."
	msgNeedMoreDetails   = "Por favor, me conte mais detalhes sobre sua situação para que possamos ajudá-lo melhor."
	msgNeedValidPhone    = "Por favor, digite um número de WhatsApp válido com DDD (ex: 11999999999)."
	msgNeedContactTime   = "Por favor, me diga qual o melhor horário para contato (manhã, tarde ou noite)."
	msgPleaseConfirm     = "Por favor, confirme se podemos prosseguir (responda 'sim' ou 'ok')."
	minCaseDetailsLength = 15
	minPhoneDigits       = 10
	maxPhoneDigits       = 13
)

// Validate checks a free-text answer against the rules of the given step.
// It is a pure function: same input, same verdict. On rejection the second
// return value carries the user-facing guidance message.
func Validate(answer string, step Step, platform Platform) (bool, string) {
	if len(strings.TrimSpace(answer)) < 2 {
		return false, msgInvalidAnswer
	}

	switch step {
	case StepName:
		if len(strings.Fields(answer)) < 2 {
			return false, msgNeedFullName
		}
		return true, ""

	case StepArea:
		if !containsAny(answer, AreaKeywords) {
			return false, msgChooseArea
		}
		return true, ""

	case StepDetails:
		if len(strings.TrimSpace(answer)) < minCaseDetailsLength {
			return false, msgNeedMoreDetails
		}
		return true, ""

	case StepPhone:
		if platform == PlatformWhatsApp {
			// Looser intent detection: a time-of-day keyword or any
			// digit counts as an answer.
			if !containsAny(answer, ContactTimeKeywords) && !containsDigit(answer) {
				return false, msgNeedContactTime
			}
			return true, ""
		}
		digits := countDigits(answer)
		if digits < minPhoneDigits || digits > maxPhoneDigits {
			return false, msgNeedValidPhone
		}
		return true, ""

	case StepConfirmation:
		if !containsAny(answer, ConfirmationKeywords) {
			return false, msgPleaseConfirm
		}
		return true, ""
	}

	return true, ""
}

func containsAny(answer string, keywords []string) bool {
	lower := strings.ToLower(answer)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
