// Package domain holds the conversation state machine core: the step table,
// the session model, answer validation, qualification scoring, and the
// notification gate. Everything in this package is pure; side effects live
// in the service layer.
package domain

// Platform is the conversation surface a session is bound to.
type Platform string

const (
	PlatformWeb      Platform = "web"
	PlatformWhatsApp Platform = "whatsapp"
)

// Step identifies a state of the conversation flow.
type Step string

const (
	StepGreeting     Step = "greeting"
	StepName         Step = "step1_name"
	StepArea         Step = "step3_area"
	StepDetails      Step = "step4_details"
	StepPhone        Step = "phone_collection"
	StepConfirmation Step = "step5_confirmation"
	StepCompleted    Step = "completed"
	StepEnded        Step = "ended"
)

// Known reports whether s is a recognized step value. Sessions carrying an
// unknown step are considered corrupted and reset to the greeting.
func (s Step) Known() bool {
	switch s {
	case StepGreeting, StepName, StepArea, StepDetails, StepPhone,
		StepConfirmation, StepCompleted, StepEnded:
		return true
	}
	return false
}

// Field names a lead data slot a step writes its validated answer into.
type Field string

const (
	FieldNone                 Field = ""
	FieldIdentification       Field = "identification"
	FieldAreaQualification    Field = "area_qualification"
	FieldCaseDetails          Field = "case_details"
	FieldPhone                Field = "phone"
	FieldPreferredContactTime Field = "preferred_contact_time"
	FieldConfirmation         Field = "confirmation"
)

// StepConfig is one entry of the per-platform step table.
type StepConfig struct {
	// Question is the prompt template. {user_name} and {area} are
	// interpolated from collected lead data when present.
	Question string
	// Field is the lead data slot the validated answer is written into.
	// FieldNone for purely informational steps.
	Field Field
	// Next is the step entered after a valid answer.
	Next Step
}

const (
	questionName = "Qual é o seu nome completo? 😊"

	questionArea = "Prazer em conhecê-lo, {user_name}! 🤝\n\n" +
		"Em qual área do direito você precisa de nossa ajuda?\n\n" +
		"⚖️ Direito Penal (crimes, investigações, defesas)\n" +
		"🏥 Direito da Saúde (planos de saúde, ações médicas, liminares)\n\n" +
		"Qual dessas áreas tem a ver com sua situação?"

	questionDetails = "Entendi, {user_name}. 💼\n\n" +
		"Para nossos advogados já terem uma visão completa, me conte:\n\n" +
		"• Sua situação já está na justiça ou é algo que acabou de acontecer?\n" +
		"• Tem algum prazo urgente ou audiência marcada?\n" +
		"• Em que cidade isso está ocorrendo?\n\n" +
		"Fique à vontade para me contar os detalhes! 🤝"

	questionPhoneWeb = "Obrigado pelos detalhes, {user_name}! 📝\n\n" +
		"Estamos quase finalizando, preciso do seu WhatsApp com DDD (ex: 11999999999):"

	questionContactTime = "Obrigado pelos detalhes, {user_name}! 📝\n\n" +
		"Para organizarmos o melhor atendimento, qual o melhor horário para nossos advogados entrarem em contato com você?\n\n" +
		"🕐 Manhã (8h-12h)\n🕐 Tarde (12h-18h)\n🕐 Noite (18h-20h)\n\n" +
		"Ou fique à vontade para sugerir um horário específico!"

	questionConfirmation = "Perfeito, {user_name}! 🙏\n\n" +
		"Vou registrar todas essas informações para que o advogado responsável já entenda completamente seu caso e possa te ajudar com agilidade.\n\n" +
		"Em alguns minutos você estará falando diretamente com um especialista. Podemos prosseguir? 🚀"
)

// Steps returns the ordered step table for the given platform.
//
// The phone_collection entry is the deliberate channel divergence: the web
// widget must ask for a phone number, while WhatsApp already knows the
// sender's number from transport metadata and asks for a preferred contact
// window instead.
func Steps(platform Platform) map[Step]StepConfig {
	phoneQuestion := questionPhoneWeb
	phoneField := FieldPhone
	if platform == PlatformWhatsApp {
		phoneQuestion = questionContactTime
		phoneField = FieldPreferredContactTime
	}

	return map[Step]StepConfig{
		StepGreeting: {
			Question: "",
			Field:    FieldNone,
			Next:     StepName,
		},
		StepName: {
			Question: questionName,
			Field:    FieldIdentification,
			Next:     StepArea,
		},
		StepArea: {
			Question: questionArea,
			Field:    FieldAreaQualification,
			Next:     StepDetails,
		},
		StepDetails: {
			Question: questionDetails,
			Field:    FieldCaseDetails,
			Next:     StepPhone,
		},
		StepPhone: {
			Question: phoneQuestion,
			Field:    phoneField,
			Next:     StepConfirmation,
		},
		StepConfirmation: {
			Question: questionConfirmation,
			Field:    FieldConfirmation,
			Next:     StepCompleted,
		},
	}
}
