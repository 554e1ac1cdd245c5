package domain

import (
	"fmt"
	"strings"
	"time"
)

// brazilTZ is the timezone used for the time-of-day salutation. Stored
// timestamps stay in UTC; only greeting wording depends on local time.
var brazilTZ = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// Greeting builds the opening message for a new conversation. The
// salutation follows the local hour in Brazil.
func Greeting(firmName string, now time.Time) string {
	hour := now.In(brazilTZ).Hour()

	salutation := "Boa noite"
	switch {
	case hour >= 5 && hour < 12:
		salutation = "Bom dia"
	case hour >= 12 && hour < 18:
		salutation = "Boa tarde"
	}

	return fmt.Sprintf(`%s! 👋

Bem-vindo ao %s. 💼

Para que eu possa direcionar você ao advogado especialista ideal e acelerar a solução do seu caso, preciso conhecer um pouco mais sobre sua situação.

Tudo bem? 😊`, salutation, firmName)
}

// UnauthorizedMessage is returned to WhatsApp senders that never passed
// through the landing page authorization path.
func UnauthorizedMessage(firmName, landingPageURL string) string {
	return fmt.Sprintf(`Olá! 👋

Para iniciarmos seu atendimento personalizado e direcioná-lo ao advogado especialista ideal, precisamos que você acesse nossa página oficial:

🌐 %s

Lá você encontrará:
✅ Informações sobre nossas áreas de atuação
✅ Formulário de atendimento
✅ Botão direto para conversar conosco pelo WhatsApp

Aguardamos seu contato através da nossa página oficial! 😊

---
%s
Atendimento autorizado apenas via site oficial`, landingPageURL, firmName)
}

// ClosedMessage acknowledges a message sent to a session that was already
// forcibly ended.
func ClosedMessage(lead LeadData) string {
	name := lead.FirstName()
	if name != "" {
		return fmt.Sprintf("Esta conversa já foi finalizada, %s. Nossa equipe entrará em contato em breve!", name)
	}
	return "Esta conversa já foi finalizada. Nossa equipe entrará em contato em breve!"
}

// CompletedAcknowledgement is sent when a message arrives for an already
// completed flow within the same processing cycle.
func CompletedAcknowledgement(lead LeadData) string {
	name := lead.FirstName()
	if name != "" {
		return fmt.Sprintf("Obrigado, %s! Nossa equipe já foi notificada e entrará em contato em breve. 😊", name)
	}
	return "Obrigado! Nossa equipe já foi notificada e entrará em contato em breve. 😊"
}

// Interpolate substitutes {user_name} and {area} placeholders with data
// collected so far. Absent values leave the placeholder untouched; there is
// no partial substitution.
func Interpolate(message string, lead LeadData) string {
	if message == "" {
		return "Como posso ajudá-lo?"
	}

	if name := lead.FirstName(); name != "" {
		message = strings.ReplaceAll(message, "{user_name}", name)
	}
	if area := lead.AreaQualification; area != "" {
		message = strings.ReplaceAll(message, "{area}", area)
	}

	return message
}

// areaCopy holds the persuasion copy blocks of the post-completion WhatsApp
// message, keyed by matched practice area.
type areaCopy struct {
	expertise string
	urgency   string
	benefit   string
}

var areaCopies = map[string]areaCopy{
	"penal": {
		expertise: "Nossa equipe especializada em Direito Penal já resolveu centenas de casos similares",
		urgency:   "Sabemos que situações criminais precisam de atenção IMEDIATA",
		benefit:   "proteger seus direitos e buscar o melhor resultado possível",
	},
	"saude": {
		expertise: "Nossos advogados especialistas em Direito da Saúde têm expertise em ações contra planos",
		urgency:   "Questões de saúde não podem esperar",
		benefit:   "garantir seu tratamento e obter as coberturas devidas",
	},
	"default": {
		expertise: "Nossa equipe jurídica experiente",
		urgency:   "Sua situação precisa de atenção especializada",
		benefit:   "alcançar a solução mais eficaz para seu caso",
	},
}

func matchAreaCopy(area string) areaCopy {
	lower := strings.ToLower(area)
	for _, kw := range []string{"penal", "criminal", "crime"} {
		if strings.Contains(lower, kw) {
			return areaCopies["penal"]
		}
	}
	for _, kw := range []string{"saude", "saúde", "plano", "medic"} {
		if strings.Contains(lower, kw) {
			return areaCopies["saude"]
		}
	}
	return areaCopies["default"]
}

// StrategicWhatsAppMessage is the follow-up sent to a web lead's WhatsApp
// after finalization. Copy varies with the matched practice area.
func StrategicWhatsAppMessage(userName, area string) string {
	firstName := "Cliente"
	if fields := strings.Fields(userName); len(fields) > 0 {
		firstName = fields[0]
	}

	msgs := matchAreaCopy(area)

	return fmt.Sprintf(`🚀 %s, uma EXCELENTE notícia!

✅ Seu atendimento foi PRIORIZADO no sistema m.lima

%s com resultados comprovados e já foi IMEDIATAMENTE notificada sobre seu caso.

🎯 %s - por isso um advogado experiente entrará em contato com você nos PRÓXIMOS MINUTOS.

🏆 DIFERENCIAL m.lima:
- ⚡ Atendimento ágil e personalizado
- 🎯 Estratégia focada em RESULTADOS
- 📋 Acompanhamento completo do processo
- 💪 Equipe com vasta experiência

Você fez a escolha certa ao confiar no m.lima para %s.

⏰ Aguarde nossa ligação - sua situação está em excelentes mãos!

---
✉️ m.lima Advogados Associados
📱 Contato prioritário ativado`, firstName, msgs.expertise, msgs.urgency, msgs.benefit)
}

// FinalMessage is the closing acknowledgement after finalization. It
// reflects whether notification and the WhatsApp confirmation worked, but
// never carries internal error detail.
func FinalMessage(firstName string, notified, whatsappSent bool) string {
	if firstName == "" {
		firstName = "Cliente"
	}

	notificationStatus := ""
	if notified {
		notificationStatus = " ⚡ Nossa equipe foi imediatamente notificada!"
	}

	confirmationLine := "📝 Suas informações foram salvas com segurança."
	if whatsappSent {
		confirmationLine = "📱 Mensagem de confirmação enviada no seu WhatsApp!"
	}

	return fmt.Sprintf(`Perfeito, %s! ✅

Todas suas informações foram registradas com sucesso%s

Um advogado experiente do m.lima entrará em contato com você em breve para dar prosseguimento ao seu caso com toda atenção necessária.

%s

Você fez a escolha certa ao confiar no escritório m.lima para cuidar do seu caso!

Em alguns minutos, um especialista entrará em contato.`, firstName, notificationStatus, confirmationLine)
}

// PhoneReprompt asks the user again for a deliverable phone number during
// finalization. Recoverable; the flow stays at its current step.
func PhoneReprompt(firstName string) string {
	if firstName == "" {
		firstName = "Cliente"
	}
	return fmt.Sprintf("Para finalizar, %s, preciso do seu WhatsApp com DDD (ex: 11999999999):", firstName)
}
