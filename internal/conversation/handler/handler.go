// Package handler exposes the conversation endpoints over HTTP.
package handler

import (
	"context"
	"net/http"

	"intake_backend/internal/conversation/domain"
	"intake_backend/internal/conversation/service"
	"intake_backend/internal/conversation/transport"
	"intake_backend/platform/httpkit"
	"intake_backend/platform/logger"
	"intake_backend/platform/phone"
	"intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Gateway is the outbound WhatsApp surface the handler needs: replying to
// webhook messages and reporting instance health.
type Gateway interface {
	SendText(ctx context.Context, phone, text string) error
	InstanceStatus(ctx context.Context) (string, error)
}

type Handler struct {
	svc     *service.Service
	gateway Gateway
	val     *validator.Validator
	log     *logger.Logger
}

func New(svc *service.Service, gateway Gateway, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, gateway: gateway, val: val, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.Chat)
	rg.POST("/whatsapp/webhook", h.Webhook)
	rg.POST("/whatsapp/authorize", h.Authorize)
	rg.GET("/whatsapp/status", h.Status)
	rg.POST("/conversation/end", h.EndSession)
	rg.GET("/conversation/:id/context", h.SessionContext)
}

// Chat processes one message from the web widget.
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result := h.svc.ProcessMessage(c.Request.Context(), req.Message, req.SessionID, "", domain.PlatformWeb)
	httpkit.OK(c, result)
}

// Webhook processes an inbound WhatsApp message relayed by Evolution and
// sends the bot reply back through the gateway.
func (h *Handler) Webhook(c *gin.Context) {
	var req transport.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	sender := req.Sender()
	if req.Message == "" || sender == "" {
		httpkit.Error(c, http.StatusBadRequest, "payload missing message or sender", nil)
		return
	}

	cleanPhone := phone.StripJID(sender)
	sessionID := cleanPhone

	result := h.svc.ProcessMessage(c.Request.Context(), req.Message, sessionID, cleanPhone, domain.PlatformWhatsApp)

	botResponse := result.Response
	if botResponse == "" {
		botResponse = "Desculpe, ocorreu um erro temporário. Por favor, tente novamente."
	}

	sendStatus := transport.SendStatus{Success: true}
	if err := h.gateway.SendText(c.Request.Context(), cleanPhone, botResponse); err != nil {
		h.log.CollaboratorError("whatsapp_gateway", "send_reply", err)
		sendStatus = transport.SendStatus{Success: false, Error: "send failed"}
	}

	httpkit.OK(c, transport.WebhookResponse{
		Status:          "ok",
		SessionID:       sessionID,
		Phone:           cleanPhone,
		IncomingMessage: req.Message,
		BotResponse:     botResponse,
		MessageID:       req.MessageID,
		SendStatus:      sendStatus,
		FlowInfo: transport.FlowInfo{
			CurrentStep:        result.CurrentStep,
			FlowCompleted:      result.FlowCompleted,
			LawyersNotified:    result.LawyersNotified,
			QualificationScore: result.QualificationScore,
		},
	})
}

// Authorize handles the landing-page authorization event.
func (h *Handler) Authorize(c *gin.Context) {
	var req transport.AuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.HandleWhatsAppAuthorization(c.Request.Context(), req))
}

// Status reports the Evolution instance connection state.
func (h *Handler) Status(c *gin.Context) {
	state, err := h.gateway.InstanceStatus(c.Request.Context())
	if err != nil {
		h.log.CollaboratorError("whatsapp_gateway", "instance_status", err)
		httpkit.Error(c, http.StatusBadGateway, "whatsapp instance unavailable", nil)
		return
	}
	httpkit.OK(c, gin.H{"instance_state": state})
}

// EndSession closes a conversation explicitly.
func (h *Handler) EndSession(c *gin.Context) {
	var req transport.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.EndSession(c.Request.Context(), req.SessionID))
}

// SessionContext returns a read-only snapshot of a session.
func (h *Handler) SessionContext(c *gin.Context) {
	httpkit.OK(c, h.svc.GetSessionContext(c.Request.Context(), c.Param("id")))
}
