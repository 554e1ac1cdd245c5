// Package handler exposes the leads endpoints over HTTP.
package handler

import (
	"errors"
	"net/http"

	"intake_backend/internal/leads/service"
	"intake_backend/internal/leads/transport"
	"intake_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/assign/:lawyer", h.Assign)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// Assign claims a lead through the clickable link sent to the roster.
// Responds with plain JSON because lawyers open it in a browser.
func (h *Handler) Assign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}
	lawyer := c.Param("lawyer")
	if lawyer == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing lawyer", nil)
		return
	}

	lead, err := h.svc.Assign(c.Request.Context(), id, lawyer)
	if errors.Is(err, service.ErrAlreadyAssigned) {
		httpkit.JSON(c, http.StatusConflict, transport.AssignResult{
			Status: "already_assigned",
			Lead:   lead,
		})
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.AssignResult{Status: "assigned", Lead: lead})
}
