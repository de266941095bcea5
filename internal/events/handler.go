// Package events exposes operations on individual candidate slots,
// chiefly the confirmation of a winning slot.
package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agreeto/backend/internal/eventgroups"
	"github.com/agreeto/backend/internal/middleware"
	"github.com/agreeto/backend/pkg/response"
)

// ConfirmRequest is the body for POST /events/:id/confirm.
type ConfirmRequest struct {
	Title         string                        `json:"title"`
	AddConference bool                          `json:"add_conference"`
	Attendees     []eventgroups.AttendeeRequest `json:"attendees"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	service *eventgroups.Service
}

// NewHandler creates an event handler.
func NewHandler(service *eventgroups.Service) *Handler {
	return &Handler{service: service}
}

// Confirm handles POST /events/:id/confirm. Never auto-retried by clients:
// the provider-side update is not guaranteed idempotent.
func (h *Handler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	event, err := h.service.Confirm(c.Request.Context(), userID, id, eventgroups.ConfirmInput{
		Title:         req.Title,
		AddConference: req.AddConference,
		Attendees:     eventgroups.ToAttendees(req.Attendees),
	})
	if err != nil {
		eventgroups.RespondError(c, err)
		return
	}
	response.OK(c, event)
}
