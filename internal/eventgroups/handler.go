package eventgroups

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agreeto/backend/internal/calendar"
	"github.com/agreeto/backend/internal/middleware"
	"github.com/agreeto/backend/internal/models"
	"github.com/agreeto/backend/pkg/response"
)

// AttendeeRequest mirrors the attendee payload sent by clients.
type AttendeeRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Provider       string `json:"provider"`
	ResponseStatus string `json:"response_status"`
}

func (a AttendeeRequest) toModel() models.Attendee {
	status := models.ResponseStatus(a.ResponseStatus)
	if status == "" {
		status = models.ResponseNeedsAction
	}
	return models.Attendee{
		Email:          a.Email,
		Name:           a.Name,
		Surname:        a.Surname,
		Provider:       models.Provider(a.Provider),
		ResponseStatus: status,
	}
}

// ToAttendees converts request attendees to the model shape, preserving nil.
func ToAttendees(reqs []AttendeeRequest) []models.Attendee {
	if reqs == nil {
		return nil
	}
	attendees := make([]models.Attendee, len(reqs))
	for i, a := range reqs {
		attendees[i] = a.toModel()
	}
	return attendees
}

// CreateEventRequest is one candidate slot in the create body.
type CreateEventRequest struct {
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	StartDate      string            `json:"start_date" binding:"required"`
	EndDate        string            `json:"end_date" binding:"required"`
	Attendees      []AttendeeRequest `json:"attendees"`
	AttendeeEmails []string          `json:"attendee_emails"`
}

// CreateRequest is the body for POST /event-groups.
type CreateRequest struct {
	Title         string               `json:"title" binding:"required"`
	CreateBlocker bool                 `json:"create_blocker"`
	Events        []CreateEventRequest `json:"events" binding:"required,min=1"`
}

// Handler handles event group HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates an event group handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /event-groups.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	in := CreateInput{Title: req.Title, CreateBlocker: req.CreateBlocker}
	for _, evReq := range req.Events {
		start, err := time.Parse(time.RFC3339, evReq.StartDate)
		if err != nil {
			response.BadRequest(c, "invalid start_date")
			return
		}
		end, err := time.Parse(time.RFC3339, evReq.EndDate)
		if err != nil {
			response.BadRequest(c, "invalid end_date")
			return
		}
		in.Events = append(in.Events, CreateEventInput{
			Title:          evReq.Title,
			Description:    evReq.Description,
			StartDate:      start,
			EndDate:        end,
			Attendees:      ToAttendees(evReq.Attendees),
			AttendeeEmails: evReq.AttendeeEmails,
		})
	}

	group, blockerFailures, err := h.service.Create(c.Request.Context(), userID, in)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.Created(c, gin.H{
		"event_group":      group,
		"blocker_failures": blockerFailures,
	})
}

// GetByID handles GET /event-groups/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event group id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	group, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.OK(c, group)
}

// Delete handles DELETE /event-groups/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event group id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	group, err := h.service.Delete(c.Request.Context(), userID, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.OK(c, group)
}

// RespondError translates workflow errors into the response envelope. A
// forbidden result deliberately carries no resource detail.
func RespondError(c *gin.Context, err error) {
	var provErr *calendar.ProviderError
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c, "forbidden")
	case errors.Is(err, ErrPrimaryAccountMissing):
		response.BadRequest(c, "user has no primary account")
	case errors.Is(err, ErrNoSlotSelected):
		response.BadRequest(c, "no slot selected")
	case errors.Is(err, calendar.ErrUnsupportedProvider):
		response.BadRequest(c, err.Error())
	case errors.As(err, &provErr):
		response.BadGateway(c, provErr.Error())
	default:
		response.Internal(c, "internal error")
	}
}
