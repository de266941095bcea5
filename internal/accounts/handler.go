// Package accounts exposes the caller's linked calendar accounts and a
// provider-backed event listing per account.
package accounts

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/agreeto/backend/internal/calendar"
	"github.com/agreeto/backend/internal/middleware"
	"github.com/agreeto/backend/internal/models"
	"github.com/agreeto/backend/pkg/response"
)

// Handler handles account HTTP endpoints.
type Handler struct {
	repo      *Repository
	calendars calendar.Factory
	logger    *zap.Logger
}

// NewHandler creates an account handler.
func NewHandler(repo *Repository, calendars calendar.Factory, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, calendars: calendars, logger: logger}
}

// List handles GET /accounts: all accounts linked by the caller.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	accounts, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		response.Internal(c, "failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	response.OK(c, accounts)
}

// Related handles GET /accounts/related: the caller's other linked accounts
// as slim references, optionally excluding one account by id or email.
func (h *Handler) Related(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var excludeID *uuid.UUID
	if raw := c.Query("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid exclude_id")
			return
		}
		excludeID = &id
	}
	var excludeEmail *string
	if raw := c.Query("exclude_email"); raw != "" {
		excludeEmail = &raw
	}

	refs, err := h.repo.ListRelated(c.Request.Context(), userID, excludeID, excludeEmail)
	if err != nil {
		h.logger.Error("failed to list related accounts", zap.Error(err))
		response.Internal(c, "failed to list related accounts")
		return
	}
	if refs == nil {
		refs = []models.AccountRef{}
	}
	response.OK(c, refs)
}

// ListEvents handles GET /accounts/:id/events: events read live from the
// account's calendar provider, optionally bounded by start_date/end_date
// query parameters (RFC 3339).
func (h *Handler) ListEvents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid account id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	in, ok := parseRange(c)
	if !ok {
		return
	}

	account, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "account not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load account", zap.Error(err))
		response.Internal(c, "failed to load account")
		return
	}
	if account.UserID != userID {
		response.Forbidden(c, "forbidden")
		return
	}

	cal, err := h.calendars(c.Request.Context(), account)
	if err != nil {
		if errors.Is(err, calendar.ErrUnsupportedProvider) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("failed to build calendar adapter", zap.Error(err))
		response.Internal(c, "failed to build calendar adapter")
		return
	}

	events, err := cal.GetEvents(c.Request.Context(), in)
	if err != nil {
		h.logger.Warn("provider event listing failed",
			zap.String("account_id", account.ID.String()),
			zap.Error(err),
		)
		response.BadGateway(c, err.Error())
		return
	}
	if events == nil {
		events = []calendar.Event{}
	}
	response.OK(c, events)
}

func parseRange(c *gin.Context) (calendar.GetEventsInput, bool) {
	var in calendar.GetEventsInput
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "invalid start_date")
			return in, false
		}
		in.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "invalid end_date")
			return in, false
		}
		in.EndDate = &t
	}
	return in, true
}
