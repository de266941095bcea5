// Package users exposes user profile lookups and membership changes.
package users

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/agreeto/backend/internal/middleware"
	"github.com/agreeto/backend/internal/models"
	"github.com/agreeto/backend/pkg/response"
)

// Handler handles user HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a user handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Me handles GET /users/me.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load user", zap.Error(err))
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, user)
}

// ByID handles GET /users/:id.
func (h *Handler) ByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load user", zap.Error(err))
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, user)
}

// ByEmail handles GET /users/by-email/:email. The email may belong to the
// user directly or to any of their linked accounts.
func (h *Handler) ByEmail(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		response.BadRequest(c, "email is required")
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), email)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load user by email", zap.Error(err))
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, user)
}

// UpdateMembershipRequest is the body for PATCH /users/me/membership.
type UpdateMembershipRequest struct {
	Membership string `json:"membership" binding:"required"`
}

// UpdateMembership handles PATCH /users/me/membership.
func (h *Handler) UpdateMembership(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	membership := models.Membership(req.Membership)
	if !membership.Valid() {
		response.BadRequest(c, "unknown membership tier")
		return
	}

	user, err := h.repo.UpdateMembership(c.Request.Context(), userID, membership)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update membership", zap.Error(err))
		response.Internal(c, "failed to update membership")
		return
	}
	response.OK(c, user)
}
