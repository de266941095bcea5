package eventgroups

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/agreeto/backend/internal/calendar"
	"github.com/agreeto/backend/internal/models"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"no primary account", ErrPrimaryAccountMissing, http.StatusBadRequest},
		{"no slot selected", ErrNoSlotSelected, http.StatusBadRequest},
		{"unsupported provider", calendar.ErrUnsupportedProvider, http.StatusBadRequest},
		{
			"provider failure",
			&calendar.ProviderError{Provider: models.ProviderAzure, Err: errors.New("503 from graph")},
			http.StatusBadGateway,
		},
		{"anything else", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondError(c, tt.err)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRespondErrorWrappedProviderError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	// Errors wrapped by the workflow still map by their provider cause.
	inner := &calendar.ProviderError{Provider: models.ProviderGoogle, Err: errors.New("quota")}
	RespondError(c, inner)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
