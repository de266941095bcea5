// Package calendar translates between external calendar providers and the
// canonical event shape. One adapter per provider implements the Service
// capability set; the workflow engine stays provider-agnostic.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agreeto/backend/config"
	"github.com/agreeto/backend/internal/models"
)

// Event is the normalized provider-side view of a calendar event. ID carries
// the system id when the marker property is present on the provider event,
// otherwise the provider-native id.
type Event struct {
	ID             string            `json:"id"`
	MicrosoftID    string            `json:"microsoft_id,omitempty"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	IsAgreeToEvent bool              `json:"is_agreeto_event"`
	Attendees      []models.Attendee `json:"attendees"`
}

// GetEventsInput bounds a range read. Either side may be nil for unbounded.
type GetEventsInput struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateEventInput creates a provider event carrying the system id as a
// marker property so it survives round-trips.
type CreateEventInput struct {
	ID             string
	Title          string
	StartDate      time.Time
	EndDate        time.Time
	AttendeeEmails []string
}

// UpdateEventInput is a partial update. A nil AttendeeEmails leaves
// attendees untouched; an empty Title leaves the title untouched.
type UpdateEventInput struct {
	Title          string
	AttendeeEmails []string
	HasConference  bool
}

// Service is the capability set every provider adapter implements.
// Adapters never retry; retry policy belongs to the caller.
type Service interface {
	GetEvents(ctx context.Context, in GetEventsInput) ([]Event, error)
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// ErrUnsupportedProvider is returned when an account's provider has no adapter.
var ErrUnsupportedProvider = errors.New("calendar provider not supported")

// ProviderError wraps any provider API failure with the provider it came from.
type ProviderError struct {
	Provider models.Provider
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s calendar: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Factory builds the adapter for an account. Token refresh state is
// per-adapter and per-call; the account record itself is never mutated here.
type Factory func(ctx context.Context, account *models.Account) (Service, error)

// NewFactory returns a Factory dispatching on the account provider.
// Adding a provider means adding a case here; the workflow engine is untouched.
func NewFactory(google, azure config.OAuthClientConfig, cache MeetingProviderCache, logger *zap.Logger) Factory {
	return func(ctx context.Context, account *models.Account) (Service, error) {
		switch account.Provider {
		case models.ProviderGoogle:
			return newGoogleService(ctx, google, account, logger)
		case models.ProviderAzure:
			return newMicrosoftService(azure, account, cache, logger), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, account.Provider)
		}
	}
}

// ExternalEventID returns the id a provider knows a stored event by:
// the provider-native id for Azure, the system id for Google.
func ExternalEventID(provider models.Provider, ev *models.Event) string {
	if provider == models.ProviderAzure {
		return ev.MicrosoftID
	}
	return ev.ID.String()
}
