package models

import (
	"time"

	"github.com/google/uuid"
)

// EventGroup is a named bundle of candidate time slots proposed for one
// meeting. Groups are never hard-deleted; DeletedAt marks the terminal state.
type EventGroup struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	UserID        uuid.UUID  `json:"user_id"`
	AccountID     uuid.UUID  `json:"account_id"`
	CreateBlocker bool       `json:"create_blocker"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Eager-loaded relations. Events holds live children ordered by start
	// date ascending; Account is the calendar account holding the blockers.
	Events  []Event  `json:"events,omitempty"`
	Account *Account `json:"account,omitempty"`
}

// Live reports whether the group has not been soft-deleted.
func (g *EventGroup) Live() bool { return g.DeletedAt == nil }

// Event is one candidate (or confirmed) time slot of an event group.
// ID is the system id, stable across providers. MicrosoftID holds the
// provider-native id for Azure-backed blockers; Google accepts the system
// id as the external id so no separate id is kept for it.
type Event struct {
	ID             uuid.UUID  `json:"id"`
	EventGroupID   uuid.UUID  `json:"event_group_id"`
	UserID         uuid.UUID  `json:"user_id"`
	AccountID      uuid.UUID  `json:"account_id"`
	MicrosoftID    string     `json:"microsoft_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Attendees      []Attendee `json:"attendees"`
	IsAgreeToEvent bool       `json:"is_agreeto_event"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Live reports whether the event has not been soft-deleted.
func (e *Event) Live() bool { return e.DeletedAt == nil }
