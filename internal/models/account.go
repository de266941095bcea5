package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies an external calendar system.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderAzure  Provider = "azure-ad"
)

// Account is a linked external calendar identity. The first account a user
// links becomes the primary one; event groups are always created under the
// primary account's calendar.
type Account struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Provider     Provider  `json:"provider"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountRef is the projection returned for "other linked accounts" lookups.
type AccountRef struct {
	ID       uuid.UUID `json:"id"`
	Provider Provider  `json:"provider"`
	Email    string    `json:"email"`
}
