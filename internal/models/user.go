package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership is the subscription tier of a user.
type Membership string

const (
	MembershipFree    Membership = "FREE"
	MembershipTrial   Membership = "TRIAL"
	MembershipPro     Membership = "PRO"
	MembershipPremium Membership = "PREMIUM"
)

// Valid reports whether m is a known tier.
func (m Membership) Valid() bool {
	switch m {
	case MembershipFree, MembershipTrial, MembershipPro, MembershipPremium:
		return true
	}
	return false
}

// User is an account holder. Identity comes from OAuth account linking;
// a user always has at least one linked Account, exactly one of which is primary.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Membership Membership `json:"membership"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
