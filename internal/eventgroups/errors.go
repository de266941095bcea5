package eventgroups

import "errors"

var (
	// ErrNotFound means the resource is absent or already soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the resource exists but belongs to another user.
	// Callers translating it must not leak resource contents.
	ErrForbidden = errors.New("forbidden")
	// ErrPrimaryAccountMissing means the caller has no primary account.
	// Unreachable while the account-linking invariant holds, but checked.
	ErrPrimaryAccountMissing = errors.New("user has no primary account")
	// ErrNoSlotSelected means confirm was called without a chosen slot.
	ErrNoSlotSelected = errors.New("no slot selected")
)
