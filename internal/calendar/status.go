package calendar

import "github.com/agreeto/backend/internal/models"

// acceptedWireStatus is what both providers expect for attendees of a
// confirmed slot (write direction).
const acceptedWireStatus = "accepted"

// googleResponseStatus maps a Google attendee responseStatus to the
// canonical status. Unknown strings map to NEEDS_ACTION.
func googleResponseStatus(s string) models.ResponseStatus {
	switch s {
	case "accepted":
		return models.ResponseAccepted
	case "declined":
		return models.ResponseDeclined
	case "tentative":
		return models.ResponseTentative
	default:
		return models.ResponseNeedsAction
	}
}

// graphResponseStatus maps a Microsoft Graph attendee response to the
// canonical status. Unknown strings map to NEEDS_ACTION.
func graphResponseStatus(s string) models.ResponseStatus {
	switch s {
	case "accepted":
		return models.ResponseAccepted
	case "declined":
		return models.ResponseDeclined
	case "tentativelyAccepted":
		return models.ResponseTentative
	default:
		return models.ResponseNeedsAction
	}
}
