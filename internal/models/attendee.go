package models

// ResponseStatus is the canonical RSVP state of an attendee.
type ResponseStatus string

const (
	ResponseAccepted    ResponseStatus = "ACCEPTED"
	ResponseDeclined    ResponseStatus = "DECLINED"
	ResponseTentative   ResponseStatus = "TENTATIVE"
	ResponseNeedsAction ResponseStatus = "NEEDS_ACTION"
)

// Attendee is a participant on an event. Attendees are a property of the
// event row (stored as JSON), never a standalone entity. Email is the
// identity within an event; matching is case-sensitive as given by providers.
type Attendee struct {
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Surname        string         `json:"surname"`
	Provider       Provider       `json:"provider,omitempty"`
	ResponseStatus ResponseStatus `json:"response_status"`
}

// DedupeAttendees merges attendee lists keyed by email, keeping the first
// occurrence of each email and preserving order.
func DedupeAttendees(lists ...[]Attendee) []Attendee {
	seen := make(map[string]bool)
	var out []Attendee
	for _, list := range lists {
		for _, a := range list {
			if seen[a.Email] {
				continue
			}
			seen[a.Email] = true
			out = append(out, a)
		}
	}
	return out
}

// AttendeeEmails returns the emails of attendees in order.
func AttendeeEmails(attendees []Attendee) []string {
	emails := make([]string, len(attendees))
	for i, a := range attendees {
		emails[i] = a.Email
	}
	return emails
}
