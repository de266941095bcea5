package models

import "testing"

func TestDedupeAttendeesFirstWins(t *testing.T) {
	declared := []Attendee{
		{Email: "a@example.com", Name: "Ada", ResponseStatus: ResponseAccepted},
		{Email: "b@example.com", ResponseStatus: ResponseNeedsAction},
	}
	extra := []Attendee{
		{Email: "a@example.com", Name: "Duplicate"},
		{Email: "c@example.com", ResponseStatus: ResponseNeedsAction},
	}

	got := DedupeAttendees(declared, extra)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	order := []string{"a@example.com", "b@example.com", "c@example.com"}
	for i, email := range order {
		if got[i].Email != email {
			t.Errorf("got[%d] = %s, want %s", i, got[i].Email, email)
		}
	}
	// The first occurrence keeps its fields.
	if got[0].Name != "Ada" || got[0].ResponseStatus != ResponseAccepted {
		t.Errorf("first occurrence overwritten: %+v", got[0])
	}
}

func TestDedupeAttendeesEmpty(t *testing.T) {
	if got := DedupeAttendees(nil, []Attendee{}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestAttendeeEmails(t *testing.T) {
	got := AttendeeEmails([]Attendee{{Email: "a@example.com"}, {Email: "b@example.com"}})
	if len(got) != 2 || got[0] != "a@example.com" || got[1] != "b@example.com" {
		t.Fatalf("got %v", got)
	}
}

func TestMembershipValid(t *testing.T) {
	for _, m := range []Membership{MembershipFree, MembershipTrial, MembershipPro, MembershipPremium} {
		if !m.Valid() {
			t.Errorf("%s must be valid", m)
		}
	}
	if Membership("GOLD").Valid() {
		t.Error("unknown tier must be invalid")
	}
}
