package calendar

import (
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/agreeto/backend/internal/models"
)

func TestGcalEventID(t *testing.T) {
	got := gcalEventID("6C1DB351-DB91-4E24-A4D7-6C0D4B5B12AA")
	want := "6c1db351db914e24a4d76c0d4b5b12aa"
	if got != want {
		t.Fatalf("gcalEventID = %q, want %q", got, want)
	}
}

func TestGoogleToEventWithMarker(t *testing.T) {
	item := &gcal.Event{
		Id:      "6c1db351db914e24a4d76c0d4b5b12aa",
		Summary: "Sync",
		Start:   &gcal.EventDateTime{DateTime: "2026-09-01T09:00:00Z"},
		End:     &gcal.EventDateTime{DateTime: "2026-09-01T09:30:00Z"},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{
				googleMarkerFlagKey: "true",
				googleMarkerIDKey:   "6c1db351-db91-4e24-a4d7-6c0d4b5b12aa",
			},
		},
		Attendees: []*gcal.EventAttendee{
			{Email: "a@example.com", DisplayName: "A", ResponseStatus: "accepted"},
			{Email: "b@example.com", ResponseStatus: "mysterious"},
		},
	}

	ev := googleToEvent(item)

	// The marker id wins over the provider-native id.
	if ev.ID != "6c1db351-db91-4e24-a4d7-6c0d4b5b12aa" {
		t.Errorf("ID = %q", ev.ID)
	}
	if !ev.IsAgreeToEvent {
		t.Error("marker flag not picked up")
	}
	if want := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC); !ev.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", ev.StartDate, want)
	}
	if len(ev.Attendees) != 2 {
		t.Fatalf("attendees = %d", len(ev.Attendees))
	}
	if ev.Attendees[0].ResponseStatus != models.ResponseAccepted {
		t.Errorf("attendee 0 status = %s", ev.Attendees[0].ResponseStatus)
	}
	if ev.Attendees[1].ResponseStatus != models.ResponseNeedsAction {
		t.Errorf("unknown status must map to NEEDS_ACTION, got %s", ev.Attendees[1].ResponseStatus)
	}
	if ev.Attendees[0].Provider != models.ProviderGoogle {
		t.Errorf("attendee provider = %s", ev.Attendees[0].Provider)
	}
}

func TestGoogleToEventWithoutMarker(t *testing.T) {
	item := &gcal.Event{
		Id:    "nativeid",
		Start: &gcal.EventDateTime{Date: "2026-09-01"},
		End:   &gcal.EventDateTime{Date: "2026-09-02"},
	}

	ev := googleToEvent(item)

	if ev.ID != "nativeid" {
		t.Errorf("ID = %q, want provider-native id", ev.ID)
	}
	if ev.IsAgreeToEvent {
		t.Error("marker flag must default to false")
	}
	if ev.Title != "-" {
		t.Errorf("empty title must fall back to %q, got %q", "-", ev.Title)
	}
	if want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC); !ev.StartDate.Equal(want) {
		t.Errorf("all-day StartDate = %v, want %v", ev.StartDate, want)
	}
}
