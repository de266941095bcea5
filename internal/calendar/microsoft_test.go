package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agreeto/backend/internal/models"
)

func newTestGraphService(t *testing.T, handler http.Handler) *microsoftService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &microsoftService{
		client:       srv.Client(),
		baseURL:      srv.URL,
		accountEmail: "me@example.com",
		logger:       zap.NewNop(),
	}
}

func TestGraphGetEventsExtractsMarker(t *testing.T) {
	svc := newTestGraphService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/calendarview" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("startDateTime"); got == "" {
			t.Error("startDateTime missing")
		}
		fmt.Fprintf(w, `{"value":[{
			"id": "graph-native-id",
			"subject": "Sync",
			"start": {"dateTime": "2026-09-01T09:00:00.0000000", "timeZone": "UTC"},
			"end": {"dateTime": "2026-09-01T09:30:00.0000000", "timeZone": "UTC"},
			"attendees": [
				{"status": {"response": "tentativelyAccepted"}, "emailAddress": {"name": "A", "address": "a@example.com"}}
			],
			"singleValueExtendedProperties": [
				{"id": %q, "value": "true"},
				{"id": %q, "value": "6c1db351-db91-4e24-a4d7-6c0d4b5b12aa"}
			]
		}]}`, graphExtendedPropFlag, graphExtendedPropID)
	}))

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	events, err := svc.GetEvents(context.Background(), GetEventsInput{StartDate: &start})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	ev := events[0]
	if ev.ID != "6c1db351-db91-4e24-a4d7-6c0d4b5b12aa" {
		t.Errorf("marker id must win, got %q", ev.ID)
	}
	if ev.MicrosoftID != "graph-native-id" {
		t.Errorf("MicrosoftID = %q", ev.MicrosoftID)
	}
	if !ev.IsAgreeToEvent {
		t.Error("marker flag not picked up")
	}
	if want := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC); !ev.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", ev.StartDate, want)
	}
	if len(ev.Attendees) != 1 || ev.Attendees[0].ResponseStatus != models.ResponseTentative {
		t.Errorf("attendees = %+v", ev.Attendees)
	}
}

func TestGraphCreateEventSendsMarkerProperties(t *testing.T) {
	var body map[string]any
	svc := newTestGraphService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/me/calendar/events" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"id": "graph-native-id", "subject": "Sync"}`)
	}))

	created, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ID:             "6c1db351-db91-4e24-a4d7-6c0d4b5b12aa",
		Title:          "Sync",
		StartDate:      time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
		AttendeeEmails: []string{"a@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if created.MicrosoftID != "graph-native-id" {
		t.Errorf("MicrosoftID = %q", created.MicrosoftID)
	}

	props, ok := body["singleValueExtendedProperties"].([]any)
	if !ok || len(props) != 2 {
		t.Fatalf("extended properties = %v", body["singleValueExtendedProperties"])
	}
	attendees, ok := body["attendees"].([]any)
	if !ok || len(attendees) != 1 {
		t.Fatalf("attendees = %v", body["attendees"])
	}
	att := attendees[0].(map[string]any)
	if att["type"] != "required" {
		t.Errorf("attendee type = %v", att["type"])
	}
}

func TestGraphUpdateEventResolvesMeetingProvider(t *testing.T) {
	var patched map[string]any
	svc := newTestGraphService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me/calendar":
			fmt.Fprint(w, `{"allowedOnlineMeetingProviders": ["skypeForBusiness", "teamsForBusiness"]}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/me/events/graph-native-id":
			if err := json.NewDecoder(r.Body).Decode(&patched); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			fmt.Fprint(w, `{"id": "graph-native-id", "subject": "final"}`)
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	_, err := svc.UpdateEvent(context.Background(), "graph-native-id", UpdateEventInput{
		Title:          "final",
		AttendeeEmails: []string{"a@example.com"},
		HasConference:  true,
	})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	// teamsForBusiness outranks skypeForBusiness.
	if patched["onlineMeetingProvider"] != meetingTeamsForBusiness {
		t.Errorf("onlineMeetingProvider = %v", patched["onlineMeetingProvider"])
	}
	if patched["isOnlineMeeting"] != true {
		t.Errorf("isOnlineMeeting = %v", patched["isOnlineMeeting"])
	}
	attendees := patched["attendees"].([]any)
	att := attendees[0].(map[string]any)
	status := att["status"].(map[string]any)
	if status["response"] != "accepted" {
		t.Errorf("attendee response = %v", status["response"])
	}
}

func TestGraphMeetingProviderLookupFailureDefaults(t *testing.T) {
	var patched map[string]any
	svc := newTestGraphService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me/calendar":
			w.WriteHeader(http.StatusInternalServerError)
		case r.Method == http.MethodPatch:
			if err := json.NewDecoder(r.Body).Decode(&patched); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			fmt.Fprint(w, `{"id": "x"}`)
		}
	}))

	if _, err := svc.UpdateEvent(context.Background(), "x", UpdateEventInput{HasConference: true}); err != nil {
		t.Fatalf("lookup failure must not fail the update: %v", err)
	}
	if patched["onlineMeetingProvider"] != meetingSkypeForConsumer {
		t.Errorf("onlineMeetingProvider = %v, want default", patched["onlineMeetingProvider"])
	}
}

type mapCache struct {
	m map[string]string
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key, value string) { c.m[key] = value }

func TestGraphMeetingProviderCacheHitSkipsLookup(t *testing.T) {
	svc := newTestGraphService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/me/calendar" {
			t.Error("cache hit must skip the capability lookup")
		}
		fmt.Fprint(w, `{"id": "x"}`)
	}))
	svc.cache = &mapCache{m: map[string]string{
		"meeting-provider:me@example.com": meetingTeamsForBusiness,
	}}

	if _, err := svc.UpdateEvent(context.Background(), "x", UpdateEventInput{HasConference: true}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
}

func TestGraphDeleteEventAlreadyGone(t *testing.T) {
	svc := newTestGraphService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	if err := svc.DeleteEvent(context.Background(), "gone"); err != nil {
		t.Fatalf("404 must count as deleted, got %v", err)
	}
}

func TestGraphDeleteEventFailure(t *testing.T) {
	svc := newTestGraphService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	err := svc.DeleteEvent(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Provider != models.ProviderAzure {
		t.Fatalf("expected azure ProviderError, got %v", err)
	}
}

func TestGraphParseTime(t *testing.T) {
	got := graphParseTime("2026-09-01T09:00:00.0000000")
	want := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("graphParseTime = %v, want %v", got, want)
	}
	if !graphParseTime("").IsZero() {
		t.Error("empty input must be zero time")
	}
}
