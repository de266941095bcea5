package calendar

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/agreeto/backend/config"
	"github.com/agreeto/backend/internal/models"
)

// Marker keys in Google private extended properties. The flag tags events
// created by this system; the id key carries the system id through
// round-trips.
const (
	googleMarkerFlagKey = "isAgreeToEvent"
	googleMarkerIDKey   = "id"
)

const googleCalendarID = "primary"

type googleService struct {
	svc    *gcal.Service
	logger *zap.Logger
}

func newGoogleService(ctx context.Context, cfg config.OAuthClientConfig, account *models.Account, logger *zap.Logger) (*googleService, error) {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope, gcal.CalendarEventsScope},
	}
	// Expiry is not tracked locally, so the token source refreshes per call.
	// Refreshed tokens stay ephemeral; the account record is updated only by
	// the auth collaborator.
	tok := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	svc, err := gcal.NewService(ctx, option.WithTokenSource(oc.TokenSource(ctx, tok)))
	if err != nil {
		return nil, &ProviderError{Provider: models.ProviderGoogle, Err: err}
	}
	return &googleService{svc: svc, logger: logger}, nil
}

// gcalEventID normalizes a system id into the restricted alphabet Google
// accepts for event ids (base32hex, lowercase). A UUID minus its hyphens
// fits, so the system id doubles as the Google-native id.
func gcalEventID(id string) string {
	return strings.ReplaceAll(strings.ToLower(id), "-", "")
}

func (s *googleService) GetEvents(ctx context.Context, in GetEventsInput) ([]Event, error) {
	call := s.svc.Events.List(googleCalendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(100).
		Context(ctx)
	if in.StartDate != nil {
		call = call.TimeMin(in.StartDate.UTC().Format(time.RFC3339))
	}
	if in.EndDate != nil {
		call = call.TimeMax(in.EndDate.UTC().Format(time.RFC3339))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, &ProviderError{Provider: models.ProviderGoogle, Err: err}
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, googleToEvent(item))
	}
	return events, nil
}

func (s *googleService) CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error) {
	attendees := make([]*gcal.EventAttendee, len(in.AttendeeEmails))
	for i, email := range in.AttendeeEmails {
		attendees[i] = &gcal.EventAttendee{Email: email}
	}

	ev := &gcal.Event{
		Id:      gcalEventID(in.ID),
		Summary: in.Title,
		Start:   &gcal.EventDateTime{DateTime: in.StartDate.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:     &gcal.EventDateTime{DateTime: in.EndDate.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		Attendees: attendees,
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{
				googleMarkerFlagKey: "true",
				googleMarkerIDKey:   in.ID,
			},
		},
	}

	created, err := s.svc.Events.Insert(googleCalendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, &ProviderError{Provider: models.ProviderGoogle, Err: err}
	}
	out := googleToEvent(created)
	return &out, nil
}

func (s *googleService) UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (*Event, error) {
	patch := &gcal.Event{}
	if in.Title != "" {
		patch.Summary = in.Title
	}
	if in.AttendeeEmails != nil {
		attendees := make([]*gcal.EventAttendee, len(in.AttendeeEmails))
		for i, email := range in.AttendeeEmails {
			attendees[i] = &gcal.EventAttendee{Email: email, ResponseStatus: acceptedWireStatus}
		}
		patch.Attendees = attendees
	}

	call := s.svc.Events.Patch(googleCalendarID, gcalEventID(id), patch).Context(ctx)
	if in.HasConference {
		// Google has a single conference product, so unlike Graph there is
		// no allowed-provider lookup.
		patch.ConferenceData = &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
		call = call.ConferenceDataVersion(1)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, &ProviderError{Provider: models.ProviderGoogle, Err: err}
	}
	out := googleToEvent(updated)
	return &out, nil
}

func (s *googleService) DeleteEvent(ctx context.Context, id string) error {
	err := s.svc.Events.Delete(googleCalendarID, gcalEventID(id)).Context(ctx).Do()
	if err != nil {
		// Re-deleting an already-deleted event is success, not a failure.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
			s.logger.Debug("google event already gone", zap.String("event_id", id))
			return nil
		}
		return &ProviderError{Provider: models.ProviderGoogle, Err: err}
	}
	return nil
}

func googleToEvent(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
	}
	if ev.Title == "" {
		ev.Title = "-"
	}

	if item.ExtendedProperties != nil && item.ExtendedProperties.Private != nil {
		priv := item.ExtendedProperties.Private
		ev.IsAgreeToEvent = priv[googleMarkerFlagKey] == "true"
		if id := priv[googleMarkerIDKey]; id != "" {
			ev.ID = id
		}
	}

	ev.StartDate = googleParseTime(item.Start)
	ev.EndDate = googleParseTime(item.End)

	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, models.Attendee{
			Email:          a.Email,
			Name:           a.DisplayName,
			Provider:       models.ProviderGoogle,
			ResponseStatus: googleResponseStatus(a.ResponseStatus),
		})
	}
	return ev
}

func googleParseTime(dt *gcal.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err == nil {
			return t
		}
	}
	if dt.Date != "" {
		t, err := time.Parse("2006-01-02", dt.Date)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

var _ Service = (*googleService)(nil)
