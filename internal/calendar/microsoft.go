package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/agreeto/backend/config"
	"github.com/agreeto/backend/internal/models"
)

const (
	graphBaseURL    = "https://graph.microsoft.com/v1.0"
	graphTimeFormat = "2006-01-02T15:04:05.9999999"

	// Graph single-value extended property ids. The GUID namespace is fixed;
	// changing it would orphan every marker already written to user calendars.
	graphExtendedPropFlag = "String {66f5a359-4659-4830-9070-00047ec6ac6e} Name isAgreeToEvent"
	graphExtendedPropID   = "String {66f5a359-4659-4830-9070-00047ec6ac6e} Name id"

	graphCallTimeout = 30 * time.Second
)

// azureScopes are the delegated Graph scopes requested at link time.
var azureScopes = []string{
	"openid",
	"email",
	"profile",
	"offline_access",
	"https://graph.microsoft.com/Calendars.ReadWrite",
}

// MicrosoftMeetingProvider is a Graph online-meeting provider name.
type MicrosoftMeetingProvider = string

const (
	meetingTeamsForBusiness MicrosoftMeetingProvider = "teamsForBusiness"
	meetingSkypeForBusiness MicrosoftMeetingProvider = "skypeForBusiness"
	meetingSkypeForConsumer MicrosoftMeetingProvider = "skypeForConsumer"
)

type microsoftService struct {
	client       *http.Client
	baseURL      string
	accountEmail string
	cache        MeetingProviderCache
	logger       *zap.Logger
}

func newMicrosoftService(cfg config.OAuthClientConfig, account *models.Account, cache MeetingProviderCache, logger *zap.Logger) *microsoftService {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     microsoft.AzureADEndpoint("common"),
		Scopes:       azureScopes,
	}
	// Expiry is unknown locally, so the token source refreshes per call.
	// The refreshed token lives and dies with this adapter instance.
	tok := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	client := oc.Client(context.Background(), tok)
	client.Timeout = graphCallTimeout

	return &microsoftService{
		client:       client,
		baseURL:      graphBaseURL,
		accountEmail: account.Email,
		cache:        cache,
		logger:       logger,
	}
}

func (s *microsoftService) GetEvents(ctx context.Context, in GetEventsInput) ([]Event, error) {
	params := url.Values{}
	if in.StartDate != nil {
		params.Set("startDateTime", in.StartDate.UTC().Format(time.RFC3339))
	}
	if in.EndDate != nil {
		params.Set("endDateTime", in.EndDate.UTC().Format(time.RFC3339))
	}
	params.Set("$expand", fmt.Sprintf(
		"singleValueExtendedProperties($filter=(id eq '%s') or (id eq '%s'))",
		graphExtendedPropFlag, graphExtendedPropID,
	))
	params.Set("$top", "100")

	var result struct {
		Value []graphEvent `json:"value"`
	}
	if err := s.do(ctx, http.MethodGet, "/me/calendarview", params, nil, &result); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(result.Value))
	for i := range result.Value {
		events = append(events, graphToEvent(&result.Value[i]))
	}
	return events, nil
}

func (s *microsoftService) CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error) {
	attendees := make([]map[string]any, len(in.AttendeeEmails))
	for i, email := range in.AttendeeEmails {
		attendees[i] = map[string]any{
			"emailAddress": map[string]string{"address": email, "name": email},
			"type":         "required",
		}
	}

	body := map[string]any{
		"subject": in.Title,
		"start": map[string]string{
			"dateTime": in.StartDate.UTC().Format(graphTimeFormat),
			"timeZone": "UTC",
		},
		"end": map[string]string{
			"dateTime": in.EndDate.UTC().Format(graphTimeFormat),
			"timeZone": "UTC",
		},
		"attendees": attendees,
		"singleValueExtendedProperties": []map[string]string{
			{"id": graphExtendedPropFlag, "value": "true"},
			{"id": graphExtendedPropID, "value": in.ID},
		},
	}

	var created graphEvent
	if err := s.do(ctx, http.MethodPost, "/me/calendar/events", nil, body, &created); err != nil {
		return nil, err
	}
	out := graphToEvent(&created)
	return &out, nil
}

func (s *microsoftService) UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (*Event, error) {
	body := map[string]any{}
	if in.AttendeeEmails != nil {
		attendees := make([]map[string]any, len(in.AttendeeEmails))
		for i, email := range in.AttendeeEmails {
			attendees[i] = map[string]any{
				"emailAddress": map[string]string{"address": email, "name": email},
				"status":       map[string]string{"response": acceptedWireStatus},
				"type":         "required",
			}
		}
		body["attendees"] = attendees
	}
	if in.HasConference {
		body["isOnlineMeeting"] = true
		body["onlineMeetingProvider"] = s.allowedMeetingProvider(ctx)
	}
	if in.Title != "" {
		body["subject"] = in.Title
	}

	var updated graphEvent
	if err := s.do(ctx, http.MethodPatch, "/me/events/"+id, nil, body, &updated); err != nil {
		return nil, err
	}
	out := graphToEvent(&updated)
	return &out, nil
}

func (s *microsoftService) DeleteEvent(ctx context.Context, id string) error {
	err := s.do(ctx, http.MethodDelete, "/me/calendar/events/"+id, nil, nil, nil)
	if err != nil {
		var statusErr *graphStatusError
		if errors.As(err, &statusErr) && (statusErr.status == http.StatusNotFound || statusErr.status == http.StatusGone) {
			// Already gone counts as deleted.
			s.logger.Debug("microsoft event already gone", zap.String("event_id", id))
			return nil
		}
		return err
	}
	return nil
}

// allowedMeetingProvider resolves the online-meeting provider for this
// account, priority teamsForBusiness > skypeForBusiness > skypeForConsumer >
// first allowed. Lookup failures are swallowed; they must never block the
// surrounding update. Results are cached because calendar capabilities
// rarely change.
func (s *microsoftService) allowedMeetingProvider(ctx context.Context) MicrosoftMeetingProvider {
	cacheKey := "meeting-provider:" + s.accountEmail
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, cacheKey); ok {
			return v
		}
	}

	provider := meetingSkypeForConsumer

	var calInfo struct {
		AllowedOnlineMeetingProviders []string `json:"allowedOnlineMeetingProviders"`
	}
	if err := s.do(ctx, http.MethodGet, "/me/calendar", nil, nil, &calInfo); err != nil {
		s.logger.Warn("allowed meeting provider lookup failed", zap.Error(err))
		return provider
	}

	allowed := calInfo.AllowedOnlineMeetingProviders
	switch {
	case contains(allowed, meetingTeamsForBusiness):
		provider = meetingTeamsForBusiness
	case contains(allowed, meetingSkypeForBusiness):
		provider = meetingSkypeForBusiness
	case len(allowed) > 0 && allowed[0] != "":
		provider = allowed[0]
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, provider)
	}
	return provider
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// graphStatusError carries the HTTP status of a failed Graph call.
type graphStatusError struct {
	status int
	body   string
}

func (e *graphStatusError) Error() string {
	return fmt.Sprintf("graph request failed with status %d: %s", e.status, e.body)
}

// do performs one Graph call, wrapping any failure as a ProviderError.
func (s *microsoftService) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint := s.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &ProviderError{Provider: models.ProviderAzure, Err: err}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return &ProviderError{Provider: models.ProviderAzure, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := s.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: models.ProviderAzure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &ProviderError{
			Provider: models.ProviderAzure,
			Err:      &graphStatusError{status: resp.StatusCode, body: string(raw)},
		}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ProviderError{Provider: models.ProviderAzure, Err: err}
		}
	}
	return nil
}

type graphEvent struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	Start struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"end"`
	Attendees []struct {
		Type   string `json:"type"`
		Status struct {
			Response string `json:"response"`
		} `json:"status"`
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"attendees"`
	SingleValueExtendedProperties []struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"singleValueExtendedProperties"`
}

func graphToEvent(g *graphEvent) Event {
	ev := Event{
		ID:          g.ID,
		MicrosoftID: g.ID,
		Title:       g.Subject,
		Description: g.Body.Content,
		StartDate:   graphParseTime(g.Start.DateTime),
		EndDate:     graphParseTime(g.End.DateTime),
	}
	if ev.Title == "" {
		ev.Title = "-"
	}

	for _, p := range g.SingleValueExtendedProperties {
		switch p.ID {
		case graphExtendedPropID:
			if p.Value != "" {
				ev.ID = p.Value
			}
		case graphExtendedPropFlag:
			if p.Value == "true" {
				ev.IsAgreeToEvent = true
			}
		}
	}

	for _, a := range g.Attendees {
		ev.Attendees = append(ev.Attendees, models.Attendee{
			Email:          a.EmailAddress.Address,
			Name:           a.EmailAddress.Name,
			Provider:       models.ProviderAzure,
			ResponseStatus: graphResponseStatus(a.Status.Response),
		})
	}
	return ev
}

// graphParseTime parses the Graph dateTime format; values arrive in UTC via
// the Prefer header.
func graphParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(graphTimeFormat, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

var _ Service = (*microsoftService)(nil)
