package eventgroups

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agreeto/backend/internal/calendar"
	"github.com/agreeto/backend/internal/models"
)

// Store is the persistence surface the workflow engine drives.
type Store interface {
	CreateGroup(ctx context.Context, g *models.EventGroup) error
	GetGroupByID(ctx context.Context, id uuid.UUID) (*models.EventGroup, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	SetEventMicrosoftID(ctx context.Context, id uuid.UUID, microsoftID string) error
	UpdateEventConfirmed(ctx context.Context, id uuid.UUID, title string, attendees []models.Attendee) (*models.Event, error)
	SoftDeleteEvents(ctx context.Context, ids []uuid.UUID) error
	SoftDeleteGroup(ctx context.Context, id uuid.UUID) (*models.EventGroup, error)
}

// AccountStore supplies the caller's linked accounts.
type AccountStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
}

// Service orchestrates the event group lifecycle: proposal, confirmation of a
// winning slot, and deletion, including blocker materialization in external
// calendars.
type Service struct {
	store     Store
	accounts  AccountStore
	calendars calendar.Factory
	logger    *zap.Logger
}

// NewService creates the workflow service.
func NewService(store Store, accounts AccountStore, calendars calendar.Factory, logger *zap.Logger) *Service {
	return &Service{store: store, accounts: accounts, calendars: calendars, logger: logger}
}

// CreateEventInput is one candidate slot of a new group.
type CreateEventInput struct {
	Title          string
	Description    string
	StartDate      time.Time
	EndDate        time.Time
	Attendees      []models.Attendee
	AttendeeEmails []string
}

// CreateInput creates a group of candidate slots.
type CreateInput struct {
	Title         string
	CreateBlocker bool
	Events        []CreateEventInput
}

// BlockerFailure reports one candidate slot whose external blocker could not
// be created. The database rows are untouched by such failures.
type BlockerFailure struct {
	EventID uuid.UUID `json:"event_id"`
	Err     error     `json:"-"`
	Message string    `json:"error"`
}

// ConfirmInput applies the final meeting details to the winning slot.
type ConfirmInput struct {
	Title         string
	AddConference bool
	Attendees     []models.Attendee
}

// Create persists the group with its candidate events under the caller's
// primary account and, when requested, materializes a blocker event per
// candidate in the primary calendar. Blocker failures are independent per
// candidate and are returned, not raised: the group itself is the source of
// truth and is always returned once persisted.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.EventGroup, []BlockerFailure, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	var primary *models.Account
	accountEmails := make([]string, 0, len(accounts))
	for i := range accounts {
		accountEmails = append(accountEmails, accounts[i].Email)
		if accounts[i].IsPrimary {
			primary = &accounts[i]
		}
	}
	if primary == nil {
		return nil, nil, ErrPrimaryAccountMissing
	}

	group := &models.EventGroup{
		ID:            uuid.New(),
		Title:         in.Title,
		UserID:        userID,
		AccountID:     primary.ID,
		CreateBlocker: in.CreateBlocker,
	}
	for _, evIn := range in.Events {
		attendees := models.DedupeAttendees(evIn.Attendees, freeTypedAttendees(evIn.AttendeeEmails))
		group.Events = append(group.Events, models.Event{
			ID:             uuid.New(),
			EventGroupID:   group.ID,
			UserID:         userID,
			AccountID:      primary.ID,
			Title:          evIn.Title,
			Description:    evIn.Description,
			StartDate:      evIn.StartDate,
			EndDate:        evIn.EndDate,
			Attendees:      attendees,
			IsAgreeToEvent: true,
		})
	}

	// Resolve the adapter before persisting so an unsupported provider
	// aborts with no partial effects.
	var cal calendar.Service
	if in.CreateBlocker {
		cal, err = s.calendars(ctx, primary)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, nil, err
	}

	var failures []BlockerFailure
	if in.CreateBlocker {
		failures = s.materializeBlockers(ctx, cal, group, accountEmails)
	}
	return group, failures, nil
}

// materializeBlockers creates one provider event per candidate slot. The
// attendee set sent to the provider is the union of the slot's attendees and
// every email among the caller's linked accounts, so the organizer sees the
// hold on each of their calendars.
func (s *Service) materializeBlockers(ctx context.Context, cal calendar.Service, group *models.EventGroup, accountEmails []string) []BlockerFailure {
	errs := settleAll(len(group.Events), func(i int) error {
		ev := &group.Events[i]
		emails := unionEmails(models.AttendeeEmails(ev.Attendees), accountEmails)
		created, err := cal.CreateEvent(ctx, calendar.CreateEventInput{
			ID:             ev.ID.String(),
			Title:          ev.Title,
			StartDate:      ev.StartDate,
			EndDate:        ev.EndDate,
			AttendeeEmails: emails,
		})
		if err != nil {
			return err
		}
		if created.MicrosoftID != "" {
			// Azure assigns its own id; keep it so the blocker can be
			// deleted later.
			ev.MicrosoftID = created.MicrosoftID
			if err := s.store.SetEventMicrosoftID(ctx, ev.ID, created.MicrosoftID); err != nil {
				return err
			}
		}
		return nil
	})

	var failures []BlockerFailure
	for i, err := range errs {
		if err == nil {
			continue
		}
		ev := &group.Events[i]
		s.logger.Warn("blocker creation failed",
			zap.String("event_id", ev.ID.String()),
			zap.String("group_id", group.ID.String()),
			zap.Error(err),
		)
		failures = append(failures, BlockerFailure{EventID: ev.ID, Err: err, Message: err.Error()})
	}
	return failures
}

// GetByID returns a live group owned by the caller.
func (s *Service) GetByID(ctx context.Context, userID, groupID uuid.UUID) (*models.EventGroup, error) {
	group, err := s.store.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.UserID != userID {
		return nil, ErrForbidden
	}
	return group, nil
}

// Confirm marks one candidate slot as the winning meeting time: the provider
// event is updated with the final title, attendee set and optional
// conference link, losing siblings are cleaned up from external calendars
// (best effort) and soft-deleted locally, and the winner becomes the sole
// surviving event of the group.
func (s *Service) Confirm(ctx context.Context, userID, eventID uuid.UUID, in ConfirmInput) (*models.Event, error) {
	if eventID == uuid.Nil {
		return nil, ErrNoSlotSelected
	}

	ev, err := s.store.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroupByID(ctx, ev.EventGroupID)
	if err != nil {
		return nil, err
	}
	if group.UserID != userID {
		return nil, ErrForbidden
	}
	account := group.Account

	attendees := ev.Attendees
	var attendeeEmails []string
	if in.Attendees != nil {
		attendees = reconcileConfirmedAttendees(in.Attendees)
		attendeeEmails = models.AttendeeEmails(attendees)
	}
	title := in.Title
	if title == "" {
		title = ev.Title
	}

	cal, err := s.calendars(ctx, account)
	if err != nil {
		return nil, err
	}
	if _, err := cal.UpdateEvent(ctx, calendar.ExternalEventID(account.Provider, ev), calendar.UpdateEventInput{
		Title:          in.Title,
		AttendeeEmails: attendeeEmails,
		HasConference:  in.AddConference,
	}); err != nil {
		return nil, err
	}

	s.discardLosingSlots(ctx, cal, group, ev.ID)

	return s.store.UpdateEventConfirmed(ctx, ev.ID, title, attendees)
}

// discardLosingSlots removes the sibling candidates of the winning slot:
// their blockers are deleted from the external calendar when the group was
// materialized, and their rows are soft-deleted. External cleanup failures
// are logged and never block the local discard.
func (s *Service) discardLosingSlots(ctx context.Context, cal calendar.Service, group *models.EventGroup, winnerID uuid.UUID) {
	var losers []models.Event
	for _, sibling := range group.Events {
		if sibling.ID != winnerID {
			losers = append(losers, sibling)
		}
	}
	if len(losers) == 0 {
		return
	}

	if group.CreateBlocker {
		s.deleteProviderEvents(ctx, cal, group, losers)
	}

	ids := make([]uuid.UUID, len(losers))
	for i, loser := range losers {
		ids[i] = loser.ID
	}
	if err := s.store.SoftDeleteEvents(ctx, ids); err != nil {
		s.logger.Error("failed to soft-delete losing slots",
			zap.String("group_id", group.ID.String()),
			zap.Error(err),
		)
	}
}

// Delete removes the group: blockers are deleted from the external calendar
// (best effort, per event), then the group and all its events are
// soft-deleted. Local state always converges to deleted once the call is
// accepted.
func (s *Service) Delete(ctx context.Context, userID, groupID uuid.UUID) (*models.EventGroup, error) {
	group, err := s.store.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.UserID != userID {
		return nil, ErrForbidden
	}

	if group.CreateBlocker {
		cal, err := s.calendars(ctx, group.Account)
		if err != nil {
			// Cleanup is best-effort; the local delete still proceeds.
			s.logger.Error("calendar adapter unavailable for cleanup",
				zap.String("group_id", group.ID.String()),
				zap.Error(err),
			)
		} else {
			s.deleteProviderEvents(ctx, cal, group, group.Events)
		}
	}

	return s.store.SoftDeleteGroup(ctx, groupID)
}

// deleteProviderEvents deletes each event's blocker from the external
// calendar, settling all attempts and logging individual failures.
func (s *Service) deleteProviderEvents(ctx context.Context, cal calendar.Service, group *models.EventGroup, events []models.Event) {
	errs := settleAll(len(events), func(i int) error {
		ev := &events[i]
		externalID := calendar.ExternalEventID(group.Account.Provider, ev)
		if externalID == "" {
			// The blocker was never materialized (creation failed earlier).
			return nil
		}
		return cal.DeleteEvent(ctx, externalID)
	})
	for i, err := range errs {
		if err != nil {
			s.logger.Error("failed to delete event from calendar service",
				zap.String("event_id", events[i].ID.String()),
				zap.Error(err),
			)
		}
	}
}

// reconcileConfirmedAttendees dedupes attendees by email and stamps
// directory-resolved ones NEEDS_ACTION: the organizer has not received their
// RSVP yet at confirmation time.
func reconcileConfirmedAttendees(attendees []models.Attendee) []models.Attendee {
	deduped := models.DedupeAttendees(attendees)
	for i := range deduped {
		if deduped[i].Provider != "" {
			deduped[i].ResponseStatus = models.ResponseNeedsAction
		}
	}
	return deduped
}

func freeTypedAttendees(emails []string) []models.Attendee {
	attendees := make([]models.Attendee, len(emails))
	for i, email := range emails {
		attendees[i] = models.Attendee{Email: email, ResponseStatus: models.ResponseNeedsAction}
	}
	return attendees
}

// unionEmails merges both lists preserving order and dropping duplicates.
func unionEmails(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, email := range list {
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true
			out = append(out, email)
		}
	}
	return out
}
