// Package service implements business logic, validation and authorization
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/repository"
)

var (
	ErrNotFound           = errors.New("event not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrParticipantMissing = errors.New("user is not a participant of this event")
	ErrForbidden          = errors.New("you are not allowed to perform this action")
	ErrAlreadyParticipant = errors.New("user is already a participant of this event")
)

// ValidationError reports a rejected request payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, form model.EventForm, ownerID string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ListByParticipant(ctx context.Context, userID string) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, form model.EventForm) error
	Delete(ctx context.Context, id string) error
}

// ParticipantStore mutates rosters.
type ParticipantStore interface {
	Add(ctx context.Context, eventID, userID string, role model.Role) error
	Remove(ctx context.Context, eventID, userID string) error
	ChangeRole(ctx context.Context, eventID, userID string, role model.Role) error
}

// UserStore reads the user directory.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// EventService orchestrates event and roster operations for an
// authenticated caller.
type EventService struct {
	events       EventStore
	participants ParticipantStore
	users        UserStore
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, participants ParticipantStore, users UserStore) *EventService {
	return &EventService{events: events, participants: participants, users: users}
}

// ListPublic returns every event without its roster.
func (s *EventService) ListPublic(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	for i := range events {
		events[i].Participants = nil
	}
	return events, nil
}

// ListAll returns every event.
func (s *EventService) ListAll(ctx context.Context, _ auth.Principal) ([]model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListMine returns the events the caller participates in.
func (s *EventService) ListMine(ctx context.Context, p auth.Principal) ([]model.Event, error) {
	events, err := s.events.ListByParticipant(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list my events: %w", err)
	}
	return events, nil
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, invalid("event id is required")
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// CreateEvent validates form and creates the event with the caller as OWNER.
func (s *EventService) CreateEvent(ctx context.Context, p auth.Principal, form model.EventForm) (*model.Event, error) {
	form, err := normalizeForm(form)
	if err != nil {
		return nil, err
	}
	event, err := s.events.Create(ctx, form, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// UpdateEvent replaces an event's fields. Admins, owners and collaborators
// may update.
func (s *EventService) UpdateEvent(ctx context.Context, p auth.Principal, id string, form model.EventForm) error {
	form, err := normalizeForm(form)
	if err != nil {
		return err
	}
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(p, event) {
		return ErrForbidden
	}
	if err := s.events.Update(ctx, id, form); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event. Only admins and owners may delete.
func (s *EventService) DeleteEvent(ctx context.Context, p auth.Principal, id string) error {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsAdmin() && event.Participants[p.UserID] != model.RoleOwner {
		return ErrForbidden
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListUsers returns the user directory.
func (s *EventService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// canManage reports whether p may edit the event or its roster.
func canManage(p auth.Principal, e *model.Event) bool {
	if p.IsAdmin() {
		return true
	}
	switch e.Participants[p.UserID] {
	case model.RoleOwner, model.RoleCollaborator:
		return true
	}
	return false
}

// normalizeForm trims the form, defaults the event type and checks the
// required fields and the time range.
func normalizeForm(form model.EventForm) (model.EventForm, error) {
	form.EventName = strings.TrimSpace(form.EventName)
	form.EventLocation = strings.TrimSpace(form.EventLocation)
	form.EventDescription = strings.TrimSpace(form.EventDescription)
	if form.EventType == "" {
		form.EventType = model.EventTypeConference
	}

	switch {
	case form.EventName == "":
		return form, invalid("eventName is required")
	case len(form.EventName) > 200:
		return form, invalid("eventName cannot exceed 200 characters")
	case form.StartDateTime.IsZero() || form.EndDateTime.IsZero():
		return form, invalid("startDateTime and endDateTime are required")
	case !form.StartDateTime.Before(form.EndDateTime.Time):
		return form, invalid("startDateTime must be before endDateTime")
	case !form.EventType.Valid():
		return form, invalid("eventType %q is not one of CONFERENCE, WORKSHOP, MEETING, OTHER", form.EventType)
	}
	return form, nil
}
