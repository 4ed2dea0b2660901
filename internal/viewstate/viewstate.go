// Package viewstate is the user-adjustable state of the events page as one
// immutable value. Every change goes through a transition that returns a new
// State and resets whatever depends on the changed field.
package viewstate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Shivanand-hulikatti/eventdesk/internal/listing"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
)

// Page sizes offered by the selectors.
var (
	EventPageSizes       = []int{5, 10, 20}
	ParticipantPageSizes = []int{5, 10, 20, 50}
)

const (
	DefaultEventPageSize       = 10
	DefaultParticipantPageSize = 20
)

// Modal is the dialog currently open; at most one is open at a time.
type Modal string

const (
	ModalNone      Modal = ""
	ModalEventForm Modal = "event_form"
	ModalRoster    Modal = "roster"
)

// FormMode tells the event form whether it creates or edits.
type FormMode string

const (
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

// ErrUnknownAction is returned by Apply for an unrecognised action.
var ErrUnknownAction = errors.New("unknown view action")

// State is the view state of one session.
type State struct {
	Search     string            `json:"search"`
	TypeFilter model.EventType   `json:"typeFilter"`
	SortKey    listing.SortKey   `json:"sortKey"`
	Direction  listing.Direction `json:"direction"`
	ViewMode   listing.ViewMode  `json:"viewMode"`

	EventPage           int `json:"eventPage"`
	EventPageSize       int `json:"eventPageSize"`
	ParticipantPage     int `json:"participantPage"`
	ParticipantPageSize int `json:"participantPageSize"`

	Modal           Modal    `json:"modal"`
	FormMode        FormMode `json:"formMode,omitempty"`
	SelectedEventID string   `json:"selectedEventId,omitempty"`
}

// Default is the state of a freshly opened page.
func Default() State {
	return State{
		TypeFilter:          listing.AllTypes,
		SortKey:             listing.SortByStart,
		Direction:           listing.Asc,
		ViewMode:            listing.MyEvents,
		EventPage:           1,
		EventPageSize:       DefaultEventPageSize,
		ParticipantPage:     1,
		ParticipantPageSize: DefaultParticipantPageSize,
	}
}

// WithSearch sets the search term and returns to the first page.
func (s State) WithSearch(term string) State {
	s.Search = term
	s.EventPage = 1
	return s
}

// WithTypeFilter sets the type filter and returns to the first page.
// Unknown types are ignored.
func (s State) WithTypeFilter(t model.EventType) State {
	if t != listing.AllTypes && !t.Valid() {
		return s
	}
	s.TypeFilter = t
	s.EventPage = 1
	return s
}

// WithSortKey sets the sort key and returns to the first page.
func (s State) WithSortKey(k listing.SortKey) State {
	if !k.Valid() {
		return s
	}
	s.SortKey = k
	s.EventPage = 1
	return s
}

// WithDirection sets the sort direction and returns to the first page.
func (s State) WithDirection(d listing.Direction) State {
	if d != listing.Asc && d != listing.Desc {
		return s
	}
	s.Direction = d
	s.EventPage = 1
	return s
}

// ToggleDirection flips the sort direction.
func (s State) ToggleDirection() State {
	return s.WithDirection(s.Direction.Flip())
}

// WithViewMode switches between my events and all events. Callers gate this
// on the viewer being an administrator.
func (s State) WithViewMode(m listing.ViewMode) State {
	if m != listing.MyEvents && m != listing.AllEvents {
		return s
	}
	s.ViewMode = m
	return s
}

// WithEventPage moves to page when it exists among total matching events;
// out-of-range pages leave the state unchanged.
func (s State) WithEventPage(page, total int) State {
	if page < 1 || page > listing.PageCount(total, s.EventPageSize) {
		return s
	}
	s.EventPage = page
	return s
}

// WithEventPageSize changes the events per page and returns to the first page.
func (s State) WithEventPageSize(size int) State {
	if !slices.Contains(EventPageSizes, size) {
		return s
	}
	s.EventPageSize = size
	s.EventPage = 1
	return s
}

// WithParticipantPage moves the roster to page when it exists.
func (s State) WithParticipantPage(page, total int) State {
	if page < 1 || page > listing.PageCount(total, s.ParticipantPageSize) {
		return s
	}
	s.ParticipantPage = page
	return s
}

// WithParticipantPageSize changes the roster page size and returns the roster
// to its first page.
func (s State) WithParticipantPageSize(size int) State {
	if !slices.Contains(ParticipantPageSizes, size) {
		return s
	}
	s.ParticipantPageSize = size
	s.ParticipantPage = 1
	return s
}

// OpenCreateForm opens an empty event form.
func (s State) OpenCreateForm() State {
	s.Modal = ModalEventForm
	s.FormMode = FormCreate
	s.SelectedEventID = ""
	return s
}

// OpenEditForm opens the event form for eventID.
func (s State) OpenEditForm(eventID string) State {
	s.Modal = ModalEventForm
	s.FormMode = FormEdit
	s.SelectedEventID = eventID
	return s
}

// OpenRoster opens the participant roster of eventID on its first page.
func (s State) OpenRoster(eventID string) State {
	s.Modal = ModalRoster
	s.FormMode = ""
	s.SelectedEventID = eventID
	s.ParticipantPage = 1
	return s
}

// CloseModal closes any open dialog and drops the selected event.
func (s State) CloseModal() State {
	s.Modal = ModalNone
	s.FormMode = ""
	s.SelectedEventID = ""
	return s
}

// ActionKind names a reducer action.
type ActionKind string

const (
	ActSearch              ActionKind = "search"
	ActTypeFilter          ActionKind = "typeFilter"
	ActSortKey             ActionKind = "sortKey"
	ActDirection           ActionKind = "direction"
	ActToggleDirection     ActionKind = "toggleDirection"
	ActViewMode            ActionKind = "viewMode"
	ActEventPage           ActionKind = "eventPage"
	ActEventPageSize       ActionKind = "eventPageSize"
	ActParticipantPage     ActionKind = "participantPage"
	ActParticipantPageSize ActionKind = "participantPageSize"
)

// Action is a serialisable view transition.
type Action struct {
	Kind   ActionKind `json:"action"`
	Text   string     `json:"text,omitempty"`
	Number int        `json:"number,omitempty"`
}

// Bounds carries the collection sizes page transitions are checked against.
type Bounds struct {
	Events       int
	Participants int
}

// Apply runs a on s.
func Apply(s State, a Action, b Bounds) (State, error) {
	switch a.Kind {
	case ActSearch:
		return s.WithSearch(a.Text), nil
	case ActTypeFilter:
		return s.WithTypeFilter(model.EventType(a.Text)), nil
	case ActSortKey:
		return s.WithSortKey(listing.SortKey(a.Text)), nil
	case ActDirection:
		return s.WithDirection(listing.Direction(a.Text)), nil
	case ActToggleDirection:
		return s.ToggleDirection(), nil
	case ActViewMode:
		return s.WithViewMode(listing.ViewMode(a.Text)), nil
	case ActEventPage:
		return s.WithEventPage(a.Number, b.Events), nil
	case ActEventPageSize:
		return s.WithEventPageSize(a.Number), nil
	case ActParticipantPage:
		return s.WithParticipantPage(a.Number, b.Participants), nil
	case ActParticipantPageSize:
		return s.WithParticipantPageSize(a.Number), nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
}
