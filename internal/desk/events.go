package desk

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/eventdesk/internal/fault"
	"github.com/Shivanand-hulikatti/eventdesk/internal/listing"
	"github.com/Shivanand-hulikatti/eventdesk/internal/metrics"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/notify"
	"github.com/Shivanand-hulikatti/eventdesk/internal/roster"
	"github.com/Shivanand-hulikatti/eventdesk/internal/session"
	"github.com/Shivanand-hulikatti/eventdesk/internal/viewstate"
)

// Notice texts.
const (
	msgLogin          = "You are not authorized to view events. Please log in again."
	msgLoadFailed     = "Failed to load events."
	msgUsersFailed    = "Failed to load users."
	msgNotPermitted   = "You do not have permission to manage this event."
	msgUnknownEvent   = "The selected event no longer exists."
	msgNoForm         = "No event form is open."
	msgCreated        = "Event created successfully."
	msgUpdated        = "Event updated successfully."
	msgCreateFailed   = "Failed to create event."
	msgUpdateFailed   = "Failed to update event."
	msgDeleted        = "Event deleted successfully."
	msgDeleteFailed   = "Failed to delete event."
	msgDeletePrompt   = "Are you sure you want to delete this event? This action cannot be undone."
	msgNameRequired   = "Event name is required."
	msgTimesRequired  = "Start and end date/time are required."
	msgStartBeforeEnd = "Start must be before end."
	msgUnknownType    = "Unknown event type."
)

// messageOr returns the message the events API sent with err, or fallback.
func messageOr(err error, fallback string) string {
	var fe *fault.Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return fallback
}

// canManage reports whether the viewer may edit, delete or manage the roster
// of ev.
func canManage(s *session.Session, ev *model.Event) bool {
	return ev.HasParticipant(s.ViewerID) || (s.Admin && s.View.ViewMode == listing.AllEvents)
}

// ordered is the session's filtered and sorted event list.
func ordered(s *session.Session) []model.Event {
	v := s.View
	return listing.FilterAndSort(s.Events, v.Search, v.TypeFilter, v.SortKey, v.Direction)
}

// Refresh reloads events and users.
func (d *Desk) Refresh(ctx context.Context, sid string) (*Page, error) {
	return d.command(ctx, sid, func(s *session.Session, gw Gateway) {
		d.fetchAll(ctx, s, gw)
		d.fetchUsers(ctx, s, gw)
	})
}

// fetchAll loads the full listing. Auth failures clear the list without a
// fallback; 404 and 500 fall back once to the caller's own events.
func (d *Desk) fetchAll(ctx context.Context, s *session.Session, gw Gateway) {
	events, err := gw.ListEvents(ctx)
	switch {
	case err == nil:
	case fault.Is(err, fault.Auth):
		d.log.Warn().Err(err).Str("session_id", s.ID).Msg("event listing unauthorized")
		s.Events = []model.Event{}
		s.Notice.Error(msgLogin)
		return
	case fault.Is(err, fault.NotFoundOrServer):
		// Both statuses take the same fallback; a missing endpoint and a
		// server failure are not told apart here.
		d.log.Warn().Err(err).Str("session_id", s.ID).Msg("event listing unavailable, falling back to own events")
		events, err = gw.ListMyEvents(ctx)
		if err != nil {
			metrics.ListingFallbacksTotal.WithLabelValues("failed").Inc()
			exhausted := &fault.Error{Kind: fault.FallbackExhausted, Op: "fetch_events", Err: err}
			d.log.Error().Err(exhausted).Str("session_id", s.ID).Msg("event listing fallback failed")
			s.Events = []model.Event{}
			s.Notice.Error(msgLoadFailed)
			return
		}
		metrics.ListingFallbacksTotal.WithLabelValues("ok").Inc()
	default:
		d.log.Error().Err(err).Str("session_id", s.ID).Msg("event listing failed")
		s.Events = []model.Event{}
		s.Notice.Error(messageOr(err, msgLoadFailed))
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	s.Events = events
}

// fetchUsers loads the user directory used by the roster. A failure clears
// it and is reported only when no other notice is showing.
func (d *Desk) fetchUsers(ctx context.Context, s *session.Session, gw Gateway) {
	users, err := gw.ListUsers(ctx)
	if err != nil {
		d.log.Warn().Err(err).Str("session_id", s.ID).Msg("user listing failed")
		s.Users = []model.User{}
		if s.Notice.Empty() {
			s.Notice.Error(messageOr(err, msgUsersFailed))
		}
		return
	}
	if users == nil {
		users = []model.User{}
	}
	s.Users = users
}

// Dispatch applies a view action. Switching the view mode is ignored for
// viewers who are not administrators.
func (d *Desk) Dispatch(ctx context.Context, sid string, a viewstate.Action) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		if a.Kind == viewstate.ActViewMode && !s.Admin {
			return nil
		}
		sel, _ := s.SelectedEvent()
		bounds := viewstate.Bounds{
			Events:       len(ordered(s)),
			Participants: len(roster.Participants(sel)),
		}
		next, err := viewstate.Apply(s.View, a, bounds)
		if err != nil {
			return err
		}
		s.View = next
		return nil
	})
}

// OpenCreateForm opens an empty event form.
func (d *Desk) OpenCreateForm(ctx context.Context, sid string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		s.View = s.View.OpenCreateForm()
		s.Form = model.NewEventForm()
		return nil
	})
}

// OpenEditForm opens the event form pre-filled with eventID's fields.
func (d *Desk) OpenEditForm(ctx context.Context, sid, eventID string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		ev, ok := s.Event(eventID)
		switch {
		case !ok:
			s.Notice.Error(msgUnknownEvent)
		case !canManage(s, ev):
			s.Notice.Error(msgNotPermitted)
		default:
			s.View = s.View.OpenEditForm(eventID)
			s.Form = model.FormFromEvent(*ev)
		}
		return nil
	})
}

// CloseModal closes the event form or roster.
func (d *Desk) CloseModal(ctx context.Context, sid string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		s.View = s.View.CloseModal()
		s.Form = model.NewEventForm()
		return nil
	})
}

// validateForm checks the preconditions of create and update.
func validateForm(form model.EventForm) error {
	const op = "validate_event"
	switch {
	case strings.TrimSpace(form.EventName) == "":
		return fault.Invalid(op, msgNameRequired)
	case form.StartDateTime.IsZero() || form.EndDateTime.IsZero():
		return fault.Invalid(op, msgTimesRequired)
	case !form.StartDateTime.Before(form.EndDateTime.Time):
		return fault.Invalid(op, msgStartBeforeEnd)
	case !form.EventType.Valid():
		return fault.Invalid(op, msgUnknownType)
	}
	return nil
}

// SubmitForm validates form and creates or updates the event, depending on
// how the form was opened. Invalid forms never reach the events API.
func (d *Desk) SubmitForm(ctx context.Context, sid string, form model.EventForm) (*Page, error) {
	return d.command(ctx, sid, func(s *session.Session, gw Gateway) {
		if form.EventType == "" {
			form.EventType = model.EventTypeConference
		}
		s.Form = form

		if s.View.Modal != viewstate.ModalEventForm {
			s.Notice.Error(msgNoForm)
			return
		}
		if err := validateForm(form); err != nil {
			s.Notice.Error(fault.MessageOf(err))
			return
		}

		if s.View.FormMode == viewstate.FormEdit {
			d.updateEvent(ctx, s, gw, form)
			return
		}
		d.createEvent(ctx, s, gw, form)
	})
}

func (d *Desk) createEvent(ctx context.Context, s *session.Session, gw Gateway, form model.EventForm) {
	ev, err := gw.CreateEvent(ctx, form)
	if err != nil {
		d.log.Error().Err(err).Str("session_id", s.ID).Msg("create event failed")
		s.Notice.Error(messageOr(err, msgCreateFailed))
		return
	}
	d.log.Info().Str("session_id", s.ID).Str("event_id", ev.ID).Msg("event created")
	s.View = s.View.CloseModal()
	s.Form = model.NewEventForm()
	s.Notice.Success(msgCreated)
	d.fetchAll(ctx, s, gw)
}

func (d *Desk) updateEvent(ctx context.Context, s *session.Session, gw Gateway, form model.EventForm) {
	ev, ok := s.SelectedEvent()
	if !ok {
		s.Notice.Error(msgUnknownEvent)
		return
	}
	if !canManage(s, ev) {
		s.Notice.Error(msgNotPermitted)
		return
	}
	id := ev.ID
	if err := gw.UpdateEvent(ctx, id, form); err != nil {
		d.log.Error().Err(err).Str("session_id", s.ID).Str("event_id", id).Msg("update event failed")
		s.Notice.Error(messageOr(err, msgUpdateFailed))
		return
	}
	d.log.Info().Str("session_id", s.ID).Str("event_id", id).Msg("event updated")
	s.View = s.View.CloseModal()
	s.Form = model.NewEventForm()
	s.Notice.Success(msgUpdated)
	d.fetchAll(ctx, s, gw)
}

// RequestDelete stages the deletion of eventID behind a confirmation.
func (d *Desk) RequestDelete(ctx context.Context, sid, eventID string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		ev, ok := s.Event(eventID)
		switch {
		case !ok:
			s.Notice.Error(msgUnknownEvent)
		case !canManage(s, ev):
			s.Notice.Error(msgNotPermitted)
		default:
			s.Notice.Confirm(msgDeletePrompt, notify.Pending{Action: notify.DeleteEvent, EventID: eventID})
		}
		return nil
	})
}

// Confirm runs the staged action. Without one it only renders the page.
func (d *Desk) Confirm(ctx context.Context, sid string) (*Page, error) {
	return d.command(ctx, sid, func(s *session.Session, gw Gateway) {
		p, ok := s.Notice.TakePending()
		if !ok {
			return
		}
		switch p.Action {
		case notify.DeleteEvent:
			d.deleteEvent(ctx, s, gw, p.EventID)
		case notify.RemoveParticipant:
			d.removeParticipant(ctx, s, gw, p.EventID, p.UserID)
		}
	})
}

// Cancel discards the staged action without calling the events API.
func (d *Desk) Cancel(ctx context.Context, sid string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		if p, ok := s.Notice.TakePending(); ok {
			d.log.Debug().Str("session_id", s.ID).Str("action", string(p.Action)).Msg("staged action cancelled")
		}
		return nil
	})
}

// DismissNotice clears the notification slot.
func (d *Desk) DismissNotice(ctx context.Context, sid string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		s.Notice.Dismiss()
		return nil
	})
}

func (d *Desk) deleteEvent(ctx context.Context, s *session.Session, gw Gateway, eventID string) {
	if err := gw.DeleteEvent(ctx, eventID); err != nil {
		d.log.Error().Err(err).Str("session_id", s.ID).Str("event_id", eventID).Msg("delete event failed")
		s.Notice.Error(messageOr(err, msgDeleteFailed))
		return
	}
	d.log.Info().Str("session_id", s.ID).Str("event_id", eventID).Msg("event deleted")
	if s.View.SelectedEventID == eventID {
		s.View = s.View.CloseModal()
	}
	s.Notice.Success(msgDeleted)
	d.fetchAll(ctx, s, gw)
}

// EventDetail fetches one event as the session's viewer sees it.
func (d *Desk) EventDetail(ctx context.Context, sid, eventID string) (model.Event, error) {
	s, err := d.load(ctx, sid)
	if err != nil {
		return model.Event{}, err
	}
	return d.gateways(s.Token).GetEvent(ctx, eventID)
}

// PublicEvents lists the events shown to visitors, soonest first. A 403 or
// 404 from the events API means there is nothing public to show.
func (d *Desk) PublicEvents(ctx context.Context) ([]model.Event, error) {
	events, err := d.gateways("").ListPublicEvents(ctx)
	if err != nil {
		var fe *fault.Error
		if errors.As(err, &fe) && (fe.Status == http.StatusForbidden || fe.Status == http.StatusNotFound) {
			return []model.Event{}, nil
		}
		return nil, err
	}
	return listing.FilterAndSort(events, "", listing.AllTypes, listing.SortByStart, listing.Asc), nil
}
