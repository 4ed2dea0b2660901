package desk

import (
	"context"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/notify"
	"github.com/Shivanand-hulikatti/eventdesk/internal/roster"
	"github.com/Shivanand-hulikatti/eventdesk/internal/session"
	"github.com/Shivanand-hulikatti/eventdesk/internal/viewstate"
)

const (
	msgNoRoster     = "No participant list is open."
	msgUnknownRole  = "Unknown participant role."
	msgAdded        = "Participant added successfully."
	msgAddFailed    = "Failed to add participant."
	msgRemoved      = "Participant removed successfully."
	msgRemoveFailed = "Failed to remove participant."
	msgRoleChanged  = "Participant role updated successfully."
	msgChangeFailed = "Failed to update participant role."
	msgNotAvailable = "This user cannot be added to the event."
	msgNotOnRoster  = "This user is not a participant of the event."
)

// OpenRoster opens the participant list of eventID.
func (d *Desk) OpenRoster(ctx context.Context, sid, eventID string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		ev, ok := s.Event(eventID)
		switch {
		case !ok:
			s.Notice.Error(msgUnknownEvent)
		case !canManage(s, ev):
			s.Notice.Error(msgNotPermitted)
		default:
			s.View = s.View.OpenRoster(eventID)
		}
		return nil
	})
}

// rosterEvent returns the event whose roster is open, raising a notice when
// there is none or the viewer may not manage it.
func rosterEvent(s *session.Session) (*model.Event, bool) {
	if s.View.Modal != viewstate.ModalRoster {
		s.Notice.Error(msgNoRoster)
		return nil, false
	}
	ev, ok := s.SelectedEvent()
	if !ok {
		s.Notice.Error(msgUnknownEvent)
		return nil, false
	}
	if !canManage(s, ev) {
		s.Notice.Error(msgNotPermitted)
		return nil, false
	}
	return ev, true
}

// AddParticipant adds userID to the open roster with role. An empty role
// means ATTENDEE.
func (d *Desk) AddParticipant(ctx context.Context, sid, userID, role string) (*Page, error) {
	return d.command(ctx, sid, func(s *session.Session, gw Gateway) {
		ev, ok := rosterEvent(s)
		if !ok {
			return
		}
		r := model.RoleAttendee
		if role != "" {
			parsed, ok := model.ParseRole(role)
			if !ok {
				s.Notice.Error(msgUnknownRole)
				return
			}
			r = parsed
		}
		if !available(s, ev, userID) {
			s.Notice.Error(msgNotAvailable)
			return
		}

		eventID := ev.ID
		if err := gw.AddParticipant(ctx, eventID, userID, r); err != nil {
			d.log.Error().Err(err).Str("session_id", s.ID).Str("event_id", eventID).Str("user_id", userID).Msg("add participant failed")
			s.Notice.Error(messageOr(err, msgAddFailed))
			return
		}
		d.log.Info().Str("session_id", s.ID).Str("event_id", eventID).Str("user_id", userID).Str("role", string(r)).Msg("participant added")
		s.Notice.Success(msgAdded)
		d.fetchAll(ctx, s, gw)
	})
}

func available(s *session.Session, ev *model.Event, userID string) bool {
	for _, u := range roster.AvailableUsers(s.Users, ev, s.Admin) {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// RequestRemoveParticipant stages the removal of userID from the open roster
// behind a confirmation naming the user.
func (d *Desk) RequestRemoveParticipant(ctx context.Context, sid, userID string) (*Page, error) {
	return d.view(ctx, sid, func(s *session.Session) error {
		ev, ok := rosterEvent(s)
		if !ok {
			return nil
		}
		if !ev.HasParticipant(userID) {
			s.Notice.Error(msgNotOnRoster)
			return nil
		}
		s.Notice.Confirm(roster.RemovalPrompt(s.Users, userID), notify.Pending{
			Action:  notify.RemoveParticipant,
			EventID: ev.ID,
			UserID:  userID,
		})
		return nil
	})
}

func (d *Desk) removeParticipant(ctx context.Context, s *session.Session, gw Gateway, eventID, userID string) {
	if err := gw.RemoveParticipant(ctx, eventID, userID); err != nil {
		d.log.Error().Err(err).Str("session_id", s.ID).Str("event_id", eventID).Str("user_id", userID).Msg("remove participant failed")
		s.Notice.Error(messageOr(err, msgRemoveFailed))
		return
	}
	d.log.Info().Str("session_id", s.ID).Str("event_id", eventID).Str("user_id", userID).Msg("participant removed")
	s.Notice.Success(msgRemoved)
	d.fetchAll(ctx, s, gw)
}

// ChangeParticipantRole assigns role to userID on the open roster.
func (d *Desk) ChangeParticipantRole(ctx context.Context, sid, userID, role string) (*Page, error) {
	return d.command(ctx, sid, func(s *session.Session, gw Gateway) {
		ev, ok := rosterEvent(s)
		if !ok {
			return
		}
		r, ok := model.ParseRole(role)
		if !ok {
			s.Notice.Error(msgUnknownRole)
			return
		}
		if !ev.HasParticipant(userID) {
			s.Notice.Error(msgNotOnRoster)
			return
		}

		eventID := ev.ID
		if err := gw.ChangeParticipantRole(ctx, eventID, userID, r); err != nil {
			d.log.Error().Err(err).Str("session_id", s.ID).Str("event_id", eventID).Str("user_id", userID).Msg("change participant role failed")
			s.Notice.Error(messageOr(err, msgChangeFailed))
			return
		}
		d.log.Info().Str("session_id", s.ID).Str("event_id", eventID).Str("user_id", userID).Str("role", string(r)).Msg("participant role changed")
		s.Notice.Success(msgRoleChanged)
		d.fetchAll(ctx, s, gw)
	})
}
