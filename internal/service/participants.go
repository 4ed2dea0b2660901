package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/repository"
)

// parseRole reads a participant role; empty means ATTENDEE.
func parseRole(raw string) (model.Role, error) {
	if raw == "" {
		return model.RoleAttendee, nil
	}
	role, ok := model.ParseRole(raw)
	if !ok {
		return "", invalid("role %q is not one of OWNER, COLLABORATOR, ATTENDEE, ADMIN", raw)
	}
	return role, nil
}

// managedEvent loads eventID and checks that p may manage its roster.
func (s *EventService) managedEvent(ctx context.Context, p auth.Principal, eventID string) (*model.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !canManage(p, event) {
		return nil, ErrForbidden
	}
	return event, nil
}

// AddParticipant adds userID to the event with role. Only admins may add an
// administrator or grant the ADMIN role.
func (s *EventService) AddParticipant(ctx context.Context, p auth.Principal, eventID, userID, rawRole string) error {
	role, err := parseRole(rawRole)
	if err != nil {
		return err
	}
	if userID == "" {
		return invalid("user id is required")
	}
	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !p.IsAdmin() && (user.IsAdmin() || role == model.RoleAdmin) {
		return ErrForbidden
	}

	if err := s.participants.Add(ctx, eventID, userID, role); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyParticipant):
			return ErrAlreadyParticipant
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// RemoveParticipant takes userID off the event's roster.
func (s *EventService) RemoveParticipant(ctx context.Context, p auth.Principal, eventID, userID string) error {
	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return err
	}
	if err := s.participants.Remove(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParticipantMissing
		}
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

// ChangeParticipantRole assigns a new role to an existing participant.
func (s *EventService) ChangeParticipantRole(ctx context.Context, p auth.Principal, eventID, userID, rawRole string) error {
	if rawRole == "" {
		return invalid("newRole is required")
	}
	role, err := parseRole(rawRole)
	if err != nil {
		return err
	}
	if role == model.RoleAdmin && !p.IsAdmin() {
		return ErrForbidden
	}
	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return err
	}
	if err := s.participants.ChangeRole(ctx, eventID, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParticipantMissing
		}
		return fmt.Errorf("change participant role: %w", err)
	}
	return nil
}
