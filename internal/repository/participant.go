package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
)

// ParticipantRepository mutates event rosters.
type ParticipantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Add puts userID on the event's roster with role.
//
// The event row is locked with SELECT ... FOR UPDATE first, so concurrent
// adds and a concurrent delete of the same event are serialised and the
// duplicate check below cannot race with another insert.
func (r *ParticipantRepository) Add(ctx context.Context, eventID, userID string, role model.Role) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockEvent(ctx, tx, eventID); err != nil {
		return err
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if exists {
		return ErrAlreadyParticipant
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO event_participants (event_id, user_id, role) VALUES ($1, $2, $3)`,
		eventID, userID, string(role),
	)
	if err != nil {
		switch pgCode(err) {
		case codeForeignKeyViolation:
			return ErrUserNotFound
		case codeUniqueViolation:
			return ErrAlreadyParticipant
		}
		return fmt.Errorf("insert participant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Remove takes userID off the event's roster.
func (r *ParticipantRepository) Remove(ctx context.Context, eventID, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangeRole assigns role to an existing participant.
func (r *ParticipantRepository) ChangeRole(ctx context.Context, eventID, userID string, role model.Role) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE event_participants SET role = $3 WHERE event_id = $1 AND user_id = $2`,
		eventID, userID, string(role),
	)
	if err != nil {
		return fmt.Errorf("change participant role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
