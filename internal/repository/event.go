package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
)

const eventColumns = `id, event_name, event_location, start_date_time, end_date_time, event_description, event_type`

// EventRepository handles persistence for events and reads their rosters.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event with ownerID as its OWNER, in one transaction.
func (r *EventRepository) Create(ctx context.Context, form model.EventForm, ownerID string) (*model.Event, error) {
	event := &model.Event{
		ID:               uuid.New().String(),
		EventName:        form.EventName,
		EventLocation:    form.EventLocation,
		StartDateTime:    form.StartDateTime,
		EndDateTime:      form.EndDateTime,
		EventDescription: form.EventDescription,
		EventType:        form.EventType,
		Participants:     map[string]model.Role{ownerID: model.RoleOwner},
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.EventName, event.EventLocation, event.StartDateTime.Time,
		event.EndDateTime.Time, event.EventDescription, string(event.EventType), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO event_participants (event_id, user_id, role) VALUES ($1, $2, $3)`,
		event.ID, ownerID, string(model.RoleOwner),
	)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("insert owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return event, nil
}

// List returns all events ordered by start time, with their rosters.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_date_time ASC`,
	)
}

// ListByParticipant returns the events userID takes part in.
func (r *EventRepository) ListByParticipant(ctx context.Context, userID string) ([]model.Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events e
		 WHERE EXISTS (SELECT 1 FROM event_participants p WHERE p.event_id = e.id AND p.user_id = $1)
		 ORDER BY start_date_time ASC`,
		userID,
	)
}

// GetByID returns a single event with its roster, or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	events, err := r.query(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return &events[0], nil
}

// Update replaces the event's fields. The roster is untouched.
func (r *EventRepository) Update(ctx context.Context, id string, form model.EventForm) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET event_name = $2, event_location = $3, start_date_time = $4,
		     end_date_time = $5, event_description = $6, event_type = $7
		 WHERE id = $1`,
		id, form.EventName, form.EventLocation, form.StartDateTime.Time,
		form.EndDateTime.Time, form.EventDescription, string(form.EventType),
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the event; its roster goes with it.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// query loads events and then attaches the rosters of exactly those events.
func (r *EventRepository) query(ctx context.Context, sql string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events, err := pgx.CollectRows(rows, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	if len(events) == 0 {
		return []model.Event{}, nil
	}

	ids := make([]string, len(events))
	byID := make(map[string]*model.Event, len(events))
	for i := range events {
		ids[i] = events[i].ID
		events[i].Participants = map[string]model.Role{}
		byID[events[i].ID] = &events[i]
	}

	prow, err := r.db.Query(ctx,
		`SELECT event_id, user_id, role FROM event_participants WHERE event_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer prow.Close()

	for prow.Next() {
		var eventID, userID, role string
		if err := prow.Scan(&eventID, &userID, &role); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if e, ok := byID[eventID]; ok {
			e.Participants[userID] = model.Role(role)
		}
	}
	return events, prow.Err()
}

func scanEvent(row pgx.CollectableRow) (model.Event, error) {
	var (
		e          model.Event
		start, end time.Time
		eventType  string
	)
	err := row.Scan(&e.ID, &e.EventName, &e.EventLocation, &start, &end, &e.EventDescription, &eventType)
	if err != nil {
		return model.Event{}, err
	}
	e.StartDateTime = model.NewTimestamp(start.UTC())
	e.EndDateTime = model.NewTimestamp(end.UTC())
	e.EventType = model.EventType(eventType)
	return e, nil
}

// lockEvent takes a row lock on the event inside tx, or returns ErrNotFound.
func lockEvent(ctx context.Context, tx pgx.Tx, eventID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock event row: %w", err)
	}
	return nil
}
