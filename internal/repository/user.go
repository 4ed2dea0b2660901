package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
)

// UserRepository reads the user directory and provisions accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// List returns every user ordered by last and first name.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, first_name, last_name, email, roles FROM users ORDER BY last_name, first_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return users, nil
}

// GetByID returns one user or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, first_name, last_name, email, roles FROM users WHERE id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Upsert creates the user or updates the one with the same email, keeping
// its id.
func (r *UserRepository) Upsert(ctx context.Context, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (id, first_name, last_name, email, roles)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE
		 SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, roles = EXCLUDED.roles
		 RETURNING id`,
		u.ID, u.FirstName, u.LastName, u.Email, u.RoleNames(),
	).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (model.User, error) {
	var (
		u     model.User
		roles []string
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &roles); err != nil {
		return model.User{}, err
	}
	u.Roles = model.RolesFromNames(roles)
	return u, nil
}
