package identity

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-backed user repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, name, role, specialty, password_hash, created_at`

// Create persists a new user
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO care.users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, normalizeEmail(u.Email), u.Name, u.Role, u.Specialty,
		u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Conflict("email already registered")
		}
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get returns a user by ID
func (r *PostgresRepository) Get(ctx context.Context, id types.ID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM care.users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, errors.NotFound("user", id.String())
	}
	return u, nil
}

// GetByEmail returns a user by email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM care.users WHERE email = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
	if err != nil {
		return nil, errors.NotFound("user", email)
	}
	return u, nil
}

// ListByRole returns users with the given role tag, in creation order
func (r *PostgresRepository) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	query := `SELECT ` + userColumns + `
		FROM care.users
		WHERE role = $1
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	return collectUsers(rows)
}

// List returns all users in creation order
func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM care.users ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*User, error) {
	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.Specialty,
		&u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan user")
	}
	return u, nil
}
