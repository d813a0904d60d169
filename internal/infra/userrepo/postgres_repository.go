package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/projectshelf/internal/domain/user"
)

const pgUniqueViolation = "23505"

const userColumns = `id::text, first_name, last_name, email, password_hash, role, is_active, created_at, updated_at`

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row. The unique index on email maps to ErrEmailExists.
func (r *PostgresRepository) Create(ctx context.Context, u user.NewUser) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, string(u.Role))
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// GetByEmail fetches a user by exact email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

// GetByID fetches by primary key. Ids that are not UUIDs are simply not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	if !isUUID(id) {
		return user.User{}, false, nil
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
}

// List returns every user, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update writes the mutable profile fields.
func (r *PostgresRepository) Update(ctx context.Context, u user.User) (user.User, bool, error) {
	if !isUUID(u.ID) {
		return user.User{}, false, nil
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, password_hash = $4, role = $5, is_active = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.FirstName, u.LastName, u.PasswordHash, string(u.Role), u.IsActive)
	updated, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, false, nil
	}
	if err != nil {
		return user.User{}, false, fmt.Errorf("update user: %w", err)
	}
	return updated, true, nil
}

// Delete removes the user row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (user.User, bool, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return user.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return user.User{}, false, rows.Err()
	}
	u, err := scanUser(rows)
	if err != nil {
		return user.User{}, false, err
	}
	return u, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u       user.User
		role    string
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &role, &u.IsActive, &created, &updated); err != nil {
		return user.User{}, err
	}
	u.Role = user.Role(role)
	u.CreatedAt = created.UTC()
	u.UpdatedAt = updated.UTC()
	return u, nil
}

var _ user.Repository = (*PostgresRepository)(nil)
