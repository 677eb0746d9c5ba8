package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	"github.com/pharmhub-dev/pharmhub/internal/domain"
	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// =========================================================================
// Public Methods (satisfy the service.UserStorage interface)
// =========================================================================

// SaveUser inserts a new user record. A duplicate email maps to 409.
func (s *Storage) SaveUser(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var saved domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		saved, err = s.saveUser(tx, user)
		return err
	})
	return saved, err
}

// UserByEmail fetches a user by email, including soft-deleted records; the
// caller decides whether a deleted user is acceptable.
func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.scanUser(s.db.QueryRowContext(ctx, selectUser+" WHERE email = $1", email))
}

// UserById fetches a user by primary key.
func (s *Storage) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.scanUser(s.db.QueryRowContext(ctx, selectUser+" WHERE id = $1", id))
}

// Users lists all active (non-deleted) users.
func (s *Storage) Users(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, selectUser+" WHERE deleted_at IS NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var deletedAt sql.NullTime
		if err := rows.Scan(&u.Id, &u.Email, &u.FullName, &u.PassHash, &u.Admin, &u.CreatedAt, &u.UpdatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			u.DeletedAt = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser persists mutable profile fields of an already-merged user record.
func (s *Storage) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE users SET email = $1, full_name = $2, is_admin = $3, updated_at = $4 WHERE id = $5 AND deleted_at IS NULL",
			user.Email, user.FullName, user.Admin, user.UpdatedAt, user.Id)
		if err != nil {
			return translatePgError(err)
		}
		if err := requireRow(res); err != nil {
			return err
		}
		updated, err = s.userById(tx, user.Id)
		return err
	})
	return updated, err
}

// UpdatePassword writes a new password hash in a single atomic call.
// Writes the same column the login path reads.
func (s *Storage) UpdatePassword(ctx context.Context, id domain.UserId, passHash string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL",
			passHash, id)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return requireRow(res)
	})
}

// SoftDeleteUser stamps deleted_at. The record stays for audit purposes but
// the user is no longer authenticatable.
func (s *Storage) SoftDeleteUser(ctx context.Context, id domain.UserId) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE users SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
		if err != nil {
			return fmt.Errorf("failed to soft-delete user: %w", err)
		}
		return requireRow(res)
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

const selectUser = "SELECT id, email, full_name, password_hash, is_admin, created_at, updated_at, deleted_at FROM users"

func (s *Storage) saveUser(q Querier, user domain.User) (domain.User, error) {
	row := q.QueryRow(
		"INSERT INTO users(email, full_name, password_hash, is_admin) VALUES($1, $2, $3, $4) RETURNING id, email, full_name, password_hash, is_admin, created_at, updated_at, deleted_at",
		user.Email, user.FullName, user.PassHash, user.Admin)

	saved, err := s.scanUser(row)
	if err != nil {
		return domain.User{}, translatePgError(err)
	}
	return saved, nil
}

func (s *Storage) userById(q Querier, id domain.UserId) (domain.User, error) {
	return s.scanUser(q.QueryRow(selectUser+" WHERE id = $1", id))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Storage) scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var deletedAt sql.NullTime
	err := row.Scan(&user.Id, &user.Email, &user.FullName, &user.PassHash, &user.Admin, &user.CreatedAt, &user.UpdatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		user.DeletedAt = &t
	}
	return user, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return &internal_errors.ErrorWithStatusCode{Message: "Email address already registered", StatusCode: http.StatusConflict}
	}
	return err
}
