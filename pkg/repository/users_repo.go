package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, role, email_verified, locked, failed_login_attempts, name, bio, location, github_profile_url, linkedin_profile_url, verification_token, is_professional, professional_status_updated_at, last_login_at, created_at, updated_at`

// UsersRepository handles user persistence in Postgres.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var role string
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &role, &user.EmailVerified, &user.Locked,
		&user.FailedLoginAttempts, &user.Name, &user.Bio, &user.Location,
		&user.GitHubProfileURL, &user.LinkedInProfileURL, &user.VerificationToken,
		&user.IsProfessional, &user.ProfessionalStatusUpdatedAt, &user.LastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return user, nil
}

func (r *UsersRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Create creates a new user.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, string(user.Role), user.EmailVerified, user.Locked,
		user.FailedLoginAttempts, user.Name, user.Bio, user.Location,
		user.GitHubProfileURL, user.LinkedInProfileURL, user.VerificationToken,
		user.IsProfessional, user.ProfessionalStatusUpdatedAt, user.LastLoginAt,
		user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update writes the profile, role, verification and professional fields.
// Lockout columns are owned by the login methods and are not touched.
func (r *UsersRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, role = $3, email_verified = $4, name = $5, bio = $6, location = $7,
		    github_profile_url = $8, linkedin_profile_url = $9, verification_token = $10,
		    is_professional = $11, professional_status_updated_at = $12, updated_at = $13
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, string(user.Role), user.EmailVerified, user.Name, user.Bio, user.Location,
		user.GitHubProfileURL, user.LinkedInProfileURL, user.VerificationToken,
		user.IsProfessional, user.ProfessionalStatusUpdatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(result)
}

// Delete permanently deletes a user.
func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(result)
}

// List returns a page of users ordered by creation time and the total count.
func (r *UsersRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

// RecordFailedLogin increments the failed login attempts counter in a single
// statement and locks the account once it reaches maxAttempts.
func (r *UsersRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int) (int, bool, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked = locked OR failed_login_attempts + 1 >= $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, locked
	`
	var attempts int
	var locked bool
	err := r.db.QueryRowContext(ctx, query, id, maxAttempts).Scan(&attempts, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("increment failed logins: %w", err)
	}
	return attempts, locked, nil
}

// ResetFailedLogins zeroes the counter of an unlocked account. The row is
// locked first so a concurrent failure cannot lock it between check and write.
func (r *UsersRepository) ResetFailedLogins(ctx context.Context, id uuid.UUID, at time.Time) error {
	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		var locked bool
		err := tx.QueryRowContext(ctx, `SELECT locked FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("lock user row: %w", err)
		}
		if locked {
			return domain.ErrAccountLocked
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET failed_login_attempts = 0, last_login_at = $2 WHERE id = $1`,
			id, at,
		)
		if err != nil {
			return fmt.Errorf("reset failed logins: %w", err)
		}
		return nil
	})
}

// Unlock clears the lock and the failure counter.
func (r *UsersRepository) Unlock(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET locked = FALSE, failed_login_attempts = 0, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("unlock user: %w", err)
	}
	return requireRow(result)
}

// MarkVerified marks the email verified and clears the verification token.
func (r *UsersRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = TRUE, verification_token = NULL, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
