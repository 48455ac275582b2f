// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/learnify/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetResetToken(
		ctx context.Context,
		id uuid.UUID,
		tokenHash string,
		expiresAt time.Time,
	) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	UpdateLastActive(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]EnrolledCourse, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password_hash, role, bio,
	avatar_url, avatar_public_id, reset_token_hash, reset_token_expires_at,
	last_active_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, bio,
			avatar_url, avatar_public_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Bio,
		user.AvatarURL,
		user.AvatarPublicID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE id = $1`,
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE email = $1`,
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, bio = $3, avatar_url = $4, avatar_public_id = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Bio,
		user.AvatarURL,
		user.AvatarPublicID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id uuid.UUID,
	passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetResetToken(
	ctx context.Context,
	id uuid.UUID,
	tokenHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}

	return nil
}

func (r *repository) UpdateLastActive(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_active_at = NOW() WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("update last active: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) EnrolledCourses(
	ctx context.Context,
	userID uuid.UUID,
) ([]EnrolledCourse, error) {
	query := `
		SELECT c.id, c.title, c.description, c.category, c.price, c.thumbnail
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC`

	courses := []EnrolledCourse{}
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}

	return courses, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
