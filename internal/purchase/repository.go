// AngelaMos | 2026
// repository.go

package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/course"
)

type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	SetSession(ctx context.Context, id uuid.UUID, sessionID string) error
	HasCompleted(
		ctx context.Context,
		userID, courseID uuid.UUID,
	) (bool, error)
	MarkCompletedAndEnroll(
		ctx context.Context,
		sessionID string,
	) (*Purchase, error)
	MarkFailed(ctx context.Context, sessionID string) error
	ListPurchasedCourses(
		ctx context.Context,
		userID uuid.UUID,
	) ([]PurchasedCourse, error)
}

// repository keeps the raw *sqlx.DB (not core.DBTX) because completing
// a purchase and enrolling the buyer must commit atomically.
type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Purchase) error {
	query := `
		INSERT INTO purchases (
			user_id, course_id, amount, status, payment_method, session_id
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.UserID, p.CourseID, p.Amount, p.Status,
		p.PaymentMethod, p.SessionID,
	)
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}

	return nil
}

func (r *repository) SetSession(
	ctx context.Context,
	id uuid.UUID,
	sessionID string,
) error {
	query := `
		UPDATE purchases
		SET session_id = $2, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, sessionID); err != nil {
		return fmt.Errorf("set purchase session: %w", err)
	}

	return nil
}

func (r *repository) HasCompleted(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM purchases
			WHERE user_id = $1 AND course_id = $2 AND status = $3
		)`

	var purchased bool
	err := r.db.GetContext(
		ctx, &purchased, query, userID, courseID, StatusCompleted,
	)
	if err != nil {
		return false, fmt.Errorf("check purchase status: %w", err)
	}

	return purchased, nil
}

// MarkCompletedAndEnroll flips the pending purchase to completed and
// creates the enrollment in one transaction. The status guard makes
// replayed webhooks a no-op: the second delivery finds no pending row
// and returns core.ErrNotFound.
func (r *repository) MarkCompletedAndEnroll(
	ctx context.Context,
	sessionID string,
) (*Purchase, error) {
	var p Purchase

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE purchases
			SET status = $2, updated_at = NOW()
			WHERE session_id = $1 AND status = $3
			RETURNING *`

		err := tx.GetContext(
			ctx, &p, query, sessionID, StatusCompleted, StatusPending,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return core.ErrNotFound
			}
			return fmt.Errorf("complete purchase: %w", err)
		}

		return course.NewRepository(tx).Enroll(ctx, p.UserID, p.CourseID)
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) MarkFailed(
	ctx context.Context,
	sessionID string,
) error {
	query := `
		UPDATE purchases
		SET status = $2, updated_at = NOW()
		WHERE session_id = $1 AND status = $3`

	res, err := r.db.ExecContext(
		ctx, query, sessionID, StatusFailed, StatusPending,
	)
	if err != nil {
		return fmt.Errorf("fail purchase: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}

	return nil
}

func (r *repository) ListPurchasedCourses(
	ctx context.Context,
	userID uuid.UUID,
) ([]PurchasedCourse, error) {
	query := `
		SELECT c.id, c.title, c.subtitle, c.description, c.category,
			c.price, c.thumbnail, u.name AS instructor_name
		FROM purchases p
		JOIN courses c ON c.id = p.course_id
		JOIN users u ON u.id = c.instructor_id
		WHERE p.user_id = $1 AND p.status = $2
		ORDER BY p.created_at DESC`

	courses := []PurchasedCourse{}
	err := r.db.SelectContext(ctx, &courses, query, userID, StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("list purchased courses: %w", err)
	}

	return courses, nil
}
