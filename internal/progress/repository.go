// AngelaMos | 2026
// repository.go

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
)

type Repository interface {
	GetByUserCourse(
		ctx context.Context,
		userID, courseID uuid.UUID,
	) (*CourseProgress, error)
	GetOrCreate(
		ctx context.Context,
		userID, courseID uuid.UUID,
	) (*CourseProgress, error)
	ListEntries(
		ctx context.Context,
		progressID uuid.UUID,
	) ([]LectureEntry, error)
	MarkLectureViewed(
		ctx context.Context,
		progressID, lectureID uuid.UUID,
	) error
	MarkAllLecturesViewed(
		ctx context.Context,
		progressID, courseID uuid.UUID,
	) error
	ResetEntries(ctx context.Context, progressID uuid.UUID) error
	Recompute(
		ctx context.Context,
		progressID, courseID uuid.UUID,
	) (*CourseProgress, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*CourseProgress, error) {
	query := `
		SELECT * FROM course_progress
		WHERE user_id = $1 AND course_id = $2`

	var p CourseProgress
	if err := r.db.GetContext(ctx, &p, query, userID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get course progress: %w", err)
	}

	return &p, nil
}

// GetOrCreate returns the tracker for (user, course), creating an
// empty one when it does not exist yet. The no-op DO UPDATE makes the
// insert return the existing row instead of nothing, so concurrent
// callers all land on the same tracker.
func (r *repository) GetOrCreate(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*CourseProgress, error) {
	query := `
		INSERT INTO course_progress (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id)
			DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING *`

	var p CourseProgress
	if err := r.db.GetContext(ctx, &p, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("get or create course progress: %w", err)
	}

	return &p, nil
}

func (r *repository) ListEntries(
	ctx context.Context,
	progressID uuid.UUID,
) ([]LectureEntry, error) {
	query := `
		SELECT lp.progress_id, lp.lecture_id, lp.is_viewed, lp.viewed_at
		FROM lecture_progress lp
		JOIN lectures l ON l.id = lp.lecture_id
		WHERE lp.progress_id = $1
		ORDER BY l.lecture_order ASC`

	entries := []LectureEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, progressID); err != nil {
		return nil, fmt.Errorf("list progress entries: %w", err)
	}

	return entries, nil
}

// MarkLectureViewed is idempotent: re-marking a viewed lecture keeps
// the original viewed_at.
func (r *repository) MarkLectureViewed(
	ctx context.Context,
	progressID, lectureID uuid.UUID,
) error {
	query := `
		INSERT INTO lecture_progress (progress_id, lecture_id, is_viewed, viewed_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (progress_id, lecture_id) DO UPDATE
		SET is_viewed = TRUE,
			viewed_at = COALESCE(lecture_progress.viewed_at, NOW())`

	if _, err := r.db.ExecContext(ctx, query, progressID, lectureID); err != nil {
		return fmt.Errorf("mark lecture viewed: %w", err)
	}

	return nil
}

// MarkAllLecturesViewed materializes an entry for every lecture in the
// course, so the tracker reflects the full lecture list.
func (r *repository) MarkAllLecturesViewed(
	ctx context.Context,
	progressID, courseID uuid.UUID,
) error {
	query := `
		INSERT INTO lecture_progress (progress_id, lecture_id, is_viewed, viewed_at)
		SELECT $1, l.id, TRUE, NOW()
		FROM lectures l
		WHERE l.course_id = $2
		ON CONFLICT (progress_id, lecture_id) DO UPDATE
		SET is_viewed = TRUE,
			viewed_at = COALESCE(lecture_progress.viewed_at, NOW())`

	if _, err := r.db.ExecContext(ctx, query, progressID, courseID); err != nil {
		return fmt.Errorf("mark all lectures viewed: %w", err)
	}

	return nil
}

func (r *repository) ResetEntries(
	ctx context.Context,
	progressID uuid.UUID,
) error {
	query := `
		UPDATE lecture_progress
		SET is_viewed = FALSE, viewed_at = NULL
		WHERE progress_id = $1`

	if _, err := r.db.ExecContext(ctx, query, progressID); err != nil {
		return fmt.Errorf("reset progress entries: %w", err)
	}

	return nil
}

// Recompute derives percentage and completion from current counts in
// one statement, so the tracker never holds a value computed from a
// stale read.
func (r *repository) Recompute(
	ctx context.Context,
	progressID, courseID uuid.UUID,
) (*CourseProgress, error) {
	query := `
		UPDATE course_progress cp
		SET percentage = sub.pct,
			is_completed = sub.done,
			updated_at = NOW()
		FROM (
			SELECT
				CASE WHEN t.total = 0 THEN 0
					ELSE ROUND(100.0 * v.viewed / t.total)::int
				END AS pct,
				(t.total > 0 AND v.viewed = t.total) AS done
			FROM
				(SELECT COUNT(*) AS total
					FROM lectures WHERE course_id = $2) t,
				(SELECT COUNT(*) AS viewed
					FROM lecture_progress
					WHERE progress_id = $1 AND is_viewed) v
		) sub
		WHERE cp.id = $1
		RETURNING cp.*`

	var p CourseProgress
	if err := r.db.GetContext(ctx, &p, query, progressID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("recompute course progress: %w", err)
	}

	return &p, nil
}
