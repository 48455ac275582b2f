// AngelaMos | 2026
// repository.go

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/learnify/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*Course, error)
	Search(ctx context.Context, filter SearchFilter) ([]Course, error)
	ListPublished(ctx context.Context) ([]Course, error)
	ListByInstructor(
		ctx context.Context,
		instructorID uuid.UUID,
	) ([]Course, error)
	Update(ctx context.Context, c *Course) error
	CreateLecture(ctx context.Context, l *Lecture) error
	GetLecture(ctx context.Context, id uuid.UUID) (*Lecture, error)
	ListLectures(ctx context.Context, courseID uuid.UUID) ([]Lecture, error)
	ListPreviewLectures(
		ctx context.Context,
		courseID uuid.UUID,
	) ([]Lecture, error)
	Enroll(ctx context.Context, userID, courseID uuid.UUID) error
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const courseColumns = `
	c.id, c.instructor_id, c.title, c.subtitle, c.description,
	c.category, c.level, c.price, c.thumbnail, c.thumbnail_public_id,
	c.is_published, c.created_at, c.updated_at,
	u.name AS instructor_name,
	(SELECT COUNT(*) FROM enrollments e
		WHERE e.course_id = c.id) AS enrolled_count,
	(SELECT COUNT(*) FROM lectures l
		WHERE l.course_id = c.id) AS lecture_count`

const courseFrom = `
	FROM courses c
	JOIN users u ON u.id = c.instructor_id`

func (r *repository) Create(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (
			instructor_id, title, subtitle, description,
			category, level, price, thumbnail, thumbnail_public_id,
			is_published
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.InstructorID, c.Title, c.Subtitle, c.Description,
		c.Category, c.Level, c.Price, c.Thumbnail, c.ThumbnailID,
		c.IsPublished,
	)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*Course, error) {
	query := `SELECT ` + courseColumns + courseFrom + ` WHERE c.id = $1`

	var c Course
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return &c, nil
}

func (r *repository) Search(
	ctx context.Context,
	filter SearchFilter,
) ([]Course, error) {
	conditions := []string{"c.is_published = TRUE"}
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(c.title ILIKE $%d OR c.subtitle ILIKE $%d OR c.description ILIKE $%d)",
			len(args), len(args), len(args),
		))
	}

	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf(
			"c.category IN (%s)", strings.Join(placeholders, ", "),
		))
	}

	if filter.Level != "" {
		args = append(args, filter.Level)
		conditions = append(
			conditions,
			fmt.Sprintf("c.level = $%d", len(args)),
		)
	}

	if filter.PriceMin != nil {
		args = append(args, *filter.PriceMin)
		conditions = append(
			conditions,
			fmt.Sprintf("c.price >= $%d", len(args)),
		)
	}

	if filter.PriceMax != nil {
		args = append(args, *filter.PriceMax)
		conditions = append(
			conditions,
			fmt.Sprintf("c.price <= $%d", len(args)),
		)
	}

	orderBy := "c.created_at DESC"
	switch filter.SortBy {
	case "oldest":
		orderBy = "c.created_at ASC"
	case "price-low":
		orderBy = "c.price ASC"
	case "price-high":
		orderBy = "c.price DESC"
	}

	query := `SELECT ` + courseColumns + courseFrom +
		` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY ` + orderBy

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}

	return courses, nil
}

func (r *repository) ListPublished(ctx context.Context) ([]Course, error) {
	query := `SELECT ` + courseColumns + courseFrom + `
		WHERE c.is_published = TRUE
		ORDER BY c.created_at DESC`

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list published courses: %w", err)
	}

	return courses, nil
}

func (r *repository) ListByInstructor(
	ctx context.Context,
	instructorID uuid.UUID,
) ([]Course, error) {
	query := `SELECT ` + courseColumns + courseFrom + `
		WHERE c.instructor_id = $1
		ORDER BY c.created_at DESC`

	courses := []Course{}
	err := r.db.SelectContext(ctx, &courses, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list courses by instructor: %w", err)
	}

	return courses, nil
}

func (r *repository) Update(ctx context.Context, c *Course) error {
	query := `
		UPDATE courses
		SET title = $2,
			subtitle = $3,
			description = $4,
			category = $5,
			level = $6,
			price = $7,
			thumbnail = $8,
			thumbnail_public_id = $9,
			is_published = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID, c.Title, c.Subtitle, c.Description, c.Category,
		c.Level, c.Price, c.Thumbnail, c.ThumbnailID, c.IsPublished,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		return fmt.Errorf("update course: %w", err)
	}

	return nil
}

// CreateLecture assigns the next position from the current lecture
// count. The unique (course_id, lecture_order) index rejects the loser
// when two inserts for the same course race on the same slot.
func (r *repository) CreateLecture(ctx context.Context, l *Lecture) error {
	query := `
		INSERT INTO lectures (
			course_id, title, video_url, video_public_id,
			duration, is_preview, lecture_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, (
			SELECT COUNT(*) + 1 FROM lectures WHERE course_id = $1
		))
		RETURNING id, lecture_order, created_at, updated_at`

	err := r.db.GetContext(ctx, l, query,
		l.CourseID, l.Title, l.VideoURL, l.VideoPublicID,
		l.Duration, l.IsPreview,
	)
	if err != nil {
		return fmt.Errorf("create lecture: %w", err)
	}

	return nil
}

func (r *repository) GetLecture(
	ctx context.Context,
	id uuid.UUID,
) (*Lecture, error) {
	query := `SELECT * FROM lectures WHERE id = $1`

	var l Lecture
	if err := r.db.GetContext(ctx, &l, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get lecture: %w", err)
	}

	return &l, nil
}

func (r *repository) ListLectures(
	ctx context.Context,
	courseID uuid.UUID,
) ([]Lecture, error) {
	query := `
		SELECT * FROM lectures
		WHERE course_id = $1
		ORDER BY lecture_order ASC`

	lectures := []Lecture{}
	err := r.db.SelectContext(ctx, &lectures, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}

	return lectures, nil
}

func (r *repository) ListPreviewLectures(
	ctx context.Context,
	courseID uuid.UUID,
) ([]Lecture, error) {
	query := `
		SELECT * FROM lectures
		WHERE course_id = $1 AND is_preview = TRUE
		ORDER BY lecture_order ASC`

	lectures := []Lecture{}
	err := r.db.SelectContext(ctx, &lectures, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list preview lectures: %w", err)
	}

	return lectures, nil
}

func (r *repository) Enroll(
	ctx context.Context,
	userID, courseID uuid.UUID,
) error {
	query := `
		INSERT INTO enrollments (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		if isForeignKeyError(err) {
			return core.ErrNotFound
		}
		return fmt.Errorf("enroll user: %w", err)
	}

	return nil
}

func (r *repository) IsEnrolled(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE user_id = $1 AND course_id = $2
		)`

	var enrolled bool
	err := r.db.GetContext(ctx, &enrolled, query, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}

	return enrolled, nil
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
