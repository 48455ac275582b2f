// AngelaMos | 2026
// service.go

package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/course"
)

// ErrLectureNotFound marks a missing (or wrong-course) lecture so the
// handler can name the right resource. It still satisfies
// errors.Is(err, core.ErrNotFound).
var ErrLectureNotFound = fmt.Errorf("lecture: %w", core.ErrNotFound)

type Service struct {
	repo    Repository
	courses course.Repository
}

func NewService(repo Repository, courses course.Repository) *Service {
	return &Service{repo: repo, courses: courses}
}

// Get reads the user's progress for a course. A user who has never
// touched the course gets a zero-progress view; no tracker row is
// created for a read.
func (s *Service) Get(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*ProgressResponse, error) {
	c, err := s.courseWithLectures(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	p, err := s.repo.GetByUserCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return &ProgressResponse{
				CourseDetails: c,
				Progress:      []LectureEntry{},
			}, nil
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}

	return s.respond(ctx, c, p)
}

// MarkLecture records a lecture as viewed, creating the tracker on
// first touch. Marking an already-viewed lecture is a no-op beyond the
// recompute.
func (s *Service) MarkLecture(
	ctx context.Context,
	userID, courseID, lectureID uuid.UUID,
) (*ProgressResponse, error) {
	c, err := s.courseWithLectures(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("mark lecture: %w", err)
	}

	l, err := s.courses.GetLecture(ctx, lectureID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, fmt.Errorf("mark lecture: %w", err)
	}
	if l.CourseID != courseID {
		return nil, ErrLectureNotFound
	}

	p, err := s.repo.GetOrCreate(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("mark lecture: %w", err)
	}

	if err := s.repo.MarkLectureViewed(ctx, p.ID, lectureID); err != nil {
		return nil, fmt.Errorf("mark lecture: %w", err)
	}

	return s.recompute(ctx, c, p.ID)
}

// MarkCourse marks every lecture of the course viewed at once.
func (s *Service) MarkCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*ProgressResponse, error) {
	c, err := s.courseWithLectures(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("mark course complete: %w", err)
	}

	p, err := s.repo.GetOrCreate(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("mark course complete: %w", err)
	}

	if err := s.repo.MarkAllLecturesViewed(ctx, p.ID, courseID); err != nil {
		return nil, fmt.Errorf("mark course complete: %w", err)
	}

	return s.recompute(ctx, c, p.ID)
}

// Reset clears all viewed flags, taking the tracker back to zero
// percent. Resetting untouched progress yields the same zero state.
func (s *Service) Reset(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*ProgressResponse, error) {
	c, err := s.courseWithLectures(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("reset progress: %w", err)
	}

	p, err := s.repo.GetOrCreate(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("reset progress: %w", err)
	}

	if err := s.repo.ResetEntries(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("reset progress: %w", err)
	}

	return s.recompute(ctx, c, p.ID)
}

// courseWithLectures loads the course plus its lecture list, the shape
// the progress views render against.
func (s *Service) courseWithLectures(
	ctx context.Context,
	courseID uuid.UUID,
) (*course.Course, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lectures, err := s.courses.ListLectures(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.Lectures = lectures

	return c, nil
}

func (s *Service) recompute(
	ctx context.Context,
	c *course.Course,
	progressID uuid.UUID,
) (*ProgressResponse, error) {
	p, err := s.repo.Recompute(ctx, progressID, c.ID)
	if err != nil {
		return nil, fmt.Errorf("recompute progress: %w", err)
	}

	return s.respond(ctx, c, p)
}

func (s *Service) respond(
	ctx context.Context,
	c *course.Course,
	p *CourseProgress,
) (*ProgressResponse, error) {
	entries, err := s.repo.ListEntries(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list progress entries: %w", err)
	}

	return &ProgressResponse{
		CourseDetails:        c,
		Progress:             entries,
		IsCompleted:          p.IsCompleted,
		CompletionPercentage: p.Percentage,
	}, nil
}
