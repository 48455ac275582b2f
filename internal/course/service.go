// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/media"
	"github.com/angelamos/learnify/internal/user"
)

// ErrVideoRequired is returned when a lecture is created without a
// video file attached.
var ErrVideoRequired = errors.New("lecture video is required")

// Upload is a file received from a multipart request, streamed to the
// media store without buffering to disk.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type Service struct {
	repo  Repository
	media media.Store
}

func NewService(repo Repository, mediaStore media.Store) *Service {
	return &Service{repo: repo, media: mediaStore}
}

func (s *Service) Create(
	ctx context.Context,
	instructorID uuid.UUID,
	req CreateCourseRequest,
) (*Course, error) {
	c := &Course{
		InstructorID: instructorID,
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Description:  req.Description,
		Category:     req.Category,
		Level:        req.Level,
		Price:        req.Price,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	return c, nil
}

func (s *Service) Search(
	ctx context.Context,
	filter SearchFilter,
) ([]Course, error) {
	return s.repo.Search(ctx, filter)
}

func (s *Service) ListPublished(ctx context.Context) ([]Course, error) {
	return s.repo.ListPublished(ctx)
}

func (s *Service) MyCourses(
	ctx context.Context,
	instructorID uuid.UUID,
) ([]Course, error) {
	return s.repo.ListByInstructor(ctx, instructorID)
}

func (s *Service) Detail(
	ctx context.Context,
	courseID uuid.UUID,
) (*Course, error) {
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course detail: %w", err)
	}

	lectures, err := s.repo.ListLectures(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course detail: %w", err)
	}
	c.Lectures = lectures

	return c, nil
}

func (s *Service) Update(
	ctx context.Context,
	userID, courseID uuid.UUID,
	req UpdateCourseRequest,
	thumbnail *Upload,
) (*Course, error) {
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	if !c.IsOwnedBy(userID) {
		return nil, core.ErrForbidden
	}

	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Subtitle != nil {
		c.Subtitle = *req.Subtitle
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Category != nil {
		c.Category = *req.Category
	}
	if req.Level != nil {
		c.Level = *req.Level
	}
	if req.Price != nil {
		c.Price = *req.Price
	}
	if req.IsPublished != nil {
		c.IsPublished = *req.IsPublished
	}

	if thumbnail != nil {
		asset, err := s.media.Upload(ctx, thumbnail.Filename, thumbnail.Reader)
		if err != nil {
			return nil, core.ExternalServiceError("media", err)
		}

		oldID := c.ThumbnailID
		c.Thumbnail = asset.URL
		c.ThumbnailID = asset.PublicID

		if oldID != "" {
			if err := s.media.Delete(ctx, oldID); err != nil {
				slog.WarnContext(ctx, "failed to delete old thumbnail",
					"public_id", oldID,
					"error", err,
				)
			}
		}
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	return c, nil
}

// AddLecture uploads the video and appends the lecture at the end of
// the course. The video file is mandatory.
func (s *Service) AddLecture(
	ctx context.Context,
	userID, courseID uuid.UUID,
	req CreateLectureRequest,
	video *Upload,
) (*Lecture, error) {
	if video == nil {
		return nil, ErrVideoRequired
	}

	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("add lecture: %w", err)
	}

	if !c.IsOwnedBy(userID) {
		return nil, core.ErrForbidden
	}

	asset, err := s.media.Upload(ctx, video.Filename, video.Reader)
	if err != nil {
		return nil, core.ExternalServiceError("media", err)
	}

	l := &Lecture{
		CourseID:      courseID,
		Title:         req.Title,
		VideoURL:      asset.URL,
		VideoPublicID: asset.PublicID,
		Duration:      asset.Duration,
		IsPreview:     req.IsPreview,
	}

	if err := s.repo.CreateLecture(ctx, l); err != nil {
		return nil, fmt.Errorf("add lecture: %w", err)
	}

	return l, nil
}

// Lectures returns the lecture list visible to the caller. Enrolled
// students, the course owner and admins get the full list in course
// order; everyone else gets preview lectures only.
func (s *Service) Lectures(
	ctx context.Context,
	courseID uuid.UUID,
	userID uuid.UUID,
	role string,
) (*LectureListResponse, error) {
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}

	isInstructor := userID != uuid.Nil &&
		(c.IsOwnedBy(userID) || role == user.RoleAdmin)

	isEnrolled := false
	if userID != uuid.Nil && !isInstructor {
		isEnrolled, err = s.repo.IsEnrolled(ctx, userID, courseID)
		if err != nil {
			return nil, fmt.Errorf("list lectures: %w", err)
		}
	}

	var lectures []Lecture
	if isInstructor || isEnrolled {
		lectures, err = s.repo.ListLectures(ctx, courseID)
	} else {
		lectures, err = s.repo.ListPreviewLectures(ctx, courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}

	return &LectureListResponse{
		Lectures:     lectures,
		IsEnrolled:   isEnrolled,
		IsInstructor: isInstructor,
	}, nil
}
