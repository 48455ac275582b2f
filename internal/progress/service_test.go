// AngelaMos | 2026
// service_test.go

package progress

import (
	"context"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/course"
)

// fakeCourseRepo serves course and lecture lookups from memory. Only
// the methods the progress service touches are implemented; the rest
// panic via the embedded nil interface.
type fakeCourseRepo struct {
	course.Repository
	courses  map[uuid.UUID]*course.Course
	lectures map[uuid.UUID]*course.Lecture
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses:  map[uuid.UUID]*course.Course{},
		lectures: map[uuid.UUID]*course.Lecture{},
	}
}

func (f *fakeCourseRepo) addCourse(lectureCount int) (uuid.UUID, []uuid.UUID) {
	courseID := uuid.New()
	f.courses[courseID] = &course.Course{ID: courseID, Title: "Go Basics"}

	lectureIDs := make([]uuid.UUID, 0, lectureCount)
	for i := range lectureCount {
		id := uuid.New()
		f.lectures[id] = &course.Lecture{
			ID:       id,
			CourseID: courseID,
			Order:    i + 1,
		}
		lectureIDs = append(lectureIDs, id)
	}

	return courseID, lectureIDs
}

func (f *fakeCourseRepo) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*course.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeCourseRepo) GetLecture(
	_ context.Context,
	id uuid.UUID,
) (*course.Lecture, error) {
	if l, ok := f.lectures[id]; ok {
		return l, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeCourseRepo) ListLectures(
	_ context.Context,
	courseID uuid.UUID,
) ([]course.Lecture, error) {
	lectures := []course.Lecture{}
	for _, l := range f.lectures {
		if l.CourseID == courseID {
			lectures = append(lectures, *l)
		}
	}
	sort.Slice(lectures, func(i, j int) bool {
		return lectures[i].Order < lectures[j].Order
	})
	return lectures, nil
}

// fakeProgressRepo mirrors the SQL contract of the real repository:
// idempotent viewed upserts and a recompute that derives percentage
// and completion from current counts.
type fakeProgressRepo struct {
	courses  *fakeCourseRepo
	trackers map[uuid.UUID]*CourseProgress
	entries  map[uuid.UUID]map[uuid.UUID]*LectureEntry
	creates  int
}

func newFakeProgressRepo(courses *fakeCourseRepo) *fakeProgressRepo {
	return &fakeProgressRepo{
		courses:  courses,
		trackers: map[uuid.UUID]*CourseProgress{},
		entries:  map[uuid.UUID]map[uuid.UUID]*LectureEntry{},
	}
}

func (f *fakeProgressRepo) GetByUserCourse(
	_ context.Context,
	userID, courseID uuid.UUID,
) (*CourseProgress, error) {
	for _, p := range f.trackers {
		if p.UserID == userID && p.CourseID == courseID {
			return p, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeProgressRepo) GetOrCreate(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*CourseProgress, error) {
	if p, err := f.GetByUserCourse(ctx, userID, courseID); err == nil {
		return p, nil
	}

	p := &CourseProgress{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
	}
	f.trackers[p.ID] = p
	f.entries[p.ID] = map[uuid.UUID]*LectureEntry{}
	f.creates++
	return p, nil
}

func (f *fakeProgressRepo) ListEntries(
	_ context.Context,
	progressID uuid.UUID,
) ([]LectureEntry, error) {
	out := []LectureEntry{}
	for _, e := range f.entries[progressID] {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeProgressRepo) MarkLectureViewed(
	_ context.Context,
	progressID, lectureID uuid.UUID,
) error {
	e, ok := f.entries[progressID][lectureID]
	if !ok {
		now := time.Now()
		f.entries[progressID][lectureID] = &LectureEntry{
			ProgressID: progressID,
			LectureID:  lectureID,
			IsViewed:   true,
			ViewedAt:   &now,
		}
		return nil
	}

	e.IsViewed = true
	if e.ViewedAt == nil {
		now := time.Now()
		e.ViewedAt = &now
	}
	return nil
}

func (f *fakeProgressRepo) MarkAllLecturesViewed(
	ctx context.Context,
	progressID, courseID uuid.UUID,
) error {
	for _, l := range f.courses.lectures {
		if l.CourseID == courseID {
			if err := f.MarkLectureViewed(ctx, progressID, l.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeProgressRepo) ResetEntries(
	_ context.Context,
	progressID uuid.UUID,
) error {
	for _, e := range f.entries[progressID] {
		e.IsViewed = false
		e.ViewedAt = nil
	}
	return nil
}

func (f *fakeProgressRepo) Recompute(
	_ context.Context,
	progressID, courseID uuid.UUID,
) (*CourseProgress, error) {
	p, ok := f.trackers[progressID]
	if !ok {
		return nil, core.ErrNotFound
	}

	total := 0
	for _, l := range f.courses.lectures {
		if l.CourseID == courseID {
			total++
		}
	}

	viewed := 0
	for _, e := range f.entries[progressID] {
		if e.IsViewed {
			viewed++
		}
	}

	if total == 0 {
		p.Percentage = 0
	} else {
		p.Percentage = int(math.Round(100 * float64(viewed) / float64(total)))
	}
	p.IsCompleted = total > 0 && viewed == total
	return p, nil
}

func newTestService(lectureCount int) (*Service, *fakeProgressRepo, uuid.UUID, []uuid.UUID) {
	courses := newFakeCourseRepo()
	courseID, lectureIDs := courses.addCourse(lectureCount)
	repo := newFakeProgressRepo(courses)
	return NewService(repo, courses), repo, courseID, lectureIDs
}

func TestGetUnknownCourse(t *testing.T) {
	svc, _, _, _ := newTestService(3)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetWithoutTrackerReturnsZeroProgress(t *testing.T) {
	svc, repo, courseID, _ := newTestService(3)

	resp, err := svc.Get(context.Background(), uuid.New(), courseID)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CompletionPercentage)
	assert.False(t, resp.IsCompleted)
	assert.Empty(t, resp.Progress)
	assert.Equal(t, 0, repo.creates, "a read must not create a tracker")
}

func TestMarkLectureCreatesTrackerAndComputesPercentage(t *testing.T) {
	svc, repo, courseID, lectureIDs := newTestService(3)
	userID := uuid.New()

	resp, err := svc.MarkLecture(
		context.Background(), userID, courseID, lectureIDs[0],
	)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, 33, resp.CompletionPercentage)
	assert.False(t, resp.IsCompleted)
	assert.Len(t, resp.Progress, 1)
}

func TestMarkLectureIsIdempotent(t *testing.T) {
	svc, _, courseID, lectureIDs := newTestService(4)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.MarkLecture(ctx, userID, courseID, lectureIDs[1])
	require.NoError(t, err)

	second, err := svc.MarkLecture(ctx, userID, courseID, lectureIDs[1])
	require.NoError(t, err)

	assert.Equal(t, first.CompletionPercentage, second.CompletionPercentage)
	assert.Len(t, second.Progress, 1)
}

func TestMarkingAllLecturesCompletesCourse(t *testing.T) {
	svc, _, courseID, lectureIDs := newTestService(3)
	userID := uuid.New()
	ctx := context.Background()

	var resp *ProgressResponse
	var err error
	for _, id := range lectureIDs {
		resp, err = svc.MarkLecture(ctx, userID, courseID, id)
		require.NoError(t, err)
	}

	assert.Equal(t, 100, resp.CompletionPercentage)
	assert.True(t, resp.IsCompleted)
}

func TestMarkLectureFromOtherCourse(t *testing.T) {
	courses := newFakeCourseRepo()
	courseID, _ := courses.addCourse(2)
	_, otherLectures := courses.addCourse(2)
	svc := NewService(newFakeProgressRepo(courses), courses)

	_, err := svc.MarkLecture(
		context.Background(), uuid.New(), courseID, otherLectures[0],
	)
	assert.ErrorIs(t, err, ErrLectureNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMarkUnknownLecture(t *testing.T) {
	courses := newFakeCourseRepo()
	courseID, _ := courses.addCourse(2)
	svc := NewService(newFakeProgressRepo(courses), courses)

	_, err := svc.MarkLecture(
		context.Background(), uuid.New(), courseID, uuid.New(),
	)
	assert.ErrorIs(t, err, ErrLectureNotFound)
}

func TestMarkCourseMaterializesEveryLecture(t *testing.T) {
	svc, _, courseID, _ := newTestService(5)

	resp, err := svc.MarkCourse(context.Background(), uuid.New(), courseID)
	require.NoError(t, err)

	assert.True(t, resp.IsCompleted)
	assert.Equal(t, 100, resp.CompletionPercentage)
	assert.Len(t, resp.Progress, 5)
}

func TestCourseWithoutLecturesNeverCompletes(t *testing.T) {
	svc, _, courseID, _ := newTestService(0)

	resp, err := svc.MarkCourse(context.Background(), uuid.New(), courseID)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CompletionPercentage)
	assert.False(t, resp.IsCompleted)
}

func TestResetClearsProgress(t *testing.T) {
	svc, _, courseID, lectureIDs := newTestService(2)
	userID := uuid.New()
	ctx := context.Background()

	for _, id := range lectureIDs {
		_, err := svc.MarkLecture(ctx, userID, courseID, id)
		require.NoError(t, err)
	}

	resp, err := svc.Reset(ctx, userID, courseID)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CompletionPercentage)
	assert.False(t, resp.IsCompleted)
	for _, entry := range resp.Progress {
		assert.False(t, entry.IsViewed)
	}
}

func TestResetWithoutTrackerYieldsZeroState(t *testing.T) {
	svc, repo, courseID, _ := newTestService(3)

	resp, err := svc.Reset(context.Background(), uuid.New(), courseID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, 0, resp.CompletionPercentage)
	assert.False(t, resp.IsCompleted)
}

func TestRemarkAfterReset(t *testing.T) {
	svc, _, courseID, lectureIDs := newTestService(2)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.MarkCourse(ctx, userID, courseID)
	require.NoError(t, err)

	_, err = svc.Reset(ctx, userID, courseID)
	require.NoError(t, err)

	resp, err := svc.MarkLecture(ctx, userID, courseID, lectureIDs[0])
	require.NoError(t, err)

	assert.Equal(t, 50, resp.CompletionPercentage)
	assert.False(t, resp.IsCompleted)
}
