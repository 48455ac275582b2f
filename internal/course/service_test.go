// AngelaMos | 2026
// service_test.go

package course

import (
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/media"
	"github.com/angelamos/learnify/internal/user"
)

type fakeRepo struct {
	Repository
	courses  map[uuid.UUID]*Course
	lectures []*Lecture
	enrolled map[[2]uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:  map[uuid.UUID]*Course{},
		enrolled: map[[2]uuid.UUID]bool{},
	}
}

func (f *fakeRepo) Create(_ context.Context, c *Course) error {
	c.ID = uuid.New()
	f.courses[c.ID] = c
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, c *Course) error {
	if _, ok := f.courses[c.ID]; !ok {
		return core.ErrNotFound
	}
	f.courses[c.ID] = c
	return nil
}

func (f *fakeRepo) CreateLecture(_ context.Context, l *Lecture) error {
	l.ID = uuid.New()
	count := 0
	for _, existing := range f.lectures {
		if existing.CourseID == l.CourseID {
			count++
		}
	}
	l.Order = count + 1
	f.lectures = append(f.lectures, l)
	return nil
}

func (f *fakeRepo) ListLectures(
	_ context.Context,
	courseID uuid.UUID,
) ([]Lecture, error) {
	return f.list(courseID, false), nil
}

func (f *fakeRepo) ListPreviewLectures(
	_ context.Context,
	courseID uuid.UUID,
) ([]Lecture, error) {
	return f.list(courseID, true), nil
}

func (f *fakeRepo) list(courseID uuid.UUID, previewOnly bool) []Lecture {
	out := []Lecture{}
	for _, l := range f.lectures {
		if l.CourseID != courseID {
			continue
		}
		if previewOnly && !l.IsPreview {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (f *fakeRepo) IsEnrolled(
	_ context.Context,
	userID, courseID uuid.UUID,
) (bool, error) {
	return f.enrolled[[2]uuid.UUID{userID, courseID}], nil
}

type fakeMediaStore struct {
	uploads int
	deleted []string
	fail    bool
}

func (f *fakeMediaStore) Upload(
	_ context.Context,
	filename string,
	_ io.Reader,
) (*media.Asset, error) {
	if f.fail {
		return nil, io.ErrUnexpectedEOF
	}
	f.uploads++
	return &media.Asset{
		URL:      "https://cdn.example.com/" + filename,
		PublicID: "asset-" + filename,
		Duration: 90,
	}, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func seedCourse(t *testing.T, svc *Service, instructorID uuid.UUID) *Course {
	t.Helper()

	c, err := svc.Create(context.Background(), instructorID, CreateCourseRequest{
		Title:    "Intro to Distributed Systems",
		Category: "engineering",
		Price:    4999,
	})
	require.NoError(t, err)
	return c
}

func addLecture(
	t *testing.T,
	svc *Service,
	instructorID, courseID uuid.UUID,
	title string,
	preview bool,
) *Lecture {
	t.Helper()

	l, err := svc.AddLecture(
		context.Background(),
		instructorID,
		courseID,
		CreateLectureRequest{Title: title, IsPreview: preview},
		&Upload{Filename: title + ".mp4", Reader: strings.NewReader("video")},
	)
	require.NoError(t, err)
	return l
}

func TestAddLectureRequiresVideo(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeMediaStore{})
	instructorID := uuid.New()
	c := seedCourse(t, svc, instructorID)

	_, err := svc.AddLecture(
		context.Background(),
		instructorID,
		c.ID,
		CreateLectureRequest{Title: "Consensus"},
		nil,
	)
	assert.ErrorIs(t, err, ErrVideoRequired)
	assert.Empty(t, repo.lectures)
}

func TestAddLectureAssignsIncreasingOrder(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeMediaStore{})
	instructorID := uuid.New()
	c := seedCourse(t, svc, instructorID)

	first := addLecture(t, svc, instructorID, c.ID, "one", true)
	second := addLecture(t, svc, instructorID, c.ID, "two", false)
	third := addLecture(t, svc, instructorID, c.ID, "three", false)

	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, 3, third.Order)
	assert.Equal(t, 90, first.Duration, "duration comes from the media store")
}

func TestAddLectureByNonOwner(t *testing.T) {
	store := &fakeMediaStore{}
	svc := NewService(newFakeRepo(), store)
	c := seedCourse(t, svc, uuid.New())

	_, err := svc.AddLecture(
		context.Background(),
		uuid.New(),
		c.ID,
		CreateLectureRequest{Title: "Sneaky"},
		&Upload{Filename: "x.mp4", Reader: strings.NewReader("video")},
	)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Equal(t, 0, store.uploads)
}

func TestLectureGating(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeMediaStore{})
	instructorID := uuid.New()
	c := seedCourse(t, svc, instructorID)

	addLecture(t, svc, instructorID, c.ID, "intro", true)
	addLecture(t, svc, instructorID, c.ID, "deep-dive", false)
	addLecture(t, svc, instructorID, c.ID, "teaser", true)

	ctx := context.Background()

	t.Run("anonymous sees previews only", func(t *testing.T) {
		resp, err := svc.Lectures(ctx, c.ID, uuid.Nil, "")
		require.NoError(t, err)

		assert.False(t, resp.IsEnrolled)
		assert.False(t, resp.IsInstructor)
		require.Len(t, resp.Lectures, 2)
		for _, l := range resp.Lectures {
			assert.True(t, l.IsPreview)
		}
	})

	t.Run("non-enrolled student sees previews only", func(t *testing.T) {
		resp, err := svc.Lectures(ctx, c.ID, uuid.New(), user.RoleStudent)
		require.NoError(t, err)

		assert.False(t, resp.IsEnrolled)
		assert.Len(t, resp.Lectures, 2)
	})

	t.Run("enrolled student sees everything in order", func(t *testing.T) {
		studentID := uuid.New()
		repo.enrolled[[2]uuid.UUID{studentID, c.ID}] = true

		resp, err := svc.Lectures(ctx, c.ID, studentID, user.RoleStudent)
		require.NoError(t, err)

		assert.True(t, resp.IsEnrolled)
		assert.False(t, resp.IsInstructor)
		require.Len(t, resp.Lectures, 3)
		for i, l := range resp.Lectures {
			assert.Equal(t, i+1, l.Order)
		}
	})

	t.Run("owner sees everything", func(t *testing.T) {
		resp, err := svc.Lectures(ctx, c.ID, instructorID, user.RoleInstructor)
		require.NoError(t, err)

		assert.True(t, resp.IsInstructor)
		assert.False(t, resp.IsEnrolled)
		assert.Len(t, resp.Lectures, 3)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		resp, err := svc.Lectures(ctx, c.ID, uuid.New(), user.RoleAdmin)
		require.NoError(t, err)

		assert.True(t, resp.IsInstructor)
		assert.Len(t, resp.Lectures, 3)
	})
}

func TestUpdateByNonOwner(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeMediaStore{})
	c := seedCourse(t, svc, uuid.New())

	title := "Hijacked"
	_, err := svc.Update(
		context.Background(), uuid.New(), c.ID, UpdateCourseRequest{Title: &title}, nil,
	)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestUpdateReplacesThumbnail(t *testing.T) {
	store := &fakeMediaStore{}
	svc := NewService(newFakeRepo(), store)
	instructorID := uuid.New()
	c := seedCourse(t, svc, instructorID)
	ctx := context.Background()

	_, err := svc.Update(ctx, instructorID, c.ID, UpdateCourseRequest{}, &Upload{
		Filename: "old.png",
		Reader:   strings.NewReader("img"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, instructorID, c.ID, UpdateCourseRequest{}, &Upload{
		Filename: "new.png",
		Reader:   strings.NewReader("img"),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/new.png", updated.Thumbnail)
	assert.Equal(t, []string{"asset-old.png"}, store.deleted)
}

func TestUpdatePartialFields(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeMediaStore{})
	instructorID := uuid.New()
	c := seedCourse(t, svc, instructorID)

	published := true
	price := int64(12900)
	updated, err := svc.Update(
		context.Background(),
		instructorID,
		c.ID,
		UpdateCourseRequest{IsPublished: &published, Price: &price},
		nil,
	)
	require.NoError(t, err)

	assert.True(t, updated.IsPublished)
	assert.Equal(t, int64(12900), updated.Price)
	assert.Equal(t, "Intro to Distributed Systems", updated.Title)
}
