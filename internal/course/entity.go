// AngelaMos | 2026
// entity.go

package course

import (
	"time"

	"github.com/google/uuid"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Course is an instructor-authored course. Price is stored in cents.
type Course struct {
	ID             uuid.UUID `db:"id"                  json:"id"`
	InstructorID   uuid.UUID `db:"instructor_id"       json:"instructorId"`
	Title          string    `db:"title"               json:"title"`
	Subtitle       string    `db:"subtitle"            json:"subtitle,omitempty"`
	Description    string    `db:"description"         json:"description,omitempty"`
	Category       string    `db:"category"            json:"category"`
	Level          string    `db:"level"               json:"level,omitempty"`
	Price          int64     `db:"price"               json:"price"`
	Thumbnail      string    `db:"thumbnail"           json:"thumbnail,omitempty"`
	ThumbnailID    string    `db:"thumbnail_public_id" json:"-"`
	IsPublished    bool      `db:"is_published"        json:"isPublished"`
	EnrolledCount  int       `db:"enrolled_count"      json:"enrolledCount"`
	LectureCount   int       `db:"lecture_count"       json:"lectureCount"`
	InstructorName string    `db:"instructor_name"     json:"instructorName,omitempty"`
	CreatedAt      time.Time `db:"created_at"          json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at"          json:"updatedAt"`

	// Populated on the detail path only.
	Lectures []Lecture `db:"-" json:"lectures,omitempty"`
}

// IsOwnedBy reports whether the given user authored this course.
func (c *Course) IsOwnedBy(userID uuid.UUID) bool {
	return c.InstructorID == userID
}

// Lecture is a single video lesson within a course. Order is 1-based
// and assigned at creation time.
type Lecture struct {
	ID            uuid.UUID `db:"id"              json:"id"`
	CourseID      uuid.UUID `db:"course_id"       json:"courseId"`
	Title         string    `db:"title"           json:"title"`
	VideoURL      string    `db:"video_url"       json:"videoUrl,omitempty"`
	VideoPublicID string    `db:"video_public_id" json:"-"`
	Duration      int       `db:"duration"        json:"duration"`
	IsPreview     bool      `db:"is_preview"      json:"isPreview"`
	Order         int       `db:"lecture_order"   json:"order"`
	CreatedAt     time.Time `db:"created_at"      json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at"      json:"updatedAt"`
}
