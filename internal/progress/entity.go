// AngelaMos | 2026
// entity.go

package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/course"
)

// CourseProgress tracks one user's completion state for one course.
// Percentage is a whole number 0..100 derived from the viewed lecture
// entries; it is recomputed on every mutation.
type CourseProgress struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	UserID      uuid.UUID `db:"user_id"      json:"userId"`
	CourseID    uuid.UUID `db:"course_id"    json:"courseId"`
	Percentage  int       `db:"percentage"   json:"completionPercentage"`
	IsCompleted bool      `db:"is_completed" json:"isCompleted"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updatedAt"`
}

// LectureEntry records whether a single lecture has been viewed.
type LectureEntry struct {
	ProgressID uuid.UUID  `db:"progress_id" json:"-"`
	LectureID  uuid.UUID  `db:"lecture_id"  json:"lectureId"`
	IsViewed   bool       `db:"is_viewed"   json:"viewed"`
	ViewedAt   *time.Time `db:"viewed_at"   json:"viewedAt,omitempty"`
}

// ProgressResponse is the read model for the progress endpoints.
type ProgressResponse struct {
	CourseDetails        *course.Course `json:"courseDetails"`
	Progress             []LectureEntry `json:"progress"`
	IsCompleted          bool           `json:"isCompleted"`
	CompletionPercentage int            `json:"completionPercentage"`
}
