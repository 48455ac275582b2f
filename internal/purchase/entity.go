// AngelaMos | 2026
// entity.go

package purchase

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Purchase is one checkout attempt. Amount is the course price in
// cents, copied at checkout time so a later price change does not
// alter the record. Only a completed purchase grants course access.
type Purchase struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	UserID        uuid.UUID `db:"user_id"        json:"userId"`
	CourseID      uuid.UUID `db:"course_id"      json:"courseId"`
	Amount        int64     `db:"amount"         json:"amount"`
	Status        string    `db:"status"         json:"status"`
	PaymentMethod string    `db:"payment_method" json:"paymentMethod"`
	SessionID     string    `db:"session_id"     json:"-"`
	CreatedAt     time.Time `db:"created_at"     json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updatedAt"`
}

// PurchasedCourse is the catalog projection returned to a buyer for a
// completed purchase.
type PurchasedCourse struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	Title          string    `db:"title"           json:"title"`
	Subtitle       string    `db:"subtitle"        json:"subtitle,omitempty"`
	Description    string    `db:"description"     json:"description,omitempty"`
	Category       string    `db:"category"        json:"category"`
	Price          int64     `db:"price"           json:"price"`
	Thumbnail      string    `db:"thumbnail"       json:"thumbnail,omitempty"`
	InstructorName string    `db:"instructor_name" json:"instructorName"`
}
