// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                  uuid.UUID  `db:"id"`
	Name                string     `db:"name"`
	Email               string     `db:"email"`
	PasswordHash        string     `db:"password_hash"`
	Role                string     `db:"role"`
	Bio                 string     `db:"bio"`
	AvatarURL           string     `db:"avatar_url"`
	AvatarPublicID      string     `db:"avatar_public_id"`
	ResetTokenHash      *string    `db:"reset_token_hash"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at"`
	LastActiveAt        *time.Time `db:"last_active_at"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}

func (u *User) HasValidResetToken(now time.Time) bool {
	return u.ResetTokenHash != nil &&
		u.ResetTokenExpiresAt != nil &&
		now.Before(*u.ResetTokenExpiresAt)
}

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// EnrolledCourse is the course projection returned with the profile.
type EnrolledCourse struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	Title       string    `db:"title"       json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category"    json:"category"`
	Price       int64     `db:"price"       json:"price"`
	Thumbnail   string    `db:"thumbnail"   json:"thumbnail"`
}
