// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/google/uuid"
)

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role"     validate:"omitempty,oneof=student instructor"`
}

type SigninRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio  *string `json:"bio,omitempty"  validate:"omitempty,max=500"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"        validate:"required,email,max=255"`
	OTP         string `json:"otp"          validate:"required,len=6"`
	NewPassword string `json:"newPassword"  validate:"required,min=8,max=128"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProfileResponse struct {
	UserResponse
	EnrolledCourses      []EnrolledCourse `json:"enrolledCourses"`
	TotalEnrolledCourses int              `json:"totalEnrolledCourses"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Bio:       u.Bio,
		Avatar:    u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}
