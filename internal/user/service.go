// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/mail"
	"github.com/angelamos/learnify/internal/media"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const resetTokenTTL = 15 * time.Minute

// AvatarUpload is an incoming avatar file from a multipart request.
type AvatarUpload struct {
	Filename string
	Reader   io.Reader
}

type Service struct {
	repo  Repository
	media media.Store
	mail  mail.Sender
}

func NewService(repo Repository, mediaStore media.Store, sender mail.Sender) *Service {
	return &Service{
		repo:  repo,
		media: mediaStore,
		mail:  sender,
	}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = RoleStudent
	}

	user := &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	//nolint:errcheck // activity timestamp is best-effort
	_ = s.repo.UpdateLastActive(ctx, user.ID)

	return user, nil
}

func (s *Service) Signin(ctx context.Context, req SigninRequest) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.repo.UpdatePassword(ctx, user.ID, newHash)
	}

	//nolint:errcheck // activity timestamp is best-effort
	_ = s.repo.UpdateLastActive(ctx, user.ID)

	return user, nil
}

func (s *Service) Profile(
	ctx context.Context,
	userID uuid.UUID,
) (*User, []EnrolledCourse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	courses, err := s.repo.EnrolledCourses(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return user, courses, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	req UpdateProfileRequest,
	avatar *AvatarUpload,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if avatar != nil {
		asset, upErr := s.media.Upload(ctx, avatar.Filename, avatar.Reader)
		if upErr != nil {
			return nil, upErr
		}

		if user.AvatarPublicID != "" {
			if delErr := s.media.Delete(ctx, user.AvatarPublicID); delErr != nil {
				slog.Warn("failed to delete old avatar",
					"user_id", userID,
					"public_id", user.AvatarPublicID,
					"error", delErr,
				)
			}
		}

		user.AvatarURL = asset.URL
		user.AvatarPublicID = asset.PublicID
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	currentPassword, newPassword string,
) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, newHash)
}

// ForgotPassword issues a one-time reset code, stores only its hash,
// and mails the plaintext code to the account's address.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}

	otp, err := core.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(
		ctx,
		user.ID,
		core.HashToken(otp),
		expiresAt,
	); err != nil {
		return err
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Reset your password",
		HTML:    mail.PasswordResetHTML(user.Email, otp),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return err
	}

	return nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	req ResetPasswordRequest,
) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return err
	}

	if !user.HasValidResetToken(time.Now()) {
		return fmt.Errorf("reset password: code expired: %w", core.ErrTokenExpired)
	}

	if !core.CompareTokenHash(req.OTP, *user.ResetTokenHash) {
		return fmt.Errorf("reset password: invalid code: %w", core.ErrTokenInvalid)
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return err
	}

	return s.repo.ClearResetToken(ctx, user.ID)
}

func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.AvatarPublicID != "" {
		if delErr := s.media.Delete(ctx, user.AvatarPublicID); delErr != nil {
			slog.Warn("failed to delete avatar on account removal",
				"user_id", userID,
				"error", delErr,
			)
		}
	}

	return s.repo.Delete(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
