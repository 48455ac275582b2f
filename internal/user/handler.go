// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/learnify/internal/auth"
	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/middleware"
)

const maxAvatarSize = 5 << 20 // 5 MiB

type Handler struct {
	service   *Service
	jwt       *auth.JWTManager
	blacklist *auth.Blacklist
	validator *validator.Validate
}

func NewHandler(
	service *Service,
	jwtManager *auth.JWTManager,
	blacklist *auth.Blacklist,
) *Handler {
	return &Handler{
		service:   service,
		jwt:       jwtManager,
		blacklist: blacklist,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/signin", h.Signin)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/signout", h.Signout)
			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.UpdateProfile)
			r.Patch("/password", h.ChangePassword)
			r.Delete("/account", h.DeleteAccount)
		})

		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.Conflict(w, "email")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if err := h.issueToken(w, user); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.CreatedMessage(w, "account created successfully", ToUserResponse(user))
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Signin(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(
				w,
				core.UnauthorizedError("invalid email or password"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if err := h.issueToken(w, user); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "signed in successfully", ToUserResponse(user))
}

// Signout clears the cookie and blacklists the current token's jti so
// the token stops working before its natural expiry.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims != nil && claims.JTI != "" {
		if err := h.blacklist.Revoke(
			r.Context(),
			claims.JTI,
			claims.ExpiresAt,
		); err != nil {
			core.InternalServerError(w, err)
			return
		}
	}

	h.jwt.ClearTokenCookie(w)
	core.OKMessage(w, "signed out successfully", nil)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, courses, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ProfileResponse{
		UserResponse:         ToUserResponse(user),
		EnrolledCourses:      courses,
		TotalEnrolledCourses: len(courses),
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateProfileRequest
	var avatar *AvatarUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
			core.BadRequest(w, "invalid multipart form")
			return
		}

		if name := r.FormValue("name"); name != "" {
			req.Name = &name
		}
		if bio := r.FormValue("bio"); bio != "" {
			req.Bio = &bio
		}

		file, header, err := r.FormFile("avatar")
		if err == nil {
			defer file.Close() //nolint:errcheck // multipart file close
			avatar = &AvatarUpload{
				Filename: header.Filename,
				Reader:   file,
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req, avatar)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "profile updated successfully", ToUserResponse(user))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.ChangePassword(
		r.Context(),
		userID,
		req.CurrentPassword,
		req.NewPassword,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(
				w,
				core.UnauthorizedError("current password is incorrect"),
			)
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "password updated successfully", nil)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OKMessage(w, "reset code sent to email", nil)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		if errors.Is(err, core.ErrTokenExpired) {
			core.JSONError(w, core.NewAppError(
				core.ErrTokenExpired,
				"reset code has expired",
				http.StatusUnauthorized,
				"RESET_CODE_EXPIRED",
			))
			return
		}
		if errors.Is(err, core.ErrTokenInvalid) {
			core.JSONError(w, core.NewAppError(
				core.ErrTokenInvalid,
				"invalid reset code",
				http.StatusUnauthorized,
				"RESET_CODE_INVALID",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "password reset successfully", nil)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.jwt.ClearTokenCookie(w)
	core.OKMessage(w, "account deleted successfully", nil)
}

func (h *Handler) issueToken(w http.ResponseWriter, user *User) error {
	token, expiresAt, err := h.jwt.CreateAccessToken(auth.AccessTokenClaims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return err
	}

	h.jwt.SetTokenCookie(w, token, expiresAt)
	return nil
}
