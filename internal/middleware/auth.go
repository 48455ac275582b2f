// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
)

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	ClaimsKey   contextKey = "jwt_claims"
)

// DefaultTokenCookie is the auth cookie name used when the caller does
// not supply the configured one.
const DefaultTokenCookie = "token"

type AccessTokenClaims struct {
	UserID    uuid.UUID
	Role      string
	JTI       string
	ExpiresAt time.Time
}

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// TokenRevocationChecker reports whether a token ID was revoked by
// signout before its natural expiry.
type TokenRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func Authenticator(
	verifier TokenVerifier,
	revocations TokenRevocationChecker,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, cookieName)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			if revocations != nil && claims.JTI != "" {
				revoked, revErr := revocations.IsRevoked(
					r.Context(),
					claims.JTI,
				)
				if revErr == nil && revoked {
					core.JSONError(w, core.TokenRevokedError())
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present but never
// rejects the request. Used by endpoints whose response shape depends on
// who is asking, like the gated lecture list.
func OptionalAuth(
	verifier TokenVerifier,
	revocations TokenRevocationChecker,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, cookieName)

			if token != "" {
				claims, err := verifier.VerifyAccessToken(r.Context(), token)
				if err == nil {
					revoked := false
					if revocations != nil && claims.JTI != "" {
						revoked, _ = revocations.IsRevoked(
							r.Context(),
							claims.JTI,
						)
					}
					if !revoked {
						r = r.WithContext(withClaims(r.Context(), claims))
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			if userRole == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if _, ok := roleSet[userRole]; !ok {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireInstructor(next http.Handler) http.Handler {
	return RequireRole("instructor", "admin")(next)
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole("admin")(next)
}

// ExtractToken prefers the named auth cookie and falls back to a
// bearer Authorization header.
func ExtractToken(r *http.Request, cookieName string) string {
	if cookieName == "" {
		cookieName = DefaultTokenCookie
	}

	if cookie, err := r.Cookie(cookieName); err == nil &&
		cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func withClaims(
	ctx context.Context,
	claims *AccessTokenClaims,
) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return ctx
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != uuid.Nil
}
