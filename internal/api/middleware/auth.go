package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/curbwise/curbwise/internal/api/models"
	"github.com/curbwise/curbwise/internal/auth"
)

// identityKey is the context key for the authenticated identity.
type identityKey struct{}

// Identity describes the caller of an authenticated request.
type Identity struct {
	UserID string
	Plan   auth.Plan
}

// Premium reports whether the caller is on the premium plan.
func (i Identity) Premium() bool {
	return i.Plan.IsPremium()
}

// RequireAuth creates authentication middleware that validates JWT bearer
// tokens and rejects unauthenticated requests.
func RequireAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return authMiddleware(jwtService, true)
}

// OptionalAuth validates a bearer token when one is present but lets
// anonymous requests through as free tier.
func OptionalAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return authMiddleware(jwtService, false)
}

func authMiddleware(jwtService *auth.JWTService, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract bearer token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					writeUnauthorized(w, r, "missing authorization header")
					return
				}
				// Anonymous callers get the free tier.
				ctx := context.WithValue(r.Context(), identityKey{}, Identity{Plan: auth.PlanFree})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// Check for Bearer prefix (case-insensitive)
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			// A presented token must be valid even on optional routes.
			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrAccessTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidAccessToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			identity := Identity{UserID: claims.UserID, Plan: claims.Plan}
			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetIdentity retrieves the caller identity from the context.
// Returns a free-tier anonymous identity if none was set.
func GetIdentity(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Identity{Plan: auth.PlanFree}
}

// GetUserID retrieves the authenticated user ID from the context.
// Returns an empty string if not authenticated.
func GetUserID(ctx context.Context) string {
	return GetIdentity(ctx).UserID
}
