package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// UserContextKey is the key used to store the user object in the request context.
const UserContextKey ContextKey = "user"

// CurrentUser returns the authenticated user from the request context, or
// nil for anonymous requests.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(UserContextKey).(*models.User)
	return user
}

// clientIP returns the requester address; chi's RealIP middleware has
// already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userFromBearerToken(r *http.Request, secret []byte, userRepo repository.UserRepositoryInterface) (*models.User, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("authorization header format must be Bearer {token}")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	var userID uint
	if _, err := fmt.Sscan(claims.Subject, &userID); err != nil {
		return nil, fmt.Errorf("invalid user ID in token subject '%s'", claims.Subject)
	}

	user, err := userRepo.GetByID(userID)
	if err != nil {
		// the user may have been deleted after the token was issued
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

// AuthMiddleware verifies the bearer token and, if valid, fetches the user
// and adds them to the request context. Requests without a valid token are
// rejected.
func AuthMiddleware(secret []byte, userRepo repository.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromBearerToken(r, secret, userRepo)
			if err != nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the user to the context when a valid
// bearer token is present and lets anonymous requests through untouched.
// Listing and download paths use it to personalize without requiring login.
func OptionalAuthMiddleware(secret []byte, userRepo repository.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				if user, err := userFromBearerToken(r, secret, userRepo); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests whose authenticated user is not an
// administrator. Must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "user not found in context")
			return
		}
		if !user.IsAdmin() {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
