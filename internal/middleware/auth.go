package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pharmhub-dev/pharmhub/internal/domain"
	"github.com/pharmhub-dev/pharmhub/internal/service"
	"github.com/pharmhub-dev/pharmhub/internal/token"
	"github.com/pharmhub-dev/pharmhub/internal/utils"
)

// Keys to store the authenticated identity in the request context
type key int

const (
	UserKey key = iota
	ClaimsKey
)

// AccessCookie and RefreshCookie are the session cookie names.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Authenticator is the slice of the session manager the middleware needs.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*token.Claims, domain.User, error)
}

// Auth holds dependencies for authentication middleware
type Auth struct {
	auth Authenticator
}

func NewAuth(auth Authenticator) *Auth {
	return &Auth{auth: auth}
}

// NeedAuth returns middleware that requires authentication
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.middleware(false)
}

// AdminOnly returns middleware that requires admin authentication
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.middleware(true)
}

// ExtractAccessToken pulls the access token from the cookie, falling back to
// the Authorization header for API clients. Empty string when neither is set.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if bearer, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		return bearer
	}
	return ""
}

func (a *Auth) middleware(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ExtractAccessToken(r)
			if tokenStr == "" {
				http.Error(w, service.ErrUnauthenticated.Message, service.ErrUnauthenticated.StatusCode)
				return
			}

			claims, user, err := a.auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			if adminOnly && !user.Admin {
				http.Error(w, service.ErrForbidden.Message, service.ErrForbidden.StatusCode)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, &user)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
func UserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// ClaimsFromContext retrieves the verified token claims from the request context.
func ClaimsFromContext(r *http.Request) *token.Claims {
	claims, ok := r.Context().Value(ClaimsKey).(*token.Claims)
	if !ok {
		return nil
	}
	return claims
}
