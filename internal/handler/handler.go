package handler

import (
	"net/http"
	"time"

	"github.com/pharmhub-dev/pharmhub/internal/config"
	"github.com/pharmhub-dev/pharmhub/internal/middleware"
	"github.com/pharmhub-dev/pharmhub/internal/service"
)

type Handler struct {
	auth    service.AuthService
	users   service.UserService
	contact service.ContactService
	cfg     *config.Public
}

func New(auth service.AuthService, users service.UserService, contact service.ContactService, cfg *config.Public) *Handler {
	return &Handler{auth: auth, users: users, contact: contact, cfg: cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// sessionCookie builds one of the two session cookies. SameSite=None because
// the frontend is served from a different origin.
func (h *Handler) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Path:     "/",
		Name:     name,
		Value:    value,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteNoneMode,
	}
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, pair service.TokenPair) {
	http.SetCookie(w, h.sessionCookie(middleware.AccessCookie, pair.Access, h.cfg.AccessTokenTTL))
	http.SetCookie(w, h.sessionCookie(middleware.RefreshCookie, pair.Refresh, h.cfg.RefreshTokenTTL))
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.sessionCookie(middleware.AccessCookie, "", -time.Second))
	http.SetCookie(w, h.sessionCookie(middleware.RefreshCookie, "", -time.Second))
}
