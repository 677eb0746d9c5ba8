package handler

import (
	"net/http"

	"github.com/pharmhub-dev/pharmhub/internal/domain"
	"github.com/pharmhub-dev/pharmhub/internal/middleware"
	"github.com/pharmhub-dev/pharmhub/internal/service"
	"github.com/pharmhub-dev/pharmhub/internal/utils"
)

type registerRequest struct {
	Email    string `validate:"required,email" json:"email"`
	FullName string `json:"fullname"`
	Password string `validate:"required,min=8" json:"password"`
}

type adminRegisterRequest struct {
	Email    string `validate:"required,email" json:"email"`
	FullName string `json:"fullname"`
	Password string `validate:"required,min=8" json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
}

type loginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         domain.PublicUser `json:"user"`
}

type passwordResetRequest struct {
	Email string `validate:"required" json:"email"`
}

type passwordResetConfirmRequest struct {
	Token           string `validate:"required" json:"token"`
	NewPassword     string `validate:"required,min=8" json:"new_password"`
	ConfirmPassword string `validate:"required" json:"confirm_password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.FullName, req.Password, false)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

// AdminRegister creates a user with an explicit admin flag. Routed behind the
// AdminOnly middleware.
func (h *Handler) AdminRegister(w http.ResponseWriter, r *http.Request) {
	var req adminRegisterRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.FullName, req.Password, req.IsAdmin)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	pair, user, err := h.auth.Login(r.Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.setSessionCookies(w, pair)
	utils.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         user,
	})
}

// Logout revokes whatever session tokens the request carries and clears both
// cookies. Safe to call without a valid session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := middleware.ExtractAccessToken(r)
	var refreshToken string
	if cookie, err := r.Cookie(middleware.RefreshCookie); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.auth.Logout(r.Context(), accessToken, refreshToken); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.clearSessionCookies(w)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Logged out"))
}

// Refresh rotates the session using the refresh cookie and resets both cookies.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.RefreshCookie)
	if err != nil || cookie.Value == "" {
		utils.WriteErrorAndStatusCode(w, service.ErrUnauthenticated)
		return
	}

	pair, user, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.setSessionCookies(w, pair)
	utils.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         user,
	})
}

// RequestPasswordReset answers 202 whether or not the email is registered.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the account exists, a reset link has been sent",
	})
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated. You can login now"})
}
