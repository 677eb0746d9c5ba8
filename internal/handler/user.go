package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmhub-dev/pharmhub/internal/domain"
	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
	"github.com/pharmhub-dev/pharmhub/internal/middleware"
	"github.com/pharmhub-dev/pharmhub/internal/service"
	"github.com/pharmhub-dev/pharmhub/internal/utils"
)

type updateUserRequest struct {
	Email    *string `validate:"omitempty,email" json:"email"`
	FullName *string `json:"fullname"`
	IsAdmin  *bool   `json:"is_admin"`
}

func userIdParam(r *http.Request) (domain.UserId, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid user id: must be an integer", StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Users(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.users.UserById(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var req updateUserRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	caller := middleware.UserFromContext(r)
	if caller == nil {
		utils.WriteErrorAndStatusCode(w, service.ErrUnauthenticated)
		return
	}
	// Non-admins may edit only their own profile and never the admin flag.
	if !caller.Admin && (caller.Id != id || req.IsAdmin != nil) {
		utils.WriteErrorAndStatusCode(w, service.ErrForbidden)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, domain.UserPatch{
		Email:    req.Email,
		FullName: req.FullName,
		Admin:    req.IsAdmin,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
