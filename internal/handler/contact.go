package handler

import (
	"net/http"

	"github.com/pharmhub-dev/pharmhub/internal/utils"
)

type contactRequest struct {
	Name    string `validate:"required" json:"name"`
	Address string `validate:"required,email" json:"address"`
	Message string `validate:"required" json:"message"`
}

// Contact accepts a contact-form submission and responds immediately; the
// email itself is delivered in the background.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.contact.SendMessage(req.Name, req.Address, req.Message); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusAccepted, map[string]string{"message": "Email sent successfully"})
}
