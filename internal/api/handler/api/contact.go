package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quantedge/quantedge/internal/api/response"
	"github.com/quantedge/quantedge/internal/contact"
	"github.com/quantedge/quantedge/internal/core"
)

// Submitter delivers contact form posts.
type Submitter interface {
	Submit(ctx context.Context, sub contact.Submission) error
}

// ContactHandler handles the contact form.
type ContactHandler struct {
	service Submitter
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(service Submitter) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit sends the message to the team and a confirmation to the sender.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrBadRequest, err))
		return
	}

	if err := h.service.Submit(r.Context(), sub); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, core.ErrBadRequest) {
			status = http.StatusBadRequest
		}
		response.Error(w, status, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Message sent successfully",
	})
}
