package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/quantedge/quantedge/internal/api/response"
	"github.com/quantedge/quantedge/internal/core"
	"github.com/quantedge/quantedge/internal/settings"
)

// SettingsView is the wire form of the manager's record.
type SettingsView struct {
	Settings settings.SimulationSettings `json:"settings"`
	State    settings.State              `json:"state"`
}

// FieldUpdateRequest is the PATCH body.
type FieldUpdateRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// Failure is one entry of a validation report.
type Failure struct {
	Field   settings.Field `json:"field"`
	Message string         `json:"message"`
}

// ValidationReport answers POST /api/settings/validate.
type ValidationReport struct {
	Valid    bool             `json:"valid"`
	Message  string           `json:"message,omitempty"`
	Field    settings.Field   `json:"field,omitempty"`
	Fields   []settings.Field `json:"fields,omitempty"`
	Failures []Failure        `json:"failures,omitempty"`
}

// SettingsHandler exposes the configuration manager.
type SettingsHandler struct {
	manager *settings.Manager
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(manager *settings.Manager) *SettingsHandler {
	return &SettingsHandler{manager: manager}
}

func (h *SettingsHandler) view() SettingsView {
	s, state := h.manager.Snapshot()
	return SettingsView{Settings: s, State: state}
}

// Get returns the in-memory record and its state.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.view())
}

// Replace swaps in a whole record without validating it.
func (h *SettingsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var s settings.SimulationSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrBadRequest, err))
		return
	}
	h.manager.Replace(s)
	response.JSON(w, http.StatusOK, h.view())
}

// Update applies a single field edit.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req FieldUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrBadRequest, err))
		return
	}
	if req.Field == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrBadRequest, fmt.Errorf("field is required")))
		return
	}

	update, err := settings.DecodeFieldUpdate(req.Field, req.Value)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	h.manager.UpdateField(update)
	response.JSON(w, http.StatusOK, h.view())
}

// Validate reports the first failure and every per-field failure.
func (h *SettingsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	report := ValidationReport{Valid: true}

	var verr *settings.ValidationError
	if err := h.manager.Validate(); errors.As(err, &verr) {
		report.Valid = false
		report.Message = verr.Message
		report.Field = verr.Field
		report.Fields = verr.Fields
		for _, f := range h.manager.AllFailures() {
			report.Failures = append(report.Failures, Failure{Field: f.Field, Message: f.Message})
		}
	}

	response.JSON(w, http.StatusOK, report)
}

// Apply validates and persists the in-memory record.
func (h *SettingsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if _, err := h.manager.Apply(r.Context()); err != nil {
		switch {
		case errors.Is(err, core.ErrValidationFailed):
			response.Error(w, http.StatusUnprocessableEntity, err)
		default:
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}
	response.JSON(w, http.StatusOK, h.view())
}

// Restore reloads the stored record, falling back to defaults.
func (h *SettingsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.manager.Restore(r.Context())
	response.JSON(w, http.StatusOK, h.view())
}

// Instruments lists the selectable universe. Without a configured
// universe the built-in list is offered.
func (h *SettingsHandler) Instruments(w http.ResponseWriter, r *http.Request) {
	u := h.manager.Universe()
	if u == nil {
		u = settings.DefaultUniverse()
	}
	response.JSON(w, http.StatusOK, u.Instruments())
}
