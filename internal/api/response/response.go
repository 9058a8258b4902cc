package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quantedge/quantedge/internal/core"
	"github.com/quantedge/quantedge/internal/settings"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Cause   string   `json:"cause,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response. Validation failures carry their
// user-facing message and the offending fields.
func Error(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: Detail(err)})
}

// Detail converts err to its wire form.
func Detail(err error) ErrorDetail {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var verr *settings.ValidationError
	if errors.As(err, &verr) {
		detail.Code = core.ErrValidationFailed.Code
		detail.Message = verr.Message
		for _, f := range verr.Fields {
			detail.Fields = append(detail.Fields, string(f))
		}
		return detail
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}
	return detail
}
