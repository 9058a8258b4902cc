package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/quantedge/quantedge/internal/contact"
	"github.com/quantedge/quantedge/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSubmitter struct {
	got []contact.Submission
	err error
}

func (m *mockSubmitter) Submit(ctx context.Context, sub contact.Submission) error {
	m.got = append(m.got, sub)
	return m.err
}

func TestContactHandler_Submit(t *testing.T) {
	svc := &mockSubmitter{}
	h := NewContactHandler(svc)

	w := do(t, h.Submit, "POST", "/api/contact",
		`{"name":"Jane","email":"jane@example.com","subject":"Hi","message":"Hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]any
	decodeData(t, w, &data)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "Message sent successfully", data["message"])
	require.Len(t, svc.got, 1)
	assert.Equal(t, "Jane", svc.got[0].Name)
}

func TestContactHandler_Submit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{`, nil, http.StatusBadRequest},
		{"missing fields", `{"name":"Jane"}`, core.ErrBadRequest, http.StatusBadRequest},
		{"delivery failed", `{"name":"Jane"}`, core.ErrNotifyFailed, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewContactHandler(&mockSubmitter{err: tt.err})
			w := do(t, h.Submit, "POST", "/api/contact", tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
