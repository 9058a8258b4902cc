package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantedge/quantedge/internal/api/response"
	"github.com/quantedge/quantedge/internal/settings"
	"github.com/quantedge/quantedge/internal/storage/kv"
)

// failingStore accepts reads as absent and refuses every write.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return kv.NewMemory().Get(ctx, key)
}

func (failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("quota exceeded")
}

func validSettings() settings.SimulationSettings {
	return settings.SimulationSettings{
		LongEntry:         "close > sma(20)",
		LongExit:          "close < sma(20)",
		ShortEntry:        "close < sma(50)",
		ShortExit:         "close > sma(50)",
		Asset:             1,
		Target:            5,
		Commission:        0.1,
		InitialInvestment: 100000,
		TimeFrame:         30,
		SelectedStocks:    settings.NewStockSet("INFY", "TCS"),
	}
}

func do(t *testing.T, h http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = &bytes.Buffer{}
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v: %s", err, w.Body.String())
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decoding data: %v: %s", err, resp.Data)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorDetail {
	t.Helper()
	var resp response.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error: %v: %s", err, w.Body.String())
	}
	return resp.Error
}
