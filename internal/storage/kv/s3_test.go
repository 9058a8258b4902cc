// internal/storage/kv/s3_test.go
package kv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quantedge/quantedge/internal/core"
)

func TestS3_ImplementsStore(t *testing.T) {
	var _ Store = (*S3)(nil)
}

func TestS3_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "simulationSettings", "simulationSettings.json"},
		{"settings", "simulationSettings", "settings/simulationSettings.json"},
		{"settings/", "users/bob/simulationSettings", "settings/users/bob/simulationSettings.json"},
	}

	for _, tt := range tests {
		s := &S3{prefix: strings.TrimSuffix(tt.prefix, "/")}
		got := s.objectKey(tt.key)
		if got != tt.want {
			t.Errorf("objectKey(%q) with prefix %q = %q, want %q", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestS3_GetMissingKey(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
	}))
	defer server.Close()

	s, err := NewS3(S3Config{
		Bucket:    "quantedge",
		Endpoint:  server.URL,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
		Prefix:    "settings",
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}

	_, err = s.Get(context.Background(), "simulationSettings")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if gotPath != "/quantedge/settings/simulationSettings.json" {
		t.Errorf("unexpected request path %q", gotPath)
	}
}

func TestS3_RejectsInvalidKey(t *testing.T) {
	s, _ := NewS3(S3Config{Bucket: "b", Region: "us-east-1"})
	if err := s.Set(context.Background(), "../x", []byte("v")); err == nil {
		t.Error("expected error for invalid key")
	}
}
