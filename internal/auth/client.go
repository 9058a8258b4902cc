// Package auth proxies account operations to the authentication service
// and keeps the dashboard's login sessions.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quantedge/quantedge/internal/core"
)

// Result is the service's answer to an account operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// StatusCode is the service's HTTP status.
	StatusCode int `json:"-"`
}

// SignupRequest registers a new account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials identify an existing account.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client talks to the authentication service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Signup creates an account. A refused signup is a Result with Success
// false, not an error.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Result, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return &Result{Message: "All fields are required", StatusCode: http.StatusBadRequest}, nil
	}
	return c.post(ctx, "/signup", req)
}

// Login checks credentials.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Result, error) {
	if creds.Email == "" || creds.Password == "" {
		return &Result{Message: "Email and password required", StatusCode: http.StatusBadRequest}, nil
	}
	return c.post(ctx, "/login", creds)
}

// Logout tells the service the account signed out.
func (c *Client) Logout(ctx context.Context, email string) (*Result, error) {
	return c.post(ctx, "/logout", map[string]string{"email": email})
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, core.WrapError(core.ErrUpstreamFailed,
			fmt.Errorf("auth service returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamFailed, err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, core.WrapError(core.ErrUpstreamFailed, fmt.Errorf("decoding response: %w", err))
	}
	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= 400 {
		result.Success = false
	}
	return &result, nil
}
