// Package backtest talks to the external strategy execution service.
package backtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/quantedge/quantedge/internal/core"
	"go.uber.org/zap"
)

const maxErrorBody = 512

// Client posts persisted settings to the backtest service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Run executes a backtest for req and returns the service's result.
// Metrics are derived from the equity curve when the service sends none.
func (c *Client) Run(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, core.WrapError(core.ErrUpstreamTimeout, err)
		}
		return nil, core.WrapError(core.ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, core.WrapError(core.ErrUpstreamFailed,
			fmt.Errorf("backtest service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrUpstreamFailed, fmt.Errorf("decoding response: %w", err))
	}

	if len(result.Metrics) == 0 && len(result.Series) > 1 {
		result.Metrics = CalculateStats(result.Series).Metrics()
	}

	c.logger.Info("backtest completed",
		zap.String("strategy", req.Strategy),
		zap.Int("points", len(result.Series)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
