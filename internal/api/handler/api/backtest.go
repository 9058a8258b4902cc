package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/quantedge/quantedge/internal/api/job"
	"github.com/quantedge/quantedge/internal/api/response"
	"github.com/quantedge/quantedge/internal/backtest"
	"github.com/quantedge/quantedge/internal/core"
	"github.com/quantedge/quantedge/internal/settings"
	"go.uber.org/zap"
)

const (
	backtestTimeout = 5 * time.Minute
	jobTypeBacktest = "backtest"
)

// BacktestRequest is the request body for starting a backtest.
type BacktestRequest struct {
	Strategy string `json:"strategy"`
}

// Runner executes a backtest.
type Runner interface {
	Run(ctx context.Context, req backtest.Request) (*backtest.Result, error)
}

// BacktestRecorder receives backtest outcomes.
type BacktestRecorder interface {
	RecordBacktest(status string, duration float64)
	SetJobsActive(jobType string, count int)
}

// BacktestHandler handles backtest API requests.
type BacktestHandler struct {
	jobStore *job.Store
	runner   Runner
	manager  *settings.Manager
	recorder BacktestRecorder
	logger   *zap.Logger
}

// NewBacktestHandler creates a new backtest handler. recorder and logger
// may be nil.
func NewBacktestHandler(
	jobStore *job.Store,
	runner Runner,
	manager *settings.Manager,
	recorder BacktestRecorder,
	logger *zap.Logger,
) *BacktestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktestHandler{
		jobStore: jobStore,
		runner:   runner,
		manager:  manager,
		recorder: recorder,
		logger:   logger,
	}
}

// Create starts a backtest of the applied settings.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrBadRequest, err))
		return
	}

	if h.runner == nil {
		response.Error(w, http.StatusServiceUnavailable, core.ErrUpstreamFailed)
		return
	}

	s, state := h.manager.Snapshot()
	if state != settings.StatePersisted {
		response.Error(w, http.StatusConflict, core.ErrNotPersisted)
		return
	}
	if err := settings.Validate(s, h.manager.Universe()); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err)
		return
	}

	j := h.jobStore.Create(jobTypeBacktest)
	h.reportActive()

	go h.runBacktest(j.ID, backtest.Request{Settings: s, Strategy: req.Strategy})

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

// runBacktest executes the backtest and updates job status.
func (h *BacktestHandler) runBacktest(jobID string, req backtest.Request) {
	defer h.reportActive()

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	start := time.Now()
	result, err := h.runner.Run(ctx, req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		h.logger.Warn("backtest failed", zap.String("job_id", jobID), zap.Error(err))
		h.record(string(job.StatusFailed), elapsed)
		h.jobStore.Update(jobID, func(j *job.Job) { j.Fail(err) })
		return
	}

	h.record(string(job.StatusComplete), elapsed)
	h.jobStore.Update(jobID, func(j *job.Job) { j.Complete(result) })
}

// GetStatus returns the status of a backtest job.
func (h *BacktestHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobStore.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id":   j.ID,
		"status":   j.Status,
		"progress": j.Progress,
	}

	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = j.Error
	}

	response.JSON(w, http.StatusOK, resp)
}

func (h *BacktestHandler) record(status string, elapsed float64) {
	if h.recorder != nil {
		h.recorder.RecordBacktest(status, elapsed)
	}
}

func (h *BacktestHandler) reportActive() {
	if h.recorder != nil {
		h.recorder.SetJobsActive(jobTypeBacktest, h.jobStore.Active(jobTypeBacktest))
	}
}
