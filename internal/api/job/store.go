package job

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantedge/quantedge/internal/core"
)

// Status represents job status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Done reports whether the job has finished.
func (s Status) Done() bool {
	return s == StatusComplete || s == StatusFailed
}

// ErrorInfo is the JSON form of a job failure.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// Job represents an async job.
type Job struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Status    Status     `json:"status"`
	Progress  int        `json:"progress"`
	Result    any        `json:"result,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Fail marks the job failed with err.
func (j *Job) Fail(err error) {
	j.Status = StatusFailed
	info := &ErrorInfo{Code: "INTERNAL_ERROR", Message: err.Error()}
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		info.Code = coreErr.Code
		info.Message = coreErr.Message
		if coreErr.Cause != nil {
			info.Cause = coreErr.Cause.Error()
		}
	}
	j.Error = info
}

// Complete marks the job finished with result.
func (j *Job) Complete(result any) {
	j.Status = StatusComplete
	j.Progress = 100
	j.Result = result
}

// Store manages async jobs.
type Store struct {
	jobs    map[string]*Job
	order   []string // Track insertion order for eviction
	maxSize int
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
}

// NewStore creates a new job store. Finished jobs older than ttl are
// dropped; a zero ttl keeps them until evicted by size.
func NewStore(maxSize int, ttl time.Duration) *Store {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Store{
		jobs:    make(map[string]*Job),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create creates a new job and returns a copy of it.
func (s *Store) Create(jobType string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	now := s.now()
	job := &Job{
		ID:        "job_" + uuid.NewString(),
		Type:      jobType,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Evict oldest if at capacity
	for len(s.jobs) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		delete(s.jobs, oldest)
		s.order = s.order[1:]
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	return *job
}

// Get retrieves a job by ID.
func (s *Store) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, core.ErrJobNotFound
	}

	// Return copy to prevent race conditions
	return *job, nil
}

// Update modifies a job using an update function.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.ErrJobNotFound
	}

	fn(job)
	job.UpdatedAt = s.now()
	return nil
}

// List returns all jobs, oldest first.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	result := make([]Job, 0, len(s.jobs))
	for _, id := range s.order {
		result = append(result, *s.jobs[id])
	}
	return result
}

// Active counts unfinished jobs of jobType.
func (s *Store) Active(jobType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, job := range s.jobs {
		if job.Type == jobType && !job.Status.Done() {
			n++
		}
	}
	return n
}

func (s *Store) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	kept := s.order[:0]
	for _, id := range s.order {
		job := s.jobs[id]
		if job.Status.Done() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}
