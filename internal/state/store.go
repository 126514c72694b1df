package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/five82/reel/internal/genapi"
)

// Phase is the lifecycle of the job shown in the UI.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhasePolling
	PhaseCompleted
	PhaseFailed
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhasePolling:
		return "polling"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Active reports whether a job is being submitted or polled.
func (p Phase) Active() bool {
	return p == PhaseSubmitting || p == PhasePolling
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Phase     Phase
	JobID     string
	Job       genapi.JobStatus // latest status report for JobID
	HasJob    bool
	LastError error
	StartedAt time.Time
	EndedAt   time.Time

	Health              genapi.Health
	HasHealth           bool
	HealthError         error
	HealthUpdated       time.Time
	ConsecutiveFailures int // Number of consecutive health poll failures

	LastUpdated time.Time
}

// IsOffline returns true when the backend has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Elapsed returns how long the current or last job ran as of now.
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := now
	if !s.EndedAt.IsZero() {
		end = s.EndedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

// Store coordinates concurrent updates from poll callbacks and the UI.
// Updates for a job other than the current one are ignored.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Submitting records that a creation request is in flight.
func (s *Store) Submitting() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.resetJobLocked()
	s.snapshot.Phase = PhaseSubmitting
	s.snapshot.StartedAt = now
	s.snapshot.LastUpdated = now
}

// Begin records that jobID was accepted and is being polled.
func (s *Store) Begin(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	started := s.snapshot.StartedAt
	if s.snapshot.Phase != PhaseSubmitting || started.IsZero() {
		started = now
	}
	s.resetJobLocked()
	s.snapshot.Phase = PhasePolling
	s.snapshot.JobID = jobID
	s.snapshot.StartedAt = started
	s.snapshot.LastUpdated = now
}

// Progress records a non-terminal status report.
func (s *Store) Progress(status genapi.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Phase != PhasePolling || !s.currentLocked(status) {
		return
	}
	s.snapshot.Job = status
	s.snapshot.HasJob = true
	s.snapshot.LastUpdated = time.Now()
}

// Complete records the terminal success report.
func (s *Store) Complete(status genapi.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Phase != PhasePolling || !s.currentLocked(status) {
		return
	}
	now := time.Now()
	s.snapshot.Phase = PhaseCompleted
	s.snapshot.Job = status
	s.snapshot.HasJob = true
	s.snapshot.EndedAt = now
	s.snapshot.LastUpdated = now
}

// Fail records a submission, transport, or job failure.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.snapshot.Phase.Active() {
		return
	}
	if err == nil {
		err = fmt.Errorf("unknown failure")
	}
	now := time.Now()
	s.snapshot.Phase = PhaseFailed
	s.snapshot.LastError = err
	s.snapshot.EndedAt = now
	s.snapshot.LastUpdated = now
}

// Cancelled records that the user abandoned the job.
func (s *Store) Cancelled() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.snapshot.Phase.Active() {
		return
	}
	now := time.Now()
	s.snapshot.Phase = PhaseCancelled
	s.snapshot.EndedAt = now
	s.snapshot.LastUpdated = now
}

// Reset returns the job side of the store to idle. Health data is kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetJobLocked()
	s.snapshot.LastUpdated = time.Now()
}

// SetHealth records a health poll. When err is non-nil the previous health
// data is kept but the error is recorded for visibility.
func (s *Store) SetHealth(health *genapi.Health, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot.HealthUpdated = now
	s.snapshot.LastUpdated = now
	if err != nil {
		s.snapshot.HealthError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if health != nil {
		s.snapshot.Health = cloneHealth(*health)
		s.snapshot.HasHealth = true
	} else {
		s.snapshot.HasHealth = false
	}
	s.snapshot.HealthError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Health = cloneHealth(s.snapshot.Health)
	snap.Job.Raw = append([]byte(nil), s.snapshot.Job.Raw...)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	if s.snapshot.HealthError != nil {
		snap.HealthError = fmt.Errorf("%w", s.snapshot.HealthError)
	}
	return snap
}

func (s *Store) currentLocked(status genapi.JobStatus) bool {
	id := strings.TrimSpace(status.JobID)
	return id == "" || id == s.snapshot.JobID
}

func (s *Store) resetJobLocked() {
	s.snapshot.Phase = PhaseIdle
	s.snapshot.JobID = ""
	s.snapshot.Job = genapi.JobStatus{}
	s.snapshot.HasJob = false
	s.snapshot.LastError = nil
	s.snapshot.StartedAt = time.Time{}
	s.snapshot.EndedAt = time.Time{}
}

func cloneHealth(h genapi.Health) genapi.Health {
	if h.ModelLoaded != nil {
		v := *h.ModelLoaded
		h.ModelLoaded = &v
	}
	if h.ChatbotLoaded != nil {
		v := *h.ChatbotLoaded
		h.ChatbotLoaded = &v
	}
	return h
}
