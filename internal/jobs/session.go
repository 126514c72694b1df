package jobs

import (
	"context"
	"sync"
)

// State is the lifecycle of a poll session.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Session is one poll loop for one job.
type Session struct {
	id     uint64
	jobID  string
	owner  *Client
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
}

// JobID returns the polled job's identifier.
func (s *Session) JobID() string {
	return s.jobID
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the poll goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session ends and returns its final state.
func (s *Session) Wait() State {
	<-s.done
	return s.State()
}

// Cancel stops this session without invoking callbacks. Idempotent; a session
// that already finished keeps its terminal state.
func (s *Session) Cancel() {
	s.stop()
	if s.owner != nil {
		s.owner.forget(s)
	}
}

func (s *Session) stop() {
	s.transition(StateCancelled)
	s.cancel()
}

func (s *Session) polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StatePolling
}

// transition moves a polling session into a terminal state exactly once.
func (s *Session) transition(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePolling {
		return false
	}
	s.state = to
	return true
}
