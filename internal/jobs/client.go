package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/reel/internal/genapi"
)

const (
	defaultPollInterval   = 2 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// API is the subset of the backend client the job client needs.
// *genapi.Client implements it.
type API interface {
	CreateJob(ctx context.Context, payload any) (string, error)
	FetchJob(ctx context.Context, jobID string) (*genapi.JobStatus, error)
}

var _ API = (*genapi.Client)(nil)

// Callbacks receive the outcome of a poll session. Nil callbacks are skipped.
// All callbacks of one session run on the session's goroutine, one at a time.
type Callbacks struct {
	OnProgress func(genapi.JobStatus)
	OnComplete func(genapi.JobStatus)
	OnError    func(error)
}

// Client submits generation jobs and polls them to completion. At most one
// poll session is active per Client.
type Client struct {
	api            API
	interval       time.Duration
	requestTimeout time.Duration
	logger         *slog.Logger

	mu     sync.Mutex
	active *Session
	nextID uint64
}

// Option customizes a Client.
type Option func(*Client)

// WithInterval sets the delay between poll ticks.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRequestTimeout bounds each submit and status request. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.requestTimeout = d
		}
	}
}

// WithLogger sets the logger used for poll diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Client on top of api.
func New(api API, opts ...Option) *Client {
	c := &Client{
		api:            api,
		interval:       defaultPollInterval,
		requestTimeout: defaultRequestTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interval returns the configured poll interval.
func (c *Client) Interval() time.Duration {
	return c.interval
}

// Submit sends payload to the creation endpoint and returns the job id. It
// performs no validation and does not start polling.
func (c *Client) Submit(ctx context.Context, payload any) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	jobID, err := c.api.CreateJob(ctx, payload)
	if err != nil {
		msg := submitFallbackMessage
		var se *genapi.StatusError
		if errors.As(err, &se) && strings.TrimSpace(se.Message) != "" {
			msg = se.Message
		}
		c.logger.Warn("job submission failed", slog.String("error", err.Error()))
		return "", &Error{Kind: KindSubmissionFailed, Message: msg, Err: err}
	}
	if strings.TrimSpace(jobID) == "" {
		return "", &Error{Kind: KindSubmissionFailed, Message: "backend response missing job_id"}
	}
	c.logger.Info("job submitted", slog.String("job_id", jobID))
	return jobID, nil
}

// StartPolling cancels any active session and starts polling jobID every
// interval. The first status request is sent one interval after the call.
// Cancelling ctx cancels the session without invoking a callback.
func (c *Client) StartPolling(ctx context.Context, jobID string, cb Callbacks) *Session {
	pollCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	prev := c.active
	c.nextID++
	s := &Session{
		id:     c.nextID,
		jobID:  jobID,
		owner:  c,
		state:  StatePolling,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.active = s
	c.mu.Unlock()

	if prev != nil {
		prev.stop()
		c.logger.Debug("poll session replaced", slog.String("job_id", prev.jobID), slog.Uint64("session", prev.id))
	}

	c.logger.Debug("poll session started", slog.String("job_id", jobID), slog.Uint64("session", s.id), slog.Duration("interval", c.interval))
	go c.run(pollCtx, s, cb)
	return s
}

// Cancel stops the active session, if any, without invoking callbacks.
// Calling it when idle is a no-op.
func (c *Client) Cancel() {
	c.mu.Lock()
	s := c.active
	c.active = nil
	c.mu.Unlock()

	if s != nil {
		s.stop()
	}
}

// Active returns the session currently polling, or nil.
func (c *Client) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// State reports the active session's state, or StateIdle.
func (c *Client) State() State {
	if s := c.Active(); s != nil {
		return s.State()
	}
	return StateIdle
}

func (c *Client) run(ctx context.Context, s *Session, cb Callbacks) {
	defer close(s.done)
	defer s.cancel()

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.release(s, StateCancelled)
			return
		case <-timer.C:
		}
		if !c.tick(ctx, s, cb) {
			return
		}
		timer.Reset(c.interval)
	}
}

// tick performs one status request and dispatches the result. It reports
// whether the session should keep polling.
func (c *Client) tick(ctx context.Context, s *Session, cb Callbacks) bool {
	reqCtx, cancel := c.withTimeout(ctx)
	status, err := c.api.FetchJob(reqCtx, s.jobID)
	cancel()

	if ctx.Err() != nil {
		// Cancelled while the request was in flight; the response is stale.
		c.release(s, StateCancelled)
		return false
	}

	if err != nil {
		c.logger.Warn("status poll failed", slog.String("job_id", s.jobID), slog.String("error", err.Error()))
		if c.release(s, StateFailed) && cb.OnError != nil {
			cb.OnError(&Error{Kind: KindPollTransport, JobID: s.jobID, Message: connectionLostMessage, Err: err})
		}
		return false
	}

	snapshot := *status
	switch snapshot.Status.Normalize() {
	case genapi.StatusCompleted:
		c.logger.Info("job completed", slog.String("job_id", s.jobID))
		if c.release(s, StateCompleted) && cb.OnComplete != nil {
			cb.OnComplete(snapshot)
		}
		return false
	case genapi.StatusFailed:
		msg := snapshot.FailureMessage()
		c.logger.Warn("job failed", slog.String("job_id", s.jobID), slog.String("message", msg))
		if c.release(s, StateFailed) && cb.OnError != nil {
			cb.OnError(&Error{Kind: KindJobFailed, JobID: s.jobID, Message: msg})
		}
		return false
	default:
		c.logger.Debug("job progress", slog.String("job_id", s.jobID), slog.Int("progress", snapshot.Progress), slog.String("message", snapshot.Message))
		if !s.polling() {
			return false
		}
		if cb.OnProgress != nil {
			cb.OnProgress(snapshot)
		}
		return true
	}
}

// release moves s into a terminal state and clears it as the active session.
// It reports false when s had already left StatePolling, in which case the
// caller must not deliver a callback.
func (c *Client) release(s *Session, to State) bool {
	if !s.transition(to) {
		return false
	}
	c.forget(s)
	return true
}

func (c *Client) forget(s *Session) {
	c.mu.Lock()
	if c.active == s {
		c.active = nil
	}
	c.mu.Unlock()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}
