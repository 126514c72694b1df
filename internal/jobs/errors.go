package jobs

import (
	"errors"
	"fmt"
)

// Kind classifies a job client failure so callers can pick a retry policy.
type Kind int

const (
	// KindSubmissionFailed: the creation request was rejected or unreachable.
	KindSubmissionFailed Kind = iota + 1
	// KindPollTransport: a status request failed to complete or decode.
	KindPollTransport
	// KindJobFailed: the backend reported a terminal failure for the job.
	KindJobFailed
)

func (k Kind) String() string {
	switch k {
	case KindSubmissionFailed:
		return "submission_failed"
	case KindPollTransport:
		return "poll_transport"
	case KindJobFailed:
		return "job_failed"
	default:
		return "unknown"
	}
}

var (
	ErrSubmissionFailed = errors.New("submission failed")
	ErrPollTransport    = errors.New("poll transport error")
	ErrJobFailed        = errors.New("job failed")
)

const (
	submitFallbackMessage = "Failed to start generation"
	connectionLostMessage = "Lost connection to server. Please try again."
)

// Error is the single error type surfaced by Client. Message is suitable for
// display; Err holds the underlying cause when there is one.
type Error struct {
	Kind    Kind
	JobID   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.JobID != "" {
		prefix = fmt.Sprintf("%s (job %s)", prefix, e.JobID)
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSubmissionFailed:
		return e.Kind == KindSubmissionFailed
	case ErrPollTransport:
		return e.Kind == KindPollTransport
	case ErrJobFailed:
		return e.Kind == KindJobFailed
	}
	return false
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the display message of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
