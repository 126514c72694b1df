package jobs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("wrapped: %w", &Error{Kind: KindPollTransport, JobID: "j1", Message: connectionLostMessage, Err: cause})

	assert.ErrorIs(t, err, ErrPollTransport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrJobFailed)
	assert.NotErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, KindPollTransport, KindOf(err))
	assert.Equal(t, connectionLostMessage, Message(err))
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  &Error{Kind: KindJobFailed, JobID: "abc", Message: "CUDA out of memory"},
			want: "job_failed (job abc): CUDA out of memory",
		},
		{
			name: "with cause",
			err:  &Error{Kind: KindSubmissionFailed, Message: submitFallbackMessage, Err: errors.New("dial tcp: refused")},
			want: "submission_failed: Failed to start generation: dial tcp: refused",
		},
		{
			name: "cause equal to message",
			err:  &Error{Kind: KindSubmissionFailed, Message: "prompt too short", Err: errors.New("prompt too short")},
			want: "submission_failed: prompt too short",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOfAndMessageOnForeignErrors(t *testing.T) {
	plain := errors.New("plain")
	assert.Equal(t, Kind(0), KindOf(plain))
	assert.Equal(t, "plain", Message(plain))
	assert.Empty(t, Message(nil))
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "polling", StatePolling.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StatePolling.Terminal())
	assert.False(t, StateIdle.Terminal())
}
