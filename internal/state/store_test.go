package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/reel/internal/genapi"
)

func TestStore_JobLifecycle(t *testing.T) {
	var s Store

	if snap := s.Snapshot(); snap.Phase != PhaseIdle || snap.HasJob {
		t.Fatalf("zero snapshot = %#v, want idle without job", snap)
	}

	s.Submitting()
	submitted := s.Snapshot()
	if submitted.Phase != PhaseSubmitting || submitted.StartedAt.IsZero() {
		t.Fatalf("after Submitting phase = %v started = %v", submitted.Phase, submitted.StartedAt)
	}

	s.Begin("abc")
	snap := s.Snapshot()
	if snap.Phase != PhasePolling || snap.JobID != "abc" {
		t.Fatalf("after Begin phase = %v job = %q, want polling/abc", snap.Phase, snap.JobID)
	}
	if !snap.StartedAt.Equal(submitted.StartedAt) {
		t.Fatalf("Begin should keep the submit start time")
	}

	s.Progress(genapi.JobStatus{JobID: "abc", Status: genapi.StatusRunning, Progress: 40, Message: "Generating frames"})
	snap = s.Snapshot()
	if !snap.HasJob || snap.Job.Progress != 40 || snap.Job.Message != "Generating frames" {
		t.Fatalf("after Progress job = %#v", snap.Job)
	}

	s.Complete(genapi.JobStatus{JobID: "abc", Status: genapi.StatusCompleted, Progress: 100, DownloadURL: "/download/abc"})
	snap = s.Snapshot()
	if snap.Phase != PhaseCompleted || snap.Job.ResultURL() != "/download/abc" {
		t.Fatalf("after Complete snapshot = %#v", snap)
	}
	if snap.EndedAt.IsZero() || snap.Elapsed(time.Now().Add(time.Hour)) != snap.EndedAt.Sub(snap.StartedAt) {
		t.Fatalf("Elapsed should freeze at EndedAt")
	}

	// Terminal phases ignore late updates.
	s.Progress(genapi.JobStatus{JobID: "abc", Progress: 10})
	s.Fail(errors.New("late"))
	s.Cancelled()
	if got := s.Snapshot(); got.Phase != PhaseCompleted || got.Job.Progress != 100 || got.LastError != nil {
		t.Fatalf("terminal snapshot mutated: %#v", got)
	}

	s.Reset()
	if got := s.Snapshot(); got.Phase != PhaseIdle || got.JobID != "" || got.HasJob || !got.StartedAt.IsZero() {
		t.Fatalf("after Reset snapshot = %#v", got)
	}
}

func TestStore_IgnoresOtherJobs(t *testing.T) {
	var s Store
	s.Begin("new")

	s.Progress(genapi.JobStatus{JobID: "old", Progress: 90})
	s.Complete(genapi.JobStatus{JobID: "old", Status: genapi.StatusCompleted})

	snap := s.Snapshot()
	if snap.Phase != PhasePolling || snap.HasJob {
		t.Fatalf("updates for a replaced job leaked: %#v", snap)
	}
}

func TestStore_FailAndCancel(t *testing.T) {
	var s Store

	s.Fail(errors.New("ignored while idle"))
	if s.Snapshot().LastError != nil {
		t.Fatalf("Fail while idle should be ignored")
	}

	s.Submitting()
	origErr := errors.New("prompt too short")
	s.Fail(origErr)
	snap := s.Snapshot()
	if snap.Phase != PhaseFailed || snap.LastError == nil || snap.LastError.Error() != "prompt too short" {
		t.Fatalf("after Fail snapshot = %#v", snap)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	s.Begin("j")
	s.Cancelled()
	if got := s.Snapshot(); got.Phase != PhaseCancelled || got.LastError != nil {
		t.Fatalf("after Cancelled snapshot = %#v", got)
	}
}

func TestStore_HealthKeepsPreviousDataOnError(t *testing.T) {
	var s Store
	loaded := true

	s.SetHealth(&genapi.Health{ModelLoaded: &loaded, ModelName: "zeroscope"}, nil)
	prev := s.Snapshot()
	if !prev.HasHealth || !prev.Health.Ready() {
		t.Fatalf("health = %#v, want ready", prev.Health)
	}

	// Returned snapshot should be independent of the stored one.
	*prev.Health.ModelLoaded = false
	if !s.Snapshot().Health.Ready() {
		t.Fatalf("Snapshot should clone health flags")
	}

	before := time.Now()
	s.SetHealth(nil, errors.New("boom"))
	snap := s.Snapshot()
	if snap.Health.ModelName != "zeroscope" || !snap.HasHealth {
		t.Fatalf("health changed on error: got %#v", snap.Health)
	}
	if snap.HealthError == nil || snap.HealthError.Error() != "boom" {
		t.Fatalf("HealthError = %v, want boom", snap.HealthError)
	}
	if snap.HealthUpdated.Before(before) {
		t.Fatalf("HealthUpdated = %v, want >= %v", snap.HealthUpdated, before)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d, want 0 and online", snap.ConsecutiveFailures)
	}

	s.SetHealth(nil, errors.New("fail 1"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures = %d offline = %v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.SetHealth(nil, errors.New("fail 2"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures = %d offline = %v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.SetHealth(&genapi.Health{}, nil)
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures = %d offline = %v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_ResetKeepsHealth(t *testing.T) {
	var s Store
	s.SetHealth(&genapi.Health{ModelName: "m"}, nil)
	s.Begin("j")
	s.Reset()
	if snap := s.Snapshot(); !snap.HasHealth || snap.Health.ModelName != "m" {
		t.Fatalf("Reset dropped health: %#v", snap.Health)
	}
}

func TestConversation(t *testing.T) {
	var c Conversation
	if c.Len() != 0 || c.Turns() != nil {
		t.Fatalf("zero conversation should be empty")
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.Append(RoleUser, "hello", at)
	c.Append(RoleAssistant, "hi there", time.Time{})

	turns := c.Turns()
	if len(turns) != 2 || c.Len() != 2 {
		t.Fatalf("Turns = %#v, want 2", turns)
	}
	if turns[0].Role != RoleUser || !turns[0].At.Equal(at) {
		t.Fatalf("turn 0 = %#v", turns[0])
	}
	if turns[1].At.IsZero() {
		t.Fatalf("zero time should be replaced with now")
	}

	turns[0].Text = "mutated"
	if c.Turns()[0].Text != "hello" {
		t.Fatalf("Turns should return a copy")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", c.Len())
	}
}
