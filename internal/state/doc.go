// Package state provides thread-safe state shared between reel's background
// work and the UI.
//
// # Overview
//
// Store holds the current generation job and the backend's health. Poll
// callbacks and the health poller write to it from their own goroutines; the
// UI reads copies on its refresh tick:
//
//	jobs.Client callbacks ──┐
//	                        ├──→ store (mutex) ──→ store.Snapshot() ──→ render
//	health poller ──────────┘
//
// Conversation holds the chat transcript for chat mode.
//
// # Job Phases
//
//	Idle → Submitting → Polling → {Completed, Failed, Cancelled}
//
// Progress and Complete only apply while polling, and only for the current
// job id, so a late report from a replaced job cannot overwrite the display.
// Fail and Cancelled only apply while a job is active. Reset returns to Idle
// and keeps health data.
//
// # Health Updates
//
// SetHealth mirrors the poll-error behaviour of the original store: on error
// the previous health data is kept, the error is recorded, and
// ConsecutiveFailures grows. Two or more consecutive failures mark the
// backend offline.
//
// # Copying
//
// Snapshot returns a value with cloned errors, health flags and raw status
// bytes, so callers can read it without holding locks. Both types are usable
// as zero values.
package state
