package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// FormMaxWidth caps the width of the prompt forms.
	FormMaxWidth = 96
)

// Log display limits.
const (
	// LogTailLines is the number of log lines read when the log view refreshes.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = 250 * time.Millisecond

	// SaveTimeout bounds a video download.
	SaveTimeout = 2 * time.Minute
)

// Prompt editor sizes.
const (
	promptHeight    = 5
	chatInputHeight = 3
)
