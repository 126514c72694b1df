package stub

import "errors"

var (
	ErrNoPrompt    = errors.New("No prompt provided")
	ErrEmptyPrompt = errors.New("Empty prompt")
	ErrNoMessage   = errors.New("No message provided")
	ErrEmptyMsg    = errors.New("Empty message")
	ErrJobNotFound = errors.New("Job not found")
	ErrNotReady    = errors.New("Video not ready")
)
