package genapi

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// PromptLimits bound a prompt's length and drive the character counter.
type PromptLimits struct {
	Min    int // minimum trimmed length
	Max    int // hard input limit
	Warn   int // counter turns warning above this
	Danger int // counter turns danger above this
}

var (
	VideoPromptLimits = PromptLimits{Min: 10, Max: 500, Warn: 350, Danger: 450}
	ChatPromptLimits  = PromptLimits{Min: 1, Max: 1000, Warn: 800, Danger: 900}
	ImagePromptLimits = PromptLimits{Min: 1, Max: 500, Warn: 300, Danger: 450}
)

// Validation messages shown to the user.
var (
	ErrEmptyVideoPrompt = errors.New("Please enter a text prompt to generate a video.")
	ErrShortVideoPrompt = errors.New("Please provide a more detailed description (at least 10 characters).")
	ErrEmptyImagePrompt = errors.New("Please enter a prompt for image generation")
	ErrEmptyMessage     = errors.New("Empty message")
)

// CounterLevel classifies a prompt length for the character counter.
type CounterLevel int

const (
	CounterNormal CounterLevel = iota
	CounterWarning
	CounterDanger
)

// Level returns the counter level for a prompt of n characters.
func (l PromptLimits) Level(n int) CounterLevel {
	switch {
	case n > l.Danger:
		return CounterDanger
	case n > l.Warn:
		return CounterWarning
	}
	return CounterNormal
}

// Validate checks the request against the model catalog. Unknown models are
// accepted as-is so custom backends keep working; known models are checked
// for duration and resolution.
func (r VideoRequest) Validate() error {
	prompt := strings.TrimSpace(r.Prompt)
	switch n := utf8.RuneCountInString(prompt); {
	case n == 0:
		return ErrEmptyVideoPrompt
	case n < VideoPromptLimits.Min:
		return ErrShortVideoPrompt
	case n > VideoPromptLimits.Max:
		return fmt.Errorf("Prompt is too long (%d characters, maximum %d).", n, VideoPromptLimits.Max)
	}
	if strings.TrimSpace(r.Model) == "" {
		return errors.New("Please select a model.")
	}
	if r.Duration < 1 {
		return errors.New("Duration must be at least 1 second.")
	}
	m, ok := LookupVideoModel(r.Model)
	if !ok {
		return nil
	}
	if r.Duration > m.MaxDuration {
		return fmt.Errorf("%s supports at most %d seconds.", m.Name, m.MaxDuration)
	}
	for _, res := range m.Resolutions {
		if res == strings.TrimSpace(r.Resolution) {
			return nil
		}
	}
	return fmt.Errorf("%s supports resolutions %s.", m.Name, strings.Join(m.Resolutions, ", "))
}

// Validate checks the prompt and dimensions of an image request.
func (r ImageRequest) Validate() error {
	prompt := strings.TrimSpace(r.Prompt)
	if prompt == "" {
		return ErrEmptyImagePrompt
	}
	if n := utf8.RuneCountInString(prompt); n > ImagePromptLimits.Max {
		return fmt.Errorf("Prompt is too long (%d characters, maximum %d).", n, ImagePromptLimits.Max)
	}
	if r.Steps < 1 || r.Steps > 100 {
		return errors.New("Steps must be between 1 and 100.")
	}
	if r.GuidanceScale <= 0 || r.GuidanceScale > 30 {
		return errors.New("Guidance scale must be between 0 and 30.")
	}
	if r.Width <= 0 || r.Height <= 0 || r.Width%8 != 0 || r.Height%8 != 0 {
		return errors.New("Image size must be positive multiples of 8.")
	}
	return nil
}

// ValidateMessage checks a chat message.
func ValidateMessage(message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return ErrEmptyMessage
	}
	if n := utf8.RuneCountInString(msg); n > ChatPromptLimits.Max {
		return fmt.Errorf("Message is too long (%d characters, maximum %d).", n, ChatPromptLimits.Max)
	}
	return nil
}
