package genapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Status is the lifecycle state reported by the status endpoint.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Normalize maps backend spellings onto the four canonical statuses. Unknown
// values are returned lowercased and count as non-terminal.
func (s Status) Normalize() Status {
	v := Status(strings.ToLower(strings.TrimSpace(string(s))))
	switch v {
	case "", "queued":
		return StatusPending
	case "processing", "in_progress":
		return StatusRunning
	case "error", "failure":
		return StatusFailed
	case "done", "success", "succeeded":
		return StatusCompleted
	}
	return v
}

// Terminal reports whether no further polling should happen.
func (s Status) Terminal() bool {
	switch s.Normalize() {
	case StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// VideoRequest is the creation payload for the video backend.
type VideoRequest struct {
	Prompt     string `json:"prompt"`
	Model      string `json:"model"`
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution"`
}

// CreateJobResponse mirrors the creation endpoint's reply.
type CreateJobResponse struct {
	JobID string `json:"job_id"`
	Error string `json:"error,omitempty"`
}

// JobStatus mirrors the payload returned by the status endpoint.
type JobStatus struct {
	JobID       string          `json:"job_id"`
	Status      Status          `json:"status"`
	Progress    int             `json:"progress"`
	Message     string          `json:"message"`
	Error       string          `json:"error,omitempty"`
	Result      string          `json:"result,omitempty"`
	DownloadURL string          `json:"download_url,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
	Model       string          `json:"model,omitempty"`
	Duration    int             `json:"duration,omitempty"`
	Resolution  string          `json:"resolution,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// ResultURL returns the content location of a completed job.
func (j JobStatus) ResultURL() string {
	return strings.TrimSpace(firstNonEmpty(j.Result, j.DownloadURL))
}

// FailureMessage returns the best available description of a failed job.
func (j JobStatus) FailureMessage() string {
	if msg := firstNonEmpty(j.Error, j.Message); msg != "" {
		return msg
	}
	return "Video generation failed"
}

// ClampedProgress bounds Progress to 0..100.
func (j JobStatus) ClampedProgress() int {
	switch {
	case j.Progress < 0:
		return 0
	case j.Progress > 100:
		return 100
	}
	return j.Progress
}

// Health mirrors the backend's readiness endpoint. Each backend flavour
// reports a different loaded flag; Ready folds them together.
type Health struct {
	ModelLoaded        *bool  `json:"model_loaded,omitempty"`
	ChatbotLoaded      *bool  `json:"chatbot_loaded,omitempty"`
	ModelName          string `json:"model_name,omitempty"`
	Device             string `json:"device,omitempty"`
	ConversationLength int    `json:"conversation_length,omitempty"`
}

// Ready reports whether the backend has a model loaded.
func (h Health) Ready() bool {
	if h.ModelLoaded != nil {
		return *h.ModelLoaded
	}
	if h.ChatbotLoaded != nil {
		return *h.ChatbotLoaded
	}
	return false
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply mirrors the chat endpoint's reply.
type ChatReply struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// ParsedTimestamp returns the reply time, or the zero time when absent.
func (r ChatReply) ParsedTimestamp() time.Time {
	return parseTime(r.Timestamp)
}

// ClearResponse mirrors the reset endpoint's reply.
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ImageRequest is the body of a synchronous image generation.
type ImageRequest struct {
	Prompt        string  `json:"prompt"`
	Steps         int     `json:"steps"`
	GuidanceScale float64 `json:"guidance_scale"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
}

// ImageResult mirrors the image endpoint's reply. Image is a data URI.
type ImageResult struct {
	Success   bool   `json:"success"`
	Image     string `json:"image"`
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// Decode returns the MIME type and bytes of the data URI in Image.
func (r ImageResult) Decode() (string, []byte, error) {
	return DecodeDataURI(r.Image)
}

// DecodeDataURI parses a base64 "data:<mime>;base64,<payload>" URI.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data uri missing payload")
	}
	mime, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return "", nil, fmt.Errorf("unsupported data uri encoding %q", enc)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return mime, data, nil
}

// StatusError is returned when the backend rejects a request.
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Unavailable reports whether the backend said its model is not loaded.
func (e *StatusError) Unavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
