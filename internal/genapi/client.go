package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to a generation backend over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	endpoints Endpoints
}

// Endpoints holds the backend paths used by the client. Status may contain a
// {job_id} placeholder; otherwise the id is appended as a path segment.
type Endpoints struct {
	Generate string
	Status   string
	Health   string
	Chat     string
	Clear    string
	Image    string
}

const (
	defaultAPIBase   = "127.0.0.1:5000"
	defaultUserAgent = "reel/0.1"
	jobIDPlaceholder = "{job_id}"
)

// DefaultEndpoints returns the paths served by the reference backends.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Generate: "/generate",
		Status:   "/status/" + jobIDPlaceholder,
		Health:   "/status",
		Chat:     "/chat",
		Clear:    "/clear",
		Image:    "/generate",
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoints overrides the backend paths. Empty fields keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		def := c.endpoints
		c.endpoints = Endpoints{
			Generate: firstNonEmpty(e.Generate, def.Generate),
			Status:   firstNonEmpty(e.Status, def.Status),
			Health:   firstNonEmpty(e.Health, def.Health),
			Chat:     firstNonEmpty(e.Chat, def.Chat),
			Clear:    firstNonEmpty(e.Clear, def.Clear),
			Image:    firstNonEmpty(e.Image, def.Image),
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the backend at apiBase (host:port or URL).
// Per-request deadlines come from the caller's context.
func NewClient(apiBase string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		endpoints: DefaultEndpoints(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// CreateJob posts payload to the generation endpoint and returns the job id.
func (c *Client) CreateJob(ctx context.Context, payload any) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	var resp CreateJobResponse
	if err := c.do(ctx, http.MethodPost, c.endpoints.Generate, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" && resp.JobID == "" {
		return "", &StatusError{Path: c.endpoints.Generate, StatusCode: http.StatusOK, Message: resp.Error}
	}
	return resp.JobID, nil
}

// FetchJob retrieves the status of a job.
func (c *Client) FetchJob(ctx context.Context, jobID string) (*JobStatus, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("job id required")
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.statusPath(jobID), nil, &raw); err != nil {
		return nil, err
	}
	var status JobStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if status.JobID == "" {
		status.JobID = jobID
	}
	status.Status = status.Status.Normalize()
	status.Raw = raw
	return &status, nil
}

// FetchHealth retrieves backend readiness.
func (c *Client) FetchHealth(ctx context.Context) (*Health, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Health
	if err := c.do(ctx, http.MethodGet, c.endpoints.Health, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Chat sends a single message and waits for the reply.
func (c *Client) Chat(ctx context.Context, message string) (*ChatReply, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var reply ChatReply
	if err := c.do(ctx, http.MethodPost, c.endpoints.Chat, ChatRequest{Message: message}, &reply); err != nil {
		return nil, err
	}
	if !reply.Success {
		return nil, &StatusError{Path: c.endpoints.Chat, StatusCode: http.StatusOK, Message: firstNonEmpty(reply.Error, "Unknown error occurred")}
	}
	return &reply, nil
}

// ClearHistory resets the backend conversation.
func (c *Client) ClearHistory(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var resp ClearResponse
	if err := c.do(ctx, http.MethodPost, c.endpoints.Clear, struct{}{}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Path: c.endpoints.Clear, StatusCode: http.StatusOK, Message: firstNonEmpty(resp.Error, "Failed to clear history")}
	}
	return nil
}

// GenerateImage runs a synchronous image generation.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var result ImageResult
	if err := c.do(ctx, http.MethodPost, c.endpoints.Image, req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &StatusError{Path: c.endpoints.Image, StatusCode: http.StatusOK, Message: firstNonEmpty(result.Error, "Failed to generate image")}
	}
	return &result, nil
}

// Download streams the content at rawURL into w. Relative URLs resolve
// against the backend address.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || ref.String() == "" {
		return 0, fmt.Errorf("invalid download url %q", rawURL)
	}
	target := c.baseURL.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return 0, &StatusError{Path: ref.Path, StatusCode: resp.StatusCode}
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("copy body: %w", err)
	}
	return n, nil
}

func (c *Client) statusPath(jobID string) string {
	escaped := url.PathEscape(jobID)
	if strings.Contains(c.endpoints.Status, jobIDPlaceholder) {
		return strings.ReplaceAll(c.endpoints.Status, jobIDPlaceholder, escaped)
	}
	return strings.TrimSuffix(c.endpoints.Status, "/") + "/" + escaped
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.Path, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the "error" field from a JSON error body, if any.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(firstNonEmpty(payload.Error, payload.Message))
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", apiBase)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
