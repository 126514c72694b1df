package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBase {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBase)
	}

	u, err = parseBaseURL("https://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
}

func TestClient_CreateAndFetchJob(t *testing.T) {
	t.Parallel()

	var gotBody VideoRequest
	var gotContentType, gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/generate":
			gotContentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "abc"})
		case r.Method == http.MethodGet && r.URL.Path == "/status/abc":
			_, _ = w.Write([]byte(`{"status":"completed","progress":100,"message":"done","download_url":"/download/abc","model":"zeroscope"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	id, err := c.CreateJob(ctx, VideoRequest{Prompt: "a red fox in snow", Model: "zeroscope", Duration: 3, Resolution: "576x320"})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	if id != "abc" {
		t.Fatalf("job id = %q, want abc", id)
	}
	if gotBody.Prompt != "a red fox in snow" || gotBody.Duration != 3 {
		t.Fatalf("request body = %#v, want prompt and duration passed through", gotBody)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}

	status, err := c.FetchJob(ctx, "abc")
	if err != nil {
		t.Fatalf("FetchJob returned error: %v", err)
	}
	if status.Status != StatusCompleted || status.Progress != 100 {
		t.Fatalf("status = %#v, want completed/100", status)
	}
	if status.JobID != "abc" {
		t.Fatalf("JobID = %q, want it filled from the request", status.JobID)
	}
	if status.ResultURL() != "/download/abc" {
		t.Fatalf("ResultURL = %q, want /download/abc", status.ResultURL())
	}
	if !strings.Contains(string(status.Raw), `"model":"zeroscope"`) {
		t.Fatalf("Raw = %s, want original body retained", status.Raw)
	}
	if !strings.HasPrefix(gotUserAgent, "reel/") {
		t.Fatalf("User-Agent = %q, want reel/*", gotUserAgent)
	}
}

func TestClient_FetchJobNormalizesErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","progress":20,"message":"CUDA out of memory"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	status, err := c.FetchJob(context.Background(), "x")
	if err != nil {
		t.Fatalf("FetchJob returned error: %v", err)
	}
	if status.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", status.Status)
	}
	if status.FailureMessage() != "CUDA out of memory" {
		t.Fatalf("FailureMessage = %q", status.FailureMessage())
	}
}

func TestClient_StatusPathTemplates(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", WithEndpoints(Endpoints{Status: "/api/jobs"}))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if got := c.statusPath("a b"); got != "/api/jobs/a%20b" {
		t.Fatalf("statusPath = %q, want /api/jobs/a%%20b", got)
	}
	if c.endpoints.Generate != "/generate" {
		t.Fatalf("Generate = %q, want default kept", c.endpoints.Generate)
	}

	c, _ = NewClient("127.0.0.1:1", WithEndpoints(Endpoints{Status: "/v1/{job_id}/state"}))
	if got := c.statusPath("j1"); got != "/v1/j1/state" {
		t.Fatalf("statusPath = %q, want /v1/j1/state", got)
	}
}

func TestClient_ErrorBodiesAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/generate":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"prompt too short"}`))
		case "/status/bad":
			_, _ = w.Write([]byte("{not-json"))
		case "/status/gone":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.CreateJob(context.Background(), VideoRequest{Prompt: "x"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("CreateJob error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusBadRequest || se.Message != "prompt too short" {
		t.Fatalf("StatusError = %#v, want 400 prompt too short", se)
	}

	_, err = c.FetchJob(context.Background(), "bad")
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchJob error = %v, want decode response error", err)
	}

	_, err = c.FetchJob(context.Background(), "gone")
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchJob error = %v, want status 500 error", err)
	}

	if _, err := c.FetchJob(context.Background(), "  "); err == nil {
		t.Fatalf("FetchJob with empty id returned nil error")
	}
}

func TestClient_ChatClearAndHealth(t *testing.T) {
	t.Parallel()

	var cleared bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/chat":
			var req ChatRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Message == "boom" {
				_, _ = w.Write([]byte(`{"success":false,"error":"Chatbot is busy"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(ChatReply{Success: true, Response: "echo: " + req.Message, Timestamp: "2025-01-02T03:04:05.123456"})
		case "/clear":
			cleared = true
			_, _ = w.Write([]byte(`{"success":true,"message":"Conversation history cleared"}`))
		case "/status":
			_, _ = w.Write([]byte(`{"chatbot_loaded":true,"model_name":"dialo","conversation_length":4}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	reply, err := c.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply.Response != "echo: hi" {
		t.Fatalf("Response = %q, want echo: hi", reply.Response)
	}
	if reply.ParsedTimestamp().Year() != 2025 {
		t.Fatalf("ParsedTimestamp = %v, want 2025", reply.ParsedTimestamp())
	}

	_, err = c.Chat(context.Background(), "boom")
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "Chatbot is busy" {
		t.Fatalf("Chat error = %v, want StatusError with backend message", err)
	}

	if err := c.ClearHistory(context.Background()); err != nil {
		t.Fatalf("ClearHistory returned error: %v", err)
	}
	if !cleared {
		t.Fatalf("clear endpoint not called")
	}

	health, err := c.FetchHealth(context.Background())
	if err != nil {
		t.Fatalf("FetchHealth returned error: %v", err)
	}
	if !health.Ready() || health.ModelName != "dialo" || health.ConversationLength != 4 {
		t.Fatalf("health = %#v, want ready dialo/4", health)
	}
}

func TestClient_GenerateImageAndDownload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generate":
			var req ImageRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Width != 768 || req.Steps != 30 {
				http.Error(w, `{"error":"bad params"}`, http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"success":true,"image":"data:image/png;base64,aGVsbG8=","prompt":"p"}`))
		case "/files/out.mp4":
			_, _ = w.Write([]byte("video-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	img, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p", Steps: 30, GuidanceScale: 7.5, Width: 768, Height: 512})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	mime, data, err := img.Decode()
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if mime != "image/png" || string(data) != "hello" {
		t.Fatalf("Decode = %q/%q, want image/png/hello", mime, data)
	}

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "/files/out.mp4", &buf)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if n != int64(len("video-bytes")) || buf.String() != "video-bytes" {
		t.Fatalf("Download wrote %d bytes %q", n, buf.String())
	}

	_, err = c.Download(context.Background(), "/files/missing", &buf)
	if err == nil || !strings.Contains(err.Error(), "returned status 404") {
		t.Fatalf("Download error = %v, want 404", err)
	}
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	if _, err := c.CreateJob(context.Background(), nil); err == nil {
		t.Fatalf("CreateJob on nil client returned nil error")
	}
	if _, err := c.FetchJob(context.Background(), "x"); err == nil {
		t.Fatalf("FetchJob on nil client returned nil error")
	}
}
