package genapi

import (
	"testing"
)

func TestStatusNormalize(t *testing.T) {
	tests := []struct {
		in   Status
		want Status
	}{
		{"", StatusPending},
		{"pending", StatusPending},
		{" Running ", StatusRunning},
		{"processing", StatusRunning},
		{"completed", StatusCompleted},
		{"error", StatusFailed},
		{"FAILED", StatusFailed},
		{"warming_up", "warming_up"},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !Status("error").Terminal() || !StatusCompleted.Terminal() {
		t.Fatalf("error/completed should be terminal")
	}
	if StatusRunning.Terminal() || Status("warming_up").Terminal() {
		t.Fatalf("running/unknown should not be terminal")
	}
}

func TestJobStatusHelpers(t *testing.T) {
	j := JobStatus{Result: " url ", DownloadURL: "/download/x"}
	if j.ResultURL() != "url" {
		t.Fatalf("ResultURL = %q, want result field preferred", j.ResultURL())
	}
	j = JobStatus{DownloadURL: "/download/x"}
	if j.ResultURL() != "/download/x" {
		t.Fatalf("ResultURL = %q, want download_url fallback", j.ResultURL())
	}
	if (JobStatus{}).FailureMessage() != "Video generation failed" {
		t.Fatalf("FailureMessage default mismatch")
	}
	if (JobStatus{Error: "boom", Message: "other"}).FailureMessage() != "boom" {
		t.Fatalf("FailureMessage should prefer error field")
	}
	if (JobStatus{Progress: 140}).ClampedProgress() != 100 || (JobStatus{Progress: -3}).ClampedProgress() != 0 {
		t.Fatalf("ClampedProgress out of range")
	}
}

func TestHealthReady(t *testing.T) {
	yes, no := true, false
	if (Health{}).Ready() {
		t.Fatalf("empty health should not be ready")
	}
	if !(Health{ModelLoaded: &yes}).Ready() {
		t.Fatalf("model_loaded=true should be ready")
	}
	if (Health{ChatbotLoaded: &no}).Ready() {
		t.Fatalf("chatbot_loaded=false should not be ready")
	}
}

func TestDecodeDataURI(t *testing.T) {
	mime, data, err := DecodeDataURI("data:image/png;base64,aGk=")
	if err != nil {
		t.Fatalf("DecodeDataURI returned error: %v", err)
	}
	if mime != "image/png" || string(data) != "hi" {
		t.Fatalf("DecodeDataURI = %q/%q", mime, data)
	}
	for _, bad := range []string{"", "http://x", "data:image/png;base64", "data:text/plain,hi", "data:image/png;base64,!!"} {
		if _, _, err := DecodeDataURI(bad); err == nil {
			t.Fatalf("DecodeDataURI(%q) returned nil error", bad)
		}
	}
}

func TestModelCatalog(t *testing.T) {
	if ModelDisplayName("zeroscope") != "Zeroscope v2 - High Quality" {
		t.Fatalf("zeroscope display name mismatch")
	}
	if ModelDisplayName("custom-model") != "custom-model" {
		t.Fatalf("unknown model should fall back to id")
	}
	m, ok := LookupVideoModel(" ModelScope ")
	if !ok || m.MaxDuration != 5 || len(m.Resolutions) != 2 {
		t.Fatalf("LookupVideoModel = %#v, %v", m, ok)
	}
	models := VideoModels()
	models[0].Name = "mutated"
	if VideoModels()[0].Name == "mutated" {
		t.Fatalf("VideoModels should return a copy")
	}
}

func TestEstimateRange(t *testing.T) {
	tests := []struct {
		duration   int
		resolution string
		model      string
		want       string
	}{
		// 120 + 90 + 60 + 60 = 330s
		{3, "576x320", "zeroscope", "~5-8 minutes"},
		// 120 + 150 + 120 + 60 = 450s
		{5, "1024x576", "zeroscope", "~7-11 minutes"},
		// 120 + 60 = 180s
		{2, "256x256", "modelscope", "~3-4 minutes"},
	}
	for _, tt := range tests {
		if got := EstimateRange(tt.duration, tt.resolution, tt.model); got != tt.want {
			t.Fatalf("EstimateRange(%d, %q, %q) = %q, want %q", tt.duration, tt.resolution, tt.model, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := ParseSize("768x512")
	if err != nil || w != 768 || h != 512 {
		t.Fatalf("ParseSize = %d,%d,%v", w, h, err)
	}
	if _, _, err := ParseSize("0x10"); err == nil {
		t.Fatalf("ParseSize(0x10) returned nil error")
	}
	if _, _, err := ParseSize("big"); err == nil {
		t.Fatalf("ParseSize(big) returned nil error")
	}
}

func TestVideoRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  VideoRequest
		want error
		ok   bool
	}{
		{"empty", VideoRequest{Prompt: "   ", Model: "zeroscope", Duration: 3, Resolution: "576x320"}, ErrEmptyVideoPrompt, false},
		{"short", VideoRequest{Prompt: "a cat", Model: "zeroscope", Duration: 3, Resolution: "576x320"}, ErrShortVideoPrompt, false},
		{"valid", VideoRequest{Prompt: "a cat surfing a wave", Model: "zeroscope", Duration: 3, Resolution: "576x320"}, nil, true},
		{"too long duration", VideoRequest{Prompt: "a cat surfing a wave", Model: "modelscope", Duration: 6, Resolution: "256x256"}, nil, false},
		{"wrong resolution", VideoRequest{Prompt: "a cat surfing a wave", Model: "modelscope", Duration: 2, Resolution: "1024x576"}, nil, false},
		{"custom model", VideoRequest{Prompt: "a cat surfing a wave", Model: "my-model", Duration: 9, Resolution: "64x64"}, nil, true},
	}
	for _, tt := range tests {
		err := tt.req.Validate()
		if tt.ok {
			if err != nil {
				t.Fatalf("%s: Validate returned %v, want nil", tt.name, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%s: Validate returned nil, want error", tt.name)
		}
		if tt.want != nil && err != tt.want {
			t.Fatalf("%s: Validate = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestImageRequestValidate(t *testing.T) {
	good := ImageRequest{Prompt: "a red fox", Steps: 20, GuidanceScale: 7.5, Width: 512, Height: 512}
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate returned %v", err)
	}
	empty := good
	empty.Prompt = " "
	if err := empty.Validate(); err != ErrEmptyImagePrompt {
		t.Fatalf("Validate(empty) = %v, want %v", err, ErrEmptyImagePrompt)
	}
	odd := good
	odd.Width = 500
	if err := odd.Validate(); err == nil {
		t.Fatalf("Validate(width 500) returned nil")
	}
	if err := ValidateMessage("  "); err != ErrEmptyMessage {
		t.Fatalf("ValidateMessage(blank) = %v", err)
	}
}

func TestPromptLimitsLevel(t *testing.T) {
	tests := []struct {
		limits PromptLimits
		n      int
		want   CounterLevel
	}{
		{VideoPromptLimits, 350, CounterNormal},
		{VideoPromptLimits, 351, CounterWarning},
		{VideoPromptLimits, 451, CounterDanger},
		{ChatPromptLimits, 801, CounterWarning},
		{ChatPromptLimits, 901, CounterDanger},
		{ImagePromptLimits, 300, CounterNormal},
		{ImagePromptLimits, 301, CounterWarning},
	}
	for _, tt := range tests {
		if got := tt.limits.Level(tt.n); got != tt.want {
			t.Fatalf("Level(%d) with %#v = %v, want %v", tt.n, tt.limits, got, tt.want)
		}
	}
}
