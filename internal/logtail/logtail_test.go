package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v, want nil, nil", got, err)
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		line string
		want slog.Level
		ok   bool
	}{
		{"2025-10-08 21:01:05 INF job submitted job_id=abc", slog.LevelInfo, true},
		{"2025-10-08 21:01:05 WRN status poll failed", slog.LevelWarn, true},
		{"2025-10-08 21:01:05 ERR+2 boom", slog.LevelError, true},
		{"2025-10-08 21:01:05 DBG job progress progress=40", slog.LevelDebug, true},
		{`{"time":"2025-10-08T21:01:05Z","level":"ERROR","msg":"job failed"}`, slog.LevelError, true},
		{`{"msg":"no level"}`, 0, false},
		{"    goroutine 1 [running]:", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := LevelOf(tt.line)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("LevelOf(%q) = %v, %v, want %v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"2025-10-08 21:01:05 INF job submitted",
		"2025-10-08 21:01:06 WRN status poll failed",
		"    continuation of warning",
		"2025-10-08 21:01:07 DBG job progress",
		"    continuation of debug",
		"2025-10-08 21:01:08 ERR job failed",
	}

	got := Filter(lines, slog.LevelWarn)
	want := []string{
		"2025-10-08 21:01:06 WRN status poll failed",
		"    continuation of warning",
		"2025-10-08 21:01:08 ERR job failed",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}

	if all := Filter(lines, slog.LevelDebug); len(all) != len(lines) {
		t.Fatalf("Filter(debug) kept %d lines, want %d", len(all), len(lines))
	}
}
