package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns the whole file.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// LevelOf extracts the record level from a tint console line
// ("2025-10-08 21:01:05 WRN msg") or a slog JSON line ({"level":"WARN"}).
func LevelOf(line string) (slog.Level, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, false
	}
	if strings.HasPrefix(trimmed, "{") {
		var rec struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal([]byte(trimmed), &rec); err != nil || rec.Level == "" {
			return 0, false
		}
		return parseLevel(rec.Level)
	}
	for _, field := range strings.Fields(trimmed) {
		if lvl, ok := parseLevel(field); ok {
			return lvl, true
		}
	}
	return 0, false
}

// Filter keeps lines at or above min. Lines without a recognizable level
// (continuations, panics) follow the decision made for the preceding line.
func Filter(lines []string, min slog.Level) []string {
	out := make([]string, 0, len(lines))
	keep := false
	for _, line := range lines {
		if lvl, ok := LevelOf(line); ok {
			keep = lvl >= min
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}

func parseLevel(s string) (slog.Level, bool) {
	s = strings.ToUpper(s)
	base := s
	if i := strings.IndexAny(s, "+-"); i > 0 {
		base = s[:i]
	}
	switch base {
	case "DBG", "DEBUG":
		return slog.LevelDebug, true
	case "INF", "INFO":
		return slog.LevelInfo, true
	case "WRN", "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERR", "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}
