package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config controls logger construction.
type Config struct {
	Level        string // debug, info, warn, error
	Format       string // console, json
	Output       string // stdout, stderr, or a file path
	EnableSource bool
	TimeFormat   string // console only
	NoColor      bool   // console only; forced for file output
}

// Logger pairs a slog.Logger with the file it writes to, if any.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New builds a logger from cfg. File outputs are opened in append mode and
// their parent directory is created.
func New(cfg Config) (*Logger, error) {
	var (
		writer  io.Writer
		file    *os.File
		noColor = cfg.NoColor
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	default:
		path := cfg.Output
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writer, file, noColor = f, f, true
	}

	return &Logger{Logger: slog.New(newHandler(writer, cfg, noColor)), file: file}, nil
}

// NewWriter builds a logger that writes to w. Used by tests and by callers
// that manage their own sink.
func NewWriter(w io.Writer, cfg Config) *Logger {
	return &Logger{Logger: slog.New(newHandler(w, cfg, cfg.NoColor))}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func newHandler(w io.Writer, cfg Config, noColor bool) slog.Handler {
	level := ParseLevel(cfg.Level)
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: cfg.EnableSource})
	default:
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = time.DateTime
		}
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  cfg.EnableSource,
			TimeFormat: timeFormat,
			NoColor:    noColor,
		})
	}
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
