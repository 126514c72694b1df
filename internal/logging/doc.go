// Package logging builds reel's slog loggers: tint for console output, the
// slog JSON handler for machine-readable logs, and a plain-text file sink for
// the TUI so log lines never corrupt the terminal.
package logging
