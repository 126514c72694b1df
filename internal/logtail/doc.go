// Package logtail reads the tail of reel's log file for the logs view.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries while scanning the file once,
// so memory stays O(maxLines) regardless of file size. Lines come back in
// chronological order. A missing file yields nil, nil.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// # Levels
//
// LevelOf understands both formats produced by internal/logging: tint
// console lines ("2025-10-08 21:01:05 WRN status poll failed") and slog JSON
// records. Filter drops lines below a minimum level; unlevelled continuation
// lines inherit the decision of the line above them.
//
// Styling is left to the UI.
package logtail
