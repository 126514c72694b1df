// Package ui provides the reel terminal interface, built on Bubble Tea.
//
// The interface runs in one backend mode for its lifetime:
//
//   - Video: a prompt form with model, duration and resolution selectors.
//     Submitting starts a job that jobs.Client polls in the background; the
//     progress view follows the shared state.Store and the result view offers
//     to download the finished video.
//   - Chat: a transcript viewport with a message editor. Messages are sent
//     synchronously and the backend keeps the conversation history.
//   - Image: a prompt form with steps, guidance and size selectors. Images
//     are generated synchronously and saved into the output directory.
//
// A log view (ctrl+o) tails reel's own log file, and the header shows backend
// readiness as reported by the health poller.
//
// Poll callbacks never touch the model directly. They write into the
// state.Store, and the model picks up a snapshot on every tick, so all
// rendering happens on the Bubble Tea goroutine.
package ui
