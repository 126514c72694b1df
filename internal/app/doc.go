// Package app is the composition root for reel.
//
// # Overview
//
// Run loads configuration, picks a logger, builds the backend client and
// then either performs one headless request or starts the TUI. All domain
// behaviour lives in the packages it wires together.
//
// # Startup
//
//  1. Load dotenv files (explicit -env file, else ./.env when present)
//  2. Load ~/.config/reel/config.toml and apply REEL_* environment overrides
//  3. Apply command-line overrides (api base, mode, poll interval)
//  4. Create the logger: stderr for headless runs, the log file for the TUI
//  5. Create the genapi.Client with the configured endpoints
//  6. Run headless, or wire jobs.Client, state.Store and the health poller
//     into ui.Run
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> loadConfig()        dotenv + TOML + flags
//	       ├─────> newLogger()         tint or JSON via logging
//	       ├─────> newClient()         genapi HTTP client
//	       ├─────> headless.run()      -prompt given: one request, then exit
//	       ├─────> jobs.New()          submit/poll lifecycle
//	       ├─────> StartPoller()       backend health into the store
//	       └─────> ui.Run()            TUI (blocks)
//
// Job callbacks and the health poller both write into state.Store. The UI
// reads snapshots on its own tick, so no callback touches the terminal.
//
// # Health Polling
//
// StartPoller queries the backend health endpoint every few seconds. After a
// failure the next check backs off exponentially up to a fixed cap and the
// failure is recorded so the header can show the backend as offline. A
// success resets the backoff.
//
// # Errors
//
// Configuration, logger and client construction errors are returned from
// Run. In headless mode a failed or cancelled job is also returned so the
// command exits non-zero. In the TUI every job error is shown on screen and
// logged, never returned.
package app
