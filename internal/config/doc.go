// Package config loads reel's runtime configuration.
//
// # Resolution Order
//
// Values are resolved from lowest to highest precedence:
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/reel/config.toml)
//  3. REEL_* environment variables, which may come from a .env file via LoadEnv
//  4. Command-line flags, applied by cmd/reel after Load returns
//
// A missing config file is not an error. Blank values in the file or the
// environment fall through to the next lower layer.
//
// # TOML Format
//
//	api_base = "127.0.0.1:5000"
//	mode = "video"            # video, chat or image
//	poll_interval = "2s"
//	request_timeout = "10s"
//	generate_timeout = "5m"   # chat and image requests
//	output_dir = "~/Videos/reel"
//	log_dir = "~/.local/share/reel/logs"
//	log_level = "info"
//	log_format = "console"    # console or json
//
//	[endpoints]
//	generate = "/generate"
//	status = "/status/{job_id}"
//	health = "/status"
//	chat = "/chat"
//	clear = "/clear"
//	image = "/generate"
//
// Durations use Go syntax. Paths support ~ expansion and are made absolute.
//
// # Environment
//
// Every top-level key has an upper-case REEL_ counterpart, for example
// REEL_API_BASE or REEL_POLL_INTERVAL. Endpoint paths are file-only.
package config
