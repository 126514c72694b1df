package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/reel/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (default ~/.config/reel/config.toml)")
	prefsPath := flag.String("prefs", "", "preferences file path (default ~/.config/reel/prefs.toml)")
	envFile := flag.String("env", "", "dotenv file to load (default ./.env when present)")
	apiBase := flag.String("api", "", "backend address, e.g. 127.0.0.1:5000")
	mode := flag.String("mode", "", "backend mode: video, chat or image")
	poll := flag.Duration("poll", 0, "job status poll interval (default 2s)")

	prompt := flag.String("prompt", "", "run a single request without the TUI")
	model := flag.String("model", "", "video model id (headless)")
	duration := flag.Int("duration", 0, "video length in seconds (headless)")
	resolution := flag.String("resolution", "", "video resolution, e.g. 576x320 (headless)")
	steps := flag.Int("steps", 0, "image inference steps (headless)")
	guidance := flag.Float64("guidance", 0, "image guidance scale (headless)")
	size := flag.String("size", "", "image size, e.g. 512x512 (headless)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		EnvFile:    *envFile,
		APIBase:    *apiBase,
		Mode:       *mode,
		Prompt:     *prompt,
		Model:      *model,
		Duration:   *duration,
		Resolution: *resolution,
		Steps:      *steps,
		Guidance:   *guidance,
		Size:       *size,
	}
	if p := *poll; p > 0 {
		opts.PollEvery = p
	} else if p < 0 {
		fmt.Fprintf(os.Stderr, "reel: -poll must be positive, got %s\n", p)
		return 2
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "reel: %v\n", err)
		return 1
	}
	return 0
}
