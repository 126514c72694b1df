package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/five82/reel/internal/config"
	"github.com/five82/reel/internal/genapi"
	"github.com/five82/reel/internal/jobs"
	"github.com/five82/reel/internal/logging"
	"github.com/five82/reel/internal/prefs"
	"github.com/five82/reel/internal/state"
	"github.com/five82/reel/internal/ui"
)

// Options configure the reel application. Zero values fall back to the
// config file, environment and built-in defaults.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/reel/prefs.toml
	EnvFile    string // empty loads ./.env when present
	APIBase    string
	Mode       string
	PollEvery  time.Duration

	// A non-empty Prompt runs one request headless instead of the TUI.
	Prompt     string
	Model      string
	Duration   int
	Resolution string
	Steps      int
	Guidance   float64
	Size       string

	Stdout io.Writer // headless output; defaults to os.Stdout
}

// Headless reports whether opts select a single non-interactive request.
func (o Options) Headless() bool {
	return strings.TrimSpace(o.Prompt) != ""
}

// Run boots reel until the context is cancelled, the user quits the TUI, or
// a headless request finishes.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, opts.Headless())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}
	logger.Info("reel starting",
		slog.String("mode", string(cfg.Mode)),
		slog.String("api_base", client.BaseURL()),
		slog.Duration("poll_interval", cfg.PollInterval),
	)

	if opts.Headless() {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		return headless{cfg: cfg, client: client, opts: opts, out: out, logger: logger.Logger}.run(ctx)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	store := &state.Store{}
	jobClient := jobs.New(client,
		jobs.WithInterval(cfg.PollInterval),
		jobs.WithRequestTimeout(cfg.RequestTimeout),
		jobs.WithLogger(logger.Logger),
	)
	defer jobClient.Cancel()

	// Start background health poller
	StartPoller(ctx, store, client, defaultHealthInterval, logger.Logger)

	// Do initial refresh to populate store before UI starts
	_ = refresh(ctx, store, client, logger.Logger)

	return ui.Run(ui.Options{
		Context:      ctx,
		Mode:         cfg.Mode,
		Client:       client,
		Jobs:         jobClient,
		Store:        store,
		Conversation: &state.Conversation{},
		Config:       &cfg,
		Prefs:        userPrefs,
		PrefsPath:    opts.PrefsPath,
		Logger:       logger.Logger,
	})
}

func loadConfig(opts Options) (config.Config, error) {
	var envFiles []string
	if strings.TrimSpace(opts.EnvFile) != "" {
		envFiles = append(envFiles, opts.EnvFile)
	}
	if err := config.LoadEnv(envFiles...); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if v := strings.TrimSpace(opts.APIBase); v != "" {
		cfg.APIBase = v
	}
	if strings.TrimSpace(opts.Mode) != "" {
		mode, err := config.ParseMode(opts.Mode)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Mode = mode
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}
	return cfg, nil
}

// newLogger writes to stderr for headless runs and to the log file for the
// TUI so records never land on the alternate screen.
func newLogger(cfg config.Config, headless bool) (*logging.Logger, error) {
	lc := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stderr"}
	if !headless {
		lc.Output = cfg.LogPath()
	}
	return logging.New(lc)
}

func newClient(cfg config.Config) (*genapi.Client, error) {
	return genapi.NewClient(cfg.APIBase, genapi.WithEndpoints(genapi.Endpoints{
		Generate: cfg.Endpoints.Generate,
		Status:   cfg.Endpoints.Status,
		Health:   cfg.Endpoints.Health,
		Chat:     cfg.Endpoints.Chat,
		Clear:    cfg.Endpoints.Clear,
		Image:    cfg.Endpoints.Image,
	}))
}
