package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Mode selects which backend reel drives.
type Mode string

const (
	ModeVideo Mode = "video"
	ModeChat  Mode = "chat"
	ModeImage Mode = "image"
)

// ParseMode validates a mode name. Empty input yields ModeVideo.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeVideo:
		return ModeVideo, nil
	case ModeChat:
		return ModeChat, nil
	case ModeImage:
		return ModeImage, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want video, chat or image)", s)
	}
}

// Endpoints overrides backend paths. Empty values keep the client defaults.
type Endpoints struct {
	Generate string `toml:"generate"`
	Status   string `toml:"status"`
	Health   string `toml:"health"`
	Chat     string `toml:"chat"`
	Clear    string `toml:"clear"`
	Image    string `toml:"image"`
}

// Config is reel's resolved runtime configuration.
type Config struct {
	APIBase         string
	Mode            Mode
	PollInterval    time.Duration
	RequestTimeout  time.Duration
	GenerateTimeout time.Duration
	OutputDir       string
	LogDir          string
	LogLevel        string
	LogFormat       string
	Endpoints       Endpoints
}

const (
	defaultConfigPath      = "~/.config/reel/config.toml"
	defaultAPIBase         = "127.0.0.1:5000"
	defaultPollInterval    = 2 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultGenerateTimeout = 5 * time.Minute
	defaultOutputDir       = "~/Videos/reel"
	defaultLogDir          = "~/.local/share/reel/logs"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	logFileName            = "reel.log"

	envPrefix = "REEL_"
)

type rawConfig struct {
	APIBase         string    `toml:"api_base"`
	Mode            string    `toml:"mode"`
	PollInterval    string    `toml:"poll_interval"`
	RequestTimeout  string    `toml:"request_timeout"`
	GenerateTimeout string    `toml:"generate_timeout"`
	OutputDir       string    `toml:"output_dir"`
	LogDir          string    `toml:"log_dir"`
	LogLevel        string    `toml:"log_level"`
	LogFormat       string    `toml:"log_format"`
	Endpoints       Endpoints `toml:"endpoints"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		APIBase:         defaultAPIBase,
		Mode:            ModeVideo,
		PollInterval:    defaultPollInterval,
		RequestTimeout:  defaultRequestTimeout,
		GenerateTimeout: defaultGenerateTimeout,
		OutputDir:       mustExpand(defaultOutputDir),
		LogDir:          mustExpand(defaultLogDir),
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
	}
}

// LoadEnv reads KEY=value pairs from the given .env files (default ".env")
// into the process environment. Missing files are ignored; variables already
// set are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the TOML config at path (default ~/.config/reel/config.toml),
// falling back to defaults when it is missing, then applies REEL_* overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	applyEnv(&raw)
	return resolve(raw)
}

func applyEnv(raw *rawConfig) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"API_BASE", &raw.APIBase},
		{"MODE", &raw.Mode},
		{"POLL_INTERVAL", &raw.PollInterval},
		{"REQUEST_TIMEOUT", &raw.RequestTimeout},
		{"GENERATE_TIMEOUT", &raw.GenerateTimeout},
		{"OUTPUT_DIR", &raw.OutputDir},
		{"LOG_DIR", &raw.LogDir},
		{"LOG_LEVEL", &raw.LogLevel},
		{"LOG_FORMAT", &raw.LogFormat},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(envPrefix + o.key); ok && strings.TrimSpace(v) != "" {
			*o.dst = v
		}
	}
}

func resolve(raw rawConfig) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}

	mode, err := ParseMode(raw.Mode)
	if err != nil {
		return Config{}, err
	}
	cfg.Mode = mode

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"generate_timeout", raw.GenerateTimeout, &cfg.GenerateTimeout},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.raw)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		if parsed < 0 {
			return Config{}, fmt.Errorf("parse %s: negative duration %s", d.name, v)
		}
		*d.dst = parsed
	}
	if cfg.PollInterval == 0 {
		return Config{}, fmt.Errorf("parse poll_interval: must be positive")
	}

	if v := strings.TrimSpace(raw.OutputDir); v != "" {
		cfg.OutputDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogFormat)); v != "" {
		cfg.LogFormat = v
	}

	cfg.Endpoints = Endpoints{
		Generate: strings.TrimSpace(raw.Endpoints.Generate),
		Status:   strings.TrimSpace(raw.Endpoints.Status),
		Health:   strings.TrimSpace(raw.Endpoints.Health),
		Chat:     strings.TrimSpace(raw.Endpoints.Chat),
		Clear:    strings.TrimSpace(raw.Endpoints.Clear),
		Image:    strings.TrimSpace(raw.Endpoints.Image),
	}
	return cfg, nil
}

// LogPath returns the path to reel's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
