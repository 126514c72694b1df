// Package prefs handles reel user preferences persistence.
// Preferences are stored in ~/.config/reel/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for reel. The video and image sections
// remember the last submitted parameters so forms reopen where they left off.
type Prefs struct {
	Theme string     `toml:"theme"`
	Video VideoPrefs `toml:"video"`
	Image ImagePrefs `toml:"image"`
}

// VideoPrefs are the last video form selections.
type VideoPrefs struct {
	Model      string `toml:"model"`
	Duration   int    `toml:"duration"`
	Resolution string `toml:"resolution"`
}

// ImagePrefs are the last image form selections.
type ImagePrefs struct {
	Steps    int     `toml:"steps"`
	Guidance float64 `toml:"guidance"`
	Size     string  `toml:"size"`
}

const (
	defaultPrefsPath  = "~/.config/reel/prefs.toml"
	defaultTheme      = "Nightfox"
	defaultModel      = "zeroscope"
	defaultDuration   = 3
	defaultResolution = "576x320"
	defaultSteps      = 20
	defaultGuidance   = 7.5
	defaultSize       = "512x512"
)

// Default returns preferences used when nothing has been saved.
func Default() Prefs {
	return Prefs{
		Theme: defaultTheme,
		Video: VideoPrefs{Model: defaultModel, Duration: defaultDuration, Resolution: defaultResolution},
		Image: ImagePrefs{Steps: defaultSteps, Guidance: defaultGuidance, Size: defaultSize},
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if
// missing or unreadable. Missing fields keep their defaults.
func Load(path string) (Prefs, error) {
	prefs := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default(), nil // Graceful degradation
	}

	return prefs.normalized(), nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func (p Prefs) normalized() Prefs {
	def := Default()
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = def.Theme
	}
	if strings.TrimSpace(p.Video.Model) == "" {
		p.Video.Model = def.Video.Model
	}
	if p.Video.Duration <= 0 {
		p.Video.Duration = def.Video.Duration
	}
	if strings.TrimSpace(p.Video.Resolution) == "" {
		p.Video.Resolution = def.Video.Resolution
	}
	if p.Image.Steps <= 0 {
		p.Image.Steps = def.Image.Steps
	}
	if p.Image.Guidance <= 0 {
		p.Image.Guidance = def.Image.Guidance
	}
	if strings.TrimSpace(p.Image.Size) == "" {
		p.Image.Size = def.Image.Size
	}
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
