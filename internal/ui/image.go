package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/reel/internal/genapi"
	"github.com/five82/reel/internal/output"
	"github.com/five82/reel/internal/prefs"
)

const (
	imageFieldPrompt = iota
	imageFieldSteps
	imageFieldGuidance
	imageFieldSize
	imageFieldCount
)

const (
	imageStepIncrement     = 5
	imageGuidanceIncrement = 0.5
	imageMaxSteps          = 100
	imageMaxGuidance       = 30.0
)

var imageSizes = []string{"512x512", "768x768", "512x768", "768x512", "1024x1024"}

// imageForm holds the image prompt form and the last saved image.
type imageForm struct {
	prompt   textarea.Model
	focus    int
	steps    int
	guidance float64
	size     int
	busy     bool
	err      string
	lastPath string
}

func newImageForm(p prefs.ImagePrefs) imageForm {
	f := imageForm{
		prompt:   newPrompt("A watercolor lighthouse on a stormy coast...", genapi.ImagePromptLimits.Max, promptHeight),
		steps:    clampInt(p.Steps, 1, imageMaxSteps),
		guidance: clampFloat(p.Guidance, imageGuidanceIncrement, imageMaxGuidance),
	}
	for i, s := range imageSizes {
		if s == p.Size {
			f.size = i
		}
	}
	f.prompt.Focus()
	return f
}

// request builds the image request from the form.
func (f imageForm) request() genapi.ImageRequest {
	w, h, err := genapi.ParseSize(imageSizes[f.size])
	if err != nil {
		w, h = 512, 512
	}
	return genapi.ImageRequest{
		Prompt:        strings.TrimSpace(f.prompt.Value()),
		Steps:         f.steps,
		GuidanceScale: f.guidance,
		Width:         w,
		Height:        h,
	}
}

// adjust changes the focused selector by delta increments.
func (f *imageForm) adjust(delta int) {
	switch f.focus {
	case imageFieldSteps:
		f.steps = clampInt(f.steps+delta*imageStepIncrement, 1, imageMaxSteps)
	case imageFieldGuidance:
		f.guidance = clampFloat(f.guidance+float64(delta)*imageGuidanceIncrement, imageGuidanceIncrement, imageMaxGuidance)
	case imageFieldSize:
		f.size = cycleIndex(f.size, delta, len(imageSizes))
	}
}

func (f *imageForm) moveFocus(delta int) {
	f.focus = cycleIndex(f.focus, delta, imageFieldCount)
	focusPrompt(&f.prompt, f.focus == imageFieldPrompt)
}

// handleImageFormKey processes keyboard input for the image form.
func (m Model) handleImageFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.generateImage()
	case key.Matches(msg, m.keys.NextField):
		m.image.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.image.moveFocus(-1)
		return m, nil
	}

	if m.image.focus != imageFieldPrompt {
		switch {
		case key.Matches(msg, m.keys.OptionPrev):
			m.image.adjust(-1)
		case key.Matches(msg, m.keys.OptionNext):
			m.image.adjust(1)
		case msg.String() == "enter":
			return m.generateImage()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.image.prompt, cmd = m.image.prompt.Update(msg)
	return m, cmd
}

// generateImage validates the form and runs the synchronous generation.
func (m Model) generateImage() (tea.Model, tea.Cmd) {
	if m.image.busy {
		return m, nil
	}
	req := m.image.request()
	if err := req.Validate(); err != nil {
		m.image.err = err.Error()
		return m, nil
	}
	if m.client == nil {
		m.image.err = "No backend configured."
		return m, nil
	}

	m.image.busy = true
	m.image.err = ""
	m.prefs.Image = prefs.ImagePrefs{Steps: req.Steps, Guidance: req.GuidanceScale, Size: imageSizes[m.image.size]}
	m.savePrefs()
	m.logger.Info("generating image",
		slog.Int("steps", req.Steps),
		slog.Float64("guidance", req.GuidanceScale),
		slog.Int("width", req.Width),
		slog.Int("height", req.Height),
	)
	return m, generateImageCmd(m.ctx, m.client, m.generateTimeout(), m.config.OutputDir, req)
}

func (m *Model) handleImageSaved(msg imageSavedMsg) {
	m.image.busy = false
	if msg.err != nil {
		m.image.err = msg.err.Error()
		if msg.remote {
			m.image.err = chatErrorText(msg.err, "Image model not loaded")
		}
		m.logger.Warn("image generation failed", slog.String("error", msg.err.Error()))
		return
	}
	m.image.lastPath = msg.path
	m.logger.Info("image saved", slog.String("path", msg.path))
}

// renderImageForm renders the image prompt form.
func (m Model) renderImageForm() string {
	focusBg := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(focusBg)
	bg := NewBgStyle(focusBg)
	f := m.image

	var lines []string
	lines = append(lines, bg.Render("Describe the image you want to generate", styles.MutedText))
	lines = append(lines, strings.Split(f.prompt.View(), "\n")...)
	lines = append(lines,
		m.renderCounter(f.prompt.Value(), genapi.ImagePromptLimits, bg, styles),
		"",
		m.renderOption("Steps", fmt.Sprintf("%d", f.steps), f.focus == imageFieldSteps, bg, styles),
		m.renderOption("Guidance", fmt.Sprintf("%.1f", f.guidance), f.focus == imageFieldGuidance, bg, styles),
		m.renderOption("Size", imageSizes[f.size], f.focus == imageFieldSize, bg, styles),
	)
	if f.busy {
		lines = append(lines, "", m.spinner.View()+bg.Space()+bg.Render("Generating image...", styles.InfoText))
	}

	return m.renderTitledBox("Text to Image", strings.Join(lines, "\n"), m.contentWidth(), len(lines)+2, true)
}

type imageSavedMsg struct {
	path   string
	err    error
	remote bool // err came from the backend call
}

func generateImageCmd(ctx context.Context, client *genapi.Client, timeout time.Duration, dir string, req genapi.ImageRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withOptionalTimeout(ctx, timeout)
		defer cancel()

		result, err := client.GenerateImage(ctx, req)
		if err != nil {
			return imageSavedMsg{err: err, remote: true}
		}
		mime, data, err := result.Decode()
		if err != nil {
			return imageSavedMsg{err: fmt.Errorf("decode image: %w", err)}
		}
		path, err := output.SaveImage(dir, mime, data, time.Now())
		return imageSavedMsg{path: path, err: err}
	}
}
