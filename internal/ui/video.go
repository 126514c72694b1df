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
	"github.com/five82/reel/internal/jobs"
	"github.com/five82/reel/internal/output"
	"github.com/five82/reel/internal/prefs"
	"github.com/five82/reel/internal/state"
)

const (
	videoFieldPrompt = iota
	videoFieldModel
	videoFieldDuration
	videoFieldResolution
	videoFieldCount
)

// videoForm holds the video prompt form and the download state of the
// finished job.
type videoForm struct {
	prompt     textarea.Model
	focus      int
	models     []genapi.VideoModel
	model      int
	duration   int
	resolution int
	err        string

	submission int // incremented per submit; stale replies are dropped

	saving    bool
	savedPath string
	saveErr   string
}

func newVideoForm(p prefs.VideoPrefs) videoForm {
	f := videoForm{
		prompt:   newPrompt("A cat walking through a field of sunflowers at sunset...", genapi.VideoPromptLimits.Max, promptHeight),
		models:   genapi.VideoModels(),
		duration: p.Duration,
	}
	for i, vm := range f.models {
		if vm.ID == strings.ToLower(strings.TrimSpace(p.Model)) {
			f.model = i
		}
	}
	f.normalize()
	for i, res := range f.current().Resolutions {
		if res == p.Resolution {
			f.resolution = i
		}
	}
	f.prompt.Focus()
	return f
}

func (f *videoForm) current() genapi.VideoModel {
	if len(f.models) == 0 {
		return genapi.VideoModel{ID: "zeroscope", MaxDuration: 6, Resolutions: []string{"576x320"}}
	}
	return f.models[f.model]
}

// normalize keeps duration and resolution valid for the selected model.
func (f *videoForm) normalize() {
	vm := f.current()
	f.duration = clampInt(f.duration, 1, maxInt(vm.MaxDuration, 1))
	if f.resolution >= len(vm.Resolutions) {
		f.resolution = 0
	}
}

// request builds the creation payload from the form.
func (f videoForm) request() genapi.VideoRequest {
	vm := f.current()
	var res string
	if len(vm.Resolutions) > 0 {
		res = vm.Resolutions[f.resolution]
	}
	return genapi.VideoRequest{
		Prompt:     strings.TrimSpace(f.prompt.Value()),
		Model:      vm.ID,
		Duration:   f.duration,
		Resolution: res,
	}
}

// adjust changes the focused selector by delta.
func (f *videoForm) adjust(delta int) {
	switch f.focus {
	case videoFieldModel:
		f.model = cycleIndex(f.model, delta, len(f.models))
		f.normalize()
	case videoFieldDuration:
		f.duration = clampInt(f.duration+delta, 1, maxInt(f.current().MaxDuration, 1))
	case videoFieldResolution:
		f.resolution = cycleIndex(f.resolution, delta, len(f.current().Resolutions))
	}
}

func (f *videoForm) moveFocus(delta int) {
	f.focus = cycleIndex(f.focus, delta, videoFieldCount)
	focusPrompt(&f.prompt, f.focus == videoFieldPrompt)
}

// handleVideoFormKey processes keyboard input for the video form.
func (m Model) handleVideoFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submitVideo()
	case key.Matches(msg, m.keys.NextField):
		m.video.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.video.moveFocus(-1)
		return m, nil
	}

	if m.video.focus != videoFieldPrompt {
		switch {
		case key.Matches(msg, m.keys.OptionPrev):
			m.video.adjust(-1)
		case key.Matches(msg, m.keys.OptionNext):
			m.video.adjust(1)
		case msg.String() == "enter":
			return m.submitVideo()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.video.prompt, cmd = m.video.prompt.Update(msg)
	if m.video.err != "" && strings.TrimSpace(m.video.prompt.Value()) != "" {
		m.video.err = ""
	}
	return m, cmd
}

// submitVideo validates the form and submits the job. Polling starts once
// the backend has returned a job id.
func (m Model) submitVideo() (tea.Model, tea.Cmd) {
	req := m.video.request()
	if err := req.Validate(); err != nil {
		m.video.err = err.Error()
		return m, nil
	}
	if m.jobs == nil {
		m.video.err = "No backend configured."
		return m, nil
	}

	m.video.err = ""
	m.video.savedPath = ""
	m.video.saveErr = ""
	m.prefs.Video = prefs.VideoPrefs{Model: req.Model, Duration: req.Duration, Resolution: req.Resolution}
	m.savePrefs()

	m.video.submission++
	m.store.Submitting()
	m.snapshot = m.store.Snapshot()
	m.currentView = ViewProgress
	m.logger.Info("submitting video job",
		slog.String("model", req.Model),
		slog.Int("duration", req.Duration),
		slog.String("resolution", req.Resolution),
	)
	return m, submitVideoCmd(m.ctx, m.jobs, m.video.submission, req)
}

// handleSubmitted starts polling the accepted job, or returns to the form
// with the server's message.
func (m Model) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	if msg.submission != m.video.submission || m.store.Snapshot().Phase != state.PhaseSubmitting {
		// Cancelled while the request was in flight.
		if msg.err == nil {
			m.logger.Info("discarding job submitted after cancel", slog.String("job_id", msg.jobID))
		}
		return m, nil
	}

	if msg.err != nil {
		m.store.Fail(msg.err)
		m.snapshot = m.store.Snapshot()
		m.video.err = jobs.Message(msg.err)
		m.returnToVideoForm()
		return m, nil
	}

	m.store.Begin(msg.jobID)
	m.jobs.StartPolling(m.ctx, msg.jobID, jobs.Callbacks{
		OnProgress: m.store.Progress,
		OnComplete: m.store.Complete,
		OnError:    m.store.Fail,
	})
	m.snapshot = m.store.Snapshot()
	return m, nil
}

// handleProgressKey processes keyboard input while a job is running.
func (m Model) handleProgressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.CancelJob) {
		m.jobs.Cancel()
		m.store.Cancelled()
		m.snapshot = m.store.Snapshot()
		m.video.err = "Generation cancelled."
		m.logger.Info("video job cancelled", slog.String("job_id", m.snapshot.JobID))
		m.returnToVideoForm()
	}
	return m, nil
}

// handleResultKey processes keyboard input on the result view.
func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		if m.snapshot.Phase != state.PhaseCompleted || m.video.saving || m.client == nil {
			return m, nil
		}
		m.video.saving = true
		m.video.saveErr = ""
		return m, saveVideoCmd(m.ctx, m.client, m.config.OutputDir, m.snapshot.JobID, m.snapshot.Job.ResultURL())

	case key.Matches(msg, m.keys.NewJob), key.Matches(msg, m.keys.Escape):
		m.jobs.Cancel()
		m.store.Reset()
		m.snapshot = m.store.Snapshot()
		m.video.err = ""
		m.video.prompt.Reset()
		m.returnToVideoForm()
	}
	return m, nil
}

func (m *Model) handleVideoSaved(msg videoSavedMsg) {
	m.video.saving = false
	if msg.err != nil {
		m.video.saveErr = "Download failed: " + msg.err.Error()
		m.logger.Warn("video download failed", slog.String("error", msg.err.Error()))
		return
	}
	m.video.savedPath = msg.path
	m.logger.Info("video saved", slog.String("path", msg.path))
}

func (m *Model) returnToVideoForm() {
	m.currentView = ViewVideo
	m.video.focus = videoFieldPrompt
	m.video.prompt.Focus()
}

// renderVideoForm renders the prompt form.
func (m Model) renderVideoForm() string {
	focusBg := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(focusBg)
	bg := NewBgStyle(focusBg)
	f := m.video
	req := f.request()
	width := m.contentWidth()

	var lines []string
	lines = append(lines, bg.Render("Describe the video you want to generate", styles.MutedText))
	lines = append(lines, strings.Split(f.prompt.View(), "\n")...)
	lines = append(lines, m.renderCounter(f.prompt.Value(), genapi.VideoPromptLimits, bg, styles))
	lines = append(lines, "")

	vm := f.current()
	lines = append(lines,
		m.renderOption("Model", vm.Name, f.focus == videoFieldModel, bg, styles),
		bg.Render(strings.Repeat(" ", 14)+vm.Description, styles.FaintText),
		m.renderOption("Duration", fmt.Sprintf("%ds", f.duration), f.focus == videoFieldDuration, bg, styles),
		m.renderOption("Resolution", req.Resolution, f.focus == videoFieldResolution, bg, styles),
		"",
		bg.Render("Estimated time: ", styles.MutedText)+
			bg.Render(genapi.EstimateRange(req.Duration, req.Resolution, req.Model), styles.InfoText),
	)
	if f.err != "" {
		lines = append(lines, "", bg.Render(f.err, styles.DangerText))
	}

	return m.renderTitledBox("Text to Video", strings.Join(lines, "\n"), width, len(lines)+2, true)
}

// renderProgress renders the running job.
func (m Model) renderProgress() string {
	surface := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(surface)
	bg := NewBgStyle(surface)
	snap := m.snapshot
	req := m.video.request()

	title := "Submitting request..."
	message := "Waiting for the backend to accept the job"
	percent := 0.0
	if snap.Phase == state.PhasePolling {
		title = "Generating video..."
		message = "Queued"
		if snap.HasJob {
			percent = float64(snap.Job.ClampedProgress()) / 100
			if strings.TrimSpace(snap.Job.Message) != "" {
				message = snap.Job.Message
			}
		}
	}

	lines := []string{
		m.spinner.View() + bg.Space() + bg.Render(title, styles.Text.Bold(true)),
		"",
		m.progress.ViewAs(percent) + bg.Spaces(2) + bg.Render(fmt.Sprintf("%3.0f%%", percent*100), styles.Text),
		bg.Render(message, styles.InfoText),
		"",
		bg.Render("Elapsed ", styles.MutedText) + bg.Render(formatElapsed(snap.Elapsed(time.Now())), styles.Text) +
			bg.Render("  ·  Estimated ", styles.MutedText) +
			bg.Render(genapi.EstimateRange(req.Duration, req.Resolution, req.Model), styles.Text),
	}
	if snap.JobID != "" {
		lines = append(lines, bg.Render("Job ", styles.MutedText)+bg.Render(snap.JobID, styles.FaintText))
	}
	lines = append(lines, "", bg.Render(truncate(req.Prompt, m.contentWidth()-6), styles.MutedText))

	return m.renderTitledBox("Progress", strings.Join(lines, "\n"), m.contentWidth(), len(lines)+2, false)
}

// renderResult renders the outcome of the last job.
func (m Model) renderResult() string {
	surface := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(surface)
	bg := NewBgStyle(surface)
	snap := m.snapshot

	var lines []string
	switch snap.Phase {
	case state.PhaseCompleted:
		job := snap.Job
		lines = append(lines,
			bg.Render("✓ Video generated successfully", styles.SuccessText),
			"",
			resultRow(bg, styles, "Prompt", firstNonBlank(job.Prompt, m.video.request().Prompt)),
			resultRow(bg, styles, "Model", genapi.ModelDisplayName(firstNonBlank(job.Model, m.video.request().Model))),
		)
		if job.Duration > 0 {
			lines = append(lines, resultRow(bg, styles, "Duration", fmt.Sprintf("%ds", job.Duration)))
		}
		if job.Resolution != "" {
			lines = append(lines, resultRow(bg, styles, "Resolution", job.Resolution))
		}
		lines = append(lines,
			resultRow(bg, styles, "Took", formatElapsed(snap.Elapsed(time.Now()))),
			resultRow(bg, styles, "URL", job.ResultURL()),
		)
		switch {
		case m.video.saving:
			lines = append(lines, "", m.spinner.View()+bg.Space()+bg.Render("Downloading...", styles.InfoText))
		case m.video.savedPath == "":
			lines = append(lines, "", bg.Render("Press s to download into "+m.config.OutputDir, styles.MutedText))
		}
	case state.PhaseFailed:
		lines = append(lines,
			bg.Render("✗ Generation failed", styles.DangerText),
			"",
			bg.Render(jobs.Message(snap.LastError), styles.Text),
		)
	default:
		lines = append(lines, bg.Render("No result", styles.MutedText))
	}
	lines = append(lines, "", bg.Render("Press n to generate another video", styles.MutedText))

	return m.renderTitledBox("Result", strings.Join(lines, "\n"), m.contentWidth(), len(lines)+2, true)
}

func resultRow(bg BgStyle, styles Styles, label, value string) string {
	return bg.Render(fmt.Sprintf("%-12s", label), styles.MutedText) + bg.Render(value, styles.Text)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type submittedMsg struct {
	submission int
	jobID      string
	err        error
}

type videoSavedMsg struct {
	path string
	err  error
}

func submitVideoCmd(ctx context.Context, client *jobs.Client, submission int, req genapi.VideoRequest) tea.Cmd {
	return func() tea.Msg {
		jobID, err := client.Submit(ctx, req)
		return submittedMsg{submission: submission, jobID: jobID, err: err}
	}
}

func saveVideoCmd(ctx context.Context, d output.Downloader, dir, jobID, resultURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, SaveTimeout)
		defer cancel()
		path, err := output.SaveVideo(ctx, d, dir, jobID, resultURL)
		return videoSavedMsg{path: path, err: err}
	}
}
