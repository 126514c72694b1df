package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/reel/internal/config"
	"github.com/five82/reel/internal/genapi"
	"github.com/five82/reel/internal/jobs"
	"github.com/five82/reel/internal/prefs"
	"github.com/five82/reel/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewVideo View = iota
	ViewProgress
	ViewResult
	ViewChat
	ViewImage
	ViewLogs
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Mode         config.Mode
	Client       *genapi.Client
	Jobs         *jobs.Client
	Store        *state.Store
	Conversation *state.Conversation
	Config       *config.Config
	Prefs        prefs.Prefs
	PrefsPath    string
	PollTick     time.Duration
	Logger       *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	mode         config.Mode
	client       *genapi.Client
	jobs         *jobs.Client
	store        *state.Store
	conversation *state.Conversation
	config       *config.Config
	prefs        prefs.Prefs
	prefsPath    string
	pollTick     time.Duration
	logger       *slog.Logger

	// UI state
	keys         keyMap
	theme        Theme
	currentView  View
	previousView View
	width        int
	height       int
	ready        bool
	showHelp     bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	spinner  spinner.Model
	progress progress.Model

	video videoForm
	chat  chatState
	image imageForm
	logs  logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conversation := opts.Conversation
	if conversation == nil {
		conversation = &state.Conversation{}
	}

	mode := opts.Mode
	if mode == "" {
		mode = cfg.Mode
	}

	theme := GetTheme(opts.Prefs.Theme)
	m := Model{
		ctx:          ctx,
		mode:         mode,
		client:       opts.Client,
		jobs:         opts.Jobs,
		store:        opts.Store,
		conversation: conversation,
		config:       cfg,
		prefs:        opts.Prefs,
		prefsPath:    prefsPath,
		pollTick:     pollTick,
		logger:       logger,
		keys:         DefaultKeyMap(),
		theme:        theme,
		spinner:      newSpinner(theme),
		progress:     newProgressBar(theme),
		video:        newVideoForm(opts.Prefs.Video),
		chat:         newChatState(),
		image:        newImageForm(opts.Prefs.Image),
		logs:         newLogState(),
	}
	if m.store == nil {
		m.store = &state.Store{}
	}
	if m.jobs == nil && m.client != nil {
		m.jobs = jobs.New(m.client, jobs.WithInterval(cfg.PollInterval), jobs.WithLogger(logger))
	}

	switch mode {
	case config.ModeChat:
		m.currentView = ViewChat
	case config.ModeImage:
		m.currentView = ViewImage
	default:
		m.currentView = ViewVideo
	}
	m.previousView = m.currentView
	m.snapshot = m.store.Snapshot()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		textarea.Blink,
		m.spinner.Tick,
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.store),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submittedMsg:
		return m.handleSubmitted(msg)

	case videoSavedMsg:
		m.handleVideoSaved(msg)
		return m, nil

	case chatReplyMsg:
		m.handleChatReply(msg)
		return m, nil

	case chatClearedMsg:
		m.handleChatCleared(msg)
		return m, nil

	case imageSavedMsg:
		m.handleImageSaved(msg)
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	// Cursor blink and other editor housekeeping.
	return m.updateEditor(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.jobs != nil {
			m.jobs.Cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.setTheme(NextTheme(m.theme.Name))
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		if m.currentView == ViewLogs {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewLogs
		return m, readLogsCmd(m.config.LogPath())
	}

	switch m.currentView {
	case ViewVideo:
		return m.handleVideoFormKey(msg)
	case ViewProgress:
		return m.handleProgressKey(msg)
	case ViewResult:
		return m.handleResultKey(msg)
	case ViewChat:
		return m.handleChatKey(msg)
	case ViewImage:
		return m.handleImageFormKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}

	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.store)}

	if m.currentView == ViewLogs && m.logs.follow {
		cmds = append(cmds, readLogsCmd(m.config.LogPath()))
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// applySnapshot stores the latest snapshot and moves the video flow forward
// when the polled job reaches a terminal phase.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = time.Now()

	if m.currentView != ViewProgress && !(m.currentView == ViewLogs && m.previousView == ViewProgress) {
		return
	}
	switch snap.Phase {
	case state.PhaseCompleted, state.PhaseFailed:
		if m.currentView == ViewLogs {
			m.previousView = ViewResult
		} else {
			m.currentView = ViewResult
		}
	}
}

// setTheme switches the theme and persists the choice.
func (m *Model) setTheme(name string) {
	m.theme = GetTheme(name)
	// Restyle in place; a new spinner would drop the running tick chain.
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	m.progress = newProgressBar(m.theme)
	m.resize()
	m.prefs.Theme = m.theme.Name
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences failed", slog.String("error", err.Error()))
	}
}

// updateEditor forwards non-key messages to the focused editor.
func (m Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewVideo:
		m.video.prompt, cmd = m.video.prompt.Update(msg)
	case ViewChat:
		m.chat.input, cmd = m.chat.input.Update(msg)
	case ViewImage:
		m.image.prompt, cmd = m.image.prompt.Update(msg)
	}
	return m, cmd
}

// resize applies the terminal size to every sized component.
func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	inner := m.formWidth() - 4
	m.video.prompt.SetWidth(inner)
	m.image.prompt.SetWidth(inner)
	m.chat.input.SetWidth(inner)
	m.progress.Width = minInt(inner, 60)

	m.chat.viewport.Width = inner
	m.chat.viewport.Height = maxInt(m.contentHeight()-chatInputHeight-6, 3)
	m.refreshTranscript()

	m.logs.viewport.Width = m.width - 4
	m.logs.viewport.Height = maxInt(m.contentHeight()-2, 1)
	m.refreshLogViewport()
}

// contentWidth is the width of the main panel.
func (m Model) contentWidth() int {
	if m.currentView == ViewLogs {
		return m.width
	}
	return m.formWidth()
}

func (m Model) formWidth() int {
	return minInt(m.width, FormMaxWidth)
}

// contentHeight is the height left below the header, command bar and status line.
func (m Model) contentHeight() int {
	return maxInt(m.height-3, 3)
}

// generateTimeout bounds synchronous chat and image calls.
func (m Model) generateTimeout() time.Duration {
	return m.config.GenerateTimeout
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderContent renders the active view centered in the content area.
func (m Model) renderContent() string {
	var body string
	switch m.currentView {
	case ViewVideo:
		body = m.renderVideoForm()
	case ViewProgress:
		body = m.renderProgress()
	case ViewResult:
		body = m.renderResult()
	case ViewChat:
		body = m.renderChat()
	case ViewImage:
		body = m.renderImageForm()
	case ViewLogs:
		return m.renderLogs()
	}
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Top, body,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(m.theme.Background)))
}

// Run launches the Bubble Tea program and blocks until the user quits or
// the context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		// Shutdown by signal, not a UI failure.
		return nil
	}
	return err
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func newSpinner(t Theme) spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))),
	)
}

func newProgressBar(t Theme) progress.Model {
	return progress.New(
		progress.WithGradient(t.Accent, t.Success),
		progress.WithWidth(40),
	)
}
