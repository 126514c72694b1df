package ui

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/reel/internal/logtail"
)

// logState holds the tail of reel's own log file.
type logState struct {
	viewport viewport.Model
	lines    []string
	warnOnly bool
	follow   bool
	err      error
}

func newLogState() logState {
	return logState{
		viewport: viewport.New(0, 0),
		follow:   true,
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.currentView = m.previousView
		return m, nil

	case key.Matches(msg, m.keys.WarnOnly):
		m.logs.warnOnly = !m.logs.warnOnly
		m.refreshLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Follow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logs.viewport.GotoBottom()
			return m, readLogsCmd(m.config.LogPath())
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		m.logs.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logs.follow = true
		m.logs.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	if !m.logs.viewport.AtBottom() {
		m.logs.follow = false
	}
	return m, cmd
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	if msg.err != nil {
		m.logs.err = msg.err
		if errors.Is(msg.err, fs.ErrNotExist) {
			m.logs.lines = nil
		}
	} else {
		m.logs.err = nil
		m.logs.lines = msg.lines
	}
	m.refreshLogViewport()
}

// refreshLogViewport renders the buffered lines into the viewport.
func (m *Model) refreshLogViewport() {
	if m.logs.viewport.Width <= 0 {
		return
	}
	m.logs.viewport.SetContent(m.renderLogContent())
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	lines := m.logs.lines
	if m.logs.warnOnly {
		lines = logtail.Filter(lines, slog.LevelWarn)
	}
	if len(lines) == 0 {
		return styles.FaintText.Render("No log entries yet.")
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		line = truncate(line, m.logs.viewport.Width)
		level, ok := logtail.LevelOf(line)
		switch {
		case !ok:
			out[i] = styles.MutedText.Render(line)
		case level >= slog.LevelError:
			out[i] = styles.DangerText.Render(line)
		case level >= slog.LevelWarn:
			out[i] = styles.WarningText.Render(line)
		case level < slog.LevelInfo:
			out[i] = styles.FaintText.Render(line)
		default:
			out[i] = styles.Text.Render(line)
		}
	}
	return strings.Join(out, "\n")
}

// renderLogs renders the log view across the full width.
func (m Model) renderLogs() string {
	title := "Logs"
	if m.logs.warnOnly {
		title = "Logs (warnings)"
	}
	if !m.logs.follow {
		title += " [paused]"
	}
	return m.renderTitledBox(title, m.logs.viewport.View(), m.width, m.contentHeight(), true)
}

type logLinesMsg struct {
	lines []string
	err   error
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}
