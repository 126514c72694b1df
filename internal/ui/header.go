package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/reel/internal/config"
	"github.com/five82/reel/internal/genapi"
	"github.com/five82/reel/internal/state"
)

// renderHeader renders the status bar: logo, mode, backend readiness and the
// current job phase.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.Render("reel", styles.Logo),
		bg.Render(modeLabel(m.mode), styles.AccentText),
		m.renderBackendStatus(styles, bg, compact),
	}

	if phase := m.snapshot.Phase; phase != state.PhaseIdle && m.mode == config.ModeVideo {
		badge := styles.StatusStyle(phase.String()).Render(strings.ToUpper(phase.String()))
		parts = append(parts, badge)
		if phase == state.PhasePolling && m.snapshot.HasJob {
			parts = append(parts, bg.Render(fmt.Sprintf("%d%%", m.snapshot.Job.ClampedProgress()), styles.Text))
		}
	}

	if !m.lastUpdated.IsZero() && !compact {
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderBackendStatus summarizes the health poller's view of the backend.
func (m Model) renderBackendStatus(styles Styles, bg BgStyle, compact bool) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		text := "● OFFLINE"
		if !compact && snap.HealthError != nil {
			text += " " + truncate(classifyConnectionError(snap.HealthError), 40)
		}
		return bg.Render(text, styles.DangerText)
	case !snap.HasHealth:
		return bg.Render("● Connecting...", styles.WarningText)
	case snap.Health.Ready():
		text := "● READY"
		if !compact {
			if detail := healthDetail(snap.Health); detail != "" {
				text += " " + detail
			}
		}
		return bg.Render(text, styles.SuccessText)
	default:
		return bg.Render("● LOADING MODEL", styles.WarningText)
	}
}

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewVideo:
		commands = []cmd{{"tab", "Field"}, {"←/→", "Option"}, {"ctrl+s", "Generate"}}
	case ViewProgress:
		commands = []cmd{{"ctrl+x", "Cancel"}}
	case ViewResult:
		if m.snapshot.Phase == state.PhaseCompleted {
			commands = append(commands, cmd{"s", "Download"})
		}
		commands = append(commands, cmd{"n", "New video"})
	case ViewChat:
		commands = []cmd{{"enter", "Send"}, {"alt+enter", "Newline"}, {"ctrl+l", "Clear"}, {"pgup/pgdn", "Scroll"}}
	case ViewImage:
		commands = []cmd{{"tab", "Field"}, {"←/→", "Option"}, {"ctrl+s", "Generate"}}
	case ViewLogs:
		follow := "Pause"
		if !m.logs.follow {
			follow = "Follow"
		}
		warn := "Warnings"
		if m.logs.warnOnly {
			warn = "All levels"
		}
		commands = []cmd{{"space", follow}, {"w", warn}, {"j/k", "Scroll"}, {"esc", "Back"}}
	}
	if m.currentView != ViewLogs {
		commands = append(commands, cmd{"ctrl+o", "Logs"})
	}
	commands = append(commands, cmd{"ctrl+t", "Theme"}, cmd{"f1", "Help"}, cmd{"ctrl+c", "Quit"})

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	return styles.Footer.Width(m.width).Render(bg.Join(segments, "  "))
}

// renderStatusLine shows the most relevant transient message for the view.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var text string
	style := styles.MutedText
	switch m.currentView {
	case ViewResult:
		switch {
		case m.video.saveErr != "":
			text, style = m.video.saveErr, styles.DangerText
		case m.video.savedPath != "":
			text, style = "Saved "+m.video.savedPath, styles.SuccessText
		}
	case ViewImage:
		switch {
		case m.image.err != "":
			text, style = m.image.err, styles.DangerText
		case m.image.lastPath != "":
			text, style = "Saved "+m.image.lastPath, styles.SuccessText
		}
	case ViewChat:
		if m.chat.err != "" {
			text, style = m.chat.err, styles.DangerText
		}
	case ViewLogs:
		text = m.config.LogPath()
		if m.logs.err != nil {
			text, style = m.logs.err.Error(), styles.WarningText
		}
	}
	if text == "" && m.snapshot.HealthError != nil && m.snapshot.IsOffline() {
		text = fmt.Sprintf("Backend %s unreachable, retrying (last check %s)",
			m.config.APIBase, formatClock(m.snapshot.HealthUpdated))
		style = styles.WarningText
	}
	return bg.FillLine(bg.Render(truncate(text, m.width-2), style), m.width)
}

// renderTitledBox renders content in a box with the title embedded in the top
// border: ┌─── Title ───┐. Focused boxes use the focus border and background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := maxInt(width-2, 1)
	titleLen := lipgloss.Width(title)
	leftPad := maxInt((innerWidth-titleLen-2)/2, 0)
	rightPad := maxInt(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2
	if height <= 0 {
		// Fit to content.
		boxHeight = len(contentLines)
	}

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

func modeLabel(mode config.Mode) string {
	switch mode {
	case config.ModeChat:
		return "Chat"
	case config.ModeImage:
		return "Image"
	default:
		return "Video"
	}
}

func healthDetail(h genapi.Health) string {
	var parts []string
	if h.ModelName != "" {
		parts = append(parts, h.ModelName)
	}
	if h.Device != "" {
		parts = append(parts, "on "+h.Device)
	}
	return strings.Join(parts, " ")
}

// classifyConnectionError turns transport errors into short labels.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return "timed out"
	case strings.Contains(msg, "no such host"):
		return "unknown host"
	case strings.Contains(msg, "status 503"):
		return "model not loaded"
	}
	return err.Error()
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}
