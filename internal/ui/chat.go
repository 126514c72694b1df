package ui

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/reel/internal/genapi"
	"github.com/five82/reel/internal/state"
)

const chatConnectionError = "Connection error. Please check if the server is running."

// chatState holds the chat editor and transcript viewport.
type chatState struct {
	input    textarea.Model
	viewport viewport.Model
	pending  bool
	clearing bool
	err      string
}

func newChatState() chatState {
	input := newPrompt("Type your message here...", genapi.ChatPromptLimits.Max, chatInputHeight)
	input.Focus()
	return chatState{
		input:    input,
		viewport: viewport.New(0, 0),
	}
}

// handleChatKey processes keyboard input for the chat view.
func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m.sendChat()

	case key.Matches(msg, m.keys.Newline):
		m.chat.input.InsertString("\n")
		return m, nil

	case key.Matches(msg, m.keys.ClearChat):
		if m.chat.pending || m.chat.clearing || m.client == nil {
			return m, nil
		}
		m.chat.clearing = true
		return m, clearChatCmd(m.ctx, m.client, m.config.RequestTimeout)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.chat.viewport, cmd = m.chat.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

// sendChat appends the user's message to the transcript and sends it.
// Only one message is in flight at a time.
func (m Model) sendChat() (tea.Model, tea.Cmd) {
	if m.chat.pending {
		return m, nil
	}
	text := m.chat.input.Value()
	if err := genapi.ValidateMessage(text); err != nil {
		m.chat.err = err.Error()
		return m, nil
	}
	if m.client == nil {
		m.chat.err = "No backend configured."
		return m, nil
	}

	message := strings.TrimSpace(text)
	m.conversation.Append(state.RoleUser, message, time.Now())
	m.chat.input.Reset()
	m.chat.pending = true
	m.chat.err = ""
	m.refreshTranscript()
	return m, chatCmd(m.ctx, m.client, m.generateTimeout(), message)
}

func (m *Model) handleChatReply(msg chatReplyMsg) {
	m.chat.pending = false
	if msg.err != nil {
		text := chatErrorText(msg.err, "Chatbot model not loaded")
		m.conversation.Append(state.RoleSystem, "Error: "+text, time.Now())
		m.logger.Warn("chat request failed", slog.String("error", msg.err.Error()))
	} else {
		m.conversation.Append(state.RoleAssistant, msg.reply.Response, msg.reply.ParsedTimestamp())
	}
	m.refreshTranscript()
}

func (m *Model) handleChatCleared(msg chatClearedMsg) {
	m.chat.clearing = false
	if msg.err != nil {
		m.chat.err = "Failed to clear history: " + chatErrorText(msg.err, "Chatbot model not loaded")
		return
	}
	m.conversation.Clear()
	m.conversation.Append(state.RoleSystem, "Conversation history cleared.", time.Now())
	m.chat.err = ""
	m.refreshTranscript()
}

// chatErrorText maps a backend error to the text shown to the user.
func chatErrorText(err error, unavailable string) string {
	var se *genapi.StatusError
	if errors.As(err, &se) {
		if se.Unavailable() {
			return unavailable
		}
		if strings.TrimSpace(se.Message) != "" {
			return se.Message
		}
	}
	return chatConnectionError
}

// refreshTranscript re-renders the conversation into the viewport and
// scrolls to the newest turn.
func (m *Model) refreshTranscript() {
	if m.chat.viewport.Width <= 0 {
		return
	}
	m.chat.viewport.SetContent(m.renderTranscript(m.chat.viewport.Width))
	m.chat.viewport.GotoBottom()
}

func (m Model) renderTranscript(width int) string {
	styles := m.theme.Styles()
	turns := m.conversation.Turns()
	if len(turns) == 0 {
		return styles.FaintText.Render("Say hello to start the conversation.")
	}

	wrap := lipgloss.NewStyle().Width(maxInt(width-2, 10))
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label, labelStyle := "Assistant", styles.AccentText.Bold(true)
		switch turn.Role {
		case state.RoleUser:
			label, labelStyle = "You", styles.SuccessText
		case state.RoleSystem:
			label, labelStyle = "reel", styles.WarningText
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render(turn.At.Local().Format("15:04")))
		b.WriteString("\n")
		b.WriteString(wrap.Render(styles.Text.Render(turn.Text)))
	}
	return b.String()
}

// renderChat renders the transcript above the message editor.
func (m Model) renderChat() string {
	width := m.contentWidth()
	focusBg := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(focusBg)
	bg := NewBgStyle(focusBg)

	title := "Conversation"
	if n := m.conversation.Len(); n > 0 {
		title += " (" + strconv.Itoa(n) + ")"
	}
	transcript := m.renderTitledBox(title, m.chat.viewport.View(), width, m.chat.viewport.Height+2, false)

	status := m.renderCounter(m.chat.input.Value(), genapi.ChatPromptLimits, bg, styles)
	switch {
	case m.chat.pending:
		status = m.spinner.View() + bg.Space() + bg.Render("Thinking...", styles.InfoText) + bg.Spaces(2) + status
	case m.chat.clearing:
		status = m.spinner.View() + bg.Space() + bg.Render("Clearing...", styles.InfoText) + bg.Spaces(2) + status
	}
	editor := strings.Split(m.chat.input.View(), "\n")
	editor = append(editor, status)
	input := m.renderTitledBox("Message", strings.Join(editor, "\n"), width, len(editor)+2, true)

	return transcript + "\n" + input
}

type chatReplyMsg struct {
	reply *genapi.ChatReply
	err   error
}

type chatClearedMsg struct {
	err error
}

func chatCmd(ctx context.Context, client *genapi.Client, timeout time.Duration, message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withOptionalTimeout(ctx, timeout)
		defer cancel()
		reply, err := client.Chat(ctx, message)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func clearChatCmd(ctx context.Context, client *genapi.Client, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withOptionalTimeout(ctx, timeout)
		defer cancel()
		return chatClearedMsg{err: client.ClearHistory(ctx)}
	}
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
