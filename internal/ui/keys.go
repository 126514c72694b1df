package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application. Forms keep an
// editor focused most of the time, so global bindings avoid plain letters.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Logs       key.Binding
	Escape     key.Binding

	// Forms
	NextField  key.Binding
	PrevField  key.Binding
	OptionPrev key.Binding
	OptionNext key.Binding
	Submit     key.Binding

	// Video job
	CancelJob key.Binding
	Save      key.Binding
	NewJob    key.Binding

	// Chat
	Send      key.Binding
	Newline   key.Binding
	ClearChat key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Logs
	WarnOnly key.Binding
	Follow   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Cycle theme"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "Toggle logs"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		OptionPrev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "Previous option"),
		),
		OptionNext: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "Next option"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Generate"),
		),

		CancelJob: key.NewBinding(
			key.WithKeys("ctrl+x", "esc"),
			key.WithHelp("ctrl+x", "Cancel job"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Download video"),
		),
		NewJob: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New video"),
		),

		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Send message"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "New line"),
		),
		ClearChat: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "Clear conversation"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),

		WarnOnly: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Warnings only"),
		),
		Follow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle follow"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.OptionPrev, k.OptionNext, k.Submit},
		{k.CancelJob, k.Save, k.NewJob},
		{k.Send, k.Newline, k.ClearChat},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.WarnOnly, k.Follow},
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
