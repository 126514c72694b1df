package ui

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/reel/internal/genapi"
)

// newPrompt builds a prompt editor capped at limit characters.
func newPrompt(placeholder string, limit, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = limit
	ta.ShowLineNumbers = false
	ta.SetHeight(height)
	return ta
}

// focusPrompt focuses or blurs ta depending on whether the prompt field is
// the active one.
func focusPrompt(ta *textarea.Model, active bool) {
	if active {
		ta.Focus()
		return
	}
	ta.Blur()
}

// counterStyle picks the character counter color for a prompt length.
func counterStyle(styles Styles, limits genapi.PromptLimits, n int) lipgloss.Style {
	switch limits.Level(n) {
	case genapi.CounterDanger:
		return styles.DangerText
	case genapi.CounterWarning:
		return styles.WarningText
	default:
		return styles.MutedText
	}
}

// renderCounter renders "n/max" colored by how close the prompt is to max.
func (m Model) renderCounter(value string, limits genapi.PromptLimits, bg BgStyle, styles Styles) string {
	n := utf8.RuneCountInString(value)
	return bg.Render(fmt.Sprintf("%d/%d", n, limits.Max), counterStyle(styles, limits, n))
}

// renderOption renders one selector row: "Label      ‹ value ›".
func (m Model) renderOption(label, value string, focused bool, bg BgStyle, styles Styles) string {
	labelStyle := styles.MutedText
	valueStyle := styles.Text
	arrows := [2]string{"  ", "  "}
	if focused {
		labelStyle = styles.AccentText.Bold(true)
		valueStyle = styles.Selected
		arrows = [2]string{"‹ ", " ›"}
	}
	return bg.Render(fmt.Sprintf("%-12s", label), labelStyle) +
		bg.Render(arrows[0], styles.AccentText) +
		valueStyle.Render(" "+value+" ") +
		bg.Render(arrows[1], styles.AccentText)
}
