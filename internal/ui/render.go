package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/MikeyBeez/mission-control/internal/types"
)

var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#5a56e0", Dark: "#7d79f6"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#0e8a16", Dark: "#57cc8a"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#b08800", Dark: "#e5c07b"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#cb2431", Dark: "#e06c75"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6a737d", Dark: "#5c6370"}

	idStyle     = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	passStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

func maybe(style lipgloss.Style, s string) string {
	if !ShouldUseColor() {
		return s
	}
	return style.Render(s)
}

// RenderID styles a task id
func RenderID(id string) string { return maybe(idStyle, id) }

// RenderAccent styles a heading or highlight
func RenderAccent(s string) string { return maybe(accentStyle, s) }

// RenderPass styles success output
func RenderPass(s string) string { return maybe(passStyle, s) }

// RenderWarn styles warning output
func RenderWarn(s string) string { return maybe(warnStyle, s) }

// RenderFail styles failure output
func RenderFail(s string) string { return maybe(failStyle, s) }

// RenderMuted styles secondary detail
func RenderMuted(s string) string { return maybe(mutedStyle, s) }

// RenderPriority renders "P<n>", hot colors for urgent work
func RenderPriority(p int) string {
	label := fmt.Sprintf("P%d", p)
	switch {
	case p >= 8:
		return maybe(failStyle, label)
	case p >= 5:
		return maybe(warnStyle, label)
	default:
		return maybe(mutedStyle, label)
	}
}

// RenderStatus colors a status by its workflow meaning
func RenderStatus(s types.Status) string {
	label := string(s)
	switch s {
	case types.StatusDone:
		return maybe(passStyle, label)
	case types.StatusInProgress:
		return maybe(accentStyle, label)
	case types.StatusBlocked:
		return maybe(failStyle, label)
	default:
		return maybe(mutedStyle, label)
	}
}
