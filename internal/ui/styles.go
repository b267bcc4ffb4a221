// Package ui renders hookline's CLI output: rule tables, validation
// reports, and dispatch results. Styling follows the Catppuccin palette with
// adaptive light/dark colors.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme used by the renderers, with adaptive
// colors for light and dark terminals.
type Theme struct {
	Primary lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Tool    lipgloss.AdaptiveColor
}

// DefaultTheme returns the default theme based on the Catppuccin Latte
// (light) and Mocha (dark) palettes.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.AdaptiveColor{
			Light: "#8839ef", // Latte Mauve
			Dark:  "#cba6f7", // Mocha Mauve
		},
		Success: lipgloss.AdaptiveColor{
			Light: "#40a02b", // Latte Green
			Dark:  "#a6e3a1", // Mocha Green
		},
		Warning: lipgloss.AdaptiveColor{
			Light: "#df8e1d", // Latte Yellow
			Dark:  "#f9e2af", // Mocha Yellow
		},
		Error: lipgloss.AdaptiveColor{
			Light: "#d20f39", // Latte Red
			Dark:  "#f38ba8", // Mocha Red
		},
		Muted: lipgloss.AdaptiveColor{
			Light: "#6c6f85", // Latte Subtext
			Dark:  "#a6adc8", // Mocha Subtext
		},
		Tool: lipgloss.AdaptiveColor{
			Light: "#1e66f5", // Latte Blue
			Dark:  "#89b4fa", // Mocha Blue
		},
	}
}

// styles bundles the lipgloss styles derived from a theme.
type styles struct {
	event   lipgloss.Style
	matcher lipgloss.Style
	command lipgloss.Style
	desc    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(theme Theme) styles {
	return styles{
		event:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		matcher: lipgloss.NewStyle().Foreground(theme.Tool),
		command: lipgloss.NewStyle().Foreground(theme.Muted),
		desc:    lipgloss.NewStyle().Italic(true).Foreground(theme.Muted),
		success: lipgloss.NewStyle().Foreground(theme.Success),
		warning: lipgloss.NewStyle().Foreground(theme.Warning),
		failure: lipgloss.NewStyle().Bold(true).Foreground(theme.Error),
	}
}
