// Package theme holds the color palette and pre-built lipgloss styles of the
// wizard surface.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

// Default returns the theme used when none is chosen.
func Default() *Theme {
	return NewCatppuccinMocha()
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Secondary)).
			Background(lipgloss.Color(t.BgBase)).
			Padding(1, 2),

		StepTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBright)).
			Bold(true),
		StepDescription: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)),
		Counter: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)),
		LabelFocused: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Secondary)).
			Bold(true),
		InputText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)),
		InputPlaceholder: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		Option: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)),
		OptionCursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Secondary)).
			Bold(true),
		OptionSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),

		IndicatorPending: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		IndicatorActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		IndicatorCompleted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),
		ProgressTrack: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgSurface1)),

		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Secondary)).
			Bold(true),

		HintKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Bold(true),
		HintDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgOverlay)),
	}
}
