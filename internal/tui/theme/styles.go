package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style
	Container   lipgloss.Style

	StepTitle       lipgloss.Style
	StepDescription lipgloss.Style
	Counter         lipgloss.Style

	Label            lipgloss.Style
	LabelFocused     lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	Error            lipgloss.Style
	Success          lipgloss.Style

	Option         lipgloss.Style
	OptionCursor   lipgloss.Style
	OptionSelected lipgloss.Style

	IndicatorPending   lipgloss.Style
	IndicatorActive    lipgloss.Style
	IndicatorCompleted lipgloss.Style
	ProgressTrack      lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}
