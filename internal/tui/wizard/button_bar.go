package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// ButtonAction is what a button does when activated.
type ButtonAction int

const (
	ActionPrevious ButtonAction = iota
	ActionNext
	ActionSubmit
)

// Button represents a single button in the button bar.
type Button struct {
	Label  string
	State  ButtonState
	Action ButtonAction
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	width   int
	styles  *theme.Styles
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button, styles *theme.Styles) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
		styles:  styles,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	var renderedButtons []string
	for _, btn := range b.buttons {
		var rendered string
		switch btn.State {
		case ButtonDisabled:
			rendered = b.styles.ButtonDisabled.Render(btn.Label)
		case ButtonFocused:
			rendered = b.styles.ButtonFocused.Render(btn.Label)
		default:
			rendered = b.styles.ButtonNormal.Render(btn.Label)
		}
		renderedButtons = append(renderedButtons, rendered)
	}

	result := strings.Join(renderedButtons, "")
	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, result)
}

// ButtonsFor projects the controller's control visibility into buttons.
// A hidden control has no button; a shown but disabled submit is grayed out.
func ButtonsFor(c form.Controls) []Button {
	buttons := make([]Button, 0, 3)
	if c.Previous {
		buttons = append(buttons, Button{Label: "← Back", Action: ActionPrevious})
	}
	if c.Next {
		buttons = append(buttons, Button{Label: "Next →", Action: ActionNext})
	}
	if c.Submit {
		state := ButtonNormal
		if !c.SubmitEnabled {
			state = ButtonDisabled
		}
		buttons = append(buttons, Button{Label: "Submit", State: state, Action: ActionSubmit})
	}
	return buttons
}
