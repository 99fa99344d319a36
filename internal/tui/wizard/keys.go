package wizard

import "charm.land/bubbles/v2/key"

// KeyMap holds the wizard's key bindings.
type KeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Confirm   key.Binding
	Select    key.Binding
	Back      key.Binding
	Submit    key.Binding
	Reset     key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the bindings used by New.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Select: key.NewBinding(
			key.WithKeys("space"),
			key.WithHelp("space", "choose"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "start over"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
