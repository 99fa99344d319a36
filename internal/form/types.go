package form

import (
	"fmt"
	"strings"
)

// BindingKind distinguishes value-holding controls from discrete choices.
type BindingKind int

const (
	KindInput  BindingKind = iota // Text/value control, collected on forward navigation
	KindOption                    // Fixed (field, value) choice, committed on selection
)

// String returns the definition-file spelling of the kind.
func (k BindingKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindOption:
		return "option"
	default:
		return "unknown"
	}
}

// Binding associates one control in a step with a logical field name.
type Binding struct {
	Kind        BindingKind
	Field       string // Explicit field name
	Name        string // Native control name, used when Field is empty
	Value       string // Fixed value of an option binding
	Label       string
	Placeholder string
}

// Key returns the answer key for the binding. An empty key means the
// binding is unbound.
func (b Binding) Key() string {
	if b.Field != "" {
		return b.Field
	}
	return b.Name
}

// Step is one 1-indexed page of the wizard.
type Step struct {
	Position    int
	Title       string
	Description string
	Bindings    []Binding
}

// Inputs returns the keyed input bindings of the step.
func (s Step) Inputs() []Binding {
	var out []Binding
	for _, b := range s.Bindings {
		if b.Kind == KindInput && b.Key() != "" {
			out = append(out, b)
		}
	}
	return out
}

// Options returns the option bindings sharing the given field.
func (s Step) Options(field string) []Binding {
	var out []Binding
	for _, b := range s.Bindings {
		if b.Kind == KindOption && b.Key() == field {
			out = append(out, b)
		}
	}
	return out
}

// Mode selects the interaction variant of a controller.
type Mode int

const (
	// InputDriven wizards collect input values on an explicit "next".
	InputDriven Mode = iota
	// OptionDriven wizards commit on choice and advance automatically.
	OptionDriven
)

// String returns the definition-file spelling of the mode.
func (m Mode) String() string {
	switch m {
	case InputDriven:
		return "input"
	case OptionDriven:
		return "option"
	default:
		return "unknown"
	}
}

// ParseMode parses "input" or "option". The empty string is InputDriven.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "input":
		return InputDriven, nil
	case "option":
		return OptionDriven, nil
	default:
		return InputDriven, fmt.Errorf("invalid navigation mode: %q", s)
	}
}

// Controls is the visibility projection for the navigation controls.
type Controls struct {
	Previous      bool
	Next          bool
	Submit        bool
	SubmitEnabled bool
}
