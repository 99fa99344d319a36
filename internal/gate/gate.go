// Package gate implements the precondition a visitor has to pass before a
// wizard is revealed, such as entering a valid postal code.
package gate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultPattern accepts US ZIP and ZIP+4 codes.
const DefaultPattern = `^\d{5}(-\d{4})?$`

// DefaultMessage is shown when a value is rejected and no message is set.
const DefaultMessage = "Please enter a valid ZIP code"

// ErrInvalid is wrapped by every rejection from Check.
var ErrInvalid = errors.New("gate value rejected")

// Config describes a gate.
type Config struct {
	Field   string // Wizard field pre-seeded with the accepted value
	Label   string
	Pattern string
	Message string
}

// Gate checks values against a compiled pattern.
type Gate struct {
	field   string
	label   string
	message string
	re      *regexp.Regexp
}

// New compiles cfg, filling in defaults for empty values.
func New(cfg Config) (*Gate, error) {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling gate pattern: %w", err)
	}

	message := cfg.Message
	if message == "" {
		message = DefaultMessage
	}
	label := cfg.Label
	if label == "" {
		label = "ZIP code"
	}

	return &Gate{
		field:   cfg.Field,
		label:   label,
		message: message,
		re:      re,
	}, nil
}

// Field returns the wizard field the accepted value is seeded into.
// Empty means nothing is seeded.
func (g *Gate) Field() string { return g.field }

// Label returns the prompt shown next to the gate input.
func (g *Gate) Label() string { return g.label }

// Check trims input and returns it when it matches. Rejections wrap
// ErrInvalid and carry the user-facing message.
func (g *Gate) Check(input string) (string, error) {
	value := strings.TrimSpace(input)
	if value == "" || !g.re.MatchString(value) {
		return "", fmt.Errorf("%s: %w", g.message, ErrInvalid)
	}
	return value, nil
}

// Message returns the user-facing text of a Check error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	return strings.TrimSuffix(msg, ": "+ErrInvalid.Error())
}
