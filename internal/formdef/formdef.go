// Package formdef loads wizard definitions from YAML and converts them into
// the steps a form host renders.
package formdef

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/gate"
	"gopkg.in/yaml.v3"
)

// ErrModeMismatch is wrapped when a navigation mode cannot complete a step.
var ErrModeMismatch = errors.New("navigation mode does not fit the form")

// Definition is a wizard as written in a definition file.
type Definition struct {
	Name  string    `yaml:"name"`
	Title string    `yaml:"title,omitempty"`
	Mode  string    `yaml:"mode,omitempty"`
	Gate  *GateDef  `yaml:"gate,omitempty"`
	Steps []StepDef `yaml:"steps"`
}

// GateDef configures the optional precondition shown before the wizard.
type GateDef struct {
	Field   string `yaml:"field,omitempty"`
	Label   string `yaml:"label,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// StepDef is one step. Position defaults to the 1-based list order.
type StepDef struct {
	Position    int        `yaml:"position,omitempty"`
	Title       string     `yaml:"title,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Fields      []FieldDef `yaml:"fields"`
}

// FieldDef is an input, or a group of options when Options is set.
type FieldDef struct {
	Field       string      `yaml:"field,omitempty"`
	Name        string      `yaml:"name,omitempty"`
	Label       string      `yaml:"label,omitempty"`
	Placeholder string      `yaml:"placeholder,omitempty"`
	Options     []OptionDef `yaml:"options,omitempty"`
}

// OptionDef is one choice of an option field.
type OptionDef struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Parse decodes and validates a definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing form definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading form definition %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes a definition as YAML.
func Marshal(def *Definition) ([]byte, error) {
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshaling form definition: %w", err)
	}
	return data, nil
}

// Validate reports every structural problem at once. Position gaps and
// duplicates are allowed; the controller works over whatever is declared.
func (d *Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("form name is required"))
	}
	if mode, err := form.ParseMode(d.Mode); err != nil {
		errs = append(errs, err)
	} else if err := d.SupportsMode(mode); err != nil {
		errs = append(errs, err)
	}
	if len(d.Steps) == 0 {
		errs = append(errs, errors.New("form declares no steps"))
	}
	for i, s := range d.Steps {
		for j, f := range s.Fields {
			if len(f.Options) > 0 && f.Field == "" && f.Name == "" {
				errs = append(errs, fmt.Errorf("step %d field %d: options need a field name", i+1, j+1))
			}
		}
	}
	if d.Gate != nil {
		if _, err := gate.New(d.gateConfig()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SupportsMode reports whether every step can be completed in mode m. An
// option-driven wizard only moves forward by choosing, so each step needs
// options. An input-driven wizard cannot choose, so no step may consist of
// options alone. Steps without fields are fine in input mode.
func (d *Definition) SupportsMode(m form.Mode) error {
	var errs []error
	for i, s := range d.Steps {
		var inputs, options int
		for _, f := range s.Fields {
			if len(f.Options) > 0 {
				options++
			} else {
				inputs++
			}
		}
		switch {
		case m == form.OptionDriven && options == 0:
			errs = append(errs, fmt.Errorf("step %d: %w: %s mode needs options on every step", i+1, ErrModeMismatch, m))
		case m == form.InputDriven && options > 0 && inputs == 0:
			errs = append(errs, fmt.Errorf("step %d: %w: %s mode cannot choose options", i+1, ErrModeMismatch, m))
		}
	}
	return errors.Join(errs...)
}

// Slug returns the subject-safe form identifier.
func (d *Definition) Slug() string {
	return slug.Make(d.Name)
}

// NavigationMode returns the parsed mode. Invalid modes were rejected by
// Validate, so the fallback is only reached for unvalidated values.
func (d *Definition) NavigationMode() form.Mode {
	m, _ := form.ParseMode(d.Mode)
	return m
}

// NewGate builds the gate, or returns nil when none is declared.
func (d *Definition) NewGate() (*gate.Gate, error) {
	if d.Gate == nil {
		return nil, nil
	}
	return gate.New(d.gateConfig())
}

func (d *Definition) gateConfig() gate.Config {
	return gate.Config{
		Field:   d.Gate.Field,
		Label:   d.Gate.Label,
		Pattern: d.Gate.Pattern,
		Message: d.Gate.Message,
	}
}

// FormSteps converts the definition into form steps. An option field becomes
// one option binding per choice, all sharing the field name.
func (d *Definition) FormSteps() []form.Step {
	steps := make([]form.Step, 0, len(d.Steps))
	for i, s := range d.Steps {
		pos := s.Position
		if pos == 0 {
			pos = i + 1
		}
		step := form.Step{Position: pos, Title: s.Title, Description: s.Description}
		for _, f := range s.Fields {
			if len(f.Options) == 0 {
				step.Bindings = append(step.Bindings, form.Binding{
					Kind:        form.KindInput,
					Field:       f.Field,
					Name:        f.Name,
					Label:       f.Label,
					Placeholder: f.Placeholder,
				})
				continue
			}
			for _, o := range f.Options {
				step.Bindings = append(step.Bindings, form.Binding{
					Kind:  form.KindOption,
					Field: f.Field,
					Name:  f.Name,
					Value: o.Value,
					Label: o.Label,
				})
			}
		}
		steps = append(steps, step)
	}
	return steps
}
