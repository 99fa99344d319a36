package form

import (
	"errors"

	"github.com/mark3labs/stepform/internal/logger"
)

// ErrNoSteps is returned when a host declares no steps.
var ErrNoSteps = errors.New("form host declares no steps")

// Option configures a Controller.
type Option func(*Controller)

// WithMode sets the interaction variant. The default is InputDriven.
func WithMode(m Mode) Option {
	return func(c *Controller) { c.mode = m }
}

// WithListener registers a listener. May be given more than once.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// Controller drives one wizard instance. It is not safe for concurrent use;
// every method is expected to run on the UI event loop.
type Controller struct {
	host      Host
	mode      Mode
	steps     []Step
	current   int
	answers   Answers
	finalized bool
	listeners []Listener
}

// New binds a controller to host and renders step 1.
func New(host Host, opts ...Option) (*Controller, error) {
	steps := host.Steps()
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	c := &Controller{
		host:    host,
		steps:   steps,
		answers: Answers{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if ir, ok := host.(IndicatorRenderer); ok {
		ir.BuildIndicators(len(steps))
	}
	if cr, ok := host.(CounterRenderer); ok {
		cr.RenderCounter(1, len(steps))
	}

	logger.Debug("Binding %s controller to %d steps", c.mode, len(steps))
	c.GoToStep(1)
	return c, nil
}

// Subscribe adds a listener after construction.
func (c *Controller) Subscribe(l Listener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

// Mode returns the interaction variant.
func (c *Controller) Mode() Mode { return c.mode }

// CurrentStep returns the visible position.
func (c *Controller) CurrentStep() int { return c.current }

// TotalSteps returns the number of declared steps.
func (c *Controller) TotalSteps() int { return len(c.steps) }

// Finalized reports whether the submit control has been enabled.
func (c *Controller) Finalized() bool { return c.finalized }

// Progress returns the projection for the current position.
func (c *Controller) Progress() Progress {
	return ProgressAt(c.current, len(c.steps))
}

// Data returns a snapshot of the committed answers.
func (c *Controller) Data() Answers {
	return c.answers.Clone()
}

// Step returns the step declared at position.
func (c *Controller) Step(position int) (Step, bool) {
	for _, s := range c.steps {
		if s.Position == position {
			return s, true
		}
	}
	return Step{}, false
}

// GoToStep makes step n visible. Targets outside [1, total] are ignored.
func (c *Controller) GoToStep(n int) bool {
	total := len(c.steps)
	if n < 1 || n > total {
		logger.Debug("Ignoring navigation to step %d of %d", n, total)
		return false
	}

	for _, s := range c.steps {
		c.host.RenderStep(s.Position, false)
	}
	c.host.RenderStep(n, true)
	c.current = n

	if cr, ok := c.host.(CounterRenderer); ok {
		cr.RenderCounter(n, total)
	}
	if pr, ok := c.host.(ProgressRenderer); ok {
		pr.RenderProgress(c.Progress())
	}
	if ir, ok := c.host.(IndicatorRenderer); ok {
		ir.RenderIndicators(Indicators(n, total))
	}

	c.restore(n)
	c.renderControls()
	return true
}

// CollectCurrentStep commits every keyed input of the visible step.
// It reports whether anything was collected.
func (c *Controller) CollectCurrentStep() bool {
	step, ok := c.Step(c.current)
	if !ok {
		return false
	}
	inputs := step.Inputs()
	if len(inputs) == 0 {
		return false
	}
	for _, b := range inputs {
		c.answers[b.Key()] = c.host.Value(c.current, b)
	}
	c.mirror()
	c.emit(EventChange)
	return true
}

// Select commits an option of the visible step and moves forward.
// It only applies to OptionDriven wizards.
func (c *Controller) Select(field, value string) bool {
	if c.mode != OptionDriven {
		return false
	}
	step, ok := c.Step(c.current)
	if !ok {
		return false
	}
	siblings := step.Options(field)
	found := false
	for _, b := range siblings {
		if b.Value == value {
			found = true
			break
		}
	}
	if !found {
		logger.Debug("No option %s=%s on step %d", field, value, c.current)
		return false
	}

	c.answers[field] = value
	if om, ok := c.host.(OptionMarker); ok {
		for _, b := range siblings {
			om.MarkOption(c.current, b, b.Value == value)
		}
	}
	c.mirror()
	c.emit(EventChange)

	c.forward()
	return true
}

// Next collects the visible step and moves forward.
// It only applies to InputDriven wizards.
func (c *Controller) Next() bool {
	if c.mode != InputDriven {
		return false
	}
	c.CollectCurrentStep()
	c.forward()
	return true
}

// Previous moves back one step. Edits on the step being left are not
// collected.
func (c *Controller) Previous() bool {
	return c.GoToStep(c.current - 1)
}

// Finalize enables submission and emits complete. It only takes effect on
// the last step.
func (c *Controller) Finalize() bool {
	if c.current != len(c.steps) {
		return false
	}
	c.finalized = true
	c.renderControls()
	logger.Info("Wizard complete with %d answers", len(c.answers))
	c.emit(EventComplete)
	return true
}

// Submit handles the host's native submission. The default action is
// always prevented.
func (c *Controller) Submit(action SubmitAction) {
	if c.mode == InputDriven {
		c.CollectCurrentStep()
	}
	if action != nil {
		action.PreventDefault()
	}
	logger.Info("Wizard submitted with %d answers", len(c.answers))
	c.emit(EventSubmit)
}

// Reset clears every answer and returns to step 1.
func (c *Controller) Reset() {
	c.answers = Answers{}
	c.mirror()

	switch c.mode {
	case OptionDriven:
		if om, ok := c.host.(OptionMarker); ok {
			for _, s := range c.steps {
				for _, b := range s.Bindings {
					if b.Kind == KindOption {
						om.MarkOption(s.Position, b, false)
					}
				}
			}
		}
	default:
		for _, s := range c.steps {
			for _, b := range s.Inputs() {
				c.host.SetValue(s.Position, b, "")
			}
		}
	}

	c.finalized = false
	c.GoToStep(1)
	c.emit(EventChange)
}

// Seed commits a value supplied from outside the wizard, such as a gate.
func (c *Controller) Seed(field, value string) {
	if field == "" {
		return
	}
	c.answers[field] = value
	c.restore(c.current)
	c.mirror()
	c.emit(EventChange)
}

func (c *Controller) forward() {
	if c.current == len(c.steps) {
		c.Finalize()
		return
	}
	c.GoToStep(c.current + 1)
}

// restore writes committed answers back into the bindings of a step.
func (c *Controller) restore(position int) {
	step, ok := c.Step(position)
	if !ok {
		return
	}
	om, canMark := c.host.(OptionMarker)
	for _, b := range step.Bindings {
		key := b.Key()
		if key == "" {
			continue
		}
		v, committed := c.answers[key]
		if !committed {
			continue
		}
		switch b.Kind {
		case KindInput:
			c.host.SetValue(position, b, v)
		case KindOption:
			if canMark {
				om.MarkOption(position, b, b.Value == v)
			}
		}
	}
}

func (c *Controller) renderControls() {
	cr, ok := c.host.(ControlRenderer)
	if !ok {
		return
	}
	cr.RenderControls(c.controls())
}

func (c *Controller) controls() Controls {
	last := c.current == len(c.steps)
	ctl := Controls{Previous: c.current > 1}
	switch c.mode {
	case OptionDriven:
		ctl.Submit = c.finalized
		ctl.SubmitEnabled = c.finalized
	default:
		ctl.Next = !last
		ctl.Submit = last
		ctl.SubmitEnabled = last && c.finalized
	}
	return ctl
}

func (c *Controller) mirror() {
	if m, ok := c.host.(Mirror); ok {
		m.MirrorAnswers(c.answers.Clone())
	}
}

func (c *Controller) emit(t EventType) {
	ev := Event{Type: t, Step: c.current}
	for _, l := range c.listeners {
		ev.Answers = c.answers.Clone()
		l(ev)
	}
}
