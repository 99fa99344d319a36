package form

// Host is the render target a controller is bound to. It owns the controls
// and their current values; the controller owns the committed answers.
// Hosts bound through a Registry must be comparable; pointer hosts are.
type Host interface {
	// Steps returns the declared steps in display order.
	Steps() []Step
	// RenderStep shows or hides the step at position.
	RenderStep(position int, visible bool)
	// Value reads the current value of an input binding.
	Value(step int, b Binding) string
	// SetValue writes a value into an input binding.
	SetValue(step int, b Binding, value string)
}

// ProgressRenderer draws the progress bar.
type ProgressRenderer interface {
	RenderProgress(Progress)
}

// IndicatorRenderer draws one marker per step.
type IndicatorRenderer interface {
	BuildIndicators(total int)
	RenderIndicators([]Indicator)
}

// CounterRenderer draws the "current of total" display.
type CounterRenderer interface {
	RenderCounter(current, total int)
}

// ControlRenderer shows and hides the navigation controls.
type ControlRenderer interface {
	RenderControls(Controls)
}

// OptionMarker draws the selected state of option bindings.
type OptionMarker interface {
	MarkOption(step int, b Binding, selected bool)
}

// Mirror keeps a serialized copy of the answers, such as a hidden field.
type Mirror interface {
	MirrorAnswers(Answers)
}

// SubmitAction is the host's native submission. The controller always
// suppresses its default behaviour.
type SubmitAction interface {
	PreventDefault()
}
