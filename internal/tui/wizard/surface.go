package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/tui/theme"
)

// optionKey identifies one option binding on one step.
type optionKey struct {
	step  int
	field string
	value string
}

// Surface is the terminal render target of a wizard. It owns the text
// inputs and everything the controller draws, and renders them as strings
// for the model's View.
type Surface struct {
	theme *theme.Theme
	steps []form.Step

	visible []bool              // per step index
	inputs  [][]textinput.Model // per step index, per binding index
	marked  map[optionKey]bool

	progress   form.Progress
	indicators []form.Indicator
	current    int
	total      int
	controls   form.Controls
	answers    form.Answers
}

// NewSurface creates a surface for steps. Every input binding gets its own
// text input, including unbound ones that are never collected.
func NewSurface(steps []form.Step, th *theme.Theme) *Surface {
	if th == nil {
		th = theme.Default()
	}
	s := &Surface{
		theme:   th,
		steps:   steps,
		visible: make([]bool, len(steps)),
		inputs:  make([][]textinput.Model, len(steps)),
		marked:  make(map[optionKey]bool),
		answers: form.Answers{},
	}
	for i, step := range steps {
		s.inputs[i] = make([]textinput.Model, len(step.Bindings))
		for j, b := range step.Bindings {
			if b.Kind == form.KindInput {
				s.inputs[i][j] = s.newInput(b)
			}
		}
	}
	return s
}

func (s *Surface) newInput(b form.Binding) textinput.Model {
	st := s.theme.S()
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = b.Placeholder
	ti.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        st.InputText,
			Placeholder: st.InputPlaceholder,
			Prompt:      st.LabelFocused,
		},
		Blurred: textinput.StyleState{
			Text:        st.Label,
			Placeholder: st.InputPlaceholder,
			Prompt:      st.InputPlaceholder,
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(s.theme.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	ti.SetWidth(40)
	return ti
}

// Steps implements form.Host.
func (s *Surface) Steps() []form.Step { return s.steps }

// RenderStep implements form.Host.
func (s *Surface) RenderStep(position int, visible bool) {
	for i, step := range s.steps {
		if step.Position == position {
			s.visible[i] = visible
		}
	}
}

// Value implements form.Host.
func (s *Surface) Value(step int, b form.Binding) string {
	if in := s.input(step, b); in != nil {
		return in.Value()
	}
	return ""
}

// SetValue implements form.Host.
func (s *Surface) SetValue(step int, b form.Binding, value string) {
	if in := s.input(step, b); in != nil {
		in.SetValue(value)
	}
}

// RenderProgress implements form.ProgressRenderer.
func (s *Surface) RenderProgress(p form.Progress) { s.progress = p }

// BuildIndicators implements form.IndicatorRenderer.
func (s *Surface) BuildIndicators(total int) {
	s.indicators = make([]form.Indicator, total)
	for i := range s.indicators {
		s.indicators[i] = form.Indicator{Step: i + 1, State: form.Pending}
	}
}

// RenderIndicators implements form.IndicatorRenderer. Markers beyond the
// built count are dropped.
func (s *Surface) RenderIndicators(ind []form.Indicator) {
	for i := range s.indicators {
		if i < len(ind) {
			s.indicators[i] = ind[i]
		}
	}
}

// RenderCounter implements form.CounterRenderer.
func (s *Surface) RenderCounter(current, total int) {
	s.current, s.total = current, total
}

// RenderControls implements form.ControlRenderer.
func (s *Surface) RenderControls(c form.Controls) { s.controls = c }

// MarkOption implements form.OptionMarker.
func (s *Surface) MarkOption(step int, b form.Binding, selected bool) {
	k := optionKey{step: step, field: b.Key(), value: b.Value}
	if selected {
		s.marked[k] = true
		return
	}
	delete(s.marked, k)
}

// MirrorAnswers implements form.Mirror.
func (s *Surface) MirrorAnswers(a form.Answers) { s.answers = a }

// Controls returns the last rendered control visibility.
func (s *Surface) Controls() form.Controls { return s.controls }

// Answers returns the mirrored answers.
func (s *Surface) Answers() form.Answers { return s.answers.Clone() }

// Marked reports whether an option binding is drawn as selected.
func (s *Surface) Marked(step int, b form.Binding) bool {
	return s.marked[optionKey{step: step, field: b.Key(), value: b.Value}]
}

// Visible returns the index of the first visible step, or -1.
func (s *Surface) Visible() int {
	for i, v := range s.visible {
		if v {
			return i
		}
	}
	return -1
}

// VisibleCount returns how many steps are drawn.
func (s *Surface) VisibleCount() int {
	n := 0
	for _, v := range s.visible {
		if v {
			n++
		}
	}
	return n
}

// input finds the text input of binding b on the step at position.
func (s *Surface) input(position int, b form.Binding) *textinput.Model {
	for i, step := range s.steps {
		if step.Position != position {
			continue
		}
		for j, sb := range step.Bindings {
			if sb == b && sb.Kind == form.KindInput {
				return &s.inputs[i][j]
			}
		}
	}
	return nil
}

// SetWidth resizes every text input.
func (s *Surface) SetWidth(width int) {
	for i := range s.inputs {
		for j := range s.inputs[i] {
			if s.steps[i].Bindings[j].Kind == form.KindInput {
				s.inputs[i][j].SetWidth(width)
			}
		}
	}
}

// renderCounter draws "Step n of m".
func (s *Surface) renderCounter() string {
	return s.theme.S().Counter.Render(fmt.Sprintf("Step %d of %d", s.current, s.total))
}

// renderProgress draws a bar width cells wide, filled with a gradient from
// the primary to the success color.
func (s *Surface) renderProgress(width int) string {
	if width < 10 {
		width = 10
	}
	filled := width * s.progress.Percent / 100
	var b strings.Builder
	for i := 0; i < filled; i++ {
		pos := 0.0
		if width > 1 {
			pos = float64(i) / float64(width-1)
		}
		c := theme.InterpolateColor(s.theme.Primary, s.theme.Success, pos)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("█"))
	}
	b.WriteString(s.theme.S().ProgressTrack.Render(strings.Repeat("░", width-filled)))
	return b.String() + " " + s.theme.S().Counter.Render(fmt.Sprintf("%3d%%", s.progress.Percent))
}

// renderIndicators draws one marker per built indicator.
func (s *Surface) renderIndicators() string {
	st := s.theme.S()
	parts := make([]string, 0, len(s.indicators))
	for _, ind := range s.indicators {
		switch ind.State {
		case form.Completed:
			parts = append(parts, st.IndicatorCompleted.Render("●"))
		case form.Active:
			parts = append(parts, st.IndicatorActive.Render("◉"))
		default:
			parts = append(parts, st.IndicatorPending.Render("○"))
		}
	}
	return strings.Join(parts, " ")
}

// renderStep draws the bindings of the step at index idx. focus is the
// focused binding index, or -1.
func (s *Surface) renderStep(idx, focus int) string {
	if idx < 0 || idx >= len(s.steps) {
		return ""
	}
	st := s.theme.S()
	step := s.steps[idx]

	var b strings.Builder
	if step.Title != "" {
		b.WriteString(st.StepTitle.Render(step.Title))
		b.WriteString("\n")
	}
	if step.Description != "" {
		b.WriteString(st.StepDescription.Render(step.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	prevField := ""
	for j, binding := range step.Bindings {
		switch binding.Kind {
		case form.KindInput:
			label := st.Label
			if j == focus {
				label = st.LabelFocused
			}
			b.WriteString(label.Render(inputLabel(binding)))
			b.WriteString("\n")
			b.WriteString(s.inputs[idx][j].View())
			b.WriteString("\n\n")
		case form.KindOption:
			if binding.Key() != prevField && j > 0 {
				b.WriteString("\n")
			}
			b.WriteString(s.renderOption(step.Position, binding, j == focus))
			b.WriteString("\n")
		}
		prevField = binding.Key()
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Surface) renderOption(position int, binding form.Binding, focused bool) string {
	st := s.theme.S()
	mark := "( )"
	style := st.Option
	if s.Marked(position, binding) {
		mark = "(•)"
		style = st.OptionSelected
	}
	cursor := "  "
	if focused {
		cursor = "› "
		style = st.OptionCursor
	}
	label := binding.Label
	if label == "" {
		label = binding.Value
	}
	return cursor + style.Render(mark+" "+label)
}

func inputLabel(b form.Binding) string {
	if b.Label != "" {
		return b.Label
	}
	if k := b.Key(); k != "" {
		return k
	}
	return "(unnamed)"
}
