// Package wizard is the terminal host surface of a form wizard: it renders
// the steps a controller drives and turns key presses into transitions.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/mark3labs/stepform/internal/gate"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/tui/theme"
)

// ErrCancelled is returned by Run when the user quits before submitting.
var ErrCancelled = errors.New("wizard cancelled by user")

// EventSink receives the lifecycle events of a running wizard.
type EventSink interface {
	Deliver(ctx context.Context, ev form.Event) error
}

// Options configures a wizard model.
type Options struct {
	Mode   string // Overrides the definition's mode when set
	NoGate bool   // Skip the definition's gate
	Sink   EventSink
	Theme  *theme.Theme
	Keys   *KeyMap
}

// Result holds what the wizard collected.
type Result struct {
	Answers   form.Answers
	Completed bool // The last step was finalized
	Submitted bool
}

type phase int

const (
	phaseGate phase = iota
	phaseWizard
	phaseSubmitted
)

// deliveredMsg reports the outcome of handing one event to the sink.
type deliveredMsg struct {
	event form.Event
	err   error
}

// target is one focusable element: a binding of the visible step or a
// button of the bar.
type target struct {
	binding int
	button  int
}

// nativeSubmit is the terminal's submission action. Left unprevented it
// would close the program.
type nativeSubmit struct {
	prevented bool
}

func (n *nativeSubmit) PreventDefault() { n.prevented = true }

// Model is the BubbleTea model of one wizard.
type Model struct {
	def    *formdef.Definition
	theme  *theme.Theme
	keys   KeyMap
	outbox *outbox // nil without a sink

	registry *form.Registry
	surface  *Surface
	ctrl     *form.Controller
	mode     form.Mode

	gate      *gate.Gate
	gateInput textinput.Model
	gateErr   string

	phase     phase
	focus     int
	pending   []form.Event
	status    string
	cancelled bool
	submitted bool
	width     int
	height    int
}

// New builds the model for def and binds a controller to its surface.
func New(ctx context.Context, def *formdef.Definition, opts Options) (*Model, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	mode := def.NavigationMode()
	if opts.Mode != "" {
		parsed, err := form.ParseMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}
	if err := def.SupportsMode(mode); err != nil {
		return nil, err
	}
	th := opts.Theme
	if th == nil {
		th = theme.Default()
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	m := &Model{
		def:      def,
		theme:    th,
		keys:     keys,
		registry: form.NewRegistry(),
		surface:  NewSurface(def.FormSteps(), th),
		mode:     mode,
		phase:    phaseWizard,
		width:    80,
		height:   24,
	}
	if _, err := m.bind(); err != nil {
		return nil, err
	}

	if !opts.NoGate {
		g, err := def.NewGate()
		if err != nil {
			return nil, err
		}
		if g != nil {
			m.gate = g
			m.gateInput = m.surface.newInput(form.Binding{Placeholder: "12345"})
			m.phase = phaseGate
		}
	}
	if opts.Sink != nil {
		m.outbox = newOutbox(ctx, opts.Sink)
	}
	return m, nil
}

// bind returns the surface's controller, creating it on first use.
func (m *Model) bind() (*form.Controller, error) {
	ctrl, err := m.registry.Bind(m.surface, form.WithMode(m.mode), form.WithListener(m.queue))
	if err != nil {
		return nil, fmt.Errorf("binding wizard: %w", err)
	}
	m.ctrl = ctrl
	return ctrl, nil
}

// Run shows the wizard until it is submitted or cancelled.
func Run(ctx context.Context, def *formdef.Definition, opts Options) (*Result, error) {
	m, err := New(ctx, def, opts)
	if err != nil {
		return nil, err
	}

	p := tea.NewProgram(m, tea.WithContext(ctx))
	finalModel, err := p.Run()
	m.Close()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if wizModel.cancelled {
		return nil, ErrCancelled
	}
	return wizModel.Result(), nil
}

// Close waits until every emitted event has reached the sink. The model
// must not be updated afterwards.
func (m *Model) Close() {
	if len(m.pending) > 0 {
		m.flush()
	}
	if m.outbox != nil {
		m.outbox.close()
	}
}

// Controller returns the bound controller.
func (m *Model) Controller() *form.Controller { return m.ctrl }

// Surface returns the render target.
func (m *Model) Surface() *Surface { return m.surface }

// Cancelled reports whether the user quit.
func (m *Model) Cancelled() bool { return m.cancelled }

// Result returns the answers collected so far.
func (m *Model) Result() *Result {
	return &Result{
		Answers:   m.ctrl.Data(),
		Completed: m.ctrl.Finalized(),
		Submitted: m.submitted,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if _, err := m.bind(); err != nil {
		logger.Error("Wizard init failed: %v", err)
		return tea.Quit
	}
	var focus tea.Cmd
	if m.phase == phaseGate {
		focus = m.gateInput.Focus()
	} else {
		m.focus = m.defaultFocus()
		focus = m.applyFocus()
	}
	return tea.Batch(focus, m.waitForDelivery())
}

func (m *Model) waitForDelivery() tea.Cmd {
	if m.outbox == nil {
		return nil
	}
	return m.outbox.wait()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancelled = true
			return m, tea.Quit
		}
		switch m.phase {
		case phaseGate:
			cmd = m.updateGate(msg)
		case phaseSubmitted:
			cmd = m.updateSubmitted(msg)
		default:
			cmd = m.updateWizard(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.surface.SetWidth(m.contentWidth() - 6)
		m.gateInput.SetWidth(m.contentWidth() - 6)
		return m, nil

	case deliveredMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not record %s: %v", msg.event.Type, msg.err)
		}
		return m, m.waitForDelivery()

	default:
		cmd = m.forwardToFocused(msg)
	}
	m.flush()
	return m, cmd
}

func (m *Model) updateGate(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.cancelled = true
		return tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		value, err := m.gate.Check(m.gateInput.Value())
		if err != nil {
			m.gateErr = gate.Message(err)
			logger.Debug("Gate rejected %q", m.gateInput.Value())
			return nil
		}
		m.gateErr = ""
		m.gateInput.Blur()
		m.phase = phaseWizard
		m.ctrl.Seed(m.gate.Field(), value)
		m.focus = m.defaultFocus()
		return m.applyFocus()
	}

	var cmd tea.Cmd
	m.gateInput, cmd = m.gateInput.Update(msg)
	m.gateErr = ""
	return cmd
}

func (m *Model) updateSubmitted(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Back), msg.String() == "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) updateWizard(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Back):
		if m.ctrl.CurrentStep() == 1 {
			m.cancelled = true
			return tea.Quit
		}
		m.ctrl.Previous()
		m.focus = m.defaultFocus()
		return m.applyFocus()
	case key.Matches(msg, m.keys.NextField):
		return m.moveFocus(1)
	case key.Matches(msg, m.keys.PrevField):
		return m.moveFocus(-1)
	}

	t, ok := m.focused()
	if !ok {
		return nil
	}
	if t.button >= 0 {
		if key.Matches(msg, m.keys.Confirm) {
			return m.activate(m.buttons()[t.button].Action)
		}
		return nil
	}

	step := m.visibleStep()
	b := step.Bindings[t.binding]
	if b.Kind == form.KindOption {
		if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Select) {
			if m.ctrl.Select(b.Key(), b.Value) {
				return m.afterNavigate()
			}
		}
		return nil
	}

	if key.Matches(msg, m.keys.Confirm) {
		if m.hasLaterInput(t.binding) {
			return m.moveFocus(1)
		}
		if m.mode == form.InputDriven {
			return m.activate(ActionNext)
		}
		return m.moveFocus(1)
	}
	return m.forwardToFocused(msg)
}

// activate runs the action behind a button.
func (m *Model) activate(a ButtonAction) tea.Cmd {
	switch a {
	case ActionPrevious:
		m.ctrl.Previous()
		m.focus = m.defaultFocus()
		return m.applyFocus()
	case ActionNext:
		m.ctrl.Next()
		return m.afterNavigate()
	case ActionSubmit:
		return m.submit()
	}
	return nil
}

// afterNavigate moves focus after a forward transition: to the submit
// button once the wizard is finalized, otherwise to the new step.
func (m *Model) afterNavigate() tea.Cmd {
	m.focus = m.defaultFocus()
	if m.ctrl.Finalized() {
		for i, t := range m.targets() {
			if t.button >= 0 && m.buttons()[t.button].Action == ActionSubmit {
				m.focus = i
			}
		}
	}
	return m.applyFocus()
}

// buttons projects the surface controls into buttons. In input mode the
// submit button on the last step is usable before finalize, since submitting
// from there moves forward first.
func (m *Model) buttons() []Button {
	btns := ButtonsFor(m.surface.Controls())
	if m.finishesOnSubmit() {
		for i := range btns {
			if btns[i].Action == ActionSubmit {
				btns[i].State = ButtonNormal
			}
		}
	}
	return btns
}

// finishesOnSubmit reports whether submit has to finalize the wizard first:
// an input-driven wizard on its last step that has not been finalized yet.
func (m *Model) finishesOnSubmit() bool {
	ctl := m.surface.Controls()
	return m.mode == form.InputDriven && ctl.Submit && !ctl.SubmitEnabled &&
		m.ctrl.CurrentStep() == m.ctrl.TotalSteps()
}

// submit triggers the native submission. It is available once the submit
// control is enabled, or on the last input-driven step, where it collects and
// finalizes first.
func (m *Model) submit() tea.Cmd {
	if m.finishesOnSubmit() {
		m.ctrl.Next()
	}
	if !m.surface.Controls().SubmitEnabled {
		return nil
	}
	action := &nativeSubmit{}
	m.ctrl.Submit(action)
	m.submitted = true
	m.blurAll()
	if !action.prevented {
		return tea.Quit
	}
	m.phase = phaseSubmitted
	return nil
}

// reset clears the wizard and starts over, at the gate when there is one.
func (m *Model) reset() tea.Cmd {
	m.ctrl.Reset()
	m.submitted = false
	m.status = ""
	if m.gate != nil {
		m.blurAll()
		m.phase = phaseGate
		m.gateInput.SetValue("")
		m.gateErr = ""
		return m.gateInput.Focus()
	}
	m.phase = phaseWizard
	m.focus = m.defaultFocus()
	return m.applyFocus()
}

// queue is the controller listener. Events are delivered after the
// transition that emitted them has finished.
func (m *Model) queue(ev form.Event) {
	m.pending = append(m.pending, ev)
}

// flush hands queued events to the outbox, or drops them without a sink.
func (m *Model) flush() {
	events := m.pending
	m.pending = nil
	if m.outbox == nil {
		return
	}
	for _, ev := range events {
		m.outbox.send(ev)
	}
}

func (m *Model) visibleStep() form.Step {
	idx := m.surface.Visible()
	if idx < 0 {
		return form.Step{}
	}
	return m.surface.steps[idx]
}

// targets lists the focusable elements in display order. Options are only
// focusable when choosing drives navigation; disabled buttons never are.
func (m *Model) targets() []target {
	var ts []target
	for j, b := range m.visibleStep().Bindings {
		if b.Kind == form.KindOption && m.mode != form.OptionDriven {
			continue
		}
		ts = append(ts, target{binding: j, button: -1})
	}
	for i, btn := range m.buttons() {
		if btn.State != ButtonDisabled {
			ts = append(ts, target{binding: -1, button: i})
		}
	}
	return ts
}

func (m *Model) focused() (target, bool) {
	ts := m.targets()
	if m.focus < 0 || m.focus >= len(ts) {
		return target{}, false
	}
	return ts[m.focus], true
}

// defaultFocus is the first binding, or the forward button when the step
// has nothing to fill in.
func (m *Model) defaultFocus() int {
	ts := m.targets()
	for i, t := range ts {
		if t.binding >= 0 {
			return i
		}
	}
	btns := m.buttons()
	for i, t := range ts {
		if a := btns[t.button].Action; a == ActionNext || a == ActionSubmit {
			return i
		}
	}
	return 0
}

func (m *Model) hasLaterInput(binding int) bool {
	for j, b := range m.visibleStep().Bindings {
		if j > binding && b.Kind == form.KindInput {
			return true
		}
	}
	return false
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	n := len(m.targets())
	if n == 0 {
		return nil
	}
	m.focus = ((m.focus+delta)%n + n) % n
	return m.applyFocus()
}

// applyFocus focuses the targeted input and blurs every other one.
func (m *Model) applyFocus() tea.Cmd {
	m.blurAll()
	t, ok := m.focused()
	if !ok || t.binding < 0 {
		return nil
	}
	idx := m.surface.Visible()
	if m.surface.steps[idx].Bindings[t.binding].Kind != form.KindInput {
		return nil
	}
	return m.surface.inputs[idx][t.binding].Focus()
}

func (m *Model) blurAll() {
	for i := range m.surface.inputs {
		for j := range m.surface.inputs[i] {
			if m.surface.steps[i].Bindings[j].Kind == form.KindInput {
				m.surface.inputs[i][j].Blur()
			}
		}
	}
}

// forwardToFocused hands a message to the focused text input.
func (m *Model) forwardToFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.phase == phaseGate {
		m.gateInput, cmd = m.gateInput.Update(msg)
		return cmd
	}
	t, ok := m.focused()
	if !ok || t.binding < 0 {
		return nil
	}
	idx := m.surface.Visible()
	if m.surface.steps[idx].Bindings[t.binding].Kind != form.KindInput {
		return nil
	}
	in := &m.surface.inputs[idx][t.binding]
	*in, cmd = in.Update(msg)
	return cmd
}

func (m *Model) contentWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100
	}
	return w
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal(m.body())

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// body renders the content of the current phase.
func (m *Model) body() string {
	switch m.phase {
	case phaseGate:
		return m.renderGate()
	case phaseSubmitted:
		return m.renderSubmitted()
	default:
		return m.renderWizard()
	}
}

func (m *Model) title() string {
	if m.def.Title != "" {
		return m.def.Title
	}
	return m.def.Name
}

func (m *Model) renderGate() string {
	st := m.theme.S()
	sections := []string{
		st.StepDescription.Render("Enter your " + m.gate.Label() + " to get started."),
		"",
		st.LabelFocused.Render(m.gate.Label()),
		m.gateInput.View(),
	}
	if m.gateErr != "" {
		sections = append(sections, st.Error.Render("✗ "+m.gateErr))
	}
	sections = append(sections, "", renderHintBar(st, m.keys.Confirm, m.keys.Quit))
	return strings.Join(sections, "\n")
}

func (m *Model) renderWizard() string {
	st := m.theme.S()
	width := m.contentWidth() - 6

	focusBinding := -1
	focusButton := -1
	if t, ok := m.focused(); ok {
		focusBinding, focusButton = t.binding, t.button
	}

	buttons := m.buttons()
	if focusButton >= 0 {
		buttons[focusButton].State = ButtonFocused
	}
	bar := NewButtonBar(buttons, st)
	bar.SetWidth(width)

	sections := []string{
		m.surface.renderCounter() + "  " + m.surface.renderIndicators(),
		m.surface.renderProgress(width - 6),
		"",
		m.surface.renderStep(m.surface.Visible(), focusBinding),
		"",
		bar.Render(),
	}
	if m.status != "" {
		sections = append(sections, st.Error.Render(m.status))
	}

	hints := []key.Binding{m.keys.NextField, m.keys.Confirm}
	if m.mode == form.OptionDriven {
		hints = append(hints, m.keys.Select)
	}
	hints = append(hints, m.keys.Back)
	if m.surface.Controls().SubmitEnabled || m.finishesOnSubmit() {
		hints = append(hints, m.keys.Submit)
	}
	hints = append(hints, m.keys.Reset, m.keys.Quit)
	sections = append(sections, "", renderHintBar(st, hints...))
	return strings.Join(sections, "\n")
}

func (m *Model) renderSubmitted() string {
	st := m.theme.S()
	answers := m.ctrl.Data()
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sections := []string{st.Success.Render("✓ Submitted"), ""}
	for _, k := range keys {
		sections = append(sections, st.Label.Render(k+":")+" "+st.InputText.Render(answers[k]))
	}
	if m.status != "" {
		sections = append(sections, "", st.Error.Render(m.status))
	}
	closeKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "close"))
	sections = append(sections, "", renderHintBar(st, closeKey, m.keys.Reset))
	return strings.Join(sections, "\n")
}

// renderModal wraps the phase content in the container with the title.
func (m *Model) renderModal(content string) string {
	st := m.theme.S()
	inner := strings.Join([]string{st.HeaderTitle.Render(m.title()), "", content}, "\n")
	modal := st.Container.Width(m.contentWidth()).Render(inner)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
