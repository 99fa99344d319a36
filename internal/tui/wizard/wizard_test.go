package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/stretchr/testify/require"
)

const inputYAML = `
name: Contact
mode: input
steps:
  - title: Who
    fields:
      - field: name
        label: Name
      - name: email
        label: Email
  - title: Phone
    fields:
      - field: phone
        label: Phone
`

const optionYAML = `
name: Plans
mode: option
steps:
  - title: Plan
    fields:
      - field: plan
        options:
          - {label: Gold, value: gold}
          - {label: Silver, value: silver}
  - title: Term
    fields:
      - field: term
        options:
          - {label: 10 years, value: "10"}
          - {label: 20 years, value: "20"}
`

const gatedYAML = `
name: Gated
mode: input
gate:
  field: zip
steps:
  - title: Where
    fields:
      - field: zip
        label: ZIP
      - field: city
        label: City
`

const mixedYAML = `
name: Mixed
mode: option
steps:
  - title: You
    fields:
      - field: name
        label: Name
      - field: plan
        options:
          - {label: Gold, value: gold}
`

const reviewYAML = `
name: Review
steps:
  - title: Who
    fields:
      - field: name
        label: Name
  - title: Confirm
    description: Check your answers and submit.
    fields: []
`

// recordingSink records delivered events and can be told to fail.
type recordingSink struct {
	mu     sync.Mutex
	events []form.Event
	err    error
}

func (s *recordingSink) Deliver(_ context.Context, ev form.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) types() []form.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]form.EventType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

func newModel(t *testing.T, yaml string, opts Options) *Model {
	t.Helper()
	def, err := formdef.Parse([]byte(yaml))
	require.NoError(t, err)
	m, err := New(context.Background(), def, opts)
	require.NoError(t, err)
	m.Init()
	return m
}

func press(m *Model, msgs ...tea.KeyPressMsg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

var (
	enter    = tea.KeyPressMsg{Code: tea.KeyEnter}
	esc      = tea.KeyPressMsg{Code: tea.KeyEscape}
	tab      = tea.KeyPressMsg{Code: tea.KeyTab}
	down     = tea.KeyPressMsg{Code: tea.KeyDown}
	space    = tea.KeyPressMsg{Code: tea.KeySpace}
	ctrlS    = tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	ctrlR    = tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}
	ctrlC    = tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	letterQ  = tea.KeyPressMsg{Code: 'q', Text: "q"}
	shiftTab = tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
)

func TestInputDriven_FullFlow(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	m := newModel(t, inputYAML, Options{Sink: sink})
	ctrl := m.Controller()

	typeText(m, "Ana")
	press(m, enter) // to email
	typeText(m, "ana@example.com")
	press(m, enter) // next step
	require.Equal(t, 2, ctrl.CurrentStep())
	require.Equal(t, form.Answers{"name": "Ana", "email": "ana@example.com"}, ctrl.Data())

	typeText(m, "555")
	press(m, enter) // forward from the last step finalizes
	require.True(t, ctrl.Finalized())
	require.True(t, m.Surface().Controls().SubmitEnabled)

	focused, ok := m.focused()
	require.True(t, ok)
	require.GreaterOrEqual(t, focused.button, 0, "submit button takes focus")

	press(m, enter)
	require.Equal(t, phaseSubmitted, m.phase)
	require.Contains(t, m.body(), "Submitted")

	res := m.Result()
	require.True(t, res.Submitted)
	require.True(t, res.Completed)
	require.Equal(t, form.Answers{"name": "Ana", "email": "ana@example.com", "phone": "555"}, res.Answers)

	m.Close()
	require.Equal(t, []form.EventType{
		form.EventChange,
		form.EventChange,
		form.EventComplete,
		form.EventChange,
		form.EventSubmit,
	}, sink.types())
	require.Equal(t, res.Answers, sink.events[len(sink.events)-1].Answers)
}

func TestOptionDriven_ChoosingAdvances(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	m := newModel(t, optionYAML, Options{Sink: sink})
	ctrl := m.Controller()

	press(m, down, space) // silver
	require.Equal(t, 2, ctrl.CurrentStep())

	plan, _ := ctrl.Step(1)
	require.True(t, m.Surface().Marked(1, plan.Bindings[1]))
	require.False(t, m.Surface().Marked(1, plan.Bindings[0]))

	press(m, enter) // 10 years on the last step
	require.Equal(t, 2, ctrl.CurrentStep())
	require.True(t, ctrl.Finalized())

	press(m, ctrlS)
	require.True(t, m.Result().Submitted)
	require.Equal(t, form.Answers{"plan": "silver", "term": "10"}, m.Result().Answers)

	m.Close()
	require.Equal(t, []form.EventType{
		form.EventChange,
		form.EventChange,
		form.EventComplete,
		form.EventSubmit,
	}, sink.types())
}

func TestModeOverride(t *testing.T) {
	t.Parallel()

	m := newModel(t, mixedYAML, Options{Mode: "input"})
	require.Equal(t, form.InputDriven, m.Controller().Mode())

	typeText(m, "Ana")
	press(m, enter)
	require.True(t, m.Controller().Finalized())
	press(m, enter)
	require.True(t, m.Result().Submitted)
	require.Equal(t, form.Answers{"name": "Ana"}, m.Result().Answers)

	def, err := formdef.Parse([]byte(optionYAML))
	require.NoError(t, err)
	_, err = New(context.Background(), def, Options{Mode: "sideways"})
	require.Error(t, err)
}

func TestModeOverride_RejectsModeThatCannotFinish(t *testing.T) {
	t.Parallel()

	quote, err := formdef.Builtin("life-quote")
	require.NoError(t, err)
	_, err = New(context.Background(), quote, Options{Mode: "option", NoGate: true})
	require.ErrorIs(t, err, formdef.ErrModeMismatch)

	plans, err := formdef.Parse([]byte(optionYAML))
	require.NoError(t, err)
	_, err = New(context.Background(), plans, Options{Mode: "input"})
	require.ErrorIs(t, err, formdef.ErrModeMismatch)
}

func TestInputDriven_SubmitFromStepWithoutInputs(t *testing.T) {
	t.Parallel()

	for _, submitKey := range []tea.KeyPressMsg{enter, ctrlS} {
		sink := &recordingSink{}
		m := newModel(t, reviewYAML, Options{Sink: sink})

		typeText(m, "Ana")
		press(m, enter)
		require.Equal(t, 2, m.Controller().CurrentStep())
		require.False(t, m.Controller().Finalized())

		focused, ok := m.focused()
		require.True(t, ok)
		require.GreaterOrEqual(t, focused.button, 0)
		require.Equal(t, ActionSubmit, m.buttons()[focused.button].Action)
		require.Contains(t, m.body(), "Submit")

		press(m, submitKey)
		require.True(t, m.Controller().Finalized(), submitKey.String())
		require.Equal(t, phaseSubmitted, m.phase, submitKey.String())
		require.Equal(t, form.Answers{"name": "Ana"}, m.Result().Answers)

		m.Close()
		require.Equal(t, []form.EventType{
			form.EventChange,
			form.EventComplete,
			form.EventSubmit,
		}, sink.types(), submitKey.String())
	}
}

func TestGate(t *testing.T) {
	t.Parallel()

	m := newModel(t, gatedYAML, Options{})
	require.Equal(t, phaseGate, m.phase)

	typeText(m, "12")
	press(m, enter)
	require.Equal(t, phaseGate, m.phase)
	require.NotEmpty(t, m.gateErr)
	require.Contains(t, m.body(), m.gateErr)

	m.gateInput.SetValue(" 90210 ")
	press(m, enter)
	require.Equal(t, phaseWizard, m.phase)
	require.Equal(t, "90210", m.Controller().Data()["zip"])

	step, _ := m.Controller().Step(1)
	require.Equal(t, "90210", m.Surface().Value(1, step.Bindings[0]), "seeded value shows in the visible step")
}

func TestGate_Skipped(t *testing.T) {
	t.Parallel()

	m := newModel(t, gatedYAML, Options{NoGate: true})
	require.Equal(t, phaseWizard, m.phase)
	require.Empty(t, m.Controller().Data())
}

func TestEscapeGoesBackThenCancels(t *testing.T) {
	t.Parallel()

	m := newModel(t, inputYAML, Options{})
	typeText(m, "Ana")
	press(m, enter, enter)
	require.Equal(t, 2, m.Controller().CurrentStep())

	press(m, esc)
	require.Equal(t, 1, m.Controller().CurrentStep())
	step, _ := m.Controller().Step(1)
	require.Equal(t, "Ana", m.Surface().Value(1, step.Bindings[0]))
	require.False(t, m.Cancelled())

	press(m, esc)
	require.True(t, m.Cancelled())
}

func TestQuit(t *testing.T) {
	t.Parallel()

	m := newModel(t, inputYAML, Options{})
	press(m, ctrlC)
	require.True(t, m.Cancelled())
}

func TestSubmitNeedsFinalization(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	m := newModel(t, inputYAML, Options{Sink: sink})
	press(m, ctrlS)
	require.False(t, m.Result().Submitted)
	require.Equal(t, phaseWizard, m.phase)

	m.Close()
	require.Empty(t, sink.types())
}

func TestFocusCycle(t *testing.T) {
	t.Parallel()

	m := newModel(t, inputYAML, Options{})
	// name, email, Next button
	require.Len(t, m.targets(), 3)
	require.Equal(t, 0, m.focus)

	press(m, tab, tab)
	focused, _ := m.focused()
	require.Equal(t, 0, focused.button)

	press(m, tab)
	require.Equal(t, 0, m.focus, "focus wraps")

	press(m, shiftTab)
	require.Equal(t, 2, m.focus)

	press(m, enter) // Next button
	require.Equal(t, 2, m.Controller().CurrentStep())
}

func TestResetFromSubmittedScreen(t *testing.T) {
	t.Parallel()

	m := newModel(t, optionYAML, Options{})
	press(m, enter, enter, enter)
	require.Equal(t, phaseSubmitted, m.phase)

	press(m, ctrlR)
	require.Equal(t, phaseWizard, m.phase)
	require.Equal(t, 1, m.Controller().CurrentStep())
	require.Empty(t, m.Controller().Data())
	require.False(t, m.Controller().Finalized())
	require.False(t, m.Result().Submitted)

	plan, _ := m.Controller().Step(1)
	for _, b := range plan.Bindings {
		require.False(t, m.Surface().Marked(1, b))
	}
}

func TestResetReturnsToGate(t *testing.T) {
	t.Parallel()

	m := newModel(t, gatedYAML, Options{})
	m.gateInput.SetValue("12345")
	press(m, enter)
	require.Equal(t, phaseWizard, m.phase)

	press(m, ctrlR)
	require.Equal(t, phaseGate, m.phase)
	require.Empty(t, m.gateInput.Value())
	require.Empty(t, m.Controller().Data())
}

func TestSubmittedScreenCloses(t *testing.T) {
	t.Parallel()

	m := newModel(t, optionYAML, Options{})
	press(m, enter, enter, enter)
	_, cmd := m.Update(letterQ)
	require.NotNil(t, cmd)
	require.False(t, m.Cancelled())
}

func TestDeliveryFailureIsShown(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{err: errors.New("disk full")}
	m := newModel(t, optionYAML, Options{Sink: sink})

	m.Update(deliveredMsg{event: form.Event{Type: form.EventChange}, err: sink.err})
	require.Contains(t, m.body(), "disk full")
	m.Close()
}

// gatedSink holds every delivery until released.
type gatedSink struct {
	recordingSink
	release chan struct{}
}

func (s *gatedSink) Deliver(ctx context.Context, ev form.Event) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	_ = s.recordingSink.Deliver(ctx, ev)
	return errors.New("rejected")
}

func TestSlowSinkDoesNotBlockUpdates(t *testing.T) {
	t.Parallel()

	sink := &gatedSink{release: make(chan struct{})}
	m := newModel(t, inputYAML, Options{Sink: sink})

	const resets = 400
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range resets {
			press(m, ctrlR)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("updates stalled behind a slow sink")
	}

	close(sink.release)
	m.Close()
	require.Len(t, sink.types(), resets)

	for i := range resets {
		msg := m.waitForDelivery()()
		delivered, ok := msg.(deliveredMsg)
		require.True(t, ok, "outcome %d was dropped", i)
		require.EqualError(t, delivered.err, "rejected")
	}
	require.Nil(t, m.waitForDelivery()(), "no outcomes left after close")
}

func TestView(t *testing.T) {
	t.Parallel()

	m := newModel(t, inputYAML, Options{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	body := m.body()
	require.Contains(t, body, "Step 1 of 2")
	require.Contains(t, body, "Who")
	require.Contains(t, body, "Next →")
	require.NotContains(t, body, "← Back")

	v := m.View()
	require.True(t, v.AltScreen)
}

func TestButtonsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		controls form.Controls
		want     []Button
	}{
		{
			name:     "first input step",
			controls: form.Controls{Next: true},
			want:     []Button{{Label: "Next →", Action: ActionNext}},
		},
		{
			name:     "last input step before finalize",
			controls: form.Controls{Previous: true, Submit: true},
			want: []Button{
				{Label: "← Back", Action: ActionPrevious},
				{Label: "Submit", State: ButtonDisabled, Action: ActionSubmit},
			},
		},
		{
			name:     "finalized",
			controls: form.Controls{Previous: true, Submit: true, SubmitEnabled: true},
			want: []Button{
				{Label: "← Back", Action: ActionPrevious},
				{Label: "Submit", Action: ActionSubmit},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ButtonsFor(tt.controls))
		})
	}
}
