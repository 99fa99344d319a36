package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current, total int
		want           int
	}{
		{1, 1, 100},
		{1, 4, 0},
		{2, 4, 33},
		{3, 4, 67},
		{4, 4, 100},
		{2, 3, 50},
		{1, 2, 0},
		{2, 2, 100},
		{5, 9, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.current, tt.total), "%d of %d", tt.current, tt.total)
	}
}

func TestIndicators(t *testing.T) {
	t.Parallel()

	got := Indicators(3, 4)
	assert.Equal(t, []Indicator{
		{Step: 1, State: Completed},
		{Step: 2, State: Completed},
		{Step: 3, State: Active},
		{Step: 4, State: Pending},
	}, got)

	assert.Equal(t, []Indicator{{Step: 1, State: Active}}, Indicators(1, 1))
}

func TestIndicatorStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "completed", Completed.String())
}

func TestAnswersCloneAndEqual(t *testing.T) {
	t.Parallel()

	var nilSet Answers
	clone := nilSet.Clone()
	assert.NotNil(t, clone)
	assert.Empty(t, clone)

	a := Answers{"name": "Ana"}
	b := a.Clone()
	b["name"] = "Bo"
	assert.Equal(t, "Ana", a["name"])
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(Answers{"name": "Ana"}))
	assert.False(t, a.Equal(Answers{"email": "Ana"}))
}

func TestRegistry_BindIsIdempotent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newFakeHost(inputSteps()...)

	first, err := r.Bind(h)
	if !assert.NoError(t, err) {
		return
	}
	renders := h.renders

	second, err := r.Bind(h, WithMode(OptionDriven))
	assert.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, renders, h.renders, "second bind does not render")
	assert.Equal(t, InputDriven, second.Mode())
	assert.Equal(t, 1, r.Len())

	other, err := r.Bind(newFakeHost(inputSteps()...))
	assert.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, r.Len())

	r.Release(h)
	assert.Equal(t, 1, r.Len())

	_, err = r.Bind(newFakeHost())
	assert.ErrorIs(t, err, ErrNoSteps)
	assert.Equal(t, 1, r.Len())
}

// valueHost is a struct host whose slice field makes it unusable as a map key.
type valueHost struct {
	steps []Step
}

func (h valueHost) Steps() []Step               { return h.steps }
func (valueHost) RenderStep(int, bool)          {}
func (valueHost) Value(int, Binding) string     { return "" }
func (valueHost) SetValue(int, Binding, string) {}

func TestRegistry_RejectsHostsThatCannotBeKeys(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := valueHost{steps: inputSteps()}

	var c *Controller
	var err error
	assert.NotPanics(t, func() { c, err = r.Bind(h) })
	assert.ErrorIs(t, err, ErrHostNotComparable)
	assert.Nil(t, c)
	assert.NotPanics(t, func() { r.Release(h) })

	_, err = r.Bind(nil)
	assert.ErrorIs(t, err, ErrHostNotComparable)
	assert.Equal(t, 0, r.Len())

	c, err = New(h)
	assert.NoError(t, err, "unregistered controllers accept any host")
	assert.Equal(t, 1, c.CurrentStep())
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "change", EventChange.String())
	assert.Equal(t, "complete", EventComplete.String())
	assert.Equal(t, "submit", EventSubmit.String())
	assert.Equal(t, "input", KindInput.String())
	assert.Equal(t, "option", KindOption.String())
	assert.Equal(t, "option", OptionDriven.String())
}
