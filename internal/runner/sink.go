package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/stepform/internal/events"
	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/hooks"
	"github.com/mark3labs/stepform/internal/logger"
)

// Sink receives the lifecycle events of a wizard.
type Sink interface {
	Deliver(ctx context.Context, ev form.Event) error
}

type discard struct{}

func (discard) Deliver(context.Context, form.Event) error { return nil }

// Discard drops every event.
var Discard Sink = discard{}

// payload is the JSON piped to hooks that ask for stdin.
type payload struct {
	Form    string            `json:"form"`
	Event   string            `json:"event"`
	Step    int               `json:"step"`
	Answers map[string]string `json:"answers"`
}

// EventSink records events in the event log and then runs the hooks
// configured for their type. Either part may be nil.
type EventSink struct {
	form    string
	store   *events.Store
	hooks   *hooks.Config
	workDir string
}

// NewEventSink creates a sink for the form identified by formSlug.
func NewEventSink(formSlug string, store *events.Store, hooksCfg *hooks.Config, workDir string) *EventSink {
	return &EventSink{form: formSlug, store: store, hooks: hooksCfg, workDir: workDir}
}

// Deliver implements Sink. A failed publish does not stop the hooks.
func (s *EventSink) Deliver(ctx context.Context, ev form.Event) error {
	var errs []error

	if s.store != nil {
		if _, err := s.store.Publish(ctx, s.form, ev); err != nil {
			errs = append(errs, err)
		}
	}

	list := s.hooks.For(ev.Type.String())
	if len(list) > 0 {
		data, err := json.Marshal(payload{
			Form:    s.form,
			Event:   ev.Type.String(),
			Step:    ev.Step,
			Answers: ev.Answers,
		})
		if err != nil {
			return errors.Join(append(errs, fmt.Errorf("failed to marshal hook payload: %w", err))...)
		}

		vars := hooks.Variables{Form: s.form, Event: ev.Type.String(), Step: ev.Step}
		out, err := hooks.ExecuteAll(ctx, list, s.workDir, vars, data)
		if out != "" {
			logger.Info("%s hooks output:\n%s", ev.Type, out)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("running %s hooks: %w", ev.Type, err))
		}
	}

	return errors.Join(errs...)
}
