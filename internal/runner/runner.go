// Package runner wires a form definition to the terminal wizard, the event
// log and the user's hooks.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/stepform/internal/events"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/mark3labs/stepform/internal/hooks"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/tui/wizard"
)

// ShowFunc presents a wizard and returns what it collected.
type ShowFunc func(ctx context.Context, def *formdef.Definition, opts wizard.Options) (*wizard.Result, error)

// Config holds configuration for the runner.
type Config struct {
	Definition *formdef.Definition
	Mode       string   // Overrides the definition's mode when set
	NoGate     bool     // Skip the definition's gate
	Events     bool     // Record events in the embedded log
	DataDir    string   // Data directory for the event log
	WorkDir    string   // Directory hooks run in and load their config from
	Show       ShowFunc // Defaults to wizard.Run
}

// Runner owns the resources of one wizard run.
type Runner struct {
	cfg     Config
	store   *events.Store
	sink    Sink
	stopped bool
}

// New creates a runner, filling in defaults.
func New(cfg Config) (*Runner, error) {
	if cfg.Definition == nil {
		return nil, errors.New("runner needs a form definition")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = ".stepform"
	}
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.WorkDir = wd
	}
	if cfg.Show == nil {
		cfg.Show = wizard.Run
	}
	return &Runner{cfg: cfg, sink: Discard}, nil
}

// Start opens the event log and loads hooks.
func (r *Runner) Start(ctx context.Context) error {
	slug := r.cfg.Definition.Slug()
	logger.Info("Starting wizard '%s'", slug)

	if r.cfg.Events {
		logger.Debug("Opening event log in %s", r.cfg.DataDir)
		store, err := events.Open(ctx, r.cfg.DataDir)
		if err != nil {
			logger.Error("Failed to open event log: %v", err)
			return fmt.Errorf("failed to open event log: %w", err)
		}
		r.store = store
	}

	hooksCfg, err := hooks.LoadConfig(r.cfg.WorkDir)
	if err != nil {
		logger.Error("Failed to load hooks: %v", err)
		return fmt.Errorf("failed to load hooks: %w", err)
	}

	if r.store != nil || hooksCfg != nil {
		r.sink = NewEventSink(slug, r.store, hooksCfg, r.cfg.WorkDir)
	}
	return nil
}

// Run shows the wizard. Start must have been called.
func (r *Runner) Run(ctx context.Context) (*wizard.Result, error) {
	res, err := r.cfg.Show(ctx, r.cfg.Definition, wizard.Options{
		Mode:   r.cfg.Mode,
		NoGate: r.cfg.NoGate,
		Sink:   r.sink,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Wizard '%s' finished (submitted: %v)", r.cfg.Definition.Slug(), res.Submitted)
	return res, nil
}

// Store returns the event log, or nil when events are disabled.
func (r *Runner) Store() *events.Store { return r.store }

// Sink returns where events are delivered.
func (r *Runner) Sink() Sink { return r.sink }

// Stop releases the event log. It is safe to call more than once.
func (r *Runner) Stop() error {
	if r.stopped {
		return nil
	}
	r.stopped = true

	if r.store != nil {
		logger.Debug("Closing event log")
		if err := r.store.Close(); err != nil {
			logger.Error("Failed to close event log: %v", err)
			return fmt.Errorf("failed to close event log: %w", err)
		}
	}
	logger.Info("Wizard '%s' stopped", r.cfg.Definition.Slug())
	return nil
}
