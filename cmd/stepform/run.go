package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/mark3labs/stepform/internal/runner"
	"github.com/mark3labs/stepform/internal/tui/wizard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var runFlags struct {
	form     string
	builtin  string
	mode     string
	noGate   bool
	dataDir  string
	noEvents bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a form wizard",
	Long: `Run a form wizard in the terminal.

The wizard comes from --form, --builtin or the configuration, in that order,
and falls back to the life-quote built-in. When the wizard is submitted the
answers are printed as YAML.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.form, "form", "f", "", "Path to a form definition file")
	runCmd.Flags().StringVarP(&runFlags.builtin, "builtin", "b", "", "Name of a built-in form")
	runCmd.Flags().StringVarP(&runFlags.mode, "mode", "m", "", "Navigation mode override: input or option")
	runCmd.Flags().BoolVar(&runFlags.noGate, "no-gate", false, "Skip the form's gate")
	runCmd.Flags().StringVar(&runFlags.dataDir, "data-dir", "", "Data directory for the event log (default: from config or .stepform)")
	runCmd.Flags().BoolVar(&runFlags.noEvents, "no-events", false, "Do not record events")
	runCmd.MarkFlagsMutuallyExclusive("form", "builtin")
}

func runRun(cmd *cobra.Command, args []string) error {
	path, name := appConfig.Form, appConfig.Builtin
	if cmd.Flags().Changed("form") || cmd.Flags().Changed("builtin") {
		path, name = runFlags.form, runFlags.builtin
	}
	def, err := formdef.Resolve(path, name)
	if err != nil {
		return err
	}

	mode := appConfig.Mode
	if cmd.Flags().Changed("mode") {
		mode = runFlags.mode
	}
	dataDir := appConfig.DataDir
	if runFlags.dataDir != "" {
		dataDir = runFlags.dataDir
	}

	r, err := runner.New(runner.Config{
		Definition: def,
		Mode:       mode,
		NoGate:     runFlags.noGate || !appConfig.Gate,
		Events:     appConfig.Events && !runFlags.noEvents,
		DataDir:    dataDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	// Ensure cleanup always runs using defer
	defer func() {
		if err := r.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	res, err := r.Run(ctx)
	if errors.Is(err, wizard.ErrCancelled) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Wizard cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	if !res.Submitted {
		return nil
	}

	out, err := yaml.Marshal(map[string]string(res.Answers))
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
