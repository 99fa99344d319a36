package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/stepform/internal/config"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ ▀█▀ █▀▀ █▀█ █▀▀ █▀█ █▀█ █▀▄▀█"
	logoText2 = "▄▄█  █  ██▄ █▀▀ █▀  █▄█ █▀▄ █ ▀ █"
)

// Version set via ldflags during build
var version = "dev"

// appConfig is loaded before any subcommand runs.
var appConfig = &config.Config{}

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "stepform",
	Short:             "Multi-step form wizards in the terminal",
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// loadConfig reads configuration and applies the logging settings.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	appConfig = cfg
	logger.Debug("Running %s", cmd.CommandPath())
	return nil
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

stepform runs multi-step form wizards in the terminal. A wizard is described
in a YAML definition: ordered steps of text inputs or option choices, an
optional postal-code gate, and either input-driven or choice-driven
navigation. Lifecycle events are recorded in an embedded NATS JetStream log
and handed to the shell hooks in .stepform.hooks.yml.`

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(genFormCmd)
	rootCmd.AddCommand(submissionsCmd)
	rootCmd.AddCommand(setupCmd)
}
