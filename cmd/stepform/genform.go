package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/spf13/cobra"
)

var genFormFlags struct {
	builtin string
	output  string
}

var genFormCmd = &cobra.Command{
	Use:   "gen-form",
	Short: "Write a built-in form definition",
	Long: `Write one of the built-in form definitions to stdout or a file, as a
starting point for your own.

Built-in forms: ` + strings.Join(formdef.Names(), ", "),
	RunE: runGenForm,
}

func init() {
	genFormCmd.Flags().StringVarP(&genFormFlags.builtin, "builtin", "b", formdef.DefaultBuiltin, "Built-in form to write")
	genFormCmd.Flags().StringVarP(&genFormFlags.output, "output", "o", "", "Output file (default: stdout)")
}

func runGenForm(cmd *cobra.Command, args []string) error {
	data, err := formdef.BuiltinSource(genFormFlags.builtin)
	if err != nil {
		return err
	}

	if genFormFlags.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(genFormFlags.output, data, 0644); err != nil {
		return fmt.Errorf("failed to write form: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Form written to: %s\n", genFormFlags.output)
	return nil
}
