package main

import (
	"fmt"
	"strings"

	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a form definition",
	Long: `Load a form definition, report every problem found in it, and print a
summary of its steps when it is valid.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	def, err := formdef.Load(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s, %s mode)\n", def.Name, def.Slug(), def.NavigationMode())
	if def.Gate != nil {
		g, err := def.NewGate()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  gate: %s -> %s\n", g.Label(), g.Field())
	}
	for _, step := range def.FormSteps() {
		fmt.Fprintf(w, "  step %d: %s\n", step.Position, step.Title)
		for _, line := range describeBindings(step) {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	return nil
}

// describeBindings lists the inputs and the option fields of a step.
func describeBindings(step form.Step) []string {
	var lines []string
	seen := make(map[string]bool)
	for _, b := range step.Bindings {
		switch b.Kind {
		case form.KindInput:
			key := b.Key()
			if key == "" {
				key = "(unbound)"
			}
			lines = append(lines, "input "+key)
		case form.KindOption:
			if seen[b.Key()] {
				continue
			}
			seen[b.Key()] = true
			var values []string
			for _, o := range step.Options(b.Key()) {
				values = append(values, o.Value)
			}
			lines = append(lines, fmt.Sprintf("option %s [%s]", b.Key(), strings.Join(values, ", ")))
		}
	}
	return lines
}
