package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mark3labs/stepform/internal/events"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/spf13/cobra"
)

var submissionsFlags struct {
	form    string
	dataDir string
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List recorded submissions",
	Long: `List the submissions recorded in the event log for one form.

The form defaults to the configured one. Run this while no wizard is using
the same data directory.`,
	RunE: runSubmissions,
}

func init() {
	submissionsCmd.Flags().StringVar(&submissionsFlags.form, "form", "", "Form name or slug (default: the configured form)")
	submissionsCmd.Flags().StringVar(&submissionsFlags.dataDir, "data-dir", "", "Data directory (default: from config or .stepform)")
}

func runSubmissions(cmd *cobra.Command, args []string) error {
	formSlug, err := submissionsSlug(submissionsFlags.form)
	if err != nil {
		return err
	}
	dataDir := submissionsFlags.dataDir
	if dataDir == "" {
		dataDir = appConfig.DataDir
	}

	store, err := events.Open(cmd.Context(), dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	subs, err := store.Submissions(cmd.Context(), formSlug)
	if err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(subs) == 0 {
		fmt.Fprintf(w, "No submissions for %s.\n", formSlug)
		return nil
	}
	for _, rec := range subs {
		fmt.Fprintf(w, "%s  %s  %s\n", rec.ID, rec.Timestamp.Local().Format(time.DateTime), formatAnswers(rec.Answers))
	}
	fmt.Fprintf(w, "\n%d submission(s) for %s\n", len(subs), formSlug)
	return nil
}

// submissionsSlug turns a --form value into the subject token the form was
// recorded under. Names and slugs both work; empty means the configured form.
func submissionsSlug(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		def, err := formdef.Resolve(appConfig.Form, appConfig.Builtin)
		if err != nil {
			return "", err
		}
		return def.Slug(), nil
	}
	return slug.Make(name), nil
}

// formatAnswers renders answers as key=value pairs in key order.
func formatAnswers(a map[string]string) string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, a[k]))
	}
	return strings.Join(parts, " ")
}
