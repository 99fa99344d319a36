package wizard

import (
	"strings"

	"charm.land/bubbles/v2/key"
	"github.com/mark3labs/stepform/internal/tui/theme"
)

// renderHintBar renders a hint bar from the help text of the given bindings.
// Disabled bindings are skipped.
// Returns: "tab next field • enter continue • esc back"
func renderHintBar(styles *theme.Styles, bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, styles.HintKey.Render(h.Key)+" "+styles.HintDesc.Render(h.Desc))
	}
	return strings.Join(parts, " "+styles.HintSeparator.Render("•")+" ")
}
