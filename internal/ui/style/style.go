// Package style holds the colours and glyphs shared by the logger and the
// progress renderer.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Ember  = lipgloss.Color("#E8590C")
	Ash    = lipgloss.Color("#6B7280")
	Clay   = lipgloss.Color("#A16207")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Cached  = "~"
	Dot     = "●"
	Arrow   = "→"
)

// Stage renders a stage name in the summary table style.
func Stage(name string) string {
	return lipgloss.NewStyle().Foreground(Clay).Render(name)
}
