// Package style holds the colors and icons used in terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/bake/internal/core/domain"
)

// Palette.
var (
	Crust  = lipgloss.Color("#C2703D")
	Slate  = lipgloss.Color("#667085")
	Flour  = lipgloss.Color("#F6F1E7")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// StatusIcon returns the icon shown next to a builder in a given status.
func StatusIcon(s domain.BuilderStatus) string {
	switch s {
	case domain.StatusCompleted:
		return Check
	case domain.StatusCached:
		return Tilde
	case domain.StatusFailed:
		return Cross
	case domain.StatusUnavailable, domain.StatusUnresolved, domain.StatusBlocked:
		return Warning
	case domain.StatusRunning:
		return Dot
	default:
		return Circle
	}
}

// StatusColor returns the color used for a builder in a given status.
func StatusColor(s domain.BuilderStatus) lipgloss.Color {
	switch s {
	case domain.StatusCompleted:
		return Green
	case domain.StatusCached:
		return Crust
	case domain.StatusFailed:
		return Red
	case domain.StatusUnavailable, domain.StatusUnresolved, domain.StatusBlocked:
		return Yellow
	default:
		return Slate
	}
}
