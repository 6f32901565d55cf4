// Package styles holds the color palette and lipgloss styles shared by
// every xervo command, so output looks the same whichever command
// printed it.
package styles

import "github.com/charmbracelet/lipgloss"

// --- Palette ---

var (
	White = lipgloss.AdaptiveColor{Light: "#1C1C1C", Dark: "#E2E2E2"}
	Gray  = lipgloss.AdaptiveColor{Light: "#5C5C5C", Dark: "#8A8A8A"}
	Muted = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#5A5A5A"}

	// Accent is the platform's teal.
	Accent    = lipgloss.Color("#2EC4B6")
	DimAccent = lipgloss.Color("#1B7F76")

	Green  = lipgloss.Color("#5FD787")
	Yellow = lipgloss.Color("#FFD787")
	Red    = lipgloss.Color("#FF8787")
)
