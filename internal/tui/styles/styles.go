package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// --- Typography ---

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(White)

	Subtitle = lipgloss.NewStyle().
			Foreground(Gray)

	// Label is used for field names in show output.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	Value = lipgloss.NewStyle().
		Foreground(White)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	AccentText = lipgloss.NewStyle().
			Foreground(Accent)

	ErrorText = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	SuccessText = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	WarningText = lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true)
)

// --- Status badges ---

// StatusStyle returns the style for a project, servo or database status.
func StatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "running":
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case "deploying", "uploading", "restarting", "starting", "provisioning":
		return lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	case "stopping", "deleting":
		return lipgloss.NewStyle().Foreground(Yellow)
	case "stopped", "crashed", "error":
		return lipgloss.NewStyle().Foreground(Red)
	default:
		return lipgloss.NewStyle().Foreground(Gray)
	}
}

// StatusIndicator returns a colored dot followed by the status text.
func StatusIndicator(status string) string {
	if status == "" {
		status = "none"
	}
	style := StatusStyle(status)
	return style.Render("●") + " " + style.Render(status)
}

// --- Layout ---

var (
	Border = lipgloss.RoundedBorder()

	// Card frames the detail block printed by show commands.
	Card = lipgloss.NewStyle().
		Border(Border).
		BorderForeground(DimAccent).
		Padding(0, 1)
)

// Field renders "label  value" with the label padded to width.
func Field(label, value string, width int) string {
	return Label.Width(width).Render(label) + Value.Render(value)
}
