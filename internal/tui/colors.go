package tui

import "github.com/balkashynov/reefkeeper/internal/schedule"

// Color constants for the reef TUI theme
const (
	// Base Colors
	ColorCardBackground = "#0B2232" // Deep water
	ColorBorder         = "#2E4A5C" // Slate blue

	// Text Colors
	ColorPrimaryText   = "#E6F1F5" // Titles, user input
	ColorSecondaryText = "#A9BFCB" // Labels, placeholders
	ColorDisabledText  = "#60717C" // Muted text
	ColorPlaceholder   = "#A9BFCB"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors (lagoon)
	ColorAccentMain   = "#0EA5A4" // Logo, active borders
	ColorAccentBright = "#5EEAD4" // Highlights, current step

	// State Colors
	ColorError   = "#EF4444" // Overdue, validation errors
	ColorSuccess = "#22C55E" // Completed, confirmations
	ColorWarning = "#F59E0B" // Due today
)

// urgencyColor maps an urgency bucket to its accent
func urgencyColor(u schedule.Urgency) string {
	switch u {
	case schedule.Overdue:
		return ColorError
	case schedule.Today:
		return ColorWarning
	case schedule.Upcoming:
		return ColorAccentBright
	default:
		return ColorSecondaryText
	}
}
