package tui

// Color constants for the lifecoach TUI theme
const (
	// Base Colors
	ColorBorder = "#2E4057" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E8EDF2" // Primary text (titles, values)
	ColorSecondaryText = "#A9B4C2" // Secondary text
	ColorDisabledText  = "#687385" // Disabled/muted text
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Teal theme)
	ColorAccentMain   = "#0D9488" // Accent elements, active borders
	ColorAccentBright = "#2DD4BF" // Highlights, running countdown

	// State Colors
	ColorError   = "#EF4444" // Errors, overdue
	ColorSuccess = "#22C55E" // Done, confirmations
	ColorWarning = "#F59E0B" // Warnings, paused countdown
)
