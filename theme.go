package wizard

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values.
type Theme struct {
	Title   int // Feature/step header
	Item    int // Structured item titles
	Pending int // Connecting and retry indicators
	Error   int // Error banner
	Success int // Completion indicator
	Muted   int // Status bar, raw text tail
	Accent  int // Headings and links inside item text
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Title:   4,
		Item:    6,
		Pending: 3,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
	}
}
