package ui

// Accessors for the active theme's escape sequences. They return "" when
// colors are disabled.

func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorMagenta() string   { return GetCurrentTheme().Info }
func ColorGrey() string      { return GetCurrentTheme().Secondary }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
func ColorReset() string     { return GetCurrentTheme().Reset }

// Paint wraps s in color and a reset. With colors disabled it returns s.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + ColorReset()
}
