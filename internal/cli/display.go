package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/agbru/fibdev/internal/format"
	"github.com/agbru/fibdev/internal/ui"
)

// FormatReading renders one device read: "F(i) = digits  [n digits, t]".
func FormatReading(index int64, digits string, elapsed time.Duration) string {
	return fmt.Sprintf("F(%d) = %s  %s",
		index,
		paintOK(digits),
		ui.Paint(ui.ColorGrey(), fmt.Sprintf("[%d digits, %s]", len(digits), format.FormatExecutionDuration(elapsed))))
}

// DisplayDigits writes just the digits, for scripting.
func DisplayDigits(out io.Writer, digits string) {
	fmt.Fprintln(out, digits)
}

func paintOK(s string) string  { return ui.Paint(ui.ColorGreen(), s) }
func paintErr(s string) string { return ui.Paint(ui.ColorRed(), s) }
func paintHi(s string) string  { return ui.Paint(ui.ColorYellow(), s) }
