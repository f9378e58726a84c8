package status

import (
	"fmt"
	"time"
)

// ClockText formats t as "Mon 9:05".
func ClockText(t time.Time) string {
	return fmt.Sprintf("%s %d:%02d", t.Format("Mon"), t.Hour(), t.Minute())
}

// BarClockText formats t as "9:05" for the centre of the status bar.
func BarClockText(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}
