package engine

import (
	"fmt"
	"math"
)

// FormatClock renders a number of seconds as "HH:MM:SS" when it spans at least
// an hour and "MM:SS" otherwise. Zero, negative and NaN inputs render as "00:00".
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || seconds <= 0 {
		return "00:00"
	}

	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
