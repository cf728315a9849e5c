package utils

import (
	"fmt"
	"time"
)

// FolioAsignacion builds the year-prefixed assignment id, e.g. "2026-0041"
// for the 41st assignment created in 2026. seq is 1-based.
func FolioAsignacion(now time.Time, seq int64) string {
	return fmt.Sprintf("%d-%04d", now.Year(), seq)
}

// PrefijoAnio is the year prefix shared by every folio of the given year.
func PrefijoAnio(now time.Time) string {
	return fmt.Sprintf("%d-", now.Year())
}
