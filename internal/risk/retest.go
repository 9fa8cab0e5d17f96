package risk

import "time"

// RetestDue reports whether a patient is due for a new submission. A
// patient with no recorded snapshots is always due. Otherwise the
// elapsed time is truncated to whole days before comparing against the
// interval.
func RetestDue(lastRecordedAt *time.Time, intervalDays int, now time.Time) bool {
	if lastRecordedAt == nil {
		return true
	}

	days := int(now.Sub(*lastRecordedAt).Hours() / 24)
	return days >= intervalDays
}
