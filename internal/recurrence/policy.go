package recurrence

import "time"

// ShouldContinue reports whether a series may produce another occurrence.
//
// The end date and the occurrence cap are independent terminators: the series
// stops when next falls past a set end date, or when the current occurrence
// number has already reached a set cap. The cap compares against the current
// occurrence (before incrementing), so a series with maxCount 5 ends with
// exactly 5 tasks. A zero maxCount means uncapped; a nil endDate means
// open-ended.
func ShouldContinue(next time.Time, endDate *time.Time, maxCount, occurrence int) bool {
	if endDate != nil && next.After(*endDate) {
		return false
	}
	if maxCount > 0 && occurrence >= maxCount {
		return false
	}
	return true
}
