package recurrence

import (
	"errors"
	"fmt"
	"time"

	"task-engine/internal/calendar"
)

// Pattern names the cadence of a recurring series.
type Pattern string

const (
	Daily     Pattern = "daily"
	Weekly    Pattern = "weekly"
	Biweekly  Pattern = "biweekly"
	Monthly   Pattern = "monthly"
	Quarterly Pattern = "quarterly"
	Yearly    Pattern = "yearly"
)

// ErrInvalidPattern is returned when a task carries a recurrence pattern the
// calculator does not recognize. Callers must treat this as fatal for the
// computation, never as "no recurrence".
var ErrInvalidPattern = errors.New("invalid recurrence pattern")

// NextOccurrence computes the due date of the occurrence after current.
//
// Weekly and biweekly patterns honor a pinned weekday when one is given:
// weekly moves to the next occurrence of that weekday (strictly later than
// current), biweekly to the one a week after that, so a two-week gap holds
// even when current already sits on the target weekday. Without a weekday the
// interval multiplies a plain 7- or 14-day stride. Month-based patterns clamp
// the day of month to the destination month's end (see calendar.AddMonths).
// An interval below 1 is treated as 1.
func NextOccurrence(current time.Time, pattern Pattern, interval int, weekday *time.Weekday) (time.Time, error) {
	if interval < 1 {
		interval = 1
	}
	current = calendar.DateOf(current)

	switch pattern {
	case Daily:
		return current.AddDate(0, 0, interval), nil
	case Weekly:
		if weekday != nil {
			return calendar.NextWeekday(current, *weekday, 0), nil
		}
		return current.AddDate(0, 0, 7*interval), nil
	case Biweekly:
		if weekday != nil {
			return calendar.NextWeekday(current, *weekday, 1), nil
		}
		return current.AddDate(0, 0, 14*interval), nil
	case Monthly:
		return calendar.AddMonths(current, interval), nil
	case Quarterly:
		return calendar.AddMonths(current, 3*interval), nil
	case Yearly:
		return calendar.AddMonths(current, 12*interval), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
}
