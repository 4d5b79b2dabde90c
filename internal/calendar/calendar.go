package calendar

import "time"

// Dates are represented as time.Time values at midnight UTC. Keeping the wall
// clock out of the stored value means two dates compare equal exactly when
// they name the same calendar day, regardless of the host timezone.

// singapore is the fixed reference zone for "today". All deadline math is done
// against this zone so a server in any region produces the same calendar day.
var singapore = time.FixedZone("UTC+8", 8*60*60)

// Clock supplies the current time. Injectable so evaluators and tests do not
// depend on the host clock.
type Clock struct {
	now func() time.Time
}

// NewClock returns a clock backed by time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewFixedClock returns a clock frozen at the given instant.
func NewFixedClock(at time.Time) *Clock {
	return NewClockFunc(func() time.Time { return at })
}

// NewClockFunc returns a clock backed by an arbitrary time source.
func NewClockFunc(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Today returns the calendar date (midnight UTC) for the current moment in the
// reference zone, shifted by offsetDays. Month, year and leap-day boundaries
// roll over per the Gregorian calendar.
func (c *Clock) Today(offsetDays int) time.Time {
	local := c.now().In(singapore)
	y, m, d := local.Date()
	return time.Date(y, m, d+offsetDays, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates an arbitrary instant to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date value.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextWeekday returns the next date strictly after from whose weekday equals
// target, plus extraWeeks additional weeks. When from already falls on the
// target weekday the result is the following week's occurrence, never the same
// day: completing today's Wednesday task schedules next Wednesday.
func NextWeekday(from time.Time, target time.Weekday, extraWeeks int) time.Time {
	days := (int(target) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return DateOf(from).AddDate(0, 0, days+extraWeeks*7)
}

// AddMonths advances a date by whole calendar months, clamping the day of
// month to the last valid day of the destination month (Jan 31 + 1 month is
// Feb 28, or Feb 29 in a leap year). Clamping keeps month-end schedules on
// month-end instead of drifting into the next month.
func AddMonths(from time.Time, months int) time.Time {
	y, m, d := from.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	if last := daysInMonth(first.Month(), first.Year()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(month time.Month, year int) int {
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
