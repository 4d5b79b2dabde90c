package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"task-engine/internal/calendar"
)

func TestShouldContinue_OpenEnded(t *testing.T) {
	next := calendar.Date(2025, time.July, 1)
	assert.True(t, ShouldContinue(next, nil, 0, 100))
}

func TestShouldContinue_EndDate(t *testing.T) {
	end := calendar.Date(2025, time.June, 30)

	assert.True(t, ShouldContinue(calendar.Date(2025, time.June, 30), &end, 0, 1), "landing on the end date continues")
	assert.False(t, ShouldContinue(calendar.Date(2025, time.July, 1), &end, 0, 1), "past the end date stops")
}

func TestShouldContinue_MaxCountStopsAtCap(t *testing.T) {
	next := calendar.Date(2025, time.July, 1)

	assert.True(t, ShouldContinue(next, nil, 5, 4))
	assert.False(t, ShouldContinue(next, nil, 5, 5), "occurrence 5 of 5 is the last")
	assert.False(t, ShouldContinue(next, nil, 5, 6))
}

func TestShouldContinue_EitherTerminatorIsFinal(t *testing.T) {
	end := calendar.Date(2025, time.June, 30)
	past := calendar.Date(2025, time.July, 1)

	// Cap would allow more, end date stops anyway.
	assert.False(t, ShouldContinue(past, &end, 10, 2))
	// End date would allow more, cap stops anyway.
	assert.False(t, ShouldContinue(calendar.Date(2025, time.June, 1), &end, 2, 2))
}

func TestShouldContinue_TerminationIsMonotonic(t *testing.T) {
	end := calendar.Date(2025, time.June, 30)
	next := calendar.Date(2025, time.July, 1)

	stoppedAt := -1
	for occ := 1; occ <= 20; occ++ {
		if !ShouldContinue(next, &end, 7, occ) {
			stoppedAt = occ
			break
		}
	}
	assert.Equal(t, 1, stoppedAt, "end date stops immediately")
	for occ := stoppedAt; occ <= 20; occ++ {
		assert.False(t, ShouldContinue(next, &end, 7, occ), "occurrence %d must stay stopped", occ)
	}

	// Cap-only variant.
	for occ := 7; occ <= 20; occ++ {
		assert.False(t, ShouldContinue(calendar.Date(2025, time.June, 1), nil, 7, occ))
	}
}
