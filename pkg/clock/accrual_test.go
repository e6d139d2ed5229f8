package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)

func TestAccrueSecondsAddsClosedSegment(t *testing.T) {
	assert.EqualValues(t, 90, AccrueSeconds(0, base, base.Add(90*time.Second)))
	assert.EqualValues(t, 120, AccrueSeconds(90, base, base.Add(30*time.Second)))
}

func TestAccrueSecondsTruncatesToWholeSeconds(t *testing.T) {
	assert.EqualValues(t, 1, AccrueSeconds(0, base, base.Add(1900*time.Millisecond)))
	assert.EqualValues(t, 0, AccrueSeconds(0, base, base.Add(999*time.Millisecond)))
}

func TestAccrueSecondsNeverDecreases(t *testing.T) {
	// A skewed or rewound clock contributes nothing, it never subtracts.
	assert.EqualValues(t, 50, AccrueSeconds(50, base, base.Add(-time.Minute)))
	assert.EqualValues(t, 50, AccrueSeconds(50, base, base))
}

func TestAccrueSecondsIgnoresZeroStart(t *testing.T) {
	assert.EqualValues(t, 7, AccrueSeconds(7, time.Time{}, base))
}

func TestLiveSecondsMatchesAccrualWithoutSealing(t *testing.T) {
	assert.EqualValues(t, 45, LiveSeconds(0, base, base.Add(45*time.Second)))
	assert.EqualValues(t, 100, LiveSeconds(40, base, base.Add(time.Minute)))
}

func TestFakeClockAdvanceAndSet(t *testing.T) {
	c := NewFakeClock(base)
	assert.Equal(t, base, c.Now())
	c.Advance(time.Minute)
	assert.Equal(t, base.Add(time.Minute), c.Now())
	c.Set(base)
	assert.Equal(t, base, c.Now())
}
