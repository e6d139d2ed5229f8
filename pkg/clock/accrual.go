package clock

import "time"

// AccrueSeconds returns the accrued total after closing the running segment
// that started at runStartedAt. The segment is truncated to whole seconds
// and never contributes a negative duration, so the total is monotonically
// non-decreasing even against a skewed clock.
func AccrueSeconds(accrued int64, runStartedAt, now time.Time) int64 {
	return accrued + segmentSeconds(runStartedAt, now)
}

// LiveSeconds returns the current total of a session including the
// still-open running segment, without sealing it.
func LiveSeconds(accrued int64, runStartedAt, now time.Time) int64 {
	return accrued + segmentSeconds(runStartedAt, now)
}

func segmentSeconds(start, now time.Time) int64 {
	if start.IsZero() || !now.After(start) {
		return 0
	}
	return int64(now.Sub(start) / time.Second)
}
