package misol

import "time"

// RainRateTracker derives a rainfall rate (mm/h) from the station's
// monotonically increasing rain counter.  The station reports only the
// accumulated tally, so a rate exists only across a baseline: the tracker
// stores the counter and timestamp from the last interval boundary and
// reports a rate once at least the configured interval has elapsed.
//
// Not safe for concurrent use; each station session owns one tracker.
type RainRateTracker struct {
	interval    time.Duration
	primed      bool
	lastCounter int
	lastTime    time.Time
}

// NewRainRateTracker returns a tracker that reports a rate no more often
// than once per interval.
func NewRainRateTracker(interval time.Duration) *RainRateTracker {
	return &RainRateTracker{interval: interval}
}

// Update feeds one counter sample.  It returns the rainfall rate in mm/h
// when an interval boundary was crossed, and nil otherwise:
//   - counter nil (sensor lost): internal state clears, no rate.
//   - first sample: baseline stored, no rate.
//   - interval not yet elapsed: no rate, baseline untouched.
//   - counter went backwards (device reset or rollover): baseline
//     re-seeded, no rate.  Never reports a negative rate.
func (t *RainRateTracker) Update(counter *int, now time.Time) *float64 {
	if counter == nil {
		t.Reset()
		return nil
	}
	if !t.primed {
		t.primed = true
		t.lastCounter = *counter
		t.lastTime = now
		return nil
	}
	elapsed := now.Sub(t.lastTime)
	if elapsed < t.interval {
		return nil
	}
	if *counter < t.lastCounter {
		t.lastCounter = *counter
		t.lastTime = now
		return nil
	}
	rate := float64(*counter-t.lastCounter) * RainCounterScale / elapsed.Hours()
	t.lastCounter = *counter
	t.lastTime = now
	return &rate
}

// Reset clears the baseline, as on a communication timeout.  The next
// sample starts a fresh measurement window.
func (t *RainRateTracker) Reset() {
	t.primed = false
}
