package misol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trackerEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRainRateFirstSampleSeedsBaseline(t *testing.T) {
	tr := NewRainRateTracker(3 * time.Minute)
	assert.Nil(t, tr.Update(iptr(100), trackerEpoch))
}

func TestRainRateExactIntervalBoundary(t *testing.T) {
	tr := NewRainRateTracker(3 * time.Minute)
	tr.Update(iptr(100), trackerEpoch)

	// 30 ticks over exactly 3 minutes: 30 * 0.3 mm / 0.05 h = 180 mm/h
	rate := tr.Update(iptr(130), trackerEpoch.Add(3*time.Minute))
	require.NotNil(t, rate)
	assert.InDelta(t, 180.0, *rate, 1e-9)
}

func TestRainRateBeforeIntervalIsIdempotent(t *testing.T) {
	tr := NewRainRateTracker(3 * time.Minute)
	tr.Update(iptr(100), trackerEpoch)

	// Repeated early samples return nothing and must not move the baseline.
	for i := 1; i <= 5; i++ {
		assert.Nil(t, tr.Update(iptr(100+i), trackerEpoch.Add(time.Duration(i)*30*time.Second)))
	}

	// The eventual rate is computed against the original baseline.
	rate := tr.Update(iptr(120), trackerEpoch.Add(4*time.Minute))
	require.NotNil(t, rate)
	assert.InDelta(t, float64(120-100)*0.3/(4.0/60.0), *rate, 1e-9)
}

func TestRainRateDryPeriodIsZero(t *testing.T) {
	tr := NewRainRateTracker(5 * time.Minute)
	tr.Update(iptr(500), trackerEpoch)
	rate := tr.Update(iptr(500), trackerEpoch.Add(5*time.Minute))
	require.NotNil(t, rate)
	assert.Zero(t, *rate)
}

func TestRainRateAbsentCounterClearsState(t *testing.T) {
	tr := NewRainRateTracker(3 * time.Minute)
	tr.Update(iptr(100), trackerEpoch)
	assert.Nil(t, tr.Update(nil, trackerEpoch.Add(time.Minute)))

	// Next sample is a fresh baseline, not a rate against counter=100.
	assert.Nil(t, tr.Update(iptr(200), trackerEpoch.Add(10*time.Minute)))
}

func TestRainRateCounterResetReseeds(t *testing.T) {
	tr := NewRainRateTracker(3 * time.Minute)
	tr.Update(iptr(1000), trackerEpoch)

	// Device rebooted and the tally started over: no negative rate.
	assert.Nil(t, tr.Update(iptr(5), trackerEpoch.Add(4*time.Minute)))

	rate := tr.Update(iptr(15), trackerEpoch.Add(8*time.Minute))
	require.NotNil(t, rate)
	assert.InDelta(t, float64(15-5)*0.3/(4.0/60.0), *rate, 1e-9)
}

func TestRainRateExplicitReset(t *testing.T) {
	tr := NewRainRateTracker(3 * time.Minute)
	tr.Update(iptr(100), trackerEpoch)
	tr.Reset()
	assert.Nil(t, tr.Update(iptr(130), trackerEpoch.Add(3*time.Minute)))
}
