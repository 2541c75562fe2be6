package misol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNightDetectorFirstSampleUsesMidpoint(t *testing.T) {
	// midpoint of 4.5/5.5 is 5.0
	d := NewNightDetector(4.5, 5.5)
	got := d.Update(fptr(4.9))
	require.NotNil(t, got)
	assert.True(t, *got)

	d = NewNightDetector(4.5, 5.5)
	got = d.Update(fptr(5.1))
	require.NotNil(t, got)
	assert.False(t, *got)
}

func TestNightDetectorHysteresis(t *testing.T) {
	d := NewNightDetector(4.5, 5.5)

	// Bright afternoon: day.
	assert.False(t, *d.Update(fptr(20)))

	// UV oscillating inside the dead band must not flip the state.
	for _, uv := range []float64{5.4, 4.6, 5.2, 4.8} {
		assert.False(t, *d.Update(fptr(uv)), "uv=%v", uv)
	}

	// Dropping below the lower threshold flips to night.
	assert.True(t, *d.Update(fptr(4.4)))

	// Oscillating inside the dead band stays night.
	for _, uv := range []float64{4.6, 5.4, 4.8, 5.2} {
		assert.True(t, *d.Update(fptr(uv)), "uv=%v", uv)
	}

	// Climbing above the upper threshold flips back to day.
	assert.False(t, *d.Update(fptr(5.6)))
}

func TestNightDetectorAbsentUVLeavesStateAlone(t *testing.T) {
	d := NewNightDetector(4.5, 5.5)
	assert.True(t, *d.Update(fptr(0.1)))

	assert.Nil(t, d.Update(nil))

	// The sensor dropout did not consume the first-run classification
	// nor flip the stored state.
	assert.True(t, *d.Update(fptr(5.0)))
}
