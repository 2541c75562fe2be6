package misol

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Init(true)
}

func newTestSession(t *testing.T, cfg SessionConfig) (*Session, *clockwork.FakeClock) {
	t.Helper()
	if cfg.StationName == "" {
		cfg.StationName = "testbench"
	}
	clock := clockwork.NewFakeClock()
	return NewSession(cfg, clock, observability.NewMetricsForTesting()), clock
}

func TestSessionDecodesValidFrame(t *testing.T) {
	s, _ := newTestSession(t, SessionConfig{SecondaryIntercardinal: true})

	frame := Marshal(Observation{
		Temperature:   fptr(21.5),
		Humidity:      fptr(40),
		WindDirection: iptr(90),
		WindSpeed:     fptr(2.24),
		RainCounter:   iptr(100),
		UVRaw:         iptr(850),
		Illuminance:   fptr(100000),
		Pressure:      fptr(1013.25),
	})

	events := s.Poll(frame)
	require.Len(t, events, 1)
	require.False(t, events[0].Reset)

	r := events[0].Reading
	assert.Equal(t, "testbench", r.StationName)
	assert.Equal(t, "misol", r.StationType)
	assert.InDelta(t, 21.5, *r.Temperature, 1e-9)
	assert.InDelta(t, 40.0, *r.Humidity, 1e-9)
	assert.InDelta(t, 1013.25, *r.Pressure, 1e-9)
	assert.InDelta(t, 90.0, *r.WindDirection, 1e-9)
	assert.Equal(t, "E", *r.WindCompass)
	assert.Equal(t, "Light breeze", *r.WindDescription)
	assert.Equal(t, 100, *r.RainCounter)
	assert.InDelta(t, 30.0, *r.RainAccumulated, 1e-9) // 100 ticks * 0.3 mm
	assert.Nil(t, r.RainRate)                         // first sample, no baseline yet
	assert.Equal(t, "Unknown", *r.RainDescription)
	assert.InDelta(t, 85.0, *r.UVIntensity, 1e-9)
	assert.Equal(t, 2, *r.UVIndex)
	assert.False(t, *r.Night)
	assert.Equal(t, "Direct sunlight", *r.LightDescription)
	assert.False(t, *r.LowBattery)
}

func TestSessionDiscardsInvalidBurst(t *testing.T) {
	s, _ := newTestSession(t, SessionConfig{})
	events := s.Poll([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	assert.Empty(t, events)
}

func TestSessionSentinelWindDirectionAbsent(t *testing.T) {
	s, _ := newTestSession(t, SessionConfig{})
	events := s.Poll(Marshal(Observation{Temperature: fptr(10)}))
	require.Len(t, events, 1)
	r := events[0].Reading
	assert.Nil(t, r.WindDirection)
	assert.Nil(t, r.WindCompass)
	assert.NotNil(t, r.Temperature)
}

func TestSessionNorthCorrection(t *testing.T) {
	s, _ := newTestSession(t, SessionConfig{NorthCorrection: 90, SecondaryIntercardinal: true})
	events := s.Poll(Marshal(Observation{WindDirection: iptr(300)}))
	require.Len(t, events, 1)
	r := events[0].Reading
	assert.InDelta(t, 30.0, *r.WindDirection, 1e-9)
	assert.Equal(t, "NNE", *r.WindCompass)
}

func TestSessionNoTimeoutBeforeFirstData(t *testing.T) {
	s, clock := newTestSession(t, SessionConfig{})
	clock.Advance(time.Hour)
	assert.Empty(t, s.Poll(nil))
}

func TestSessionTimeoutInvalidatesEverything(t *testing.T) {
	s, clock := newTestSession(t, SessionConfig{})

	events := s.Poll(Marshal(Observation{Temperature: fptr(20), RainCounter: iptr(100)}))
	require.Len(t, events, 1)

	// One second past the timeout with no data: full reset.
	clock.Advance(CommunicationTimeout + time.Second)
	events = s.Poll(nil)
	require.Len(t, events, 1)
	assert.True(t, events[0].Reset)
	assert.True(t, events[0].Reading.Empty())

	// No repeated resets while still idle.
	clock.Advance(time.Minute)
	assert.Empty(t, s.Poll(nil))
}

func TestSessionTimeoutClearsRainBaseline(t *testing.T) {
	s, clock := newTestSession(t, SessionConfig{RainRateInterval: 3 * time.Minute})

	s.Poll(Marshal(Observation{RainCounter: iptr(100)}))

	clock.Advance(CommunicationTimeout + time.Second)
	events := s.Poll(nil)
	require.Len(t, events, 1)
	require.True(t, events[0].Reset)

	// The first counter after the reset re-seeds the baseline.
	events = s.Poll(Marshal(Observation{RainCounter: iptr(130)}))
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Reading.RainRate)

	// The next boundary is measured from the re-seeded baseline.
	clock.Advance(3 * time.Minute)
	events = s.Poll(Marshal(Observation{RainCounter: iptr(160)}))
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Reading.RainRate)
	assert.InDelta(t, float64(160-130)*0.3/0.05, *events[0].Reading.RainRate, 1e-9)
	assert.Equal(t, "Violent rain", *events[0].Reading.RainDescription)
}

func TestSessionFrameArrivingAtTimeoutStillProcessed(t *testing.T) {
	s, clock := newTestSession(t, SessionConfig{})

	s.Poll(Marshal(Observation{Temperature: fptr(20)}))

	// The timeout fires and the frame in the same poll is decoded:
	// reset first, then the fresh reading.
	clock.Advance(CommunicationTimeout + time.Second)
	events := s.Poll(Marshal(Observation{Temperature: fptr(21)}))
	require.Len(t, events, 2)
	assert.True(t, events[0].Reset)
	assert.False(t, events[1].Reset)
	assert.InDelta(t, 21.0, *events[1].Reading.Temperature, 1e-9)
}

func TestSessionGarbageStillRefreshesLiveness(t *testing.T) {
	s, clock := newTestSession(t, SessionConfig{})

	s.Poll(Marshal(Observation{Temperature: fptr(20)}))

	// Unparseable noise proves the link is alive even though no reading
	// comes out of it, so no timeout fires.
	clock.Advance(CommunicationTimeout - time.Second)
	assert.Empty(t, s.Poll([]byte{0x00, 0x01}))

	clock.Advance(CommunicationTimeout - time.Second)
	events := s.Poll(Marshal(Observation{Temperature: fptr(22)}))
	require.Len(t, events, 1)
	assert.False(t, events[0].Reset)
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession(SessionConfig{StationName: "x"}, clockwork.NewFakeClock(), nil)
	assert.Equal(t, DefaultRainRateInterval, s.cfg.RainRateInterval)
	assert.Equal(t, DefaultNightThresholdLower, s.cfg.NightThresholdLower)
	assert.Equal(t, DefaultNightThresholdUpper, s.cfg.NightThresholdUpper)
}
