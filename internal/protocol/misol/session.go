package misol

import (
	"encoding/hex"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/observability"
	"github.com/misol-tools/misolweather/internal/types"
)

// CommunicationTimeout is how long the session waits without receiving
// any bytes before declaring the station lost and invalidating every
// published field.  The station transmits every 16 seconds, so two
// minutes of silence is well past any plausible radio hiccup.
const CommunicationTimeout = 2 * time.Minute

// DefaultRainRateInterval is the minimum spacing between rainfall-rate
// computations when the device config does not override it.
const DefaultRainRateInterval = 3 * time.Minute

// Default night-detection hysteresis thresholds, in mW/cm² of UV.
const (
	DefaultNightThresholdLower = 4.5
	DefaultNightThresholdUpper = 5.5
)

// SessionConfig carries the per-station knobs of a decode session.
type SessionConfig struct {
	StationName string

	// NorthCorrection is added to the decoded wind direction, for
	// stations whose vane was not mounted pointing true north.
	NorthCorrection int

	// SecondaryIntercardinal selects the 16-point compass rose for the
	// wind direction text; off, only the 8 principal points are used.
	SecondaryIntercardinal bool

	NightThresholdLower float64
	NightThresholdUpper float64
	RainRateInterval    time.Duration
}

// Session is the per-station decode state machine.  It consumes one byte
// burst per poll, classifies and decodes frames, runs the stateful
// trackers, and watches for communication loss.  It has two states: idle
// (nothing ever received, or timed out) and active.  The timeout check
// runs before the burst so a frame arriving in the same poll that would
// have expired the session still produces a reading.
//
// Sessions are driven by a single goroutine; no locking inside.
type Session struct {
	cfg     SessionConfig
	clock   clockwork.Clock
	metrics *observability.Metrics

	rain  *RainRateTracker
	night *NightDetector

	active    bool
	lastFrame time.Time
}

// NewSession creates a session.  clock is injectable for tests; metrics
// may be nil.
func NewSession(cfg SessionConfig, clock clockwork.Clock, metrics *observability.Metrics) *Session {
	if cfg.RainRateInterval <= 0 {
		cfg.RainRateInterval = DefaultRainRateInterval
	}
	if cfg.NightThresholdLower == 0 && cfg.NightThresholdUpper == 0 {
		cfg.NightThresholdLower = DefaultNightThresholdLower
		cfg.NightThresholdUpper = DefaultNightThresholdUpper
	}
	return &Session{
		cfg:     cfg,
		clock:   clock,
		metrics: metrics,
		rain:    NewRainRateTracker(cfg.RainRateInterval),
		night:   NewNightDetector(cfg.NightThresholdLower, cfg.NightThresholdUpper),
	}
}

// Event is one output of a session poll.
type Event struct {
	Reading types.Reading

	// Reset marks a timeout invalidation: every sensor field of the
	// reading is absent and downstream state was cleared.
	Reset bool
}

// Poll runs one session cycle over the bytes drained since the last
// poll.  burst may be empty.  At most two events come back: a timeout
// reset, and a decoded reading.
func (s *Session) Poll(burst []byte) []Event {
	now := s.clock.Now()
	var events []Event

	if s.active && now.Sub(s.lastFrame) > CommunicationTimeout {
		log.Warnf("station [%s]: communication timeout", s.cfg.StationName)
		s.active = false
		s.rain.Reset()
		if s.metrics != nil {
			s.metrics.CommTimeouts.WithLabelValues(s.cfg.StationName).Inc()
		}
		events = append(events, Event{Reading: s.emptyReading(now), Reset: true})
	}

	if len(burst) == 0 {
		return events
	}

	if s.active {
		log.Debugf("station [%s]: received %s", s.cfg.StationName, hex.EncodeToString(burst))
	} else {
		log.Infof("station [%s]: first data received: %s", s.cfg.StationName, hex.EncodeToString(burst))
	}
	s.active = true
	s.lastFrame = now
	if s.metrics != nil {
		s.metrics.FramesReceived.WithLabelValues(s.cfg.StationName).Inc()
	}

	kind := DetectFrame(burst)
	if kind == FrameInvalid {
		log.Warnf("station [%s]: unknown packet received: %s", s.cfg.StationName, hex.EncodeToString(burst))
		if s.metrics != nil {
			s.metrics.FramesInvalid.WithLabelValues(s.cfg.StationName).Inc()
		}
		return events
	}

	obs := Decode(burst, kind)
	events = append(events, Event{Reading: s.buildReading(obs, now)})
	return events
}

// buildReading converts a decoded observation into the published form:
// applies the north correction, runs the rain-rate and night trackers,
// scales the rain counter, and attaches the description texts.
func (s *Session) buildReading(obs Observation, now time.Time) types.Reading {
	r := types.Reading{
		Timestamp:   now,
		StationName: s.cfg.StationName,
		StationType: "misol",
	}

	r.Temperature = obs.Temperature
	r.Humidity = obs.Humidity
	r.Pressure = obs.Pressure
	r.LowBattery = &obs.LowBattery
	r.WindGust = obs.WindGust
	r.UVIntensity = obs.UVIntensity()
	r.UVIndex = obs.UVIndex()
	r.Illuminance = obs.Illuminance

	if obs.WindDirection != nil {
		deg := float64((*obs.WindDirection + s.cfg.NorthCorrection + 360) % 360)
		r.WindDirection = &deg
		compass := CompassPoint(deg, s.cfg.SecondaryIntercardinal)
		r.WindCompass = &compass
	}

	if obs.WindSpeed != nil {
		r.WindSpeed = obs.WindSpeed
		desc := DescribeWindSpeed(*obs.WindSpeed)
		r.WindDescription = &desc
	}

	if obs.RainCounter != nil {
		r.RainCounter = obs.RainCounter
		mm := float64(*obs.RainCounter) * RainCounterScale
		r.RainAccumulated = &mm
	}

	r.RainRate = s.rain.Update(obs.RainCounter, now)
	if r.RainRate != nil || obs.RainCounter != nil {
		desc := DescribeRainRate(r.RainRate)
		r.RainDescription = &desc
	}

	r.Night = s.night.Update(r.UVIntensity)

	if obs.Illuminance != nil {
		desc := DescribeIlluminance(*obs.Illuminance)
		r.LightDescription = &desc
	}

	return r
}

// emptyReading is the all-fields-absent reading published on timeout, so
// sinks overwrite stale values instead of presenting them as current.
func (s *Session) emptyReading(now time.Time) types.Reading {
	return types.Reading{
		Timestamp:   now,
		StationName: s.cfg.StationName,
		StationType: "misol",
	}
}
