package misol

// NightDetector turns UV intensity into a day/night flag using hysteresis:
// once night, the UV must climb above the upper threshold to flip back to
// day; once day, it must fall below the lower threshold to flip to night.
// The dead band between the thresholds keeps the flag from chattering
// through twilight.
//
// State is owned by the caller's session, one detector per station.
type NightDetector struct {
	lower  float64
	upper  float64
	primed bool
	night  bool
}

// NewNightDetector returns a detector with the given thresholds, lower < upper.
func NewNightDetector(lower, upper float64) *NightDetector {
	return &NightDetector{lower: lower, upper: upper}
}

// Update feeds one UV intensity sample (mW/cm²) and returns the night
// flag.  A nil sample returns nil and leaves the detector untouched.
// The very first sample is classified against the midpoint of the two
// thresholds since there is no prior state to apply hysteresis to.
func (d *NightDetector) Update(uvIntensity *float64) *bool {
	if uvIntensity == nil {
		return nil
	}
	if !d.primed {
		d.night = *uvIntensity < (d.lower+d.upper)/2
		d.primed = true
	} else if d.night {
		d.night = *uvIntensity < d.upper
	} else {
		d.night = *uvIntensity < d.lower
	}
	result := d.night
	return &result
}
