package misol

import "math"

// DescribeWindSpeed maps a wind speed in m/s onto the Beaufort scale
// descriptions.
func DescribeWindSpeed(speed float64) string {
	switch {
	case speed < 0.3:
		return "Calm"
	case speed <= 1.5:
		return "Light air"
	case speed <= 3.3:
		return "Light breeze"
	case speed <= 5.5:
		return "Gentle breeze"
	case speed <= 7.9:
		return "Moderate breeze"
	case speed <= 10.7:
		return "Fresh breeze"
	case speed <= 13.8:
		return "Strong breeze"
	case speed <= 17.1:
		return "High wind"
	case speed <= 20.7:
		return "Gale"
	case speed <= 24.4:
		return "Severe gale"
	case speed <= 28.4:
		return "Storm"
	case speed <= 32.6:
		return "Violent storm"
	default:
		return "Hurricane force"
	}
}

// DescribeRainRate maps a rainfall rate in mm/h onto the standard
// meteorological intensity categories.  A nil rate means the tracker has
// not crossed an interval boundary yet.
func DescribeRainRate(rate *float64) string {
	if rate == nil {
		return "Unknown"
	}
	switch {
	case *rate <= 0:
		return "No precipitation"
	case *rate <= 2.5:
		return "Light rain"
	case *rate <= 7.5:
		return "Moderate rain"
	case *rate <= 50:
		return "Heavy rain"
	default:
		return "Violent rain"
	}
}

// DescribeIlluminance maps an illuminance in lux onto familiar sky
// conditions.
func DescribeIlluminance(lux float64) string {
	switch {
	case lux < 2:
		return "Overcast night"
	case lux < 3:
		return "Clear night sky"
	case lux < 50:
		return "Rural night sky"
	case lux < 400:
		return "Dark overcast sky"
	case lux < 4500:
		return "Overcast day"
	case lux < 28500:
		return "Full daylight"
	case lux < 120000:
		return "Direct sunlight"
	default:
		return "Bright direct sunlight"
	}
}

var compass16 = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var compass8 = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassPoint converts a wind angle in degrees to a compass direction.
// With secondaryIntercardinal the full 16-point rose is used (22.5°
// buckets); without it only the 8 principal points (45° buckets).  The
// half-bucket offset centers each bucket on its direction.
func CompassPoint(degrees float64, secondaryIntercardinal bool) string {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	if secondaryIntercardinal {
		idx := int((degrees+11.25)/22.5) % 16
		return compass16[idx]
	}
	idx := int((degrees+22.5)/45) % 8
	return compass8[idx]
}
