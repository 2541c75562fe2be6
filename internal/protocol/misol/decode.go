package misol

import "math"

// Per-field sentinel encodings meaning "no data" on the wire.
const (
	sentinelWindDir  = 0x1FF
	sentinelTemp     = 0x7FF
	sentinelHumidity = 0xFF
	sentinelWindGust = 0xFF
	sentinelUint16   = 0xFFFF
	sentinelUint24   = 0xFFFFFF
)

// windCalibration converts the anemometer's raw cup counts to m/s.
// The constant is empirical, from the vendor's gust-cup calibration.
const windCalibration = 1.12

// RainCounterScale is the depth in mm represented by one tick of the
// station's accumulated rain counter.  Decode keeps the counter raw; the
// scale is applied where readings are presented.
const RainCounterScale = 0.3

// Observation holds the raw fields extracted from one valid frame.
// A nil field was sentinel-masked by the station (sensor absent or not
// yet reporting).  Values carry physical units already; RainCounter and
// UVRaw stay in device units because downstream derivations need them
// unscaled.
type Observation struct {
	WindDirection *int     // degrees, 0-359
	LowBattery    bool     // transmitter battery flag
	Temperature   *float64 // °C
	Humidity      *float64 // %RH
	WindSpeed     *float64 // m/s
	WindGust      *float64 // m/s
	RainCounter   *int     // accumulated tip counter, device units
	UVRaw         *int     // UV intensity, tenths of mW/cm²
	Illuminance   *float64 // lux
	Pressure      *float64 // hPa, only on FrameBasicWithPressure
}

// UVIntensity returns the UV intensity in mW/cm², or nil when unreported.
func (o *Observation) UVIntensity() *float64 {
	if o.UVRaw == nil {
		return nil
	}
	v := float64(*o.UVRaw) / 10.0
	return &v
}

// UVIndex derives the UV index from the raw UV intensity.
func (o *Observation) UVIndex() *int {
	if o.UVRaw == nil {
		return nil
	}
	idx := *o.UVRaw / 400
	return &idx
}

// Decode extracts all fields from a frame already classified as valid by
// DetectFrame.  It is a pure function of the buffer: no state, no side
// effects.  kind selects whether the pressure extension is read.
func Decode(data []byte, kind FrameKind) Observation {
	var obs Observation

	windDir := int(data[2]) + int(data[3]&0x80)<<1
	if windDir != sentinelWindDir {
		obs.WindDirection = &windDir
	}

	obs.LowBattery = data[3]&0x08 != 0

	tempRaw := int(data[3]&0x07)<<8 | int(data[4])
	if tempRaw != sentinelTemp {
		t := (float64(tempRaw) - 400) / 10.0
		obs.Temperature = &t
	}

	if data[5] != sentinelHumidity {
		h := float64(data[5])
		obs.Humidity = &h
	}

	speedRaw := int(data[3]&0x10)<<4 | int(data[6])
	if speedRaw != sentinelWindDir {
		s := float64(speedRaw) / 8.0 * windCalibration
		obs.WindSpeed = &s
	}

	if data[7] != sentinelWindGust {
		g := float64(data[7]) * windCalibration
		obs.WindGust = &g
	}

	rain := int(data[8])<<8 | int(data[9])
	if rain != sentinelUint16 {
		obs.RainCounter = &rain
	}

	uv := int(data[10])<<8 | int(data[11])
	if uv != sentinelUint16 {
		obs.UVRaw = &uv
	}

	light := int(data[12])<<16 | int(data[13])<<8 | int(data[14])
	if light != sentinelUint24 {
		lx := float64(light) / 10.0
		obs.Illuminance = &lx
	}

	if kind == FrameBasicWithPressure {
		p := float64(int(data[17])<<16|int(data[18])<<8|int(data[19])) / 100.0
		obs.Pressure = &p
	}

	return obs
}

// Marshal builds a wire frame carrying the observation's fields, with
// nil fields encoded as their sentinels.  The pressure extension is
// appended only when Pressure is set.  Checksums are computed over the
// final bytes.  Used by the emulator and by round-trip tests.
func Marshal(obs Observation) []byte {
	data := make([]byte, basicFrameLen)
	data[0] = frameHeader

	windDir := sentinelWindDir
	if obs.WindDirection != nil {
		windDir = *obs.WindDirection
	}
	data[2] = byte(windDir & 0xFF)
	if windDir&0x100 != 0 {
		data[3] |= 0x80
	}

	if obs.LowBattery {
		data[3] |= 0x08
	}

	tempRaw := sentinelTemp
	if obs.Temperature != nil {
		tempRaw = int(math.Round(*obs.Temperature*10)) + 400
	}
	data[3] |= byte(tempRaw>>8) & 0x07
	data[4] = byte(tempRaw & 0xFF)

	data[5] = sentinelHumidity
	if obs.Humidity != nil {
		data[5] = byte(*obs.Humidity)
	}

	speedRaw := sentinelWindDir
	if obs.WindSpeed != nil {
		speedRaw = int(math.Round(*obs.WindSpeed / windCalibration * 8.0))
	}
	data[6] = byte(speedRaw & 0xFF)
	if speedRaw&0x100 != 0 {
		data[3] |= 0x10
	}

	data[7] = sentinelWindGust
	if obs.WindGust != nil {
		data[7] = byte(math.Round(*obs.WindGust / windCalibration))
	}

	rain := sentinelUint16
	if obs.RainCounter != nil {
		rain = *obs.RainCounter
	}
	data[8] = byte(rain >> 8)
	data[9] = byte(rain & 0xFF)

	uv := sentinelUint16
	if obs.UVRaw != nil {
		uv = *obs.UVRaw
	}
	data[10] = byte(uv >> 8)
	data[11] = byte(uv & 0xFF)

	light := sentinelUint24
	if obs.Illuminance != nil {
		light = int(math.Round(*obs.Illuminance * 10))
	}
	data[12] = byte(light >> 16)
	data[13] = byte(light >> 8 & 0xFF)
	data[14] = byte(light & 0xFF)

	data[16] = checksum(data[0:16])

	if obs.Pressure != nil {
		ext := make([]byte, 4)
		p := int(math.Round(*obs.Pressure * 100))
		ext[0] = byte(p >> 16)
		ext[1] = byte(p >> 8 & 0xFF)
		ext[2] = byte(p & 0xFF)
		ext[3] = checksum(ext[0:3])
		data = append(data, ext...)
	}

	return data
}
