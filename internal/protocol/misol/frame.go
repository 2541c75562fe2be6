// Package misol implements the wire protocol spoken by Misol wireless
// weather station receivers over their UART output: frame detection and
// checksum validation, field decoding with per-field "no data" sentinels,
// derived rainfall-rate and day/night tracking, and human-readable
// descriptions for wind, rain and light conditions.
package misol

const (
	// frameHeader is the first byte of every frame emitted by the receiver.
	frameHeader = 0x24

	// basicFrameLen is the length of the base frame: 16 payload bytes
	// plus a one-byte additive checksum.
	basicFrameLen = 17

	// pressureFrameLen is the length of a base frame followed by the
	// barometric pressure extension: 3 payload bytes plus its own
	// one-byte checksum.
	pressureFrameLen = 21
)

// FrameKind classifies a received byte burst.
type FrameKind int

const (
	// FrameInvalid means the buffer is not a recognizable frame.
	FrameInvalid FrameKind = iota
	// FrameBasic is a base frame without a usable pressure extension.
	FrameBasic
	// FrameBasicWithPressure is a base frame with a valid pressure extension.
	FrameBasicWithPressure
)

func (k FrameKind) String() string {
	switch k {
	case FrameBasic:
		return "basic"
	case FrameBasicWithPressure:
		return "basic+pressure"
	default:
		return "invalid"
	}
}

// checksum returns the sum of data truncated to 8 bits, which is the
// integrity check the station firmware uses for both frame sections.
func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// DetectFrame classifies a raw byte buffer.  It is total over any input,
// including an empty buffer.  A frame whose pressure extension is present
// but corrupt degrades to FrameBasic rather than failing outright: the
// base frame already passed its own checksum and its data is still good.
func DetectFrame(data []byte) FrameKind {
	if len(data) < basicFrameLen {
		return FrameInvalid
	}
	if data[0] != frameHeader {
		return FrameInvalid
	}
	if checksum(data[0:16]) != data[16] {
		return FrameInvalid
	}
	if len(data) == basicFrameLen {
		return FrameBasic
	}
	if len(data) < pressureFrameLen {
		return FrameBasic
	}
	if checksum(data[17:20]) != data[20] {
		return FrameBasic
	}
	return FrameBasicWithPressure
}
