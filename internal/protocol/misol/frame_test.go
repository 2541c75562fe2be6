package misol

import (
	"testing"
)

// validBasicFrame returns a 17-byte frame with a correct checksum and
// every sensor field sentinel-masked.
func validBasicFrame() []byte {
	return Marshal(Observation{})
}

func validPressureFrame() []byte {
	p := 1013.25
	return Marshal(Observation{Pressure: &p})
}

func TestDetectFrame(t *testing.T) {
	tests := []struct {
		name string
		data func() []byte
		want FrameKind
	}{
		{
			name: "empty buffer",
			data: func() []byte { return nil },
			want: FrameInvalid,
		},
		{
			name: "too short",
			data: func() []byte { return validBasicFrame()[:16] },
			want: FrameInvalid,
		},
		{
			name: "wrong header byte",
			data: func() []byte {
				f := validBasicFrame()
				f[0] = 0x23
				return f
			},
			want: FrameInvalid,
		},
		{
			name: "corrupted payload fails checksum",
			data: func() []byte {
				f := validBasicFrame()
				f[5] ^= 0x01
				return f
			},
			want: FrameInvalid,
		},
		{
			name: "corrupted checksum byte",
			data: func() []byte {
				f := validBasicFrame()
				f[16]++
				return f
			},
			want: FrameInvalid,
		},
		{
			name: "valid basic frame",
			data: validBasicFrame,
			want: FrameBasic,
		},
		{
			name: "valid basic frame with short trailing junk",
			data: func() []byte { return append(validBasicFrame(), 0x01, 0x02, 0x03) },
			want: FrameBasic,
		},
		{
			name: "valid frame with pressure extension",
			data: validPressureFrame,
			want: FrameBasicWithPressure,
		},
		{
			name: "corrupt pressure extension degrades to basic",
			data: func() []byte {
				f := validPressureFrame()
				f[18] ^= 0x01
				return f
			},
			want: FrameBasic,
		},
		{
			name: "corrupt extension checksum degrades to basic",
			data: func() []byte {
				f := validPressureFrame()
				f[20]++
				return f
			},
			want: FrameBasic,
		},
		{
			name: "pressure extension corrupt but base frame corrupt too",
			data: func() []byte {
				f := validPressureFrame()
				f[4] ^= 0xFF
				return f
			},
			want: FrameInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFrame(tt.data()); got != tt.want {
				t.Errorf("DetectFrame() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecksumIsTruncatedSum(t *testing.T) {
	// 0x24 + 15*0x20 = 0x204, truncates to 0x04
	data := make([]byte, 17)
	data[0] = frameHeader
	for i := 1; i < 16; i++ {
		data[i] = 0x20
	}
	data[16] = 0x04
	if got := DetectFrame(data); got != FrameBasic {
		t.Errorf("DetectFrame() = %v, want %v", got, FrameBasic)
	}
}
