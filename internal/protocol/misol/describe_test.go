package misol

import "testing"

func TestDescribeWindSpeed(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{0, "Calm"},
		{0.29, "Calm"},
		{0.3, "Light air"},
		{1.5, "Light air"},
		{2.0, "Light breeze"},
		{3.3, "Light breeze"},
		{3.4, "Gentle breeze"},
		{5.5, "Gentle breeze"},
		{7.9, "Moderate breeze"},
		{10.7, "Fresh breeze"},
		{13.8, "Strong breeze"},
		{17.1, "High wind"},
		{20.7, "Gale"},
		{24.4, "Severe gale"},
		{28.4, "Storm"},
		{32.6, "Violent storm"},
		{35, "Hurricane force"},
	}
	for _, tt := range tests {
		if got := DescribeWindSpeed(tt.speed); got != tt.want {
			t.Errorf("DescribeWindSpeed(%v) = %q, want %q", tt.speed, got, tt.want)
		}
	}
}

func TestDescribeRainRate(t *testing.T) {
	tests := []struct {
		rate *float64
		want string
	}{
		{nil, "Unknown"},
		{fptr(0), "No precipitation"},
		{fptr(-1), "No precipitation"},
		{fptr(0.1), "Light rain"},
		{fptr(2.5), "Light rain"},
		{fptr(2.6), "Moderate rain"},
		{fptr(7.5), "Moderate rain"},
		{fptr(20), "Heavy rain"},
		{fptr(50), "Heavy rain"},
		{fptr(50.1), "Violent rain"},
	}
	for _, tt := range tests {
		if got := DescribeRainRate(tt.rate); got != tt.want {
			t.Errorf("DescribeRainRate(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestDescribeIlluminance(t *testing.T) {
	tests := []struct {
		lux  float64
		want string
	}{
		{0.5, "Overcast night"},
		{2.5, "Clear night sky"},
		{30, "Rural night sky"},
		{200, "Dark overcast sky"},
		{4000, "Overcast day"},
		{20000, "Full daylight"},
		{100000, "Direct sunlight"},
		{130000, "Bright direct sunlight"},
	}
	for _, tt := range tests {
		if got := DescribeIlluminance(tt.lux); got != tt.want {
			t.Errorf("DescribeIlluminance(%v) = %q, want %q", tt.lux, got, tt.want)
		}
	}
}

func TestCompassPoint16(t *testing.T) {
	tests := []struct {
		degrees float64
		want    string
	}{
		{0, "N"},
		{11.24, "N"},
		{11.25, "NNE"},
		{22.5, "NNE"},
		{45, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{348.74, "NNW"},
		{348.75, "N"},
		{359, "N"},
		{-90, "W"}, // normalized
		{450, "E"},
	}
	for _, tt := range tests {
		if got := CompassPoint(tt.degrees, true); got != tt.want {
			t.Errorf("CompassPoint(%v, true) = %q, want %q", tt.degrees, got, tt.want)
		}
	}
}

func TestCompassPoint8(t *testing.T) {
	tests := []struct {
		degrees float64
		want    string
	}{
		{0, "N"},
		{22.4, "N"},
		{22.5, "NE"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{337.4, "NW"},
		{337.5, "N"},
	}
	for _, tt := range tests {
		if got := CompassPoint(tt.degrees, false); got != tt.want {
			t.Errorf("CompassPoint(%v, false) = %q, want %q", tt.degrees, got, tt.want)
		}
	}
}
