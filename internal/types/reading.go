package types

import (
	"time"
)

// Reading is one decoded weather reading from a Misol station.  Every
// per-sensor field is a pointer: nil means the sensor did not report a
// value (sentinel-masked on the wire, or invalidated by a communication
// timeout).  Sinks must publish nil fields as an explicit "no data"
// marker rather than dropping them, so downstream consumers can tell a
// dead sensor from a calm day.
type Reading struct {
	Timestamp   time.Time `gorm:"column:time" json:"timestamp"`
	StationName string    `gorm:"column:stationname" json:"station_name"`
	StationType string    `gorm:"column:stationtype" json:"station_type"`

	Temperature      *float64 `gorm:"column:temperature" json:"temperature"`
	Humidity         *float64 `gorm:"column:humidity" json:"humidity"`
	Pressure         *float64 `gorm:"column:pressure" json:"pressure"`
	WindSpeed        *float64 `gorm:"column:windspeed" json:"wind_speed"`
	WindGust         *float64 `gorm:"column:windgust" json:"wind_gust"`
	WindDirection    *float64 `gorm:"column:winddir" json:"wind_direction"`
	WindCompass      *string  `gorm:"column:windcompass" json:"wind_compass"`
	WindDescription  *string  `gorm:"column:winddescription" json:"wind_description"`
	LowBattery       *bool    `gorm:"column:lowbattery" json:"low_battery"`
	RainCounter      *int     `gorm:"column:raincounter" json:"rain_counter"`
	RainAccumulated  *float64 `gorm:"column:rainaccumulated" json:"rain_accumulated"`
	RainRate         *float64 `gorm:"column:rainrate" json:"rain_rate"`
	RainDescription  *string  `gorm:"column:raindescription" json:"rain_description"`
	UVIntensity      *float64 `gorm:"column:uvintensity" json:"uv_intensity"`
	UVIndex          *int     `gorm:"column:uvindex" json:"uv_index"`
	Illuminance      *float64 `gorm:"column:illuminance" json:"illuminance"`
	LightDescription *string  `gorm:"column:lightdescription" json:"light_description"`
	Night            *bool    `gorm:"column:night" json:"night"`
}

// TableName implements the GORM Tabler interface for the Reading struct
func (Reading) TableName() string {
	return "weather"
}

// Empty reports whether every sensor field is absent, which is the shape
// of the reading emitted when a station times out.
func (r *Reading) Empty() bool {
	return r.Temperature == nil &&
		r.Humidity == nil &&
		r.Pressure == nil &&
		r.WindSpeed == nil &&
		r.WindGust == nil &&
		r.WindDirection == nil &&
		r.LowBattery == nil &&
		r.RainCounter == nil &&
		r.RainRate == nil &&
		r.UVIntensity == nil &&
		r.Illuminance == nil &&
		r.Night == nil
}
