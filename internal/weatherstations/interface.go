// Package weatherstations defines the station driver interface and
// helpers shared by station implementations.
package weatherstations

// WeatherStation is an interface that provides standard methods for
// station driver backends
type WeatherStation interface {
	StartWeatherStation() error
	StationName() string
}
