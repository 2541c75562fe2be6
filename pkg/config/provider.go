// Package config defines the collector configuration model and its
// loading interface.
package config

import "time"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDevices() ([]DeviceData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	// IsReadOnly reports whether the backing store can be written through
	// this provider.
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Devices     []DeviceData     `json:"devices"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// DeviceData holds configuration specific to one receiver device
type DeviceData struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	Port         string `json:"port,omitempty"`
	SerialDevice string `json:"serial_device,omitempty"`
	Baud         int    `json:"baud,omitempty"`

	// NorthCorrection (degrees, -180..180) compensates a wind vane not
	// mounted pointing true north.
	NorthCorrection int `json:"north_correction,omitempty"`

	// ThreeLetterDirection enables the 16-point compass rose for the
	// wind direction text instead of the 8 principal points.
	ThreeLetterDirection bool `json:"three_letter_direction,omitempty"`

	// Night-detection hysteresis thresholds, in mW/cm² of UV intensity.
	// Zero values select the built-in defaults.
	NightThresholdLower float64 `json:"night_threshold_lower,omitempty"`
	NightThresholdUpper float64 `json:"night_threshold_upper,omitempty"`

	// RainRateInterval is the minimum spacing between rainfall-rate
	// computations.  Zero selects the default.
	RainRateInterval time.Duration `json:"rain_rate_interval,omitempty"`
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
	InfluxDB    *InfluxDBData    `json:"influxdb,omitempty"`
	MQTT        *MQTTData        `json:"mqtt,omitempty"`
}

// ControllerData holds the configuration for controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

// Storage backend configuration structs
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

type InfluxDBData struct {
	Scheme string `json:"scheme,omitempty"`
	Host   string `json:"host"`
	Port   int    `json:"port,omitempty"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	Token  string `json:"token,omitempty"`
}

type MQTTData struct {
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
}

// Controller configuration structs
type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
}
