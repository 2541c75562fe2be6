package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Devices     []DeviceYAML     `yaml:"devices"`
		Storage     StorageYAML      `yaml:"storage,omitempty"`
		Controllers []ControllerYAML `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Devices:     make([]DeviceData, len(yamlConfig.Devices)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	// Convert devices
	for i, device := range yamlConfig.Devices {
		var interval time.Duration
		if device.RainRateInterval != "" {
			interval, err = time.ParseDuration(device.RainRateInterval)
			if err != nil {
				return nil, fmt.Errorf("device [%s]: invalid rain-rate-interval: %w", device.Name, err)
			}
		}
		config.Devices[i] = DeviceData{
			Name:                 device.Name,
			Type:                 device.Type,
			Hostname:             device.Hostname,
			Port:                 device.Port,
			SerialDevice:         device.SerialDevice,
			Baud:                 device.Baud,
			NorthCorrection:      device.NorthCorrection,
			ThreeLetterDirection: device.ThreeLetterDirection,
			NightThresholdLower:  device.NightThresholdLower,
			NightThresholdUpper:  device.NightThresholdUpper,
			RainRateInterval:     interval,
		}
	}

	// Convert storage
	config.Storage = StorageData{}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}
	if yamlConfig.Storage.InfluxDB != nil {
		config.Storage.InfluxDB = &InfluxDBData{
			Scheme: yamlConfig.Storage.InfluxDB.Scheme,
			Host:   yamlConfig.Storage.InfluxDB.Host,
			Port:   yamlConfig.Storage.InfluxDB.Port,
			Org:    yamlConfig.Storage.InfluxDB.Org,
			Bucket: yamlConfig.Storage.InfluxDB.Bucket,
			Token:  yamlConfig.Storage.InfluxDB.Token,
		}
	}
	if yamlConfig.Storage.MQTT != nil {
		config.Storage.MQTT = &MQTTData{
			Broker:      yamlConfig.Storage.MQTT.Broker,
			TopicPrefix: yamlConfig.Storage.MQTT.TopicPrefix,
			Username:    yamlConfig.Storage.MQTT.Username,
			Password:    yamlConfig.Storage.MQTT.Password,
		}
	}

	// Convert controllers
	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				ListenAddr: controller.RESTServer.ListenAddr,
				Port:       controller.RESTServer.Port,
			}
		}
	}

	y.config = config
	return config, nil
}

// GetDevices returns device configurations
func (y *YAMLProvider) GetDevices() ([]DeviceData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Devices, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type DeviceYAML struct {
	Name                 string  `yaml:"name"`
	Type                 string  `yaml:"type,omitempty"`
	Hostname             string  `yaml:"hostname,omitempty"`
	Port                 string  `yaml:"port,omitempty"`
	SerialDevice         string  `yaml:"serialdevice,omitempty"`
	Baud                 int     `yaml:"baud,omitempty"`
	NorthCorrection      int     `yaml:"north-correction,omitempty"`
	ThreeLetterDirection bool    `yaml:"three-letter-direction,omitempty"`
	NightThresholdLower  float64 `yaml:"night-threshold-lower,omitempty"`
	NightThresholdUpper  float64 `yaml:"night-threshold-upper,omitempty"`
	RainRateInterval     string  `yaml:"rain-rate-interval,omitempty"`
}

type StorageYAML struct {
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
	InfluxDB    *InfluxDBYAML    `yaml:"influxdb,omitempty"`
	MQTT        *MQTTYAML        `yaml:"mqtt,omitempty"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type InfluxDBYAML struct {
	Scheme string `yaml:"scheme,omitempty"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port,omitempty"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
	Token  string `yaml:"token,omitempty"`
}

type MQTTYAML struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic-prefix,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
}

type RESTServerYAML struct {
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
}
