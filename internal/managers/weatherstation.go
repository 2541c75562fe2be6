package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/observability"
	"github.com/misol-tools/misolweather/internal/types"
	"github.com/misol-tools/misolweather/internal/weatherstations"
	"github.com/misol-tools/misolweather/internal/weatherstations/misol"
	"github.com/misol-tools/misolweather/pkg/config"
	"go.uber.org/zap"
)

// WeatherStationManager creates and starts the configured station drivers
type WeatherStationManager struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	distributor    chan types.Reading
	logger         *zap.SugaredLogger
	stations       map[string]weatherstations.WeatherStation
	mu             sync.RWMutex
}

// NewWeatherStationManager creates a WeatherStationManager object, populated with all configured weather stations
func NewWeatherStationManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, distributor chan types.Reading, metrics *observability.Metrics, logger *zap.SugaredLogger) (*WeatherStationManager, error) {
	devices, err := configProvider.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("error loading device configuration: %v", err)
	}

	wsm := &WeatherStationManager{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		distributor:    distributor,
		logger:         logger,
		stations:       make(map[string]weatherstations.WeatherStation),
	}

	for _, deviceConfig := range devices {
		station, err := createStationFromConfig(ctx, wg, configProvider, deviceConfig, distributor, metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating weather station [%s]: %w", deviceConfig.Name, err)
		}
		wsm.stations[deviceConfig.Name] = station
	}

	return wsm, nil
}

// StartWeatherStations starts every configured station driver
func (w *WeatherStationManager) StartWeatherStations() error {
	for name, station := range w.stations {
		w.logger.Infof("Starting weather station [%v]...", name)
		if err := station.StartWeatherStation(); err != nil {
			return fmt.Errorf("failed to start weather station [%s]: %w", name, err)
		}
	}
	return nil
}

// GetStation retrieves a weather station by name, or nil if it does not
// exist.  Safe for concurrent use.
func (w *WeatherStationManager) GetStation(deviceName string) weatherstations.WeatherStation {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stations[deviceName]
}

// createStationFromConfig creates the appropriate weather station based on device type
func createStationFromConfig(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deviceConfig config.DeviceData, distributor chan types.Reading, metrics *observability.Metrics, logger *zap.SugaredLogger) (weatherstations.WeatherStation, error) {
	switch deviceConfig.Type {
	case "misol", "":
		log.Infof("Initializing Misol weather station [%v]", deviceConfig.Name)
		return misol.NewStation(ctx, wg, configProvider, deviceConfig.Name, distributor, metrics, logger), nil
	default:
		return nil, fmt.Errorf("unknown weather station type: %s", deviceConfig.Type)
	}
}
