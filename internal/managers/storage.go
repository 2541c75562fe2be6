// Package managers wires configured stations, storage backends, and
// controllers together at startup.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/observability"
	"github.com/misol-tools/misolweather/internal/storage"
	"github.com/misol-tools/misolweather/internal/storage/influxdb"
	"github.com/misol-tools/misolweather/internal/storage/mqttpub"
	"github.com/misol-tools/misolweather/internal/storage/timescaledb"
	"github.com/misol-tools/misolweather/internal/types"
	"github.com/misol-tools/misolweather/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines            []StorageEngine
	ReadingDistributor chan types.Reading
	metrics            *observability.Metrics

	subMu       sync.Mutex
	subscribers []chan types.Reading
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing readings to the engine
type StorageEngine struct {
	Name   string
	Engine storage.StorageEngineInterface
	C      chan<- types.Reading
}

// NewStorageManager creates a StorageManager object, populated with all configured StorageEngines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, metrics *observability.Metrics) (*StorageManager, error) {
	s := StorageManager{metrics: metrics}

	// Channel for passing readings from stations to the distributor
	s.ReadingDistributor = make(chan types.Reading, 20)

	storageConfig, err := configProvider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load storage configuration: %v", err)
	}

	// Check the configuration for supported storage backends and enable
	// them if found

	if storageConfig.TimescaleDB != nil && storageConfig.TimescaleDB.ConnectionString != "" {
		if err := s.AddEngine(ctx, wg, "timescaledb", storageConfig); err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB storage backend: %v", err)
		}
	}

	if storageConfig.InfluxDB != nil && storageConfig.InfluxDB.Host != "" {
		if err := s.AddEngine(ctx, wg, "influxdb", storageConfig); err != nil {
			return &s, fmt.Errorf("could not add InfluxDB storage backend: %v", err)
		}
	}

	if storageConfig.MQTT != nil && storageConfig.MQTT.Broker != "" {
		if err := s.AddEngine(ctx, wg, "mqtt", storageConfig); err != nil {
			return &s, fmt.Errorf("could not add MQTT publisher backend: %v", err)
		}
	}

	// Start our reading distributor to fan received readings out to the
	// storage backends and any subscribers
	wg.Add(1)
	go s.startReadingDistributor(ctx, wg)

	return &s, nil
}

// GetReadingDistributor returns the reading distributor channel
func (s *StorageManager) GetReadingDistributor() chan types.Reading {
	return s.ReadingDistributor
}

// Subscribe returns a channel that receives a copy of every distributed
// reading.  Used by controllers that keep a latest-reading cache.
func (s *StorageManager) Subscribe() <-chan types.Reading {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	c := make(chan types.Reading, 10)
	s.subscribers = append(s.subscribers, c)
	return c
}

// AddEngine adds a new StorageEngine of name engineName to our Storage object
func (s *StorageManager) AddEngine(ctx context.Context, wg *sync.WaitGroup, engineName string, sc *config.StorageData) error {
	var err error

	switch engineName {
	case "timescaledb":
		se := StorageEngine{Name: engineName}
		se.Engine, err = timescaledb.New(ctx, sc.TimescaleDB)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	case "influxdb":
		se := StorageEngine{Name: engineName}
		se.Engine, err = influxdb.New(sc.InfluxDB)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	case "mqtt":
		se := StorageEngine{Name: engineName}
		se.Engine, err = mqttpub.New(sc.MQTT)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	default:
		return fmt.Errorf("unknown storage engine: %s", engineName)
	}

	return nil
}

// startReadingDistributor receives readings from stations and fans them
// out to the various storage backends
func (s *StorageManager) startReadingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case r := <-s.ReadingDistributor:
			for _, e := range s.Engines {
				select {
				case e.C <- r:
					if s.metrics != nil {
						s.metrics.ReadingsStored.WithLabelValues(e.Name).Inc()
					}
				default:
					log.Warnf("storage backend [%s] is not keeping up; dropping reading", e.Name)
				}
			}
			s.subMu.Lock()
			for _, c := range s.subscribers {
				select {
				case c <- r:
				default:
				}
			}
			s.subMu.Unlock()
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling reading distributor.")
			return
		}
	}
}
