// Package influxdb stores readings in InfluxDB 2.x.
package influxdb

import (
	"context"
	"fmt"
	"sync"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/types"
	"github.com/misol-tools/misolweather/pkg/config"
)

// Storage holds the configuration for an InfluxDB storage backend
type Storage struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// StartStorageEngine creates a goroutine loop to receive readings and send
// them off to InfluxDB
func (i *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting InfluxDB storage engine...")
	readingChan := make(chan types.Reading, 10)
	wg.Add(1)
	go i.processMetrics(ctx, wg, readingChan)
	return readingChan
}

func (i *Storage) processMetrics(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := i.StoreReading(ctx, r); err != nil {
				log.Errorf("could not store reading in InfluxDB: %v", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling InfluxDB readings processor.")
			i.client.Close()
			return
		}
	}
}

// StoreReading writes one reading as a single point.  Absent sensors are
// left off the point entirely; InfluxDB has no notion of a null field, so
// a missing field is the honest encoding of "did not report".
func (i *Storage) StoreReading(ctx context.Context, r types.Reading) error {
	fields := make(map[string]interface{})

	addFloat := func(name string, v *float64) {
		if v != nil {
			fields[name] = *v
		}
	}
	addFloat("temperature", r.Temperature)
	addFloat("humidity", r.Humidity)
	addFloat("pressure", r.Pressure)
	addFloat("windspeed", r.WindSpeed)
	addFloat("windgust", r.WindGust)
	addFloat("winddir", r.WindDirection)
	addFloat("rainaccumulated", r.RainAccumulated)
	addFloat("rainrate", r.RainRate)
	addFloat("uvintensity", r.UVIntensity)
	addFloat("illuminance", r.Illuminance)
	if r.RainCounter != nil {
		fields["raincounter"] = *r.RainCounter
	}
	if r.UVIndex != nil {
		fields["uvindex"] = *r.UVIndex
	}
	if r.LowBattery != nil {
		fields["lowbattery"] = *r.LowBattery
	}
	if r.Night != nil {
		fields["night"] = *r.Night
	}

	if len(fields) == 0 {
		// Timeout invalidation; there is nothing to write.
		return nil
	}

	p := influxdb2.NewPoint("weather",
		map[string]string{"station": r.StationName},
		fields,
		r.Timestamp,
	)

	return i.writeAPI.WritePoint(ctx, p)
}

// New sets up a new InfluxDB storage backend
func New(c *config.InfluxDBData) (*Storage, error) {
	s := Storage{}

	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	port := c.Port
	if port == 0 {
		port = 8086
	}

	url := fmt.Sprintf("%v://%v:%v", scheme, c.Host, port)
	log.Infof("connecting to InfluxDB at %v...", url)

	s.client = influxdb2.NewClient(url, c.Token)
	s.writeAPI = s.client.WriteAPIBlocking(c.Org, c.Bucket)

	return &s, nil
}
