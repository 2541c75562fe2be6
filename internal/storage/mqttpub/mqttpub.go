// Package mqttpub publishes readings to an MQTT broker, one retained
// topic per sensor value.
package mqttpub

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/types"
	"github.com/misol-tools/misolweather/pkg/config"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// absentPayload marks a sensor that did not report.  Consumers that
	// parse topics as floats will see NaN rather than a stale number.
	absentPayload = "NaN"
)

// Storage holds the configuration for an MQTT publisher backend
type Storage struct {
	client mqtt.Client
	prefix string
}

// StartStorageEngine creates a goroutine loop to receive readings and
// publish them to the broker
func (m *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting MQTT publisher engine...")
	readingChan := make(chan types.Reading, 10)
	wg.Add(1)
	go m.processMetrics(ctx, wg, readingChan)
	return readingChan
}

func (m *Storage) processMetrics(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := m.StoreReading(r); err != nil {
				log.Errorf("could not publish reading to MQTT: %v", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling MQTT readings processor.")
			m.client.Disconnect(250)
			return
		}
	}
}

// StoreReading publishes every sensor field of one reading.  Fields the
// station did not report are published as the absent marker so that a
// timeout or a masked sensor visibly clears the old value.
func (m *Storage) StoreReading(r types.Reading) error {
	pub := func(topic, payload string) error {
		t := m.client.Publish(m.prefix+"/"+r.StationName+"/"+topic, 0, true, payload)
		if !t.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish to %v timed out", topic)
		}
		return t.Error()
	}

	floatPayload := func(v *float64) string {
		if v == nil {
			return absentPayload
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	intPayload := func(v *int) string {
		if v == nil {
			return absentPayload
		}
		return strconv.Itoa(*v)
	}
	boolPayload := func(v *bool) string {
		if v == nil {
			return absentPayload
		}
		return strconv.FormatBool(*v)
	}
	stringPayload := func(v *string) string {
		if v == nil {
			return absentPayload
		}
		return *v
	}

	topics := []struct {
		name    string
		payload string
	}{
		{"temperature", floatPayload(r.Temperature)},
		{"humidity", floatPayload(r.Humidity)},
		{"pressure", floatPayload(r.Pressure)},
		{"windspeed", floatPayload(r.WindSpeed)},
		{"windgust", floatPayload(r.WindGust)},
		{"winddir", floatPayload(r.WindDirection)},
		{"windcompass", stringPayload(r.WindCompass)},
		{"winddescription", stringPayload(r.WindDescription)},
		{"lowbattery", boolPayload(r.LowBattery)},
		{"raincounter", intPayload(r.RainCounter)},
		{"rainaccumulated", floatPayload(r.RainAccumulated)},
		{"rainrate", floatPayload(r.RainRate)},
		{"raindescription", stringPayload(r.RainDescription)},
		{"uvintensity", floatPayload(r.UVIntensity)},
		{"uvindex", intPayload(r.UVIndex)},
		{"illuminance", floatPayload(r.Illuminance)},
		{"lightdescription", stringPayload(r.LightDescription)},
		{"night", boolPayload(r.Night)},
	}

	for _, t := range topics {
		if err := pub(t.name, t.payload); err != nil {
			return err
		}
	}
	return nil
}

// New sets up a new MQTT publisher backend
func New(c *config.MQTTData) (*Storage, error) {
	s := Storage{prefix: c.TopicPrefix}
	if s.prefix == "" {
		s.prefix = "misolweather"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID("misolweather-" + uuid.NewString()[:8]).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)
	if c.Username != "" {
		opts.SetUsername(c.Username)
		opts.SetPassword(c.Password)
	}

	log.Infof("connecting to MQTT broker at %v...", c.Broker)
	s.client = mqtt.NewClient(opts)
	t := s.client.Connect()
	if !t.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %v", c.Broker)
	}
	if t.Error() != nil {
		return nil, t.Error()
	}

	return &s, nil
}
