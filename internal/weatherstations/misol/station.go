// Package misol implements the station driver for Misol wireless weather
// station receivers attached over a serial port or a TCP serial server.
// The receiver is transmit-only: the driver assembles the byte bursts it
// emits and feeds them to the protocol session once per poll tick.
package misol

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/observability"
	protocol "github.com/misol-tools/misolweather/internal/protocol/misol"
	"github.com/misol-tools/misolweather/internal/types"
	"github.com/misol-tools/misolweather/internal/weatherstations"
	"github.com/misol-tools/misolweather/pkg/config"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

// pollInterval is how often the driver drains buffered bytes into the
// session.  The station transmits every 16 seconds, so one second keeps
// bursts from distinct transmissions apart.
const pollInterval = time.Second

// Station implements a Misol weather station receiver
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	netConn            net.Conn
	rwc                io.ReadWriteCloser
	config             config.DeviceData
	session            *protocol.Session
	ReadingDistributor chan types.Reading
	logger             *zap.SugaredLogger

	burstMu sync.Mutex
	burst   []byte

	connecting   bool
	connectingMu sync.RWMutex
	connected    bool
	connectedMu  sync.RWMutex
}

// NewStation creates a new Misol weather station driver
func NewStation(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deviceName string, distributor chan types.Reading, metrics *observability.Metrics, logger *zap.SugaredLogger) weatherstations.WeatherStation {
	station := &Station{
		ctx:                ctx,
		wg:                 wg,
		ReadingDistributor: distributor,
		logger:             logger,
	}

	deviceConfig := weatherstations.LoadDeviceConfig(configProvider, deviceName, logger)
	station.config = *deviceConfig

	if err := weatherstations.ValidateSerialOrNetwork(station.config); err != nil {
		logger.Fatalf("Misol station: %v", err)
	}

	if station.config.SerialDevice != "" {
		log.Info("Configuring Misol station via serial port...")
	} else {
		log.Info("Configuring Misol station via TCP/IP")
	}

	// The receiver's UART runs at 9600 baud
	if station.config.Baud == 0 {
		station.config.Baud = 9600
	}

	station.session = protocol.NewSession(protocol.SessionConfig{
		StationName:            station.config.Name,
		NorthCorrection:        station.config.NorthCorrection,
		SecondaryIntercardinal: station.config.ThreeLetterDirection,
		NightThresholdLower:    station.config.NightThresholdLower,
		NightThresholdUpper:    station.config.NightThresholdUpper,
		RainRateInterval:       station.config.RainRateInterval,
	}, clockwork.NewRealClock(), metrics)

	return station
}

func (s *Station) StationName() string {
	return s.config.Name
}

// StartWeatherStation connects to the receiver and launches the reader
// and poller goroutines
func (s *Station) StartWeatherStation() error {
	log.Infof("Starting Misol weather station [%v]...", s.config.Name)

	s.Connect()

	s.wg.Add(2)
	go s.readBytes()
	go s.pollSession()

	return nil
}

// readBytes pulls bytes off the link as they arrive and appends them to
// the pending burst.  The receiver never needs to be written to.
func (s *Station) readBytes() {
	defer s.wg.Done()

	buf := make([]byte, 256)
	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling readBytes()")
			return
		default:
		}

		if s.netConn != nil {
			s.netConn.SetReadDeadline(time.Now().Add(time.Minute))
		}

		n, err := s.rwc.Read(buf)
		if n > 0 {
			s.burstMu.Lock()
			s.burst = append(s.burst, buf[:n]...)
			s.burstMu.Unlock()
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// Nothing on the wire within the deadline; the session's
				// own staleness tracking decides what that means.
				continue
			}
			s.logger.Errorf("error reading from Misol station [%s]: %v", s.config.Name, err)
			s.rwc.Close()
			if s.netConn != nil {
				s.netConn.Close()
			}
			s.logger.Info("attempting to reconnect...")
			s.Connect()
		}
	}
}

// pollSession drives the decode session once per tick, forwarding any
// resulting readings (or timeout invalidations) to the distributor.
func (s *Station) pollSession() {
	defer s.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling pollSession()")
			return
		case <-ticker.C:
			for _, ev := range s.session.Poll(s.drainBurst()) {
				if ev.Reset {
					log.Warnf("Misol station [%s] timed out; publishing invalidated reading", s.config.Name)
				} else {
					log.Debugf("Misol station [%s] sending reading to distributor", s.config.Name)
				}
				s.ReadingDistributor <- ev.Reading
			}
		}
	}
}

func (s *Station) drainBurst() []byte {
	s.burstMu.Lock()
	defer s.burstMu.Unlock()
	b := s.burst
	s.burst = nil
	return b
}

// Connect connects to a Misol receiver over serial or network
func (s *Station) Connect() {
	if len(s.config.SerialDevice) > 0 {
		s.connectToSerialStation()
	} else if (len(s.config.Hostname) > 0) && (len(s.config.Port) > 0) {
		s.connectToNetworkStation()
	} else {
		s.logger.Fatal("must provide either network hostname+port or serial device in config")
	}
}

// connectToSerialStation connects to a Misol receiver over a serial port
func (s *Station) connectToSerialStation() {
	var err error

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		s.logger.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	s.logger.Infof("connecting to %v ...", s.config.SerialDevice)

	for {
		sc := &serial.Config{Name: s.config.SerialDevice, Baud: s.config.Baud}
		s.logger.Debugf("attempting to open serial port %s at %d baud", s.config.SerialDevice, s.config.Baud)
		s.rwc, err = serial.OpenPort(sc)

		if err != nil {
			s.logger.Errorf("failed to open serial port %s: %v", s.config.SerialDevice, err)
			s.logger.Error("sleeping 30 seconds and trying again")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(30 * time.Second):
				// Continue to next iteration
			}
		} else {
			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			return
		}
	}
}

// connectToNetworkStation connects to a Misol receiver through a TCP
// serial server
func (s *Station) connectToNetworkStation() {
	var err error

	console := fmt.Sprint(s.config.Hostname, ":", s.config.Port)

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		log.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	log.Info("connecting to:", console)

	for {
		s.netConn, err = net.DialTimeout("tcp", console, 10*time.Second)

		if err != nil {
			log.Errorf("could not connect to %v: %v", console, err)
			log.Error("sleeping 5 seconds and trying again.")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(5 * time.Second):
				// Continue to next iteration
			}
		} else {
			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			s.rwc = io.ReadWriteCloser(s.netConn)
			return
		}
	}
}
