// misol-emulator serves synthetic Misol receiver frames over TCP so the
// collector can be exercised without hardware.  It can mask sensors,
// corrupt checksums, and drop the pressure extension to simulate a
// misbehaving transmitter.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net"
	"time"

	protocol "github.com/misol-tools/misolweather/internal/protocol/misol"
)

type emulatorConfig struct {
	interval       time.Duration
	corruptRate    float64
	dropPressure   bool
	maskSensors    bool
	lowBattery     bool
	silenceAfter   int
	silenceSeconds int
}

type emulator struct {
	cfg   emulatorConfig
	rng   *rand.Rand
	ticks int

	// slow-moving simulated weather
	temperature float64
	humidity    float64
	pressure    float64
	windSpeed   float64
	windDir     int
	rainCounter int
	uvRaw       int
}

func newEmulator(cfg emulatorConfig) *emulator {
	return &emulator{
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		temperature: 18.0,
		humidity:    55.0,
		pressure:    1013.25,
		windSpeed:   3.0,
		windDir:     200,
		uvRaw:       42,
	}
}

// nextFrame advances the simulated weather one step and encodes it
func (e *emulator) nextFrame() []byte {
	e.ticks++

	e.temperature += e.rng.Float64()*0.4 - 0.2
	e.humidity = math.Min(99, math.Max(10, e.humidity+e.rng.Float64()*2-1))
	e.pressure += e.rng.Float64()*0.2 - 0.1
	e.windSpeed = math.Max(0, e.windSpeed+e.rng.Float64()*1-0.5)
	e.windDir = (e.windDir + e.rng.Intn(21) - 10 + 360) % 360
	if e.rng.Float64() < 0.1 {
		e.rainCounter++
	}

	gust := e.windSpeed * 1.5

	obs := protocol.Observation{
		WindDirection: &e.windDir,
		LowBattery:    e.cfg.lowBattery,
		Temperature:   &e.temperature,
		Humidity:      &e.humidity,
		WindSpeed:     &e.windSpeed,
		WindGust:      &gust,
		RainCounter:   &e.rainCounter,
		UVRaw:         &e.uvRaw,
	}
	illuminance := 32000.0 + e.rng.Float64()*1000
	obs.Illuminance = &illuminance
	if !e.cfg.dropPressure {
		obs.Pressure = &e.pressure
	}

	if e.cfg.maskSensors {
		// A transmitter with a dead sensor cluster reports sentinels
		obs.Temperature = nil
		obs.Humidity = nil
		obs.UVRaw = nil
		obs.Illuminance = nil
	}

	frame := protocol.Marshal(obs)

	if e.cfg.corruptRate > 0 && e.rng.Float64() < e.cfg.corruptRate {
		i := e.rng.Intn(len(frame))
		frame[i] ^= 0xFF
		log.Printf("corrupting byte %d of this frame", i)
	}

	return frame
}

func (e *emulator) serve(conn net.Conn) {
	defer conn.Close()
	log.Printf("client connected: %v", conn.RemoteAddr())

	for {
		if e.cfg.silenceAfter > 0 && e.ticks >= e.cfg.silenceAfter {
			log.Printf("going silent for %d seconds to trigger a timeout", e.cfg.silenceSeconds)
			time.Sleep(time.Duration(e.cfg.silenceSeconds) * time.Second)
			e.ticks = 0
		}

		frame := e.nextFrame()
		if _, err := conn.Write(frame); err != nil {
			log.Printf("client disconnected: %v", err)
			return
		}
		time.Sleep(e.cfg.interval)
	}
}

func main() {
	listenAddr := flag.String("listen", ":7100", "TCP listen address")
	interval := flag.Duration("interval", 16*time.Second, "Time between frames (the real transmitter sends every 16s)")
	corruptRate := flag.Float64("corrupt-rate", 0, "Probability of flipping one byte per frame (0.0-1.0)")
	dropPressure := flag.Bool("drop-pressure", false, "Send 17-byte frames without the pressure extension")
	maskSensors := flag.Bool("mask-sensors", false, "Report sentinel values for temperature, humidity, UV, and light")
	lowBattery := flag.Bool("low-battery", false, "Set the low battery flag")
	silenceAfter := flag.Int("silence-after", 0, "Go silent after this many frames (0 disables)")
	silenceSeconds := flag.Int("silence-seconds", 150, "How long to stay silent, in seconds")
	flag.Parse()

	cfg := emulatorConfig{
		interval:       *interval,
		corruptRate:    *corruptRate,
		dropPressure:   *dropPressure,
		maskSensors:    *maskSensors,
		lowBattery:     *lowBattery,
		silenceAfter:   *silenceAfter,
		silenceSeconds: *silenceSeconds,
	}

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("could not listen on %v: %v", *listenAddr, err)
	}
	fmt.Printf("Misol emulator listening on %v, one frame every %v\n", *listenAddr, *interval)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Fatalf("accept error: %v", err)
		}
		go newEmulator(cfg).serve(conn)
	}
}
