// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"

	"github.com/relabs-tech/nmea_simulator/internal/config"
	"github.com/relabs-tech/nmea_simulator/internal/motion"
	"github.com/relabs-tech/nmea_simulator/internal/sim"
	"github.com/relabs-tech/nmea_simulator/internal/sink"
)

// RunSimulator emits RMC/GGA/VTG triplets once per UPDATE_INTERVAL_MS to
// every configured sink until interrupted.
func RunSimulator(cfg *config.Config) error {
	simulator, err := sim.New(simSettings(cfg))
	if err != nil {
		return fmt.Errorf("sim settings: %w", err)
	}

	out, hub, err := openSinks(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	interval := time.Duration(cfg.UpdateIntervalMs) * time.Millisecond
	start := simulator.Position()
	log.Printf("sim: start %.6f, %.6f heading %.1f° speed %.1f kn, every %v",
		start.Latitude, start.Longitude, simulator.HeadingDeg(), cfg.SpeedKnots, interval)

	var g run.Group

	// Tick loop
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			return simulate(ctx, simulator, out, ticker.C, interval)
		}, func(error) {
			cancel()
		})
	}

	// Ctrl+C
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	// Websocket/API server
	if hub != nil {
		srv := newWebServer(cfg.WebServerPort, hub)
		g.Add(func() error {
			log.Printf("sim: web server listening on %s", srv.Addr)
			return srv.ListenAndServe()
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		})
	}

	err = g.Run()

	last := simulator.Position()
	log.Printf("sim: stopped, last position %.6f, %.6f", last.Latitude, last.Longitude)

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		return nil
	}
	return err
}

// simulate emits a frame immediately and then once per tick, advancing by
// the nominal interval so the track stays smooth under scheduler jitter.
// Sink errors are logged and do not stop the loop; a frame that cannot be
// rendered does.
func simulate(ctx context.Context, s *sim.Simulator, out sink.Sink, ticks <-chan time.Time, interval time.Duration) error {
	emit := func(now time.Time) error {
		f, err := s.Step(now, interval)
		if err != nil {
			return err
		}
		if err := out.Write(f); err != nil {
			log.Printf("sim: output error: %v", err)
		}
		return nil
	}

	if err := emit(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case t, ok := <-ticks:
			if !ok {
				return nil
			}
			if err := emit(t); err != nil {
				return err
			}
		}
	}
}

func simSettings(cfg *config.Config) sim.Settings {
	return sim.Settings{
		Start:            motion.Position{Latitude: cfg.StartLat, Longitude: cfg.StartLon},
		HeadingDeg:       cfg.HeadingDeg,
		SpeedKnots:       cfg.SpeedKnots,
		AltitudeM:        cfg.AltitudeM,
		Satellites:       cfg.NumSatellites,
		HDOP:             cfg.HDOP,
		GeoidSeparationM: cfg.GeoidSepM,
		MagVariation:     cfg.MagVar,
	}
}

// openSinks opens every enabled output. The returned hub is nil unless the
// web server is enabled.
func openSinks(cfg *config.Config) (sink.Multi, *sink.Hub, error) {
	var (
		out sink.Multi
		hub *sink.Hub
	)
	fail := func(err error) (sink.Multi, *sink.Hub, error) {
		out.Close()
		return nil, nil, err
	}

	if cfg.OutputFile != "" {
		f, err := sink.OpenFile(cfg.OutputFile)
		if err != nil {
			return fail(err)
		}
		out = append(out, f)
		log.Printf("sim: appending to %s", cfg.OutputFile)
	}
	if cfg.Stdout {
		out = append(out, sink.NewWriter(os.Stdout))
	}
	if cfg.SerialPort != "" {
		s, err := sink.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			return fail(err)
		}
		out = append(out, s)
		log.Printf("sim: writing to serial port %s at %d baud", cfg.SerialPort, cfg.SerialBaudRate)
	}
	if cfg.MQTTBroker != "" {
		m, err := sink.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDSim, cfg.TopicNMEA, cfg.TopicGPS)
		if err != nil {
			return fail(err)
		}
		out = append(out, m)
		log.Printf("sim: connected to MQTT broker at %s", cfg.MQTTBroker)
	}
	if cfg.WebServerPort > 0 {
		hub = sink.NewHub()
		out = append(out, hub)
	}

	if len(out) == 0 {
		return nil, nil, errors.New("no output configured: set OUTPUT_FILE, STDOUT, SERIAL_PORT, MQTT_BROKER or WEB_SERVER_PORT")
	}
	return out, hub, nil
}
