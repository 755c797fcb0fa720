// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/nmea_simulator/internal/config"
	"github.com/relabs-tech/nmea_simulator/internal/sim"
)

// RunConsole runs the simulation in-process and prints one summary line per
// tick, without opening any output.
func RunConsole(cfg *config.Config) error {
	src, err := sim.New(simSettings(cfg))
	if err != nil {
		return err
	}

	interval := time.Duration(cfg.UpdateIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	return console(src, os.Stdout, ticker.C, sigCh, interval)
}

// console prints the first frame immediately and then one per tick until
// stop fires or ticks is closed.
func console(src *sim.Simulator, w io.Writer, ticks <-chan time.Time, stop <-chan os.Signal, interval time.Duration) error {
	emit := func(now time.Time) error {
		f, err := src.Step(now, interval)
		if err != nil {
			return err
		}
		printFrame(w, f)
		return nil
	}

	if err := emit(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case <-stop:
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

func printFrame(w io.Writer, f sim.Frame) {
	fmt.Fprintf(w,
		"LAT=%11.6f  LON=%11.6f  HDG=%5.1f  SOG=%5.1fkn\n",
		f.Position.Latitude,
		f.Position.Longitude,
		f.Fix.CourseDeg,
		f.Fix.SpeedKnots,
	)
}
