// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sink delivers simulator frames to their destinations: text files,
// serial ports, MQTT topics and websocket clients.
package sink

import (
	"errors"

	"github.com/relabs-tech/nmea_simulator/internal/sim"
)

// Sink receives one frame per tick.
type Sink interface {
	Write(f sim.Frame) error
	Close() error
}

// Multi fans a frame out to every sink. A failing sink does not stop the
// others; all failures are joined.
type Multi []Sink

func (m Multi) Write(f sim.Frame) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
