// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sim drives the straight-line vehicle simulation: each Step advances
// the running position and renders the RMC, GGA and VTG sentences for it.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/nmea_simulator/internal/gps"
	"github.com/relabs-tech/nmea_simulator/internal/motion"
	"github.com/relabs-tech/nmea_simulator/internal/nmea"
)

// Settings is the fixed vehicle and receiver configuration.
type Settings struct {
	Start            motion.Position
	HeadingDeg       float64
	SpeedKnots       float64
	AltitudeM        float64
	Satellites       int
	HDOP             float64
	GeoidSeparationM float64
	// MagVariation is east-positive degrees; nil means not reported.
	MagVariation *float64
}

// Validate checks the settings before a simulation is started.
func (s Settings) Validate() error {
	if s.Start.Latitude < -90 || s.Start.Latitude > 90 {
		return fmt.Errorf("start latitude %v: %w", s.Start.Latitude, nmea.ErrLatitudeRange)
	}
	if s.Start.Longitude < -180 || s.Start.Longitude > 180 {
		return fmt.Errorf("start longitude %v: %w", s.Start.Longitude, nmea.ErrLongitudeRange)
	}
	if s.SpeedKnots < 0 {
		return fmt.Errorf("speed must be >= 0, got %v", s.SpeedKnots)
	}
	if s.Satellites < 0 || s.Satellites > 99 {
		return fmt.Errorf("satellite count must be 0-99, got %d", s.Satellites)
	}
	if s.HDOP < 0 {
		return fmt.Errorf("hdop must be >= 0, got %v", s.HDOP)
	}
	return nil
}

// Frame is the output of one tick.
type Frame struct {
	Time     time.Time       `json:"time"`
	Position motion.Position `json:"position"`
	RMC      string          `json:"rmc"`
	GGA      string          `json:"gga"`
	VTG      string          `json:"vtg"`
	Fix      gps.Fix         `json:"fix"`
}

// Lines returns the sentences in emission order.
func (f Frame) Lines() []string {
	return []string{f.RMC, f.GGA, f.VTG}
}

// Simulator owns the running position between ticks.
type Simulator struct {
	settings   Settings
	headingDeg float64
	speedMps   float64
	pos        motion.Position
}

// New validates settings and positions the simulator at the start point.
func New(s Settings) (*Simulator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		settings:   s,
		headingDeg: motion.NormalizeDegrees(s.HeadingDeg),
		speedMps:   s.SpeedKnots * motion.KnotsToMps,
		pos:        s.Start,
	}, nil
}

// Position returns the last committed position.
func (s *Simulator) Position() motion.Position {
	return s.pos
}

// HeadingDeg returns the normalized heading.
func (s *Simulator) HeadingDeg() float64 {
	return s.headingDeg
}

// Step advances the vehicle by the distance covered in elapsed and renders
// the sentences for the new position at now. The position is only committed
// when all three sentences render.
func (s *Simulator) Step(now time.Time, elapsed time.Duration) (Frame, error) {
	if elapsed < 0 {
		return Frame{}, errors.New("sim: negative elapsed time")
	}
	next := motion.Advance(s.pos, s.headingDeg, motion.Distance(s.speedMps, elapsed))

	f, err := s.render(now, next)
	if err != nil {
		return Frame{}, err
	}
	s.pos = next
	return f, nil
}

func (s *Simulator) render(now time.Time, p motion.Position) (Frame, error) {
	var variation float64
	if s.settings.MagVariation != nil {
		variation = *s.settings.MagVariation
	}

	rmc, err := nmea.RMC{
		Time:       now,
		Status:     nmea.StatusValid,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		SpeedKnots: s.settings.SpeedKnots,
		CourseDeg:  s.headingDeg,
		Variation:  s.settings.MagVariation,
	}.Sentence()
	if err != nil {
		return Frame{}, fmt.Errorf("sim: %w", err)
	}

	gga, err := nmea.GGA{
		Time:             now,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		FixQuality:       nmea.FixGPS,
		Satellites:       s.settings.Satellites,
		HDOP:             s.settings.HDOP,
		AltitudeM:        s.settings.AltitudeM,
		GeoidSeparationM: s.settings.GeoidSeparationM,
	}.Sentence()
	if err != nil {
		return Frame{}, fmt.Errorf("sim: %w", err)
	}

	vtg, err := nmea.VTG{
		TrueCourseDeg:     s.headingDeg,
		MagneticCourseDeg: motion.MagneticCourse(s.headingDeg, variation),
		SpeedKnots:        s.settings.SpeedKnots,
		SpeedKph:          s.speedMps * motion.MpsToKph,
		Mode:              nmea.ModeAutonomous,
	}.Sentence()
	if err != nil {
		return Frame{}, fmt.Errorf("sim: %w", err)
	}

	return Frame{Time: now, Position: p, RMC: rmc, GGA: gga, VTG: vtg, Fix: s.fix(now, p)}, nil
}

func (s *Simulator) fix(now time.Time, p motion.Position) gps.Fix {
	fix := gps.Fix{
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		SpeedKnots: s.settings.SpeedKnots,
		CourseDeg:  s.headingDeg,
		Validity:   nmea.StatusValid,
		FixQuality: nmea.FixGPS,
		Satellites: s.settings.Satellites,
		HDOP:       s.settings.HDOP,
		AltitudeM:  s.settings.AltitudeM,
		Source:     "sim",
	}
	fix.SetTime(now)
	return fix
}
