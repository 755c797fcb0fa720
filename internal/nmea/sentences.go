// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package nmea generates NMEA 0183 sentences (RMC, GGA, VTG) for a simulated
// GPS receiver. Only generation lives here; decoding is done with go-nmea in
// internal/gps.
package nmea

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	TagRMC = "GPRMC"
	TagGGA = "GPGGA"
	TagVTG = "GPVTG"
)

const (
	StatusValid   = "A"
	StatusInvalid = "V"

	ModeAutonomous = "A"
)

// Fix quality codes for GGA.
const (
	FixNone = 0
	FixGPS  = 1
	FixDGPS = 2
)

// RMC is the recommended minimum position/velocity/time sentence.
type RMC struct {
	Time       time.Time
	Status     string // A valid, V invalid
	Latitude   float64
	Longitude  float64
	SpeedKnots float64
	CourseDeg  float64
	// Variation is the magnetic variation in degrees, east positive.
	// Nil leaves both the value and direction fields empty (",,"), one more
	// field than a bare trailing comma, so the line keeps the 12 data fields
	// that go-nmea and other strict parsers expect.
	Variation *float64
}

// Sentence renders the complete $GPRMC line.
func (m RMC) Sentence() (string, error) {
	lat, ns, err := EncodeLatitude(m.Latitude)
	if err != nil {
		return "", fmt.Errorf("rmc: %w", err)
	}
	lon, ew, err := EncodeLongitude(m.Longitude)
	if err != nil {
		return "", fmt.Errorf("rmc: %w", err)
	}
	speed, err := fixed(m.SpeedKnots, 5)
	if err != nil {
		return "", fmt.Errorf("rmc speed: %w", err)
	}
	course, err := fixed(m.CourseDeg, 5)
	if err != nil {
		return "", fmt.Errorf("rmc course: %w", err)
	}
	magvar, magdir := "", ""
	if m.Variation != nil {
		v := *m.Variation
		if magvar, err = fixed(math.Abs(v), 0); err != nil {
			return "", fmt.Errorf("rmc variation: %w", err)
		}
		magdir = "E"
		if v < 0 {
			magdir = "W"
		}
	}
	status := m.Status
	if status == "" {
		status = StatusValid
	}

	return wrap(strings.Join([]string{
		TagRMC,
		utcTime(m.Time),
		status,
		lat, ns,
		lon, ew,
		speed,
		course,
		utcDate(m.Time),
		magvar, magdir,
	}, ",")), nil
}

// GGA is the fix data sentence.
type GGA struct {
	Time             time.Time
	Latitude         float64
	Longitude        float64
	FixQuality       int
	Satellites       int
	HDOP             float64
	AltitudeM        float64
	GeoidSeparationM float64
}

// Sentence renders the complete $GPGGA line. The differential age and station
// fields are always left empty.
func (m GGA) Sentence() (string, error) {
	lat, ns, err := EncodeLatitude(m.Latitude)
	if err != nil {
		return "", fmt.Errorf("gga: %w", err)
	}
	lon, ew, err := EncodeLongitude(m.Longitude)
	if err != nil {
		return "", fmt.Errorf("gga: %w", err)
	}
	if m.FixQuality < FixNone || m.FixQuality > FixDGPS {
		return "", fmt.Errorf("gga: fix quality %d not in 0-2", m.FixQuality)
	}
	if m.Satellites < 0 || m.Satellites > 99 {
		return "", fmt.Errorf("gga: satellite count %d not in 0-99", m.Satellites)
	}
	hdop, err := fixed(m.HDOP, 0)
	if err != nil {
		return "", fmt.Errorf("gga hdop: %w", err)
	}
	alt, err := fixed(m.AltitudeM, 0)
	if err != nil {
		return "", fmt.Errorf("gga altitude: %w", err)
	}
	sep, err := fixed(m.GeoidSeparationM, 0)
	if err != nil {
		return "", fmt.Errorf("gga geoid separation: %w", err)
	}

	return wrap(strings.Join([]string{
		TagGGA,
		utcTime(m.Time),
		lat, ns,
		lon, ew,
		fmt.Sprintf("%d", m.FixQuality),
		fmt.Sprintf("%02d", m.Satellites),
		hdop,
		alt, "M",
		sep, "M",
		"", "",
	}, ",")), nil
}

// VTG is the track made good and ground speed sentence.
type VTG struct {
	TrueCourseDeg     float64
	MagneticCourseDeg float64
	SpeedKnots        float64
	SpeedKph          float64
	Mode              string // A autonomous
}

// Sentence renders the complete $GPVTG line.
func (m VTG) Sentence() (string, error) {
	trueCourse, err := fixed(m.TrueCourseDeg, 0)
	if err != nil {
		return "", fmt.Errorf("vtg true course: %w", err)
	}
	magCourse, err := fixed(m.MagneticCourseDeg, 0)
	if err != nil {
		return "", fmt.Errorf("vtg magnetic course: %w", err)
	}
	knots, err := fixed(m.SpeedKnots, 5)
	if err != nil {
		return "", fmt.Errorf("vtg speed: %w", err)
	}
	kph, err := fixed(m.SpeedKph, 5)
	if err != nil {
		return "", fmt.Errorf("vtg speed: %w", err)
	}
	mode := m.Mode
	if mode == "" {
		mode = ModeAutonomous
	}

	return wrap(strings.Join([]string{
		TagVTG,
		trueCourse, "T",
		magCourse, "M",
		knots, "N",
		kph, "K",
		mode,
	}, ",")), nil
}

// fixed renders v with one decimal, zero-padded to width characters
// (width 0 means no padding).
func fixed(v float64, width int) (string, error) {
	if !finite(v) {
		return "", ErrNonFinite
	}
	return fmt.Sprintf("%0*.1f", width, v), nil
}

// utcTime renders hhmmss.sss; sub-millisecond precision is truncated.
func utcTime(t time.Time) string {
	return t.UTC().Format("150405.000")
}

func utcDate(t time.Time) string {
	return t.UTC().Format("020106")
}
