// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"
	"time"
)

// EarthRadius is the mean spherical earth radius in meters.
const EarthRadius = 6371000.0

const (
	// KnotsToMps converts knots to meters per second.
	KnotsToMps = 0.514444
	// MpsToKph converts meters per second to kilometers per hour.
	MpsToKph = 3.6

	minCosLat = 1e-12
)

// Position is a point in signed decimal degrees.
type Position struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Advance moves p by distanceM meters along headingDeg (clockwise from true
// north) using a spherical small-distance approximation.
//
//	dLat = (d / R) * cos(heading)
//	dLon = (d / R) * sin(heading) / max(cos(lat), 1e-12)
//
// No wraparound or clamping is applied to the result.
func Advance(p Position, headingDeg, distanceM float64) Position {
	bearing := headingDeg * math.Pi / 180.0
	latRad := p.Latitude * math.Pi / 180.0

	angular := distanceM / EarthRadius
	dLat := angular * math.Cos(bearing)
	dLon := angular * math.Sin(bearing) / math.Max(math.Cos(latRad), minCosLat)

	return Position{
		Latitude:  p.Latitude + dLat*180.0/math.Pi,
		Longitude: p.Longitude + dLon*180.0/math.Pi,
	}
}

// Distance is the ground distance in meters covered at speedMps over interval.
func Distance(speedMps float64, interval time.Duration) float64 {
	return speedMps * interval.Seconds()
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360.0)
	if d < 0 {
		d += 360.0
	}
	if d >= 360.0 {
		d = 0
	}
	return d
}

// MagneticCourse converts a true course into a magnetic one given an
// east-positive variation.
func MagneticCourse(trueDeg, variationDeg float64) float64 {
	return NormalizeDegrees(trueDeg - variationDeg)
}
