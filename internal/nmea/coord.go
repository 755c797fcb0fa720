// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import (
	"fmt"
	"math"
	"strings"
)

// EncodeLatitude converts decimal degrees into the ddmm.mmmm field and its
// N/S hemisphere letter.
func EncodeLatitude(lat float64) (string, string, error) {
	if !finite(lat) {
		return "", "", fmt.Errorf("latitude %v: %w", lat, ErrNonFinite)
	}
	if lat < -90 || lat > 90 {
		return "", "", fmt.Errorf("latitude %v: %w", lat, ErrLatitudeRange)
	}
	hemi := "N"
	if lat < 0 {
		hemi = "S"
	}
	return degreesMinutes(math.Abs(lat), 2), hemi, nil
}

// EncodeLongitude converts decimal degrees into the dddmm.mmmm field and its
// E/W hemisphere letter.
func EncodeLongitude(lon float64) (string, string, error) {
	if !finite(lon) {
		return "", "", fmt.Errorf("longitude %v: %w", lon, ErrNonFinite)
	}
	if lon < -180 || lon > 180 {
		return "", "", fmt.Errorf("longitude %v: %w", lon, ErrLongitudeRange)
	}
	hemi := "E"
	if lon < 0 {
		hemi = "W"
	}
	return degreesMinutes(math.Abs(lon), 3), hemi, nil
}

// degreesMinutes renders abs as zero-padded degrees followed by minutes with
// four decimals (07.4f). Minutes that format as 60.0000 carry into the degrees.
func degreesMinutes(abs float64, degWidth int) string {
	deg := math.Floor(abs)
	mins := fmt.Sprintf("%07.4f", (abs-deg)*60)
	if strings.HasPrefix(mins, "60.") {
		deg++
		mins = "00.0000"
	}
	return fmt.Sprintf("%0*d", degWidth, int(deg)) + mins
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
