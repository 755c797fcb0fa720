// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import "errors"

var (
	// ErrLatitudeRange is returned for latitudes outside [-90, 90].
	ErrLatitudeRange = errors.New("nmea: latitude out of range")
	// ErrLongitudeRange is returned for longitudes outside [-180, 180].
	ErrLongitudeRange = errors.New("nmea: longitude out of range")
	// ErrNonFinite is returned when a numeric field is NaN or infinite.
	ErrNonFinite = errors.New("nmea: non-finite value")
)
