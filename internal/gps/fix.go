package gps

import "time"

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56.250"
	Date       string  `json:"date"`        // e.g. "2025-12-06"
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void), etc.

	// From GGA; zero until a GGA sentence has been seen.
	FixQuality int     `json:"fix_quality"`
	Satellites int     `json:"satellites"`
	HDOP       float64 `json:"hdop"`
	AltitudeM  float64 `json:"alt_m"`
	Source     string  `json:"source,omitempty"` // "sim", "nmea", "gpsd"
}

// SetTime fills Time and Date from a UTC instant.
func (f *Fix) SetTime(t time.Time) {
	t = t.UTC()
	f.Time = t.Format("15:04:05.000")
	f.Date = t.Format("2006-01-02")
}
