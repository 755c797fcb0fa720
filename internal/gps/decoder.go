package gps

import (
	"fmt"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// Decoder accumulates RMC, GGA and VTG sentences into a Fix.
type Decoder struct {
	current Fix
}

// NewDecoder returns a decoder whose fixes are tagged with source.
func NewDecoder(source string) *Decoder {
	return &Decoder{current: Fix{Source: source}}
}

// Fix returns a copy of the accumulated fix.
func (d *Decoder) Fix() Fix {
	return d.current
}

// ParseLine parses one raw NMEA line. Blank lines and lines not starting
// with '$' are reported as skip=true with no error.
func ParseLine(line string) (s nmea.Sentence, skip bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return nil, true, nil
	}
	s, err = nmea.Parse(line)
	if err != nil {
		return nil, false, fmt.Errorf("nmea parse %q: %w", line, err)
	}
	return s, false, nil
}

// Apply folds a sentence into the current fix. It returns true when the
// sentence was an RMC, which completes a fix worth publishing.
func (d *Decoder) Apply(s nmea.Sentence) bool {
	switch s.DataType() {
	case nmea.TypeRMC:
		m := s.(nmea.RMC)
		d.current.Time = formatTime(m.Time)
		d.current.Date = formatDate(m.Date)
		d.current.Latitude = m.Latitude
		d.current.Longitude = m.Longitude
		d.current.SpeedKnots = m.Speed
		d.current.CourseDeg = m.Course
		d.current.Validity = m.Validity
		return true

	case nmea.TypeGGA:
		m := s.(nmea.GGA)
		d.current.Latitude = m.Latitude
		d.current.Longitude = m.Longitude
		if q, err := strconv.Atoi(m.FixQuality); err == nil {
			d.current.FixQuality = q
		}
		d.current.Satellites = int(m.NumSatellites)
		d.current.HDOP = m.HDOP
		d.current.AltitudeM = m.Altitude

	case nmea.TypeVTG:
		m := s.(nmea.VTG)
		d.current.CourseDeg = m.TrueTrack
		d.current.SpeedKnots = m.GroundSpeedKnots

	default:
		// GSA, GSV, etc. are not tracked
	}
	return false
}

func formatTime(t nmea.Time) string {
	if !t.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Millisecond)
}

func formatDate(d nmea.Date) string {
	if !d.Valid {
		return ""
	}
	return fmt.Sprintf("20%02d-%02d-%02d", d.YY, d.MM, d.DD)
}
