package gps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/nmea_simulator/internal/nmea"
)

var ts = time.Date(2026, 10, 18, 9, 30, 15, 0, time.UTC)

func mustSentence(t *testing.T, s interface{ Sentence() (string, error) }) string {
	t.Helper()
	line, err := s.Sentence()
	require.NoError(t, err)
	return line
}

func TestParseLine_Skips(t *testing.T) {
	for _, line := range []string{"", "   \r\n", "garbage", "!AIVDM,1,1,,A,13aG?P0P00PD;88MD5MTDww@2<0L,0*4E"} {
		s, skip, err := ParseLine(line)
		assert.True(t, skip, "%q", line)
		assert.NoError(t, err)
		assert.Nil(t, s)
	}
}

func TestParseLine_BadChecksum(t *testing.T) {
	_, skip, err := ParseLine("$GPVTG,30.0,T,30.0,M,020.0,N,037.0,K,A*00")
	assert.False(t, skip)
	assert.Error(t, err)
}

func TestDecoder_GeneratedTriplet(t *testing.T) {
	lines := []string{
		mustSentence(t, nmea.GGA{Time: ts, Latitude: 33.9754605, Longitude: -6.869285, FixQuality: nmea.FixGPS, Satellites: 8, HDOP: 0.9, AltitudeM: 15, GeoidSeparationM: 48.3}),
		mustSentence(t, nmea.VTG{TrueCourseDeg: 31, MagneticCourseDeg: 31, SpeedKnots: 19, SpeedKph: 35.2}),
		mustSentence(t, nmea.RMC{Time: ts, Latitude: 33.9754605, Longitude: -6.869285, SpeedKnots: 20, CourseDeg: 30}),
	}

	dec := NewDecoder("nmea")
	var completed []bool
	for _, line := range lines {
		s, skip, err := ParseLine(line + "\r\n")
		require.NoError(t, err)
		require.False(t, skip)
		completed = append(completed, dec.Apply(s))
	}
	assert.Equal(t, []bool{false, false, true}, completed)

	f := dec.Fix()
	assert.Equal(t, "09:30:15.000", f.Time)
	assert.Equal(t, "2026-10-18", f.Date)
	assert.InDelta(t, 33.9754605, f.Latitude, 1e-5)
	assert.InDelta(t, -6.869285, f.Longitude, 1e-5)
	assert.Equal(t, 20.0, f.SpeedKnots)
	assert.Equal(t, 30.0, f.CourseDeg)
	assert.Equal(t, "A", f.Validity)
	assert.Equal(t, 1, f.FixQuality)
	assert.Equal(t, 8, f.Satellites)
	assert.Equal(t, 0.9, f.HDOP)
	assert.Equal(t, 15.0, f.AltitudeM)
	assert.Equal(t, "nmea", f.Source)
}

func TestDecoder_IgnoresOtherSentences(t *testing.T) {
	s, _, err := ParseLine("$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39")
	require.NoError(t, err)

	dec := NewDecoder("nmea")
	assert.False(t, dec.Apply(s))
	assert.Equal(t, Fix{Source: "nmea"}, dec.Fix())
}

func TestFix_SetTime(t *testing.T) {
	var f Fix
	f.SetTime(time.Date(2025, 12, 6, 12, 34, 56, 250_000_000, time.FixedZone("CET", 3600)))
	assert.Equal(t, "11:34:56.250", f.Time)
	assert.Equal(t, "2025-12-06", f.Date)
}
