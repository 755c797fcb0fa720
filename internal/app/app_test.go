package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gpsd "github.com/atotto/go-gpsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/nmea_simulator/internal/config"
	"github.com/relabs-tech/nmea_simulator/internal/gps"
	"github.com/relabs-tech/nmea_simulator/internal/motion"
	"github.com/relabs-tech/nmea_simulator/internal/sim"
	"github.com/relabs-tech/nmea_simulator/internal/sink"
)

type recordingSink struct {
	mu     sync.Mutex
	frames []sim.Frame
	err    error
}

func (r *recordingSink) Write(f sim.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return r.err
}

func (r *recordingSink) Close() error { return nil }

func newTestSimulator(t *testing.T, cfg *config.Config) *sim.Simulator {
	t.Helper()
	s, err := sim.New(simSettings(cfg))
	require.NoError(t, err)
	return s
}

func TestSimSettings(t *testing.T) {
	cfg := config.Default()
	v := 2.5
	cfg.MagVar = &v

	got := simSettings(cfg)
	assert.Equal(t, motion.Position{Latitude: 33.9754605, Longitude: -6.869285}, got.Start)
	assert.Equal(t, 30.0, got.HeadingDeg)
	assert.Equal(t, 20.0, got.SpeedKnots)
	assert.Equal(t, 8, got.Satellites)
	assert.Equal(t, 48.3, got.GeoidSeparationM)
	assert.Equal(t, &v, got.MagVariation)
}

func TestSimulate_EmitsImmediatelyAndPerTick(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	out := &recordingSink{}

	ticks := make(chan time.Time, 2)
	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	ticks <- t0.Add(time.Second)
	ticks <- t0.Add(2 * time.Second)
	close(ticks)

	require.NoError(t, simulate(context.Background(), s, out, ticks, time.Second))
	require.Len(t, out.frames, 3)

	assert.Contains(t, out.frames[1].RMC, ",090001.000,")
	assert.Contains(t, out.frames[2].RMC, ",090002.000,")

	// Each tick advances by the nominal 1 s distance.
	p := motion.Position{Latitude: 33.9754605, Longitude: -6.869285}
	for _, f := range out.frames {
		p = motion.Advance(p, 30, 20*motion.KnotsToMps)
		assert.Equal(t, p, f.Position)
	}
}

func TestSimulate_SinkErrorsDoNotStop(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	out := &recordingSink{err: errors.New("disk full")}

	ticks := make(chan time.Time, 1)
	ticks <- time.Now()
	close(ticks)

	require.NoError(t, simulate(context.Background(), s, out, ticks, time.Second))
	assert.Len(t, out.frames, 2)
}

func TestSimulate_StopsOnCancel(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	out := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, simulate(ctx, s, out, make(chan time.Time), time.Second))
	assert.Len(t, out.frames, 1)
}

func TestSimulate_StopsWhenFrameCannotRender(t *testing.T) {
	cfg := config.Default()
	cfg.StartLat = 89.9999
	cfg.HeadingDeg = 0
	s := newTestSimulator(t, cfg)
	out := &recordingSink{}

	err := simulate(context.Background(), s, out, make(chan time.Time), time.Hour)
	assert.Error(t, err)
	assert.Empty(t, out.frames)
}

func TestOpenSinks(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFile = ""
	_, _, err := openSinks(cfg)
	assert.Error(t, err, "no outputs")

	cfg.OutputFile = filepath.Join(t.TempDir(), "nmea.txt")
	cfg.WebServerPort = 8080
	out, hub, err := openSinks(cfg)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.NotNil(t, hub)
	require.NoError(t, out.Close())
}

func TestProduceFixes_FromSimulatorOutput(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	var buf bytes.Buffer
	w := sink.NewWriter(&buf)

	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	var frames []sim.Frame
	for i := 0; i < 3; i++ {
		f, err := s.Step(t0.Add(time.Duration(i)*time.Second), time.Second)
		require.NoError(t, err)
		require.NoError(t, w.Write(f))
		frames = append(frames, f)
	}
	buf.WriteString("noise line\n$GPRMC,bad*00\n")

	var fixes []gps.Fix
	err := produceFixes(&buf, gps.NewDecoder("nmea"), func(f gps.Fix) error {
		fixes = append(fixes, f)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, fixes, 3)

	for i, fix := range fixes {
		assert.InDelta(t, frames[i].Position.Latitude, fix.Latitude, 1e-5)
		assert.InDelta(t, frames[i].Position.Longitude, fix.Longitude, 1e-5)
		assert.Equal(t, 20.0, fix.SpeedKnots)
		assert.Equal(t, 30.0, fix.CourseDeg)
		assert.Equal(t, "A", fix.Validity)
		assert.Equal(t, "2026-10-18", fix.Date)
	}
	// GGA of the first frame is folded into the second fix.
	assert.Equal(t, 0, fixes[0].Satellites)
	assert.Equal(t, 8, fixes[1].Satellites)
	assert.Equal(t, 15.0, fixes[1].AltitudeM)
}

func TestProduceFixes_PublishErrorIsLogged(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	f, err := s.Step(time.Now(), time.Second)
	require.NoError(t, err)

	calls := 0
	err = produceFixes(strings.NewReader(strings.Join(f.Lines(), "\r\n")+"\r\n"), gps.NewDecoder("nmea"), func(gps.Fix) error {
		calls++
		return errors.New("broker down")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPrintFix(t *testing.T) {
	var out bytes.Buffer
	payload := []byte(`{"time":"09:00:01.000","date":"2026-10-18","lat":33.97554,"lon":-6.86925,"speed_knots":20,"course_deg":30,"validity":"A","satellites":8,"hdop":0.9,"alt_m":15}`)
	require.NoError(t, printFix(&out, payload))
	assert.Equal(t,
		"[GPS ]  time=09:00:01.000 date=2026-10-18 lat=33.975540 lon=-6.869250 speed=20.0kn course=30.0° sats=8 hdop=0.9 alt=15.0m validity=A\n",
		out.String())

	assert.Error(t, printFix(&out, []byte("{")))
}

func TestFixFromTPV(t *testing.T) {
	received := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	f := fixFromTPV(&gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: 33.97, Lon: -6.86, Speed: 10.28888, Track: 30, Alt: 15}, received)
	assert.Equal(t, "A", f.Validity)
	assert.Equal(t, 1, f.FixQuality)
	assert.InDelta(t, 20.0, f.SpeedKnots, 1e-3)
	assert.Equal(t, 30.0, f.CourseDeg)
	assert.Equal(t, 15.0, f.AltitudeM)
	assert.Equal(t, "gpsd", f.Source)
	assert.Equal(t, "09:00:00.000", f.Time)

	f = fixFromTPV(&gpsd.TPVReport{Mode: gpsd.NoFix}, received)
	assert.Equal(t, "V", f.Validity)
	assert.Equal(t, 0, f.FixQuality)
}

func TestFrameAssembler(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	sent, err := s.Step(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), time.Second)
	require.NoError(t, err)

	asm := &frameAssembler{}
	for _, line := range sent.Lines() {
		asm.addSentence(line + "\r\n")
	}
	asm.addSentence("$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39")
	asm.addSentence("junk")

	payload, err := json.Marshal(sent.Fix)
	require.NoError(t, err)
	received := time.Date(2026, 10, 18, 9, 0, 1, 0, time.UTC)
	got, err := asm.complete(payload, received)
	require.NoError(t, err)

	assert.Equal(t, sent.RMC, got.RMC)
	assert.Equal(t, sent.GGA, got.GGA)
	assert.Equal(t, sent.VTG, got.VTG)
	assert.Equal(t, sent.Fix, got.Fix)
	assert.Equal(t, sent.Position, got.Position)
	assert.Equal(t, received, got.Time)

	// The next frame starts empty.
	got, err = asm.complete(payload, received)
	require.NoError(t, err)
	assert.Empty(t, got.RMC)

	_, err = asm.complete([]byte("not json"), received)
	assert.Error(t, err)
}

func TestPrintFrame(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	f, err := s.Step(time.Now(), time.Second)
	require.NoError(t, err)

	var out bytes.Buffer
	printFrame(&out, f)
	assert.Regexp(t, `^LAT=  33\.97\d{4}  LON=  -6\.86\d{4}  HDG= 30\.0  SOG= 20\.0kn\n$`, out.String())
}

func TestConsole_PrintsImmediately(t *testing.T) {
	s := newTestSimulator(t, config.Default())
	var out bytes.Buffer

	stop := make(chan os.Signal, 1)
	stop <- os.Interrupt
	require.NoError(t, console(s, &out, make(chan time.Time), stop, time.Second))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))

	ticks := make(chan time.Time, 2)
	ticks <- time.Now()
	ticks <- time.Now()
	close(ticks)
	out.Reset()
	require.NoError(t, console(s, &out, ticks, make(chan os.Signal), time.Second))
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}
