package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Vehicle
	StartLat   float64
	StartLon   float64
	HeadingDeg float64 // 0 = north, clockwise
	SpeedKnots float64

	// Receiver
	UpdateIntervalMs int
	AltitudeM        float64
	NumSatellites    int
	HDOP             float64
	GeoidSepM        float64
	MagVar           *float64 // nil when not reported

	// Outputs
	OutputFile     string // appended to; empty disables
	Stdout         bool
	SerialPort     string // empty disables
	SerialBaudRate int
	WebServerPort  int // 0 disables

	// MQTT
	MQTTBroker          string // empty disables
	MQTTClientIDSim     string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string

	// Topics
	TopicNMEA string
	TopicGPS  string

	// Live receivers
	GPSDAddress   string
	GPSSerialPort string
	GPSBaudRate   int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal() and Get().
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used when a key is absent: a vehicle on
// Av. Allal Al Fassi, Rabat, heading NE at 20 knots.
func Default() *Config {
	return &Config{
		StartLat:   33.9754605,
		StartLon:   -6.869285,
		HeadingDeg: 30.0,
		SpeedKnots: 20.0,

		UpdateIntervalMs: 1000,
		AltitudeM:        15.0,
		NumSatellites:    8,
		HDOP:             0.9,
		GeoidSepM:        48.3,

		OutputFile:     "nmea.txt",
		SerialBaudRate: 9600,

		MQTTClientIDSim:     "nmea-sim",
		MQTTClientIDGPS:     "nmea-gps-producer",
		MQTTClientIDConsole: "nmea-console",

		TopicNMEA: "nmea/sentences",
		TopicGPS:  "nmea/gps",

		GPSDAddress:   "localhost:2947",
		GPSSerialPort: "/dev/serial0",
		GPSBaudRate:   9600,
	}
}

// Load reads the configuration file on top of Default().
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Vehicle
	case "START_LAT":
		c.StartLat, err = parseFloat(key, value)
	case "START_LON":
		c.StartLon, err = parseFloat(key, value)
	case "HEADING_DEG":
		c.HeadingDeg, err = parseFloat(key, value)
	case "SPEED_KNOTS":
		c.SpeedKnots, err = parseFloat(key, value)

	// Receiver
	case "UPDATE_INTERVAL_MS":
		c.UpdateIntervalMs, err = parseInt(key, value)
	case "ALTITUDE_M":
		c.AltitudeM, err = parseFloat(key, value)
	case "NUM_SAT":
		c.NumSatellites, err = parseInt(key, value)
	case "HDOP":
		c.HDOP, err = parseFloat(key, value)
	case "GEOID_SEP":
		c.GeoidSepM, err = parseFloat(key, value)
	case "MAGVAR":
		// empty or 0 means the variation fields are left blank
		if value == "" {
			c.MagVar = nil
			return nil
		}
		v, perr := parseFloat(key, value)
		if perr != nil {
			return perr
		}
		// 0 means not supplied
		if v == 0 {
			c.MagVar = nil
			return nil
		}
		c.MagVar = &v

	// Outputs
	case "OUTPUT_FILE":
		c.OutputFile = value
	case "STDOUT":
		c.Stdout, err = parseBool(key, value)
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value)
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_SIM":
		c.MQTTClientIDSim = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_NMEA":
		c.TopicNMEA = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// Live receivers
	case "GPSD_ADDRESS":
		c.GPSDAddress = value
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// validate checks ranges and required fields.
func (c *Config) validate() error {
	if c.StartLat < -90 || c.StartLat > 90 {
		return fmt.Errorf("START_LAT must be -90..90, got %v", c.StartLat)
	}
	if c.StartLon < -180 || c.StartLon > 180 {
		return fmt.Errorf("START_LON must be -180..180, got %v", c.StartLon)
	}
	if c.SpeedKnots < 0 {
		return fmt.Errorf("SPEED_KNOTS must be >= 0, got %v", c.SpeedKnots)
	}
	if c.UpdateIntervalMs <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL_MS must be > 0, got %d", c.UpdateIntervalMs)
	}
	if c.NumSatellites < 0 || c.NumSatellites > 99 {
		return fmt.Errorf("NUM_SAT must be 0-99, got %d", c.NumSatellites)
	}
	if c.HDOP < 0 {
		return fmt.Errorf("HDOP must be >= 0, got %v", c.HDOP)
	}
	if c.SerialPort != "" && c.SerialBaudRate <= 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE is required when SERIAL_PORT is set")
	}
	if c.MQTTBroker != "" && (c.TopicNMEA == "" || c.TopicGPS == "") {
		return fmt.Errorf("TOPIC_NMEA and TOPIC_GPS are required when MQTT_BROKER is set")
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// InitGlobalDefault installs Default() as the global configuration when no
// config file is present.
func InitGlobalDefault() {
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig = Default()
	})
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
