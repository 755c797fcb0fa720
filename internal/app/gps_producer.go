package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/nmea_simulator/internal/config"
	"github.com/relabs-tech/nmea_simulator/internal/gps"
)

// RunGPSProducer opens the GPS serial port (a real receiver, or the other end
// of the simulator's pty), parses NMEA sentences, and publishes combined GPS
// fixes as JSON to TOPIC_GPS.
func RunGPSProducer(cfg *config.Config) error {
	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("GPS producer connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open GPS serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("GPS serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return produceFixes(port, gps.NewDecoder("nmea"), func(f gps.Fix) error {
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("GPS JSON marshal: %w", err)
		}
		token := client.Publish(cfg.TopicGPS, 0, true, payload)
		token.Wait()
		return token.Error()
	})
}

// produceFixes reads NMEA lines from r until EOF or a read error and calls
// publish after every RMC. Unparseable lines and publish failures are
// logged and skipped.
func produceFixes(r io.Reader, dec *gps.Decoder, publish func(gps.Fix) error) error {
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			handleLine(line, dec, publish)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			log.Printf("GPS read error: %v", err)
			return err
		}
	}
}

func handleLine(line string, dec *gps.Decoder, publish func(gps.Fix) error) {
	sentence, skip, err := gps.ParseLine(line)
	if skip {
		return
	}
	if err != nil {
		// noisy GPS or partial sentences
		log.Printf("GPS: %v", err)
		return
	}
	if !dec.Apply(sentence) {
		return
	}

	current := dec.Fix()
	if err := publish(current); err != nil {
		log.Printf("GPS publish error: %v", err)
		return
	}
	log.Printf("published GPS fix: %+v", current)
}
