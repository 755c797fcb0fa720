// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	gpsd "github.com/atotto/go-gpsd"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/nmea_simulator/internal/config"
	"github.com/relabs-tech/nmea_simulator/internal/gps"
	"github.com/relabs-tech/nmea_simulator/internal/motion"
)

// RunGPSDReader follows TPV reports from a live gpsd and prints the
// position. When MQTT_BROKER is set each fix is also published to TOPIC_GPS,
// so a real receiver can stand in for the simulator.
func RunGPSDReader(cfg *config.Config) error {
	session, err := gpsd.Dial(cfg.GPSDAddress)
	if err != nil {
		return fmt.Errorf("gpsd dial %s: %w", cfg.GPSDAddress, err)
	}
	defer session.Close()
	log.Printf("gpsd: connected to %s", cfg.GPSDAddress)

	var client mqtt.Client
	if cfg.MQTTBroker != "" {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBroker).
			SetClientID(cfg.MQTTClientIDGPS)

		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		defer client.Disconnect(250)
		log.Printf("gpsd: connected to MQTT broker at %s", cfg.MQTTBroker)
	}

	session.Subscribe("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		fmt.Printf("Latitude: %.7f\nLongitude: %.7f\n", tpv.Lat, tpv.Lon)

		if client == nil {
			return
		}
		payload, err := json.Marshal(fixFromTPV(tpv, time.Now()))
		if err != nil {
			log.Printf("gpsd: fix marshal error: %v", err)
			return
		}
		if token := client.Publish(cfg.TopicGPS, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("gpsd: MQTT publish error: %v", token.Error())
		}
	})

	done := session.Watch()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("gpsd: shutting down")
	case <-done:
		log.Println("gpsd: connection closed")
	}
	return nil
}

// fixFromTPV maps a gpsd TPV report onto a Fix. gpsd reports speed in m/s.
func fixFromTPV(tpv *gpsd.TPVReport, received time.Time) gps.Fix {
	f := gps.Fix{
		Latitude:   tpv.Lat,
		Longitude:  tpv.Lon,
		SpeedKnots: tpv.Speed / motion.KnotsToMps,
		CourseDeg:  tpv.Track,
		AltitudeM:  tpv.Alt,
		Validity:   "V",
		Source:     "gpsd",
	}
	if tpv.Mode >= gpsd.Mode2D {
		f.Validity = "A"
		f.FixQuality = 1
	}
	f.SetTime(received)
	return f
}
