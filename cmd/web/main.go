// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/nmea_simulator/internal/app"
	"github.com/relabs-tech/nmea_simulator/internal/config"
)

func main() {
	configPath := flag.String("config", "./nmea_sim_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting NMEA web viewer (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()
	if cfg.MQTTBroker == "" || cfg.WebServerPort == 0 {
		log.Fatalf("MQTT_BROKER and WEB_SERVER_PORT are required for the web viewer")
	}

	log.Println("Note: the simulator must be publishing to the same broker (nmea_sim with MQTT_BROKER set)")

	if err := app.RunWeb(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
