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
	configPath := flag.String("config", "", "path to configuration file (defaults are used when empty)")
	flag.Parse()

	log.Println("starting NMEA simulator (RMC, GGA, VTG)")

	if err := loadConfig(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunSimulator(config.Get()); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(path string) error {
	if path == "" {
		config.InitGlobalDefault()
		return nil
	}
	return config.InitGlobal(path)
}
