package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/nmea_simulator/internal/app"
	"github.com/relabs-tech/nmea_simulator/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	log.Println("starting gpsd reader (TPV → console/MQTT)")

	if *configPath == "" {
		config.InitGlobalDefault()
	} else if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunGPSDReader(config.Get()); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
