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

	log.Println("starting NMEA console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if config.Get().MQTTBroker == "" {
		log.Fatalf("MQTT_BROKER is required for the console")
	}

	if err := app.RunConsoleMQTT(config.Get()); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
