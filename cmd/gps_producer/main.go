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

	log.Println("starting GPS producer (NMEA → MQTT)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if config.Get().MQTTBroker == "" {
		log.Fatalf("MQTT_BROKER is required for the GPS producer")
	}

	if err := app.RunGPSProducer(config.Get()); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
