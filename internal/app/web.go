// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/nmea_simulator/internal/config"
	"github.com/relabs-tech/nmea_simulator/internal/gps"
	"github.com/relabs-tech/nmea_simulator/internal/motion"
	"github.com/relabs-tech/nmea_simulator/internal/nmea"
	"github.com/relabs-tech/nmea_simulator/internal/sim"
	"github.com/relabs-tech/nmea_simulator/internal/sink"
)

// newWebServer serves the hub's live feed and API next to static files
// from ./web.
func newWebServer(port int, hub *sink.Hub) *http.Server {
	mux := http.NewServeMux()

	api := hub.Handler()
	mux.Handle("/ws", api)
	mux.Handle("/api/", api)

	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir("web")))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
}

// RunWeb subscribes to the simulator's MQTT topics and serves what it
// receives over the same /ws and /api/gps endpoints the simulator exposes,
// so the viewer can run on a different host.
func RunWeb(cfg *config.Config) error {
	hub := sink.NewHub()
	defer hub.Close()
	asm := &frameAssembler{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole + "-web")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	if token := client.Subscribe(cfg.TopicNMEA, 0, func(_ mqtt.Client, msg mqtt.Message) {
		asm.addSentence(string(msg.Payload()))
	}); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	if token := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
		f, err := asm.complete(msg.Payload(), time.Now())
		if err != nil {
			log.Printf("web: gps unmarshal error: %v", err)
			return
		}
		hub.Write(f)
	}); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s and %s", cfg.TopicNMEA, cfg.TopicGPS)

	srv := newWebServer(cfg.WebServerPort, hub)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("web: listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("web: shutting down")
	}
	return srv.Close()
}

// frameAssembler rebuilds frames from the two MQTT topics: sentences arrive
// one per message, the fix closes the frame.
type frameAssembler struct {
	mu      sync.Mutex
	pending sim.Frame
}

func (a *frameAssembler) addSentence(line string) {
	line = strings.TrimSpace(line)
	if len(line) < 6 || line[0] != '$' {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	switch line[3:6] {
	case nmea.TagRMC[2:]:
		a.pending.RMC = line
	case nmea.TagGGA[2:]:
		a.pending.GGA = line
	case nmea.TagVTG[2:]:
		a.pending.VTG = line
	}
}

func (a *frameAssembler) complete(payload []byte, received time.Time) (sim.Frame, error) {
	var fix gps.Fix
	if err := json.Unmarshal(payload, &fix); err != nil {
		return sim.Frame{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.pending
	f.Time = received
	f.Position = motion.Position{Latitude: fix.Latitude, Longitude: fix.Longitude}
	f.Fix = fix
	a.pending = sim.Frame{}
	return f, nil
}
