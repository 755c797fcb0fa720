// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/nmea_simulator/internal/sim"
)

// publisher is the part of mqtt.Client the sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes every raw sentence to topicNMEA and the combined fix as
// retained JSON to topicGPS.
type MQTT struct {
	client    publisher
	topicNMEA string
	topicGPS  string
}

// DialMQTT connects to broker and returns a ready sink.
func DialMQTT(broker, clientID, topicNMEA, topicGPS string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return &MQTT{client: client, topicNMEA: topicNMEA, topicGPS: topicGPS}, nil
}

func (m *MQTT) Write(f sim.Frame) error {
	for _, line := range f.Lines() {
		if token := m.client.Publish(m.topicNMEA, 0, false, line); token.Wait() && token.Error() != nil {
			return fmt.Errorf("mqtt publish (%s): %w", m.topicNMEA, token.Error())
		}
	}

	payload, err := json.Marshal(f.Fix)
	if err != nil {
		return fmt.Errorf("gps fix marshal: %w", err)
	}
	if token := m.client.Publish(m.topicGPS, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt publish (%s): %w", m.topicGPS, token.Error())
	}
	return nil
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
