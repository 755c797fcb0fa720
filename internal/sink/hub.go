// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/nmea_simulator/internal/sim"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Hub pushes every frame as JSON to connected websocket clients and keeps the
// latest one for the HTTP API.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    *sim.Frame
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Handler serves /ws (live frames) and /api/gps (latest fix).
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/api/gps", h.ServeFix)
	return mux
}

// ServeWS upgrades the connection, sends the latest frame if any and keeps
// the client registered until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hub: websocket upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	if h.last != nil {
		if err := writeFrame(conn, *h.last); err != nil {
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	log.Printf("hub: client connected from %s", r.RemoteAddr)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: websocket error: %v", err)
			}
			break
		}
	}
	h.remove(conn)
}

// ServeFix returns the latest fix as JSON.
func (h *Hub) ServeFix(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(last.Fix); err != nil {
		log.Printf("hub: json encode error: %v", err)
	}
}

// Write broadcasts f. Clients that fail to receive are dropped; that is not
// an error of the sink.
func (h *Hub) Write(f sim.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = &f
	for conn := range h.clients {
		if err := writeFrame(conn, f); err != nil {
			log.Printf("hub: dropping client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "simulator stopped"),
			time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func writeFrame(conn *websocket.Conn, f sim.Frame) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(f); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}
