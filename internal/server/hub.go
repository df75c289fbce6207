// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 8
)

// The dev server is local-only and serves whatever page the user opens.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is pushed to websocket clients.
type Event struct {
	Type  string `json:"type"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}

// client is one websocket connection. Its writer goroutine is the only
// writer on conn, which gorilla/websocket requires.
type client struct {
	conn *websocket.Conn
	send chan Event
}

// hub tracks connected websocket clients. send channels are closed only
// under mu, and broadcast only sends under mu, so a send never hits a
// closed channel.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *slog.Logger
	onCount func(n int)
}

func newHub(logger *slog.Logger, onCount func(int)) *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
		onCount: onCount,
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.onCount(n)
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
		h.onCount(n)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast queues ev for every client without waiting on the network.
// A client whose queue is full is too slow to keep up and is dropped.
func (h *hub) broadcast(ev Event) {
	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client", "remote", c.conn.RemoteAddr().String())
		h.remove(c)
	}
}

// writeLoop drains c.send onto the connection until the hub closes it or
// a write fails.
func (h *hub) writeLoop(c *client) {
	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			h.logger.Warn("websocket write failed", "remote", c.conn.RemoteAddr().String(), "error", err)
			h.remove(c)
			return
		}
	}
}

// serve registers conn and blocks reading until the client goes away.
// Clients never send anything meaningful; the read loop only notices
// close frames and broken connections.
func (h *hub) serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan Event, sendBuffer)}
	h.add(c)
	defer h.remove(c)
	go h.writeLoop(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}
