/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Turn-based room coordinator
//
// Clients open a websocket, create or join a room by its six-character code,
// and once the host starts the game the server relays each gameplay action
// from whoever holds the turn to everyone in the room.
//
// Features:
// - One websocket endpoint at /ws; every connection gets a random UUID
// - Rooms hold up to 4 players and are deleted once empty
// - Only the host may start, and only with at least 2 players
// - Only the active player may act or finish the turn; duplicates are ignored
// - A player who disconnects is gone for good; host and turn pass on
// - Rejections go privately to the requester as errorMessage
// - Every request, disconnect and HTTP query is applied by a single goroutine
// - QR code for each room's invite link, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/turnroom/coordinator"
)

// Messages coming from clients
type ClientMessage struct {
	Type       string          `json:"type"`                 // "createRoom", "joinRoomById", "startGame", "playerAction", "finishTurn"
	RoomID     string          `json:"roomId,omitempty"`     // everything but createRoom
	PlayerName string          `json:"playerName,omitempty"` // createRoom / joinRoomById
	Action     json.RawMessage `json:"action,omitempty"`     // playerAction, decoded on its own
}

// ServerMessage wraps every push sent to clients.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ConnectedMessage tells a client which id the server knows it by.
type ConnectedMessage struct {
	ID string `json:"id"`
}

// ErrorMessage carries a rejected request back to its sender.
type ErrorMessage struct {
	Text string `json:"text"`
}

// Stats is returned by the stats endpoint.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
	Seated      int `json:"seated"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

type request struct {
	client *Client
	msg    ClientMessage
}

type inspection struct {
	fn   func(h *Hub)
	done chan struct{}
}

// Hub owns the coordinator. Only the goroutine running Hub.run touches it.
type Hub struct {
	cfg     *Config
	coord   *coordinator.Coordinator
	clients map[string]*Client

	register chan *Client
	unreg    chan *Client
	requests chan request
	inspect  chan inspection

	done chan struct{}
}

func newHub(cfg *Config, coord *coordinator.Coordinator) *Hub {
	return &Hub{
		cfg:      cfg,
		coord:    coord,
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		requests: make(chan request),
		inspect:  make(chan inspection),
		done:     make(chan struct{}),
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()

			return

		case c := <-h.register:
			h.clients[c.id] = c

			logf(h.cfg, "ROOMS: Connection %s opened", c.id)

			h.deliver(c, ServerMessage{
				Type: "connected",
				Data: ConnectedMessage{ID: c.id},
			})

		case c := <-h.unreg:
			h.drop(c)

			h.handleDisconnect(c)

		case req := <-h.requests:
			h.handleRequest(req)

		case in := <-h.inspect:
			in.fn(h)
			close(in.done)
		}
	}
}

// query runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) query(ctx context.Context, fn func(h *Hub)) error {
	in := inspection{fn: fn, done: make(chan struct{})}

	select {
	case h.inspect <- in:
	case <-h.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-in.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handleRequest(req request) {
	c := req.client
	msg := req.msg

	// Dropped connections are on their way out.
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s | ERROR: Dropped %q from %s: %v", time.Now().Format(logDate), msg.Type, c.id, r)
		}
	}()

	var (
		events []coordinator.Event
		err    error
	)

	switch msg.Type {
	case "createRoom":
		events, err = h.coord.CreateRoom(c.id, msg.PlayerName)
	case "joinRoomById":
		events, err = h.coord.JoinRoom(c.id, msg.RoomID, msg.PlayerName)
	case "startGame":
		events, err = h.coord.StartGame(c.id, msg.RoomID)
	case "playerAction":
		action, decodeErr := coordinator.NewAction(msg.Action)
		if len(msg.Action) == 0 || decodeErr != nil {
			err = coordinator.ErrInvalidAction

			break
		}
		events, err = h.coord.PlayerAction(c.id, msg.RoomID, action)
	case "finishTurn":
		events, err = h.coord.FinishTurn(c.id, msg.RoomID)
	default:
		logf(h.cfg, "ROOMS: Ignoring unknown message type %q from %s", msg.Type, c.id)

		return
	}

	if err != nil {
		logf(h.cfg, "ROOMS: Rejected %s from %s: %v", msg.Type, c.id, err)

		h.deliver(c, ServerMessage{
			Type: "errorMessage",
			Data: ErrorMessage{Text: err.Error()},
		})

		return
	}

	for _, ev := range events {
		switch ev.Type {
		case coordinator.EventRoomCreated:
			logf(h.cfg, "ROOMS: Room %s created by %s", ev.Payload.(coordinator.Room).ID, c.id)
		case coordinator.EventRoomJoined:
			logf(h.cfg, "ROOMS: %s joined room %s", c.id, ev.Payload.(coordinator.Room).ID)
		case coordinator.EventGameStarted:
			logf(h.cfg, "ROOMS: Game started in room %s", ev.Payload.(coordinator.Room).ID)
		case coordinator.EventTurnChanged:
			turn := ev.Payload.(coordinator.TurnChange)
			logf(h.cfg, "ROOMS: Turn passed to %s (index %d)", turn.ActivePlayerID, turn.CurrentTurnIndex)
		}
	}

	h.publish(events)
}

func (h *Hub) handleDisconnect(c *Client) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s | ERROR: Dropped disconnect of %s: %v", time.Now().Format(logDate), c.id, r)
		}
	}()

	logf(h.cfg, "ROOMS: Connection %s closed", c.id)

	h.publish(h.coord.Disconnect(c.id))
}

// publish hands each event to its recipients in order.
func (h *Hub) publish(events []coordinator.Event) {
	for _, ev := range events {
		msg := ServerMessage{Type: string(ev.Type), Data: ev.Payload}

		for _, id := range ev.Recipients {
			if c, ok := h.clients[id]; ok {
				h.deliver(c, msg)
			}
		}
	}
}

// deliver queues msg for c, dropping the connection if its queue is full.
func (h *Hub) deliver(c *Client, msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		logf(h.cfg, "ROOMS: Dropping slow connection %s", c.id)

		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// closeAll disconnects every client (used on shutdown).
func (h *Hub) closeAll() {
	for _, c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c.id)
	}
}

func checkOrigin(cfg *Config) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		for _, allowed := range cfg.allowedOrigins {
			if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
				return true
			}
		}

		return false
	}
}

func serveWebSocket(cfg *Config, h *Hub) httprouter.Handle {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg),
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade from %s failed: %v", realIP(r), err)

			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, cfg.sendBuffer),
			id:   uuid.NewString(),
		}

		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()

			return
		}

		go client.writePump()
		client.readPump(cfg, h)
	}
}

func (c *Client) readPump(cfg *Config, h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(cfg.maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logf(cfg, "ROOMS: Ignoring malformed message from %s: %v", c.id, err)

			continue
		}

		select {
		case h.requests <- request{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))

		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func roomURL(cfg *Config, r *http.Request, roomID string) string {
	// Respect TLS and X-Forwarded-Proto if present.
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/?room=" + roomID
}

// serveQR renders a PNG QR code that points at a room's invite link.
func serveQR(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := coordinator.NormalizeRoomID(ps.ByName("roomid"))

		var exists bool
		if err := h.query(r.Context(), func(h *Hub) {
			exists = h.coord.Exists(roomID)
		}); err != nil {
			http.Error(w, "server unavailable", http.StatusServiceUnavailable)

			return
		}

		if !exists {
			http.Error(w, "room not found", http.StatusNotFound)

			return
		}

		const qrSize = 320 // mobile-friendly size

		png, err := qrcode.Encode(roomURL(cfg, r, roomID), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

func serveStats(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var stats Stats
		if err := h.query(r.Context(), func(h *Hub) {
			stats = Stats{
				Rooms:       h.coord.Rooms(),
				Connections: len(h.clients),
				Seated:      h.coord.Seated(),
			}
		}); err != nil {
			http.Error(w, "server unavailable", http.StatusServiceUnavailable)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_ = json.NewEncoder(w).Encode(stats)
	}
}

// registerRooms sets up routes so that:
//   - $prefix/ws                → websocket for all rooms
//   - $prefix/rooms/:roomid/qr  → PNG QR code for a room's invite link
//   - $prefix/stats             → room and connection counts
func registerRooms(cfg *Config, h *Hub, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/ws", serveWebSocket(cfg, h))

	mux.GET(cfg.prefix+"/rooms/:roomid/qr", serveQR(cfg, h))

	mux.GET(cfg.prefix+"/stats", serveStats(cfg, h))
}
