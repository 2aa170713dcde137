// Coyote
//
// Every player is dealt one hidden card that everybody else can see. Players
// take turns declaring a number that the total of all cards in play is at
// least as large as, each declaration higher than the last. Instead of
// declaring, the player whose turn it is can call "Coyote!" on the previous
// declaration. If the declaration overshot the real total, the declarer
// loses a life; otherwise the caller does. Three lives each, last player
// standing wins.
//
// Features:
// - A single websocket per browser at /ws; every message names its room
// - Rooms are keyed by a passphrase, created on first join and dropped once empty
// - First player in a room is the host and may start the game and deal rounds
// - Host passes to the earliest remaining player when the host leaves
// - Duplicate names are rejected, and only the offending client is told
// - Full room state is broadcast after every accepted action, with each
//   recipient's own card masked while a round is being played
// - Per-connection rate limiting of incoming messages
// - /room/:roomid pre-fills the passphrase, /room/:roomid/qr shares it as a QR code

package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/Seednode/coyote/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

const maxMessageSize = 1024

// Messages coming from clients
type ClientMessage struct {
	Type  string `json:"type"`            // "join", "start", "declare", "challenge", "next_round"
	Room  string `json:"room"`            // room passphrase, required for every type
	Name  string `json:"name,omitempty"`  // join
	Value int    `json:"value,omitempty"` // declare
}

// StateMessage carries the full room state after every accepted action.
type StateMessage struct {
	Type     string        `json:"type"` // "state"
	Room     game.Snapshot `json:"room"`
	DeckLeft int           `json:"deck_left"`
}

// JoinErrorMessage is sent only to the client whose join was refused.
type JoinErrorMessage struct {
	Type    string `json:"type"` // "join_error"
	Room    string `json:"room"`
	Message string `json:"message"`
}

// SessionInfoMessage is sent immediately on connect so the client can tell
// which seat in a snapshot is its own.
type SessionInfoMessage struct {
	Type string `json:"type"` // "session_info"
	ID   string `json:"id"`
}

type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan any
	limiter *rate.Limiter
}

// enqueue never blocks. A client that cannot keep up is disconnected, which
// in turn removes it from its rooms.
func (c *Client) enqueue(msg any) {
	select {
	case c.send <- msg:
	default:
		_ = c.conn.Close()
	}
}

// Lobby connects websocket clients to the room registry. It implements
// game.Notifier to fan snapshots out to the members of each room.
type Lobby struct {
	cfg   *Config
	rooms *game.Registry

	mu      sync.RWMutex
	clients map[string]*Client
}

func newLobby(cfg *Config, opts ...game.Option) *Lobby {
	l := &Lobby{
		cfg:     cfg,
		clients: make(map[string]*Client),
	}

	opts = append([]game.Option{game.WithHistory(cfg.history)}, opts...)
	l.rooms = game.NewRegistry(l, opts...)

	return l
}

// Publish sends a snapshot to every member of the room it describes.
func (l *Lobby) Publish(s game.Snapshot) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range s.Players {
		c, ok := l.clients[p.ID]
		if !ok {
			continue
		}

		c.enqueue(StateMessage{
			Type:     "state",
			Room:     redactFor(s, p.ID),
			DeckLeft: len(s.Deck),
		})
	}
}

// redactFor hides the viewer's own card while a round is in progress. The
// remaining deck is withheld too, since together with the visible cards it
// would give the hidden one away.
func redactFor(s game.Snapshot, viewer string) game.Snapshot {
	if s.Status != game.Playing {
		return s
	}

	s.Deck = nil

	players := make([]game.Player, len(s.Players))
	copy(players, s.Players)

	for i := range players {
		if players[i].ID == viewer {
			players[i].Card = game.Concealed
		}
	}

	s.Players = players

	return s
}

func (l *Lobby) register(c *Client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clients[c.id] = c
}

// unregister removes c from every room before dropping it, so the remaining
// players are told who left.
func (l *Lobby) unregister(c *Client) {
	l.rooms.Disconnect(c.id)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.clients[c.id]; ok {
		delete(l.clients, c.id)
		close(c.send)
	}

	logf(l.cfg, "GAMES: Client %s disconnected", c.id)
}

// handle applies one client message. Only refused joins are reported back
// to the sender; every other rejection is dropped.
func (l *Lobby) handle(c *Client, msg ClientMessage) {
	if msg.Room == "" {
		return
	}

	var err error

	switch msg.Type {
	case "join":
		err = l.rooms.Join(msg.Room, c.id, msg.Name)
	case "start":
		err = l.rooms.Start(msg.Room, c.id)
	case "declare":
		err = l.rooms.Declare(msg.Room, c.id, msg.Value)
	case "challenge":
		err = l.rooms.Challenge(msg.Room, c.id)
	case "next_round":
		err = l.rooms.AdvanceRound(msg.Room, c.id)
	default:
		// ignore unknown types
		return
	}

	if err != nil {
		logf(l.cfg, "GAMES: Rejected %q from %s in %q: %v", msg.Type, c.id, msg.Room, err)

		if game.Visible(err) {
			c.enqueue(JoinErrorMessage{
				Type:    "join_error",
				Room:    msg.Room,
				Message: err.Error(),
			})
		}

		return
	}

	logf(l.cfg, "GAMES: Applied %q from %s in %q", msg.Type, c.id, msg.Room)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func serveWS(cfg *Config, l *Lobby) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade from %s failed: %v", realIP(r), err)

			return
		}

		client := &Client{
			id:      uuid.NewString(),
			conn:    conn,
			send:    make(chan any, 32),
			limiter: rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.burst),
		}

		l.register(client)

		logf(cfg, "GAMES: Client %s connected from %s", client.id, realIP(r))

		client.send <- SessionInfoMessage{
			Type: "session_info",
			ID:   client.id,
		}

		go client.writePump()
		client.readPump(l)
	}
}

func (c *Client) readPump(l *Lobby) {
	defer func() {
		l.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			logf(l.cfg, "GAMES: Dropped message from %s (rate limited)", c.id)

			continue
		}

		// A message that does not decode is rejected like any other invalid
		// intent; only transport errors end the connection.
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logf(l.cfg, "GAMES: Ignored malformed message from %s: %v", c.id, err)

			continue
		}

		l.handle(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler generates a PNG QR code pointing at the room page.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("roomid") == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../room/:roomid/qr; strip the trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.EscapedPath(), "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerCoyote sets up routes so that:
//   - /ws                  → websocket carrying every room's traffic
//   - /room/:roomid        → HTML client with the passphrase filled in
//   - /room/:roomid/qr     → PNG QR code for that page
func registerCoyote(cfg *Config, mux *httprouter.Router, errs chan<- error) *Lobby {
	l := newLobby(cfg)

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, l))

	mux.GET(cfg.prefix+"/room/:roomid", serveClient(cfg, errs))

	mux.GET(cfg.prefix+"/room/:roomid/qr", qrHandler)

	return l
}
