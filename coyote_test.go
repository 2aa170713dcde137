package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/coyote/game"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	Type     string          `json:"type"`
	ID       string          `json:"id"`
	Room     json.RawMessage `json:"room"`
	Message  string          `json:"message"`
	DeckLeft int             `json:"deck_left"`
}

func newTestServer(t *testing.T) (*httptest.Server, *Lobby) {
	t.Helper()

	mux, lobby := newRouter(testConfig(), make(chan error, 8))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, lobby
}

// dial connects to the server and returns the connection and its session ID.
func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, string) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	info := readType(t, conn, "session_info")
	require.NotEmpty(t, info.ID)

	return conn, info.ID
}

func readType(t *testing.T, conn *websocket.Conn, typ string) inbound {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for {
		var msg inbound
		require.NoError(t, conn.ReadJSON(&msg))

		if msg.Type == typ {
			return msg
		}
	}
}

func readState(t *testing.T, conn *websocket.Conn) game.Snapshot {
	t.Helper()

	s, _ := readStateWithDeck(t, conn)

	return s
}

// readStateWithDeck also returns the deck count sent alongside the snapshot.
func readStateWithDeck(t *testing.T, conn *websocket.Conn) (game.Snapshot, int) {
	t.Helper()

	msg := readType(t, conn, "state")

	var s game.Snapshot
	require.NoError(t, json.Unmarshal(msg.Room, &s))

	return s, msg.DeckLeft
}

func write(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(msg))
}

func TestWebsocketGame(t *testing.T) {
	srv, lobby := newTestServer(t)

	alice, aliceID := dial(t, srv)
	bob, bobID := dial(t, srv)
	mallory, _ := dial(t, srv)

	write(t, alice, ClientMessage{Type: "join", Room: "R", Name: "alice"})
	s := readState(t, alice)
	require.Len(t, s.Players, 1)
	assert.Equal(t, aliceID, s.Players[0].ID)
	assert.True(t, s.Players[0].Host)

	write(t, bob, ClientMessage{Type: "join", Room: "R", Name: "bob"})
	s = readState(t, alice)
	assert.Len(t, s.Players, 2)
	s = readState(t, bob)
	require.Len(t, s.Players, 2)
	assert.Equal(t, bobID, s.Players[1].ID)

	write(t, mallory, ClientMessage{Type: "join", Room: "R", Name: "alice"})
	rejected := readType(t, mallory, "join_error")
	assert.Equal(t, game.ErrNameTaken.Error(), rejected.Message)

	// Only the host may start; bob's attempt produces no broadcast at all.
	write(t, bob, ClientMessage{Type: "start", Room: "R"})
	write(t, alice, ClientMessage{Type: "start", Room: "R"})

	s, left := readStateWithDeck(t, alice)
	assert.Equal(t, game.Playing, s.Status)
	assert.Empty(t, s.Deck, "the deck would reveal the hidden card")
	assert.Equal(t, game.DeckSize-2, left)
	assert.Equal(t, game.Concealed, s.Players[0].Card)
	assert.NotEqual(t, game.Concealed, s.Players[1].Card)

	s, left = readStateWithDeck(t, bob)
	assert.Equal(t, game.Playing, s.Status)
	assert.Empty(t, s.Deck)
	assert.Equal(t, game.DeckSize-2, left)
	assert.NotEqual(t, game.Concealed, s.Players[0].Card)
	assert.Equal(t, game.Concealed, s.Players[1].Card)

	write(t, alice, ClientMessage{Type: "declare", Room: "R", Value: 4})
	s = readState(t, bob)
	assert.Equal(t, 4, s.LastDeclared)
	assert.Equal(t, 1, s.CurrentTurn)
	assert.Equal(t, []game.Declaration{{Name: "alice", Value: 4}}, s.History)

	require.NoError(t, alice.Close())

	s = readState(t, bob)
	require.Len(t, s.Players, 1)
	assert.True(t, s.Players[0].Host)
	assert.Equal(t, game.Waiting, s.Status)
	assert.Equal(t, "bob wins the game!", s.Message)

	require.NoError(t, bob.Close())

	assert.Eventually(t, func() bool {
		return lobby.rooms.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocketIgnoresBadMessages(t *testing.T) {
	srv, lobby := newTestServer(t)

	conn, _ := dial(t, srv)

	write(t, conn, ClientMessage{Type: "join", Name: "no room"})
	write(t, conn, ClientMessage{Type: "dance", Room: "R"})
	write(t, conn, ClientMessage{Type: "start", Room: "missing"})
	write(t, conn, ClientMessage{Type: "join", Room: "R", Name: "carol"})

	s := readState(t, conn)
	require.Len(t, s.Players, 1)
	assert.Equal(t, "carol", s.Players[0].Name)
	assert.Equal(t, 1, lobby.rooms.Len())
}

func TestWebsocketMalformedIntentKeepsSeat(t *testing.T) {
	srv, _ := newTestServer(t)

	alice, _ := dial(t, srv)
	bob, _ := dial(t, srv)

	write(t, alice, ClientMessage{Type: "join", Room: "R", Name: "alice"})
	readState(t, alice)
	write(t, bob, ClientMessage{Type: "join", Room: "R", Name: "bob"})
	readState(t, alice)
	readState(t, bob)

	write(t, alice, ClientMessage{Type: "start", Room: "R"})
	readState(t, alice)
	readState(t, bob)

	for _, frame := range []string{
		`{"type":"declare","room":"R","value":5.5}`,
		`{"type":"declare","room":"R","value":"5"}`,
		`{"type":"declare","room":"R","value":1e40}`,
		`not json`,
	} {
		require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(frame)))
	}

	// The connection survives and its next valid intent is applied.
	write(t, alice, ClientMessage{Type: "declare", Room: "R", Value: 5})

	s := readState(t, bob)
	assert.Equal(t, game.Playing, s.Status)
	require.Len(t, s.Players, 2)
	assert.Equal(t, 5, s.LastDeclared)
	assert.Equal(t, "alice declared 5.", s.Message)
}

func TestRedactFor(t *testing.T) {
	s := game.Snapshot{
		Status: game.Result,
		Players: []game.Player{
			{ID: "a", Card: game.NumberCard(5)},
			{ID: "b", Card: game.Night},
		},
		Deck: []game.Card{game.NumberCard(1), game.Double},
	}

	assert.Equal(t, s, redactFor(s, "a"), "cards are public between rounds")

	s.Status = game.Playing
	redacted := redactFor(s, "a")
	assert.Equal(t, game.Concealed, redacted.Players[0].Card)
	assert.Equal(t, game.Night, redacted.Players[1].Card)
	assert.Empty(t, redacted.Deck)
	assert.Empty(t, redactFor(s, "b").Deck)
	assert.Equal(t, game.NumberCard(5), s.Players[0].Card, "original snapshot is untouched")
	assert.Len(t, s.Deck, 2, "original snapshot is untouched")
}
