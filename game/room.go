/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"unicode/utf8"
)

type Status string

const (
	Waiting Status = "waiting"
	Playing Status = "playing"
	Result  Status = "result"
)

const (
	MaxLife        = 3
	MaxPlayers     = DeckSize
	DefaultHistory = 5

	maxNameLength = 32
	defaultName   = "Anonymous"
)

// Player is one seat at the table. ID is the connection it is bound to.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Card Card   `json:"card"`
	Life int    `json:"life"`
	Host bool   `json:"is_host"`
}

func (p *Player) Alive() bool {
	return p.Life > 0
}

type Declaration struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Room is the state machine for a single table. It is not safe for
// concurrent use; the Registry serializes access to it.
type Room struct {
	id             string
	players        []*Player
	status         Status
	lastDeclared   int
	turn           int
	history        []Declaration
	deck           *Deck
	needsReshuffle bool
	lastLoser      int
	message        string

	historyCap int
	src        Source
}

type Option func(*Room)

// WithSource replaces the random source used for drawing cards.
func WithSource(src Source) Option {
	return func(r *Room) {
		if src != nil {
			r.src = src
		}
	}
}

// WithHistory sets how many declarations are kept for display.
func WithHistory(n int) Option {
	return func(r *Room) {
		if n > 0 {
			r.historyCap = n
		}
	}
}

func NewRoom(id string, opts ...Option) *Room {
	r := &Room{
		id:         id,
		status:     Waiting,
		deck:       NewDeck(),
		message:    "Waiting for players...",
		historyCap: DefaultHistory,
		src:        DefaultSource,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) Status() Status {
	return r.status
}

func (r *Room) Len() int {
	return len(r.players)
}

func (r *Room) indexOf(connID string) int {
	for i, p := range r.players {
		if p.ID == connID {
			return i
		}
	}

	return -1
}

func (r *Room) hasHost() bool {
	for _, p := range r.players {
		if p.Host {
			return true
		}
	}

	return false
}

// Join seats a new player at the end of the turn order.
func (r *Room) Join(connID, name string) error {
	if name == "" {
		name = defaultName
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrInvalidName
	}

	if r.indexOf(connID) >= 0 {
		return ErrAlreadyJoined
	}

	for _, p := range r.players {
		if p.Name == name {
			return ErrNameTaken
		}
	}

	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}

	r.players = append(r.players, &Player{
		ID:   connID,
		Name: name,
		Card: Placeholder,
		Life: MaxLife,
		Host: !r.hasHost(),
	})

	r.message = fmt.Sprintf("%s joined the room.", name)

	return nil
}

// host returns the caller's index, provided they are the host.
func (r *Room) host(connID string) (int, error) {
	i := r.indexOf(connID)
	if i < 0 {
		return -1, ErrNotMember
	}

	if !r.players[i].Host {
		return -1, ErrNotHost
	}

	return i, nil
}

// turnHolder returns the caller's index, provided it is their turn.
func (r *Room) turnHolder(connID string) (int, error) {
	if r.status != Playing {
		return -1, ErrWrongState
	}

	i := r.indexOf(connID)
	if i < 0 {
		return -1, ErrNotMember
	}

	if i != r.turn {
		return -1, ErrNotYourTurn
	}

	return i, nil
}

// deal hands a fresh card to every living player.
func (r *Room) deal() {
	for _, p := range r.players {
		if !p.Alive() {
			p.Card = Eliminated

			continue
		}

		card, ok := r.deck.Draw(r.src)
		if !ok {
			p.Card = Placeholder

			continue
		}

		p.Card = card

		if card.Kind == NightZero {
			r.needsReshuffle = true
		}
	}
}

// Start begins a new match with a fresh deck.
func (r *Room) Start(connID string) error {
	if _, err := r.host(connID); err != nil {
		return err
	}

	if r.status != Waiting {
		return ErrWrongState
	}

	r.lastDeclared = 0
	r.history = nil
	r.turn = 0
	r.lastLoser = 0
	r.deck = NewDeck()
	r.needsReshuffle = false

	for _, p := range r.players {
		p.Life = MaxLife
	}

	r.deal()

	r.status = Playing
	r.message = fmt.Sprintf("Game started! %d cards left in the deck.", r.deck.Len())

	return nil
}

// Declare records a claim that the total is at least value and passes the
// turn along.
func (r *Room) Declare(connID string, value int) error {
	i, err := r.turnHolder(connID)
	if err != nil {
		return err
	}

	if value <= r.lastDeclared {
		return ErrDeclarationTooLow
	}

	name := r.players[i].Name

	r.history = append([]Declaration{{Name: name, Value: value}}, r.history...)
	if len(r.history) > r.historyCap {
		r.history = r.history[:r.historyCap]
	}

	r.lastDeclared = value
	r.turn = nextAlive(r.players, r.turn)
	r.message = fmt.Sprintf("%s declared %d.", name, value)

	return nil
}

func (r *Room) aliveCards() []Card {
	cards := make([]Card, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive() {
			cards = append(cards, p.Card)
		}
	}

	return cards
}

// Challenge ends the round. The last declarer loses if they overshot the
// real total, otherwise the challenger does.
func (r *Room) Challenge(connID string) error {
	caller, err := r.turnHolder(connID)
	if err != nil {
		return err
	}

	if r.lastDeclared == 0 {
		return ErrNoDeclaration
	}

	total := Total(r.aliveCards())
	prev := prevAlive(r.players, r.turn)

	loser := caller
	if r.lastDeclared > total {
		loser = prev
	}

	r.players[loser].Life--
	r.lastLoser = loser
	r.status = Result
	r.message = fmt.Sprintf("The total was %d! %s loses a life.", total, r.players[loser].Name)

	r.checkWinner()

	return nil
}

// checkWinner ends the match once a single living player is left.
func (r *Room) checkWinner() bool {
	switch aliveCount(r.players) {
	case 0:
		r.status = Waiting
		r.message = "Nobody is left standing."

		return true
	case 1:
		winner := r.players[nextAlive(r.players, -1)]
		r.status = Waiting
		r.message = fmt.Sprintf("%s wins the game!", winner.Name)

		return true
	}

	return false
}

// AdvanceRound deals the next round. The loser of the previous round, or
// the next living player after them, opens it.
func (r *Room) AdvanceRound(connID string) error {
	if _, err := r.host(connID); err != nil {
		return err
	}

	if r.status != Result {
		return ErrWrongState
	}

	r.lastDeclared = 0
	r.history = nil

	reshuffled := false
	if r.deck.Len() < aliveCount(r.players) || r.needsReshuffle {
		r.deck = NewDeck()
		r.needsReshuffle = false
		reshuffled = true
	}

	r.deal()

	r.turn = firstAliveFrom(r.players, r.lastLoser)
	r.status = Playing

	r.message = fmt.Sprintf("New round! %s goes first.", r.players[r.turn].Name)
	if reshuffled {
		r.message = "The deck was reshuffled! " + r.message
	}

	return nil
}

// Leave removes the player bound to connID. It reports whether anyone was
// removed.
func (r *Room) Leave(connID string) bool {
	i := r.indexOf(connID)
	if i < 0 {
		return false
	}

	gone := r.players[i]
	r.players = append(r.players[:i], r.players[i+1:]...)

	if len(r.players) == 0 {
		return true
	}

	if gone.Host {
		r.players[0].Host = true
	}

	if i < r.lastLoser {
		r.lastLoser--
	}
	r.lastLoser %= len(r.players)

	r.message = fmt.Sprintf("%s left the room.", gone.Name)

	if r.status == Waiting {
		r.turn = 0

		return true
	}

	if r.checkWinner() {
		return true
	}

	switch {
	case i < r.turn:
		r.turn--
	case i == r.turn:
		// The next player has slid into the vacated slot.
		r.turn = firstAliveFrom(r.players, i)
	}

	return true
}

// Snapshot copies the full room state, cards included.
func (r *Room) Snapshot() Snapshot {
	players := make([]Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}

	history := make([]Declaration, len(r.history))
	copy(history, r.history)

	return Snapshot{
		ID:             r.id,
		Players:        players,
		Status:         r.status,
		LastDeclared:   r.lastDeclared,
		CurrentTurn:    r.turn,
		History:        history,
		Deck:           r.deck.Cards(),
		NeedsReshuffle: r.needsReshuffle,
		LastLoser:      r.lastLoser,
		Message:        r.message,
	}
}

// Snapshot is what gets sent to every member after a transition.
type Snapshot struct {
	ID             string        `json:"id"`
	Players        []Player      `json:"players"`
	Status         Status        `json:"status"`
	LastDeclared   int           `json:"last_declared"`
	CurrentTurn    int           `json:"current_turn"`
	History        []Declaration `json:"history"`
	Deck           []Card        `json:"deck"`
	NeedsReshuffle bool          `json:"needs_reshuffle"`
	LastLoser      int           `json:"last_loser"`
	Message        string        `json:"message"`
}
