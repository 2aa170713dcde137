/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"sync"
)

// Notifier receives a snapshot after every accepted transition. Publish is
// called while the room is still locked, so snapshots of a room arrive in
// order; implementations must not block.
type Notifier interface {
	Publish(Snapshot)
}

type NotifierFunc func(Snapshot)

func (f NotifierFunc) Publish(s Snapshot) {
	f(s)
}

type slot struct {
	mu   sync.Mutex
	room *Room
	gone bool
}

// Registry owns every live room. Rooms are created on first join and
// destroyed as soon as their last player leaves.
//
// Lock order is always slot before registry.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*slot
	members map[string]map[string]struct{} // connID -> room IDs

	notify Notifier
	opts   []Option
}

func NewRegistry(notify Notifier, opts ...Option) *Registry {
	if notify == nil {
		notify = NotifierFunc(func(Snapshot) {})
	}

	return &Registry{
		rooms:   make(map[string]*slot),
		members: make(map[string]map[string]struct{}),
		notify:  notify,
		opts:    opts,
	}
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return len(reg.rooms)
}

func (reg *Registry) lookup(roomID string, create bool) *slot {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	s, ok := reg.rooms[roomID]
	if !ok && create {
		s = &slot{room: NewRoom(roomID, reg.opts...)}
		reg.rooms[roomID] = s
	}

	return s
}

// destroyLocked removes an empty room. s.mu must be held.
func (reg *Registry) destroyLocked(roomID string, s *slot) {
	s.gone = true

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.rooms[roomID] == s {
		delete(reg.rooms, roomID)
	}
}

func (reg *Registry) track(connID, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rooms, ok := reg.members[connID]
	if !ok {
		rooms = make(map[string]struct{})
		reg.members[connID] = rooms
	}
	rooms[roomID] = struct{}{}
}

// Join seats connID in roomID under the given name, creating the room if
// nobody is playing there yet.
func (reg *Registry) Join(roomID, connID, name string) error {
	for {
		s := reg.lookup(roomID, true)

		s.mu.Lock()
		if s.gone {
			// Destroyed between lookup and lock; try again with a fresh room.
			s.mu.Unlock()

			continue
		}

		err := s.room.Join(connID, name)
		if err != nil {
			if s.room.Len() == 0 {
				reg.destroyLocked(roomID, s)
			}
			s.mu.Unlock()

			return err
		}

		reg.track(connID, roomID)
		reg.notify.Publish(s.room.Snapshot())
		s.mu.Unlock()

		return nil
	}
}

func (reg *Registry) do(roomID string, fn func(*Room) error) error {
	s := reg.lookup(roomID, false)
	if s == nil {
		return ErrRoomNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gone {
		return ErrRoomNotFound
	}

	if err := fn(s.room); err != nil {
		return err
	}

	reg.notify.Publish(s.room.Snapshot())

	return nil
}

func (reg *Registry) Start(roomID, connID string) error {
	return reg.do(roomID, func(r *Room) error {
		return r.Start(connID)
	})
}

func (reg *Registry) Declare(roomID, connID string, value int) error {
	return reg.do(roomID, func(r *Room) error {
		return r.Declare(connID, value)
	})
}

func (reg *Registry) Challenge(roomID, connID string) error {
	return reg.do(roomID, func(r *Room) error {
		return r.Challenge(connID)
	})
}

func (reg *Registry) AdvanceRound(roomID, connID string) error {
	return reg.do(roomID, func(r *Room) error {
		return r.AdvanceRound(connID)
	})
}

// Snapshot returns the current state of a room without changing it.
func (reg *Registry) Snapshot(roomID string) (Snapshot, bool) {
	s := reg.lookup(roomID, false)
	if s == nil {
		return Snapshot{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gone {
		return Snapshot{}, false
	}

	return s.room.Snapshot(), true
}

// Disconnect removes connID from every room it joined. Rooms left empty
// are destroyed; the others are told who left.
func (reg *Registry) Disconnect(connID string) {
	reg.mu.Lock()
	joined := reg.members[connID]
	delete(reg.members, connID)
	reg.mu.Unlock()

	for roomID := range joined {
		s := reg.lookup(roomID, false)
		if s == nil {
			continue
		}

		s.mu.Lock()
		if !s.gone && s.room.Leave(connID) {
			if s.room.Len() == 0 {
				reg.destroyLocked(roomID, s)
			} else {
				reg.notify.Publish(s.room.Snapshot())
			}
		}
		s.mu.Unlock()
	}
}
