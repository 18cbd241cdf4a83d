/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package coordinator implements the room and turn state machine behind a
// turn-based multiplayer session.
//
// A Coordinator is a plain value with no locking: every method runs to
// completion and returns the events it produced, so the caller must invoke
// it from a single goroutine. Rejected requests return one of the package's
// sentinel errors and produce no events.
package coordinator

import (
	"fmt"
)

// Coordinator validates requests against room status and turn ownership.
type Coordinator struct {
	store    *Store
	registry *Registry
}

// New wires a coordinator to its room store and connection registry.
func New(store *Store, registry *Registry) *Coordinator {
	return &Coordinator{
		store:    store,
		registry: registry,
	}
}

// Rooms reports how many rooms are open.
func (c *Coordinator) Rooms() int {
	return c.store.Len()
}

// Seated reports how many connections currently belong to a room.
func (c *Coordinator) Seated() int {
	return c.registry.Len()
}

// Exists reports whether a room code is in use.
func (c *Coordinator) Exists(roomID string) bool {
	_, ok := c.store.Get(roomID)

	return ok
}

// Room returns a copy of a room's state.
func (c *Coordinator) Room(roomID string) (Room, bool) {
	room, ok := c.store.Get(roomID)
	if !ok {
		return Room{}, false
	}

	return room.Snapshot(), true
}

// CreateRoom opens a new room hosted by the requester.
func (c *Coordinator) CreateRoom(connectionID, displayName string) ([]Event, error) {
	if roomID, ok := c.registry.Lookup(connectionID); ok {
		return nil, fmt.Errorf("%w: [%s]", ErrAlreadyInRoom, roomID)
	}

	room := c.store.Create(connectionID, displayName)
	c.registry.Bind(connectionID, room.ID)

	return []Event{
		unicast(connectionID, EventRoomCreated, room.Snapshot()),
	}, nil
}

// JoinRoom seats the requester in an existing waiting room.
func (c *Coordinator) JoinRoom(connectionID, roomID, displayName string) ([]Event, error) {
	if current, ok := c.registry.Lookup(connectionID); ok {
		return nil, fmt.Errorf("%w: [%s]", ErrAlreadyInRoom, current)
	}

	room, err := c.store.Join(roomID, connectionID, displayName)
	if err != nil {
		return nil, err
	}

	c.registry.Bind(connectionID, room.ID)

	return []Event{
		broadcast(room, EventPlayersUpdate, room.roster()),
		unicast(connectionID, EventRoomJoined, room.Snapshot()),
	}, nil
}

// StartGame moves a waiting room into play. Only the host may do this.
func (c *Coordinator) StartGame(connectionID, roomID string) ([]Event, error) {
	room, err := c.lookup(roomID)
	if err != nil {
		return nil, err
	}

	i := room.indexOf(connectionID)
	if i < 0 || !room.Members[i].IsHost {
		return nil, ErrNotHost
	}

	if room.Status != StatusWaiting {
		return nil, ErrGameAlreadyStarted
	}

	if len(room.Members) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	room.Status = StatusPlaying
	room.CurrentTurnIndex = 0
	for i := range room.Members {
		room.Members[i].HasActedThisTurn = false
	}

	return []Event{
		broadcast(room, EventGameStarted, room.Snapshot()),
		turnChanged(room),
	}, nil
}

// PlayerAction relays an opaque action from the active member to the room.
func (c *Coordinator) PlayerAction(connectionID, roomID string, action Action) ([]Event, error) {
	room, err := c.lookup(roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != StatusPlaying {
		return nil, ErrGameNotStarted
	}

	if room.active().ConnectionID != connectionID {
		return nil, ErrNotYourTurn
	}

	if action.Type == "" {
		return nil, ErrInvalidAction
	}

	return []Event{
		broadcast(room, EventGameStateUpdated, action),
	}, nil
}

// FinishTurn passes the turn to the next member in join order. A repeated
// call from a member who already finished is ignored.
func (c *Coordinator) FinishTurn(connectionID, roomID string) ([]Event, error) {
	room, err := c.lookup(roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != StatusPlaying {
		return nil, ErrGameNotStarted
	}

	if room.indexOf(connectionID) != room.CurrentTurnIndex {
		return nil, ErrNotYourTurn
	}

	current := room.active()
	if current.HasActedThisTurn {
		return nil, nil
	}
	current.HasActedThisTurn = true

	room.CurrentTurnIndex = (room.CurrentTurnIndex + 1) % len(room.Members)

	for i := range room.Members {
		room.Members[i].HasActedThisTurn = false
	}

	return []Event{turnChanged(room)}, nil
}

// Disconnect removes a departed connection from its room, handing over the
// host flag and the turn as needed. Connections outside any room produce no
// events.
func (c *Coordinator) Disconnect(connectionID string) []Event {
	roomID, ok := c.registry.Lookup(connectionID)
	if !ok {
		return nil
	}
	c.registry.Unbind(connectionID)

	room, ok := c.store.Get(roomID)
	if !ok {
		return nil
	}

	i := room.indexOf(connectionID)
	if i < 0 {
		return nil
	}

	wasActive := i == room.CurrentTurnIndex
	wasHost := room.Members[i].IsHost

	room.Members = append(room.Members[:i], room.Members[i+1:]...)

	if len(room.Members) == 0 {
		c.store.Delete(room.ID)

		return nil
	}

	if wasHost {
		room.Members[0].IsHost = true
	}

	var events []Event

	switch {
	case wasActive && room.Status == StatusPlaying:
		room.CurrentTurnIndex %= len(room.Members)
		events = append(events, turnChanged(room))
	case room.CurrentTurnIndex >= len(room.Members):
		room.CurrentTurnIndex = 0
	}

	return append(events, broadcast(room, EventPlayersUpdate, room.roster()))
}

func (c *Coordinator) lookup(roomID string) (*Room, error) {
	room, ok := c.store.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrRoomNotFound, NormalizeRoomID(roomID))
	}

	return room, nil
}
