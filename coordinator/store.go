/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package coordinator

import (
	"fmt"
	"strconv"
	"strings"
)

// Store maps room codes to rooms. It is not safe for concurrent use; the
// owner is expected to serialize access.
type Store struct {
	rooms map[string]*Room
	newID func() string
}

// NewStore returns an empty store. A nil generator falls back to RandomRoomID.
func NewStore(generator func() string) *Store {
	if generator == nil {
		generator = RandomRoomID
	}

	return &Store{
		rooms: make(map[string]*Room),
		newID: generator,
	}
}

// Create opens a waiting room with the caller as its only member and host.
func (s *Store) Create(connectionID, displayName string) *Room {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "Host"
	}

	var id string
	for {
		id = NormalizeRoomID(s.newID())
		if _, exists := s.rooms[id]; !exists && id != "" {
			break
		}
	}

	room := &Room{
		ID: id,
		Members: []Member{{
			ConnectionID: connectionID,
			DisplayName:  name,
			IsHost:       true,
		}},
		Status: StatusWaiting,
	}

	s.rooms[id] = room

	return room
}

// Get looks a room up by code, ignoring case and surrounding whitespace.
func (s *Store) Get(roomID string) (*Room, bool) {
	room, ok := s.rooms[NormalizeRoomID(roomID)]

	return room, ok
}

// Join appends a non-host member to a waiting room with a free seat.
func (s *Store) Join(roomID, connectionID, displayName string) (*Room, error) {
	id := NormalizeRoomID(roomID)

	room, ok := s.rooms[id]
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: [%s]", ErrRoomNotFound, id)
	case room.Status != StatusWaiting:
		return nil, ErrGameAlreadyStarted
	case len(room.Members) >= MaxMembers:
		return nil, ErrRoomFull
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "Player " + strconv.Itoa(len(room.Members)+1)
	}

	room.Members = append(room.Members, Member{
		ConnectionID: connectionID,
		DisplayName:  name,
	})

	return room, nil
}

// Delete drops a room. Deleting an unknown code is a no-op.
func (s *Store) Delete(roomID string) {
	delete(s.rooms, NormalizeRoomID(roomID))
}

// Len reports how many rooms are open.
func (s *Store) Len() int {
	return len(s.rooms)
}
