/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package coordinator

import (
	"crypto/rand"
	"strings"
)

const (
	// RoomIDLength is the number of characters in a generated room code.
	RoomIDLength = 6

	// MaxMembers caps how many connections may sit in a waiting room.
	MaxMembers = 4

	// MinPlayers is the smallest roster that may start a game.
	MinPlayers = 2

	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Status is the lifecycle phase of a room.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished" // reserved, nothing transitions here yet
)

// Member is a connection's seat in a room.
type Member struct {
	ConnectionID     string `json:"id"`
	DisplayName      string `json:"name"`
	IsHost           bool   `json:"isHost"`
	HasActedThisTurn bool   `json:"finishedTurn"`
}

// Room holds the roster and turn state of a single game session.
// Members are kept in join order, which is also the turn order.
type Room struct {
	ID               string   `json:"roomId"`
	Members          []Member `json:"players"`
	CurrentTurnIndex int      `json:"currentTurnIndex"`
	Status           Status   `json:"status"`
}

// NormalizeRoomID trims surrounding whitespace and upper-cases a room code.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// RandomRoomID returns a fresh room code drawn from crypto/rand.
func RandomRoomID() string {
	const max = byte(255 - (256 % len(roomIDAlphabet)))

	out := make([]byte, 0, RoomIDLength)
	buf := make([]byte, RoomIDLength*2)

	for len(out) < RoomIDLength {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		for _, b := range buf {
			if b <= max {
				out = append(out, roomIDAlphabet[int(b)%len(roomIDAlphabet)])
				if len(out) == RoomIDLength {
					break
				}
			}
		}
	}

	return string(out)
}

func (r *Room) indexOf(connectionID string) int {
	for i := range r.Members {
		if r.Members[i].ConnectionID == connectionID {
			return i
		}
	}

	return -1
}

func (r *Room) active() *Member {
	if len(r.Members) == 0 {
		return nil
	}

	return &r.Members[r.CurrentTurnIndex]
}

// Snapshot returns a deep copy that is safe to hand to another goroutine.
func (r *Room) Snapshot() Room {
	return Room{
		ID:               r.ID,
		Members:          r.roster(),
		CurrentTurnIndex: r.CurrentTurnIndex,
		Status:           r.Status,
	}
}

func (r *Room) roster() []Member {
	members := make([]Member, len(r.Members))
	copy(members, r.Members)

	return members
}

func (r *Room) connectionIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.ConnectionID)
	}

	return ids
}
