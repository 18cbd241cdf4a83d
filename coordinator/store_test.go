/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package coordinator

import (
	"errors"
	"strings"
	"testing"
)

func sequence(ids ...string) func() string {
	i := 0

	return func() string {
		id := ids[i%len(ids)]
		i++

		return id
	}
}

func TestCreateRoom(t *testing.T) {
	s := NewStore(sequence("abc123"))

	room := s.Create("c1", "Alice")

	if room.ID != "ABC123" {
		t.Fatalf("id = %q, want ABC123", room.ID)
	}
	if len(room.Members) != 1 {
		t.Fatalf("members = %d, want 1", len(room.Members))
	}
	if !room.Members[0].IsHost {
		t.Fatalf("creator should be host")
	}
	if room.Members[0].HasActedThisTurn {
		t.Fatalf("creator should not have acted")
	}
	if room.Status != StatusWaiting {
		t.Fatalf("status = %s, want waiting", room.Status)
	}
	if room.CurrentTurnIndex != 0 {
		t.Fatalf("turn index = %d, want 0", room.CurrentTurnIndex)
	}
}

func TestCreateRoomRegeneratesOnCollision(t *testing.T) {
	s := NewStore(sequence("AAAAAA", "AAAAAA", "BBBBBB"))

	first := s.Create("c1", "Alice")
	second := s.Create("c2", "Bob")

	if first.ID != "AAAAAA" || second.ID != "BBBBBB" {
		t.Fatalf("ids = %q, %q, want AAAAAA, BBBBBB", first.ID, second.ID)
	}
	if s.Len() != 2 {
		t.Fatalf("rooms = %d, want 2", s.Len())
	}
}

func TestDefaultNames(t *testing.T) {
	s := NewStore(sequence("ROOM01"))

	room := s.Create("c1", "   ")
	if room.Members[0].DisplayName != "Host" {
		t.Fatalf("host name = %q, want Host", room.Members[0].DisplayName)
	}

	room, err := s.Join("ROOM01", "c2", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if room.Members[1].DisplayName != "Player 2" {
		t.Fatalf("joiner name = %q, want Player 2", room.Members[1].DisplayName)
	}
}

func TestGetNormalizesRoomID(t *testing.T) {
	s := NewStore(sequence("QWERTY"))
	created := s.Create("c1", "Alice")

	for _, id := range []string{"QWERTY", "qwerty", " QWERTY ", "\tqWeRtY\n"} {
		room, ok := s.Get(id)
		if !ok {
			t.Fatalf("lookup %q: not found", id)
		}
		if room != created {
			t.Fatalf("lookup %q returned a different room", id)
		}
	}
}

func TestJoinRejections(t *testing.T) {
	s := NewStore(sequence("FULL01", "LIVE01"))

	full := s.Create("h1", "Host")
	for i := 0; i < MaxMembers-1; i++ {
		if _, err := s.Join(full.ID, "p"+string(rune('a'+i)), ""); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}

	live := s.Create("h2", "Host")
	if _, err := s.Join(live.ID, "x", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	live.Status = StatusPlaying

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"missing", "NOPE00", ErrRoomNotFound},
		{"full", "full01", ErrRoomFull},
		{"playing", "live01", ErrGameAlreadyStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Len()

			_, err := s.Join(tt.id, "late", "Late")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if s.Len() != before {
				t.Fatalf("rooms = %d, want %d", s.Len(), before)
			}
		})
	}

	if len(full.Members) != MaxMembers {
		t.Fatalf("full room members = %d, want %d", len(full.Members), MaxMembers)
	}
}

func TestDelete(t *testing.T) {
	s := NewStore(sequence("GONE00"))
	s.Create("c1", "Alice")

	s.Delete("gone00")
	s.Delete("gone00")

	if _, ok := s.Get("GONE00"); ok {
		t.Fatalf("room should be gone")
	}
}

func TestRandomRoomID(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := RandomRoomID()

		if len(id) != RoomIDLength {
			t.Fatalf("len(%q) = %d, want %d", id, len(id), RoomIDLength)
		}
		if id != NormalizeRoomID(id) {
			t.Fatalf("id %q is not normalized", id)
		}
		for _, r := range id {
			if !strings.ContainsRune(roomIDAlphabet, r) {
				t.Fatalf("id %q contains %q", id, r)
			}
		}

		seen[id] = true
	}

	if len(seen) < 990 {
		t.Fatalf("only %d distinct ids out of 1000", len(seen))
	}
}
