/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package coordinator

import (
	"bytes"
	"encoding/json"
)

// EventType names an outbound push.
type EventType string

const (
	EventRoomCreated      EventType = "roomCreated"
	EventRoomJoined       EventType = "roomJoined"
	EventPlayersUpdate    EventType = "playersUpdate"
	EventGameStarted      EventType = "gameStarted"
	EventTurnChanged      EventType = "turnChanged"
	EventGameStateUpdated EventType = "gameStateUpdated"
)

// Event is an outbound push together with the connections it goes to.
// Recipients are resolved when the event is produced, so later roster
// changes never affect who receives it.
type Event struct {
	Type       EventType
	Recipients []string
	Payload    any
}

// TurnChange is the payload of a turnChanged event.
type TurnChange struct {
	CurrentTurnIndex int    `json:"currentTurnIndex"`
	ActivePlayerID   string `json:"activePlayerId"`
}

// Action is an opaque gameplay payload. Only its "type" discriminator is
// inspected; the original bytes are relayed untouched.
type Action struct {
	Type string
	raw  json.RawMessage
}

// NewAction builds an Action from an arbitrary JSON object.
func NewAction(data []byte) (Action, error) {
	var a Action
	err := a.UnmarshalJSON(data)

	return a, err
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	a.Type = head.Type
	a.raw = append(a.raw[:0], bytes.TrimSpace(data)...)

	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return json.Marshal(map[string]string{"type": a.Type})
	}

	return a.raw, nil
}

func broadcast(room *Room, kind EventType, payload any) Event {
	return Event{
		Type:       kind,
		Recipients: room.connectionIDs(),
		Payload:    payload,
	}
}

func unicast(connectionID string, kind EventType, payload any) Event {
	return Event{
		Type:       kind,
		Recipients: []string{connectionID},
		Payload:    payload,
	}
}

func turnChanged(room *Room) Event {
	return broadcast(room, EventTurnChanged, TurnChange{
		CurrentTurnIndex: room.CurrentTurnIndex,
		ActivePlayerID:   room.active().ConnectionID,
	})
}
