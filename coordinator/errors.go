/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package coordinator

import "errors"

// Request rejections. All of them are delivered privately to the requester.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game is already in progress")
	ErrRoomFull           = errors.New("room is full")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrNotEnoughPlayers   = errors.New("at least 2 players are required")
	ErrNotYourTurn        = errors.New("it is not your turn")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrAlreadyInRoom      = errors.New("already in a room")
	ErrInvalidAction      = errors.New("action is missing a type")
)
