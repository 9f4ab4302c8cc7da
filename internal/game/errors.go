package game

import "errors"

var (
	// ErrRoomFull is returned when joining a room that already has the
	// maximum number of players
	ErrRoomFull = errors.New("room is full")

	// ErrNotEnoughPlayers is returned when starting a game without a full
	// table
	ErrNotEnoughPlayers = errors.New("not enough players to start")

	// ErrNotYourTurn is returned when a player acts out of turn
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInvalidCard is returned when a card index is out of range for the
	// acting player's hand
	ErrInvalidCard = errors.New("invalid card index")

	// ErrInvalidTarget is returned when a pass targets the acting player or
	// an out-of-range seat
	ErrInvalidTarget = errors.New("invalid target player")

	// ErrGameOver is returned when acting on a finished game
	ErrGameOver = errors.New("game is over")
)
