package events

import (
	"time"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted     = "game.started"
	TypeGameEnded       = "game.ended"
	TypeMoveApplied     = "move.applied"
	TypeMoveRejected    = "move.rejected"
	TypeTileSpawned     = "tile.spawned"
	TypeStateTransition = "state.transition"
)

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
	}
}

// GameStartedEvent is published when a fresh board is dealt
type GameStartedEvent struct {
	BaseEvent
	Player string     `json:"player"`
	Board  core.Board `json:"board"`
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID, player string, board core.Board) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		Player:    player,
		Board:     board,
	}
}

// GameEndedEvent is published when a game reaches a terminal outcome
type GameEndedEvent struct {
	BaseEvent
	Outcome  string        `json:"outcome"`
	Moves    int           `json:"moves"`
	Score    uint64        `json:"score"`
	MaxTile  uint32        `json:"max_tile"`
	Duration time.Duration `json:"duration"`
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID, outcome string, moves int, score uint64, maxTile uint32, duration time.Duration) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Outcome:   outcome,
		Moves:     moves,
		Score:     score,
		MaxTile:   maxTile,
		Duration:  duration,
	}
}

// MoveAppliedEvent is published after a move changed the board, before the
// follow-up spawn
type MoveAppliedEvent struct {
	BaseEvent
	Direction core.Direction `json:"direction"`
	Board     core.Board     `json:"board"`
	Score     uint64         `json:"score"`
}

// NewMoveAppliedEvent creates a new MoveAppliedEvent
func NewMoveAppliedEvent(gameID string, d core.Direction, board core.Board) *MoveAppliedEvent {
	return &MoveAppliedEvent{
		BaseEvent: newBase(TypeMoveApplied, gameID),
		Direction: d,
		Board:     board,
		Score:     board.Sum(),
	}
}

// MoveRejectedEvent is published when a move leaves the board unchanged or
// carries an invalid code
type MoveRejectedEvent struct {
	BaseEvent
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

// NewMoveRejectedEvent creates a new MoveRejectedEvent
func NewMoveRejectedEvent(gameID string, code int, reason string) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent: newBase(TypeMoveRejected, gameID),
		Code:      code,
		Reason:    reason,
	}
}

// TileSpawnedEvent is published when a new tile appears on the board
type TileSpawnedEvent struct {
	BaseEvent
	Cell  core.Cell  `json:"cell"`
	Value uint32     `json:"value"`
	Board core.Board `json:"board"`
}

// NewTileSpawnedEvent creates a new TileSpawnedEvent
func NewTileSpawnedEvent(gameID string, cell core.Cell, value uint32, board core.Board) *TileSpawnedEvent {
	return &TileSpawnedEvent{
		BaseEvent: newBase(TypeTileSpawned, gameID),
		Cell:      cell,
		Value:     value,
		Board:     board,
	}
}

// StateTransitionEvent is published when the session state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
