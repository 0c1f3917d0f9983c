package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

var (
	// ErrNotFound is returned when no record exists for an id
	ErrNotFound = errors.New("game record not found")
	// ErrInvalidRecord is returned when a record fails validation before save
	ErrInvalidRecord = errors.New("invalid game record")
	// ErrInvalidStoreType is returned when an unknown store type is configured
	ErrInvalidStoreType = errors.New("invalid history store type")
)

// GameRecord is the persisted form of one finished game. Game holds the board
// after every accepted move, so len(Game) == Count; Initial is the board the
// game was dealt.
type GameRecord struct {
	ID        string       `json:"id"`
	Player    string       `json:"player"`
	Outcome   string       `json:"outcome"`
	Count     int          `json:"count"`
	Score     uint64       `json:"score"`
	MaxTile   uint32       `json:"max_tile"`
	Game      []core.Board `json:"game"`
	Initial   core.Board   `json:"initial"`
	Seed      *int64       `json:"seed,omitempty"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   time.Time    `json:"ended_at"`
}

// NewRecord starts a record for a freshly dealt board. An empty id is
// replaced with a new uuid.
func NewRecord(id, player string, initial core.Board, seed *int64) *GameRecord {
	if id == "" {
		id = uuid.New().String()
	}
	return &GameRecord{
		ID:        id,
		Player:    player,
		Initial:   initial,
		Score:     initial.Sum(),
		MaxTile:   initial.MaxTile(),
		Game:      []core.Board{},
		Seed:      seed,
		StartedAt: time.Now(),
	}
}

// Append records the board after an accepted move
func (r *GameRecord) Append(b core.Board) {
	r.Game = append(r.Game, b)
	r.Count = len(r.Game)
	r.Score = b.Sum()
	r.MaxTile = b.MaxTile()
}

// Finish stamps the outcome and end time
func (r *GameRecord) Finish(outcome string) {
	r.Outcome = outcome
	r.EndedAt = time.Now()
}

// Final returns the last board of the game
func (r *GameRecord) Final() core.Board {
	if len(r.Game) == 0 {
		return r.Initial
	}
	return r.Game[len(r.Game)-1]
}

// Validate checks the invariants a stored record must hold
func (r *GameRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if r.Player == "" {
		return fmt.Errorf("%w: missing player", ErrInvalidRecord)
	}
	if r.Count != len(r.Game) {
		return fmt.Errorf("%w: count %d does not match %d snapshots", ErrInvalidRecord, r.Count, len(r.Game))
	}
	for i, b := range r.Game {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: snapshot %d: %v", ErrInvalidRecord, i, err)
		}
	}
	if final := r.Final(); r.Score != final.Sum() || r.MaxTile != final.MaxTile() {
		return fmt.Errorf("%w: score %d and max tile %d do not match the final board", ErrInvalidRecord, r.Score, r.MaxTile)
	}
	return nil
}

// MetricNames are the graphable per-game metrics in display order
var MetricNames = []string{"count", "score", "max_tile"}

// Metrics extracts the graphable metrics of one record
func Metrics(r *GameRecord) map[string]uint64 {
	return map[string]uint64{
		"count":    uint64(r.Count),
		"score":    r.Score,
		"max_tile": uint64(r.MaxTile),
	}
}
