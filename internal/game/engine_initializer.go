package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/game/events"
)

// GameConfig holds everything needed to build an Engine
type GameConfig struct {
	// GameID labels events and logs; a uuid is generated when empty
	GameID string
	// Player is the move source type, carried into events
	Player string
	// Rng is the only source of randomness; seeded from the clock when nil
	Rng *rand.Rand
	// Logger receives engine logs
	Logger zerolog.Logger
	// Publisher receives engine events; may be nil
	Publisher events.Publisher
}

// NewRNG returns a generator seeded with seed, or from the clock when seed is nil.
func NewRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (cfg *GameConfig) setupDefaults() {
	if cfg.Rng == nil {
		cfg.Rng = NewRNG(nil)
	}
	if cfg.GameID == "" {
		cfg.GameID = uuid.NewString()
	}
}

func newEngine(cfg GameConfig) *Engine {
	cfg.setupDefaults()
	return &Engine{
		rng:       cfg.Rng,
		gameID:    cfg.GameID,
		player:    cfg.Player,
		publisher: cfg.Publisher,
		logger: cfg.Logger.With().
			Str("component", "GameEngine").
			Str("game_id", cfg.GameID).
			Logger(),
	}
}

// NewEngine creates an engine with an empty board and deals the initial tile.
func NewEngine(cfg GameConfig) *Engine {
	e := newEngine(cfg)
	e.deal()
	return e
}

// NewEngineFromBoard creates an engine around an existing board. No tile is
// dealt. Used to resume games and to set up test positions.
func NewEngineFromBoard(cfg GameConfig, b core.Board) (*Engine, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(cfg)
	e.board = b
	return e, nil
}
