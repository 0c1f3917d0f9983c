package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	gameengine "github.com/mitchelldurbincs/go2048/internal/game"
	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/game/events"
	"github.com/mitchelldurbincs/go2048/internal/game/rules"
	"github.com/mitchelldurbincs/go2048/internal/game/states"
	"github.com/mitchelldurbincs/go2048/internal/history"
)

var (
	// ErrGameNotFound is returned for an unknown or evicted game id
	ErrGameNotFound = errors.New("game not found")
	// ErrAtCapacity is returned when max_games games are already active
	ErrAtCapacity = errors.New("server at capacity")
	// ErrUnknownPlayer is returned when a game is requested for an unconfigured player type
	ErrUnknownPlayer = errors.New("unknown player type")
)

// saveTimeout bounds one attempt at writing a finished game
const saveTimeout = 10 * time.Second

// ManagerConfig holds the limits of a GameManager
type ManagerConfig struct {
	// MaxGames caps concurrently held games; zero or less means unlimited
	MaxGames int
	// DefaultPlayer is used when CreateGame names no player
	DefaultPlayer string
	// Players maps each accepted player type to its move budget (zero means unlimited)
	Players map[string]int

	FinishedTTL     time.Duration
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
}

// GameState is a snapshot of one remote game
type GameState struct {
	GameID     string
	Player     string
	Board      core.Board
	Moves      int
	MaxMoves   int
	Score      uint64
	MaxTile    uint32
	Won        bool
	Stuck      bool
	Over       bool
	Outcome    string
	Phase      string
	LegalMoves []int
}

// MoveResult is the answer to a Move request
type MoveResult struct {
	State GameState
	Moved bool
}

type gameInstance struct {
	id       string
	player   string
	maxMoves int
	engine   *gameengine.Engine
	record   *history.GameRecord
	mu       sync.Mutex // guards everything below and the engine

	// State management
	gameContext  *states.GameContext
	stateMachine *states.StateMachine

	// Activity tracking for cleanup
	createdAt    time.Time
	lastActivity time.Time

	// Replayed results for retried request ids
	moves *MoveCache

	saveAttempts int
}

// GameManager manages all active game instances
type GameManager struct {
	mu        sync.RWMutex
	games     map[string]*gameInstance
	pending   int // slots reserved by CreateGame calls still dealing
	config    ManagerConfig
	store     history.Store
	publisher events.Publisher
	checker   *rules.WinConditionChecker
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGameManager creates a new game manager. Finished games are saved to
// store and engine events go to publisher; either may be nil.
func NewGameManager(config ManagerConfig, store history.Store, publisher events.Publisher, logger zerolog.Logger) *GameManager {
	if store == nil {
		store = history.NullStore{}
	}
	return &GameManager{
		games:     make(map[string]*gameInstance),
		config:    config,
		store:     store,
		publisher: publisher,
		checker:   rules.NewWinConditionChecker(logger),
		logger:    logger.With().Str("component", "GameManager").Logger(),
		now:       time.Now,
	}
}

// CreateGame deals a new game for player. An empty player selects the
// configured default.
func (gm *GameManager) CreateGame(player string, seed *int64) (GameState, error) {
	if player == "" {
		player = gm.config.DefaultPlayer
	}
	maxMoves, ok := gm.config.Players[player]
	if !ok {
		return GameState{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}

	// Reserve the slot before dealing so a rejected create publishes nothing.
	// Check and reservation share one lock so concurrent creates cannot overshoot.
	gm.mu.Lock()
	if current := len(gm.games) + gm.pending; gm.config.MaxGames > 0 && current >= gm.config.MaxGames {
		gm.mu.Unlock()
		gm.logger.Warn().
			Int("current_games", current).
			Int("max_games", gm.config.MaxGames).
			Msg("Rejecting game creation - server at capacity")
		return GameState{}, fmt.Errorf("%w: %d/%d games active", ErrAtCapacity, current, gm.config.MaxGames)
	}
	gm.pending++
	gm.mu.Unlock()

	gameID := uuid.NewString()
	engine := gameengine.NewEngine(gameengine.GameConfig{
		GameID:    gameID,
		Player:    player,
		Rng:       gameengine.NewRNG(seed),
		Logger:    gm.logger,
		Publisher: gm.publisher,
	})

	gameContext := states.NewGameContext(gameID, player, maxMoves, gm.logger)
	stateMachine := states.NewStateMachine(gameContext, gm.publisher)

	now := gm.now()
	game := &gameInstance{
		id:           gameID,
		player:       player,
		maxMoves:     maxMoves,
		engine:       engine,
		record:       history.NewRecord(gameID, player, engine.Board(), seed),
		gameContext:  gameContext,
		stateMachine: stateMachine,
		createdAt:    now,
		lastActivity: now,
		moves:        NewMoveCache(),
	}

	gm.mu.Lock()
	gm.pending--
	gm.games[gameID] = game
	currentCount := len(gm.games)
	gm.mu.Unlock()

	game.mu.Lock()
	defer game.mu.Unlock()
	if err := stateMachine.TransitionTo(states.PhaseRunning, "game created"); err != nil {
		return GameState{}, fmt.Errorf("failed to start game: %w", err)
	}

	gm.logger.Info().
		Str("game_id", gameID).
		Str("player", player).
		Int("max_moves", maxMoves).
		Int("current_games", currentCount).
		Msg("Created new game")

	return game.stateLocked(), nil
}

func (gm *GameManager) getGame(gameID string) (*gameInstance, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

// Move applies direction code to a game. A repeated requestID returns the
// first result without moving again. A move that ends the game saves it.
func (gm *GameManager) Move(ctx context.Context, gameID string, code int, requestID string) (MoveResult, error) {
	game, err := gm.getGame(gameID)
	if err != nil {
		return MoveResult{}, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if cached, ok := game.moves.Lookup(requestID); ok {
		gm.logger.Debug().
			Str("game_id", gameID).
			Str("request_id", requestID).
			Msg("Returning cached move result")
		return cached, nil
	}

	if !game.stateMachine.CurrentPhase().CanReceiveMoves() {
		return MoveResult{}, fmt.Errorf("%w: %s is %s", core.ErrGameOver, gameID, game.stateMachine.CurrentPhase())
	}

	game.lastActivity = gm.now()

	moved, err := game.engine.Move(core.Direction(code))
	if err != nil {
		return MoveResult{}, err
	}
	if moved {
		game.gameContext.CountMove()
		game.record.Append(game.engine.Board())
	}

	if outcome := gm.checker.CheckGameOver(game.engine, game.gameContext.Moves, game.maxMoves); outcome.IsFinal() {
		if err := gm.finishLocked(ctx, game, outcome); err != nil {
			return MoveResult{}, err
		}
	}

	result := MoveResult{State: game.stateLocked(), Moved: moved}
	game.moves.Remember(requestID, result)
	return result, nil
}

// finishLocked records the outcome and saves the game. The move that ended
// the game stands even when the save fails: the game then waits in
// PhaseEnding and the cleanup pass retries.
func (gm *GameManager) finishLocked(ctx context.Context, game *gameInstance, outcome rules.Outcome) error {
	game.gameContext.Outcome = outcome.String()
	if err := game.stateMachine.TransitionTo(states.PhaseEnding, outcome.String()); err != nil {
		return err
	}
	game.record.Finish(outcome.String())
	gm.persistLocked(ctx, game)
	return nil
}

// persistLocked saves a game in PhaseEnding and moves it to PhaseEnded.
// The write is detached from ctx's cancellation, so a client hanging up on
// the final move does not lose the record. Must be called with game.mu held.
func (gm *GameManager) persistLocked(ctx context.Context, game *gameInstance) bool {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	game.saveAttempts++
	if err := gm.store.Save(saveCtx, game.record); err != nil {
		gm.logger.Error().
			Err(err).
			Str("game_id", game.id).
			Int("attempt", game.saveAttempts).
			Msg("Failed to save finished game, will retry")
		return false
	}

	outcome := game.gameContext.Outcome
	if gm.publisher != nil {
		gm.publisher.Publish(events.NewGameEndedEvent(
			game.id, outcome, game.gameContext.Moves,
			game.engine.Score(), game.engine.MaxTile(), game.gameContext.GetElapsedTime(),
		))
	}

	if err := game.stateMachine.TransitionTo(states.PhaseEnded, "record saved"); err != nil {
		gm.logger.Error().Err(err).Str("game_id", game.id).Msg("Saved game did not reach Ended")
		return false
	}

	gm.logger.Info().
		Str("game_id", game.id).
		Str("player", game.player).
		Str("outcome", outcome).
		Int("moves", game.gameContext.Moves).
		Uint32("max_tile", game.engine.MaxTile()).
		Int("save_attempts", game.saveAttempts).
		Msg("Game finished")
	return true
}

// GetState returns a snapshot of a game
func (gm *GameManager) GetState(gameID string) (GameState, error) {
	game, err := gm.getGame(gameID)
	if err != nil {
		return GameState{}, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()
	return game.stateLocked(), nil
}

// CloseGame drops a game from memory. An unfinished game is discarded
// without a record.
func (gm *GameManager) CloseGame(gameID string) error {
	gm.mu.Lock()
	game, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	game.mu.Lock()
	if game.stateMachine.CurrentPhase() == states.PhaseEnding && !gm.persistLocked(context.Background(), game) {
		gm.logger.Warn().Str("game_id", gameID).Msg("Closing game whose record could not be saved")
	}
	finished := game.gameContext.Outcome != ""
	moves := game.gameContext.Moves
	game.mu.Unlock()

	gm.logger.Info().
		Str("game_id", gameID).
		Bool("finished", finished).
		Int("moves", moves).
		Msg("Closed game")
	return nil
}

// GetActiveGames returns the number of games held in memory
func (gm *GameManager) GetActiveGames() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// Run evicts finished and abandoned games every CleanupInterval until ctx is done
func (gm *GameManager) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			gm.logger.Error().
				Interface("panic", r).
				Msg("Game cleanup goroutine panicked - restarting")
			go gm.Run(ctx)
		}
	}()

	interval := gm.config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.cleanupGames()
		case <-ctx.Done():
			return
		}
	}
}

// cleanupGames retries pending saves and removes finished and abandoned
// games from memory
func (gm *GameManager) cleanupGames() {
	// Phase 1: collect references without holding the manager lock while taking game locks
	gm.mu.RLock()
	gameRefs := make([]*gameInstance, 0, len(gm.games))
	for _, game := range gm.games {
		gameRefs = append(gameRefs, game)
	}
	gm.mu.RUnlock()

	// Phase 2: check each game independently
	now := gm.now()
	var toDelete []string

	for _, game := range gameRefs {
		game.mu.Lock()
		if game.stateMachine.CurrentPhase() == states.PhaseEnding {
			gm.persistLocked(context.Background(), game)
		}
		inactive := now.Sub(game.lastActivity)
		phase := game.stateMachine.CurrentPhase()
		createdAt := game.createdAt
		game.mu.Unlock()

		reason := ""
		switch {
		case phase == states.PhaseEnding:
			// kept until its record is saved
		case phase.IsTerminal() && inactive > gm.config.FinishedTTL:
			reason = "finished game TTL expired"
		case !phase.IsTerminal() && gm.config.IdleTimeout > 0 && inactive > gm.config.IdleTimeout:
			reason = "game abandoned (no activity)"
		}

		if reason != "" {
			toDelete = append(toDelete, game.id)
			gm.logger.Info().
				Str("game_id", game.id).
				Str("reason", reason).
				Dur("age", now.Sub(createdAt)).
				Dur("inactive", inactive).
				Msg("Cleaning up game")
		}
	}

	// Phase 3: remove with a single lock
	if len(toDelete) > 0 {
		gm.mu.Lock()
		for _, gameID := range toDelete {
			delete(gm.games, gameID)
		}
		remainingCount := len(gm.games)
		gm.mu.Unlock()

		gm.logger.Info().
			Int("cleaned", len(toDelete)).
			Int("remaining", remainingCount).
			Msg("Game cleanup completed")
	}
}

// stateLocked builds a snapshot. Must be called with g.mu held.
func (g *gameInstance) stateLocked() GameState {
	b := g.engine.Board()
	outcome := g.gameContext.Outcome
	return GameState{
		GameID:     g.id,
		Player:     g.player,
		Board:      b,
		Moves:      g.gameContext.Moves,
		MaxMoves:   g.maxMoves,
		Score:      b.Sum(),
		MaxTile:    b.MaxTile(),
		Won:        g.engine.IsWon(),
		Stuck:      g.engine.IsStuck(),
		Over:       outcome != "",
		Outcome:    outcome,
		Phase:      g.stateMachine.CurrentPhase().String(),
		LegalMoves: rules.LegalMoveCodes(b),
	}
}
