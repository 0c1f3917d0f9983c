// Package session runs games of 2048: it asks a move source for moves, applies
// them to an engine, decides when the game is over and records the result.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/go2048/internal/game"
	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/game/events"
	"github.com/mitchelldurbincs/go2048/internal/game/rules"
	"github.com/mitchelldurbincs/go2048/internal/game/states"
	"github.com/mitchelldurbincs/go2048/internal/history"
	"github.com/mitchelldurbincs/go2048/internal/player"
)

// ErrNotReady is returned by Play when the previous game has not been reset
var ErrNotReady = errors.New("session has no fresh game, call Reset")

// Config describes one player's games
type Config struct {
	// Player is the player type the games are recorded under
	Player string
	// MaxMoves ends a game after this many accepted moves; zero or less means unlimited
	MaxMoves int
	// Seed seeds the engine's RNG; nil seeds from the clock
	Seed *int64
	// Out receives the rendered board before every move request; nil disables rendering
	Out   io.Writer
	Color bool

	Logger    zerolog.Logger
	Publisher events.Publisher
	// Store receives finished games; nil discards them
	Store history.Store
}

// Result is how one game ended. Record is nil when the player quit.
type Result struct {
	GameID  string
	Outcome rules.Outcome
	Moves   int
	Score   uint64
	MaxTile uint32
	Record  *history.GameRecord
}

// Session drives one game at a time for a single move source
type Session struct {
	cfg     Config
	source  player.MoveSource
	logger  zerolog.Logger
	checker *rules.WinConditionChecker

	engine    *game.Engine
	record    *history.GameRecord
	available []core.Direction
	gctx      *states.GameContext
	machine   *states.StateMachine
}

// New creates a session and deals its first board
func New(cfg Config, source player.MoveSource) *Session {
	if cfg.Store == nil {
		cfg.Store = history.NullStore{}
	}

	logger := cfg.Logger.With().Str("component", "Session").Str("player", cfg.Player).Logger()
	s := &Session{
		cfg:     cfg,
		source:  source,
		logger:  logger,
		checker: rules.NewWinConditionChecker(cfg.Logger),
	}

	gameID := uuid.NewString()
	s.gctx = states.NewGameContext(gameID, cfg.Player, cfg.MaxMoves, logger)
	s.machine = states.NewStateMachine(s.gctx, cfg.Publisher)
	s.deal(gameID, cfg.Seed)
	return s
}

func (s *Session) deal(gameID string, seed *int64) {
	s.engine = game.NewEngine(game.GameConfig{
		GameID:    gameID,
		Player:    s.cfg.Player,
		Rng:       game.NewRNG(seed),
		Logger:    s.cfg.Logger,
		Publisher: s.cfg.Publisher,
	})
	s.record = history.NewRecord(gameID, s.cfg.Player, s.engine.Board(), seed)
	s.available = core.AllDirections[:]
}

// Reset discards the current game without saving it and deals a new board
// seeded with seed
func (s *Session) Reset(seed *int64) error {
	if err := s.machine.Reset("new game"); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}

	gameID := uuid.NewString()
	s.gctx.GameID = gameID
	s.gctx.Logger = s.logger.With().Str("game_id", gameID).Logger()
	s.deal(gameID, seed)
	return nil
}

// Engine returns the engine of the current game
func (s *Session) Engine() *game.Engine { return s.engine }

// Phase returns the lifecycle phase of the current game
func (s *Session) Phase() states.GamePhase { return s.machine.CurrentPhase() }

// Moves returns the number of accepted moves in the current game
func (s *Session) Moves() int { return s.gctx.Moves }

// Play runs the current game to its end. A finished game is saved to the
// store; a quit game is discarded and the session is reset to a fresh board.
// A cancelled context is treated like a quit and returns ctx.Err().
func (s *Session) Play(ctx context.Context) (Result, error) {
	if s.machine.CurrentPhase() != states.PhaseInitializing {
		return Result{}, ErrNotReady
	}
	if err := s.machine.TransitionTo(states.PhaseRunning, "game started"); err != nil {
		return Result{}, err
	}

	logger := s.gctx.Logger
	for {
		if s.cfg.Out != nil {
			fmt.Fprint(s.cfg.Out, s.engine.Render(s.cfg.Color))
		}
		logger.Debug().Msg("Board\n" + s.engine.Render(false))

		if outcome := s.checker.CheckGameOver(s.engine, s.gctx.Moves, s.cfg.MaxMoves); outcome.IsFinal() {
			return s.finish(ctx, outcome)
		}

		req, err := s.source.NextMove(ctx, s.view())
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				res := s.quit()
				return res, ctxErr
			}
			return Result{}, s.fail(err)
		}
		if req.Quit {
			logger.Info().Int("moves", s.gctx.Moves).Msg("Player quit, game discarded")
			return s.quit(), nil
		}

		d := core.Direction(req.Code)
		moved, err := s.engine.Move(d)
		if err != nil {
			if errors.Is(err, core.ErrInvalidDirection) {
				logger.Warn().Int("code", req.Code).Msg("Move not recognised")
				continue
			}
			return Result{}, s.fail(err)
		}
		if !moved {
			logger.Info().Str("direction", d.String()).Msg("Squares must move")
			s.prune(d)
			continue
		}

		s.gctx.CountMove()
		s.record.Append(s.engine.Board())
		s.available = core.AllDirections[:]
		logger.Info().
			Str("direction", d.String()).
			Int("moves", s.gctx.Moves).
			Uint64("score", s.engine.Score()).
			Msg("Move accepted")
	}
}

func (s *Session) view() player.View {
	available := make([]core.Direction, len(s.available))
	copy(available, s.available)
	return player.View{
		Board:     s.engine.Board(),
		Moves:     s.gctx.Moves,
		MaxMoves:  s.cfg.MaxMoves,
		Available: available,
	}
}

// prune drops d from the directions still worth trying on this board
func (s *Session) prune(d core.Direction) {
	next := make([]core.Direction, 0, len(s.available))
	for _, a := range s.available {
		if a != d {
			next = append(next, a)
		}
	}
	s.available = next
}

func (s *Session) result(outcome rules.Outcome) Result {
	return Result{
		GameID:  s.engine.GameID(),
		Outcome: outcome,
		Moves:   s.gctx.Moves,
		Score:   s.engine.Score(),
		MaxTile: s.engine.MaxTile(),
	}
}

func (s *Session) finish(ctx context.Context, outcome rules.Outcome) (Result, error) {
	s.gctx.Outcome = outcome.String()
	if err := s.machine.TransitionTo(states.PhaseEnding, outcome.String()); err != nil {
		return Result{}, err
	}

	res := s.result(outcome)
	s.record.Finish(outcome.String())
	res.Record = s.record

	if err := s.cfg.Store.Save(ctx, s.record); err != nil {
		return res, s.fail(fmt.Errorf("failed to save game %s: %w", s.record.ID, err))
	}

	if s.cfg.Publisher != nil {
		s.cfg.Publisher.Publish(events.NewGameEndedEvent(
			res.GameID, outcome.String(), res.Moves, res.Score, res.MaxTile, s.gctx.GetElapsedTime(),
		))
	}

	if err := s.machine.TransitionTo(states.PhaseEnded, "record saved"); err != nil {
		return res, err
	}

	stats := s.engine.Stats()
	s.gctx.Logger.Info().
		Str("outcome", outcome.String()).
		Int("moves", res.Moves).
		Uint64("score", res.Score).
		Uint32("max_tile", res.MaxTile).
		Int("empty_cells", stats.EmptyCells).
		Interface("tiles", stats.TileCounts).
		Msg("Game over")
	return res, nil
}

func (s *Session) quit() Result {
	res := s.result(rules.OutcomeQuit)
	if err := s.Reset(s.cfg.Seed); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reset after quit")
	}
	return res
}

func (s *Session) fail(err error) error {
	s.gctx.Error = err
	if tErr := s.machine.TransitionTo(states.PhaseError, err.Error()); tErr != nil {
		s.logger.Error().Err(tErr).Msg("Failed to enter error state")
	}
	return err
}
