package states

import (
	"errors"
	"fmt"
	"time"
)

// State is one lifecycle phase with its hooks. Validate runs before any
// transition into the phase and can veto it.
type State interface {
	Phase() GamePhase
	Enter(ctx *GameContext) error
	Exit(ctx *GameContext) error
	Validate(ctx *GameContext) error
}

// hook is a State built from optional functions
type hook struct {
	phase    GamePhase
	enter    func(*GameContext) error
	exit     func(*GameContext) error
	validate func(*GameContext) error
}

func (h hook) Phase() GamePhase { return h.phase }

func (h hook) Enter(ctx *GameContext) error { return call(h.enter, ctx) }

func (h hook) Exit(ctx *GameContext) error { return call(h.exit, ctx) }

func (h hook) Validate(ctx *GameContext) error { return call(h.validate, ctx) }

func call(fn func(*GameContext) error, ctx *GameContext) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

var (
	errOutcomeDecided = errors.New("game already has an outcome")
	errNoOutcome      = errors.New("ending requires an outcome")
	errNoError        = errors.New("error state requires an error in context")
)

func defaultStates() []State {
	return []State{
		hook{phase: PhaseInitializing},
		hook{
			phase: PhaseRunning,
			validate: func(ctx *GameContext) error {
				if ctx.Outcome != "" {
					return fmt.Errorf("%w: %s", errOutcomeDecided, ctx.Outcome)
				}
				if ctx.MoveBudgetExhausted() {
					return fmt.Errorf("move budget of %d already spent", ctx.MaxMoves)
				}
				return nil
			},
			enter: func(ctx *GameContext) error {
				ctx.StartTime = time.Now()
				ctx.Logger.Debug().Str("player", ctx.Player).Int("max_moves", ctx.MaxMoves).Msg("Game started")
				return nil
			},
		},
		hook{
			phase: PhaseEnding,
			validate: func(ctx *GameContext) error {
				if ctx.Outcome == "" {
					return errNoOutcome
				}
				return nil
			},
		},
		hook{
			phase: PhaseEnded,
			enter: func(ctx *GameContext) error {
				ctx.Logger.Debug().
					Str("outcome", ctx.Outcome).
					Int("moves", ctx.Moves).
					Dur("game_duration", ctx.GetElapsedTime()).
					Msg("Game ended")
				return nil
			},
		},
		hook{
			phase: PhaseError,
			validate: func(ctx *GameContext) error {
				if ctx.Error == nil {
					return errNoError
				}
				return nil
			},
			enter: func(ctx *GameContext) error {
				ctx.Logger.Error().Err(ctx.Error).Int("moves", ctx.Moves).Msg("Game failed")
				return nil
			},
		},
		hook{
			phase: PhaseReset,
			enter: func(ctx *GameContext) error {
				ctx.Logger.Debug().Int("moves", ctx.Moves).Str("outcome", ctx.Outcome).Msg("Discarding board")
				ctx.clear()
				return nil
			},
		},
	}
}
