package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/go2048/internal/game/events"
)

// maxHistory bounds the transitions kept per machine
const maxHistory = 64

// Transition is one recorded phase change
type Transition struct {
	From      GamePhase
	To        GamePhase
	Timestamp time.Time
	Reason    string
}

// StateMachine drives one game through its phases. Every transition is
// checked against the phase graph and the target's Validate hook, then
// published as a StateTransitionEvent.
type StateMachine struct {
	mu        sync.RWMutex
	phase     GamePhase
	states    map[GamePhase]State
	ctx       *GameContext
	history   []Transition
	publisher events.Publisher
}

// NewStateMachine starts in PhaseInitializing. publisher may be nil.
func NewStateMachine(ctx *GameContext, publisher events.Publisher) *StateMachine {
	sm := &StateMachine{
		phase:     PhaseInitializing,
		states:    make(map[GamePhase]State),
		ctx:       ctx,
		publisher: publisher,
	}
	for _, s := range defaultStates() {
		sm.states[s.Phase()] = s
	}
	return sm
}

// RegisterState replaces the hooks for state.Phase()
func (sm *StateMachine) RegisterState(state State) {
	sm.mu.Lock()
	sm.states[state.Phase()] = state
	sm.mu.Unlock()
}

func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase
}

func (sm *StateMachine) CanTransitionTo(target GamePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase.CanTransitionTo(target)
}

// TransitionTo moves the game to target. On any error the phase is unchanged.
func (sm *StateMachine) TransitionTo(target GamePhase, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.step(target, reason)
}

func (sm *StateMachine) step(target GamePhase, reason string) error {
	from := sm.phase
	if !from.CanTransitionTo(target) {
		return fmt.Errorf("invalid transition from %s to %s", from, target)
	}
	next, ok := sm.states[target]
	if !ok {
		return fmt.Errorf("no state implementation for phase %s", target)
	}
	if err := next.Validate(sm.ctx); err != nil {
		return fmt.Errorf("cannot enter %s: %w", target, err)
	}

	// An exit failure is logged but does not block the move
	if cur, ok := sm.states[from]; ok {
		if err := cur.Exit(sm.ctx); err != nil {
			sm.ctx.Logger.Error().Err(err).Stringer("from_phase", from).Stringer("to_phase", target).Msg("Error exiting state")
		}
	}

	sm.phase = target
	if err := next.Enter(sm.ctx); err != nil {
		sm.phase = from
		return fmt.Errorf("failed to enter state %s: %w", target, err)
	}

	sm.history = append(sm.history, Transition{From: from, To: target, Timestamp: time.Now(), Reason: reason})
	if n := len(sm.history); n > maxHistory {
		sm.history = append(sm.history[:0], sm.history[n-maxHistory:]...)
	}

	if sm.publisher != nil {
		sm.publisher.Publish(events.NewStateTransitionEvent(sm.ctx.GameID, from.String(), target.String(), reason))
	}
	sm.ctx.Logger.Debug().Stringer("from_phase", from).Stringer("to_phase", target).Str("reason", reason).Msg("Phase changed")
	return nil
}

// GetHistory returns the transitions since the last reset, oldest first
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return append([]Transition(nil), sm.history...)
}

func (sm *StateMachine) GetContext() *GameContext {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.ctx
}

// Reset discards the current game and returns to PhaseInitializing through
// PhaseReset. It fails while a record is being saved.
func (sm *StateMachine) Reset(reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch sm.phase {
	case PhaseInitializing:
	case PhaseReset:
		if err := sm.step(PhaseInitializing, reason); err != nil {
			return err
		}
	default:
		if err := sm.step(PhaseReset, reason); err != nil {
			return err
		}
		if err := sm.step(PhaseInitializing, reason); err != nil {
			return err
		}
	}
	sm.history = sm.history[:0]
	return nil
}
