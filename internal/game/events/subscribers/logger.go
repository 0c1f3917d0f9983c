package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/go2048/internal/game/events"
)

// LoggerSubscriber writes one structured log line per game event
type LoggerSubscriber struct {
	id      string
	logger  zerolog.Logger
	level   zerolog.Level
	only    map[string]bool
	devMode bool
}

// NewLoggerSubscriber logs every event at level until SetEventFilter narrows
// it. Rejected moves are never logged below warn.
func NewLoggerSubscriber(id string, logger zerolog.Logger, level zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:     id,
		logger: logger.With().Str("subscriber", "event_logger").Logger(),
		level:  level,
	}
}

func (ls *LoggerSubscriber) ID() string { return ls.id }

// SetEventFilter restricts logging to eventTypes. An empty list logs all.
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	ls.only = nil
	if len(eventTypes) == 0 {
		return
	}
	ls.only = make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		ls.only[t] = true
	}
}

// SetDevMode attaches the whole event as event_data
func (ls *LoggerSubscriber) SetDevMode(enabled bool) { ls.devMode = enabled }

func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	return ls.only == nil || ls.only[eventType]
}

func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	level := ls.level
	if event.Type() == events.TypeMoveRejected && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}

	line := ls.logger.WithLevel(level).
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp())

	msg := "Game event"
	switch e := event.(type) {
	case *events.GameStartedEvent:
		msg = "Board dealt"
		line.Str("player", e.Player).Int("tiles", e.Board.TileCount())
	case *events.MoveAppliedEvent:
		msg = "Move applied"
		line.Stringer("direction", e.Direction).Uint64("score", e.Score).Uint32("max_tile", e.Board.MaxTile())
	case *events.MoveRejectedEvent:
		msg = "Move rejected"
		line.Int("code", e.Code).Str("reason", e.Reason)
	case *events.TileSpawnedEvent:
		msg = "Tile spawned"
		line.Int("row", e.Cell.Row).Int("col", e.Cell.Col).Uint32("value", e.Value)
	case *events.GameEndedEvent:
		msg = "Game finished"
		line.Str("outcome", e.Outcome).
			Int("moves", e.Moves).
			Uint64("score", e.Score).
			Uint32("max_tile", e.MaxTile).
			Dur("duration", e.Duration)
	case *events.StateTransitionEvent:
		msg = "Phase changed"
		line.Str("from", e.FromPhase).Str("to", e.ToPhase).Str("reason", e.Reason)
	}

	if ls.devMode {
		if raw, err := json.Marshal(event); err == nil {
			line.RawJSON("event_data", raw)
		}
	}
	line.Msg(msg)
}
