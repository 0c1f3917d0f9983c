package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/go2048/internal/config"
	"github.com/mitchelldurbincs/go2048/internal/game/events"
	"github.com/mitchelldurbincs/go2048/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/go2048/internal/history"
	"github.com/mitchelldurbincs/go2048/internal/logging"
	"github.com/mitchelldurbincs/go2048/internal/player"
	"github.com/mitchelldurbincs/go2048/internal/session"
)

// moveSource resolves the profile's strategy. Humans on a terminal get
// arrow-key input; anything else reads lines.
func (a *app) moveSource(strategy string, logger zerolog.Logger) (player.MoveSource, error) {
	if strategy == player.StrategyHuman && a.tty != nil {
		strategy = player.StrategyTerminal
	}
	return player.New(strategy, player.Deps{
		In:       a.stdin,
		Out:      a.stdout,
		Terminal: a.tty,
		Logger:   logger,
	})
}

func isHuman(strategy string) bool {
	return strategy == player.StrategyHuman || strategy == player.StrategyTerminal
}

func (a *app) play(ctx context.Context, cmd *cli.Command) error {
	if err := config.Init(cmd.String("config")); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	name := cmd.String("player")
	profile, err := cfg.Player(name)
	if err != nil {
		return err
	}

	runs := cmd.Int("runs")
	if runs < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", runs)
	}

	level := cmd.String("log-level")
	if level == "" {
		level = profile.LogLevel
	}
	if level == "" {
		level = cfg.Logging.Level
	}
	logger := logging.Setup(level, cfg.Logging.Format, a.stderr).
		With().Str("player", name).Logger()

	store, err := history.NewStore(history.ConfigFromSettings(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	bus := events.NewEventBus(logger)
	eventLog := subscribers.NewLoggerSubscriber("play_events", logger, zerolog.DebugLevel)
	eventLog.SetEventFilter([]string{events.TypeGameStarted, events.TypeGameEnded, events.TypeTileSpawned})
	bus.Subscribe(eventLog)

	source, err := a.moveSource(profile.Strategy, logger)
	if err != nil {
		return err
	}

	var seed *int64
	if cmd.IsSet("seed") {
		s := cmd.Int64("seed")
		seed = &s
	}

	sessionCfg := session.Config{
		Player:    name,
		MaxMoves:  profile.MaxMoves,
		Seed:      seed,
		Color:     a.color && !cmd.Bool("no-color"),
		Logger:    logger,
		Publisher: bus,
		Store:     store,
	}
	if isHuman(profile.Strategy) {
		sessionCfg.Out = a.stdout
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := session.NewRunner(sessionCfg, source).Run(ctx, runs)
	a.report(summary)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (a *app) report(summary session.Summary) {
	for i, res := range summary.Results {
		fmt.Fprintf(a.stdout, "game %d: %s after %d moves, score %d, max tile %d\n",
			i+1, res.Outcome, res.Moves, res.Score, res.MaxTile)
	}
	if summary.Played() > 1 {
		fmt.Fprintf(a.stdout, "played %d games: %v\n", summary.Played(), summary.Outcomes())
	}
}
