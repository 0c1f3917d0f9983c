package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/go2048/internal/config"
	"github.com/mitchelldurbincs/go2048/internal/game/rules"
	"github.com/mitchelldurbincs/go2048/internal/history"
)

// history prints one line of metrics per stored game, oldest first
func (a *app) history(ctx context.Context, cmd *cli.Command) error {
	if err := config.Init(cmd.String("config")); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	name := cmd.String("player")
	if _, err := cfg.Player(name); err != nil {
		return err
	}

	var only rules.Outcome
	if name := cmd.String("outcome"); name != "" {
		o, ok := rules.ParseOutcome(name)
		if !ok || !o.IsFinal() || o == rules.OutcomeQuit {
			return fmt.Errorf("--outcome %q is not a recorded outcome", name)
		}
		only = o
	}

	store, err := history.NewStore(history.ConfigFromSettings(cfg), zerolog.Nop())
	if err != nil {
		return err
	}
	records, err := store.List(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%-36s %-10s %s\n", "id", "outcome", strings.Join(history.MetricNames, " "))
	for _, rec := range records {
		if only.IsFinal() && rec.Outcome != only.String() {
			continue
		}
		metrics := history.Metrics(rec)
		values := make([]string, len(history.MetricNames))
		for i, metric := range history.MetricNames {
			values[i] = fmt.Sprint(metrics[metric])
		}
		fmt.Fprintf(a.stdout, "%-36s %-10s %s\n", rec.ID, rec.Outcome, strings.Join(values, " "))
	}
	return nil
}
