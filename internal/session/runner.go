package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/go2048/internal/game/rules"
	"github.com/mitchelldurbincs/go2048/internal/player"
)

// Summary describes a batch of games played by a Runner
type Summary struct {
	Results []Result
	// Quit is set when the player stopped the batch early
	Quit bool
}

// Played returns the number of games that reached a final outcome
func (s Summary) Played() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome != rules.OutcomeQuit {
			n++
		}
	}
	return n
}

// Outcomes counts finished games by outcome name
func (s Summary) Outcomes() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Results {
		counts[r.Outcome.String()]++
	}
	return counts
}

// Runner plays a number of games in a row with one session
type Runner struct {
	cfg    Config
	source player.MoveSource
	logger zerolog.Logger
}

// NewRunner creates a runner. When cfg.Seed is set, game i is seeded with
// *cfg.Seed + i so a batch replays exactly.
func NewRunner(cfg Config, source player.MoveSource) *Runner {
	return &Runner{
		cfg:    cfg,
		source: source,
		logger: cfg.Logger.With().Str("component", "Runner").Str("player", cfg.Player).Logger(),
	}
}

func (r *Runner) seedFor(i int) *int64 {
	if r.cfg.Seed == nil {
		return nil
	}
	seed := *r.cfg.Seed + int64(i)
	return &seed
}

// Run plays n games. It stops early when the player quits, when ctx is
// cancelled or when a game fails.
func (r *Runner) Run(ctx context.Context, n int) (Summary, error) {
	var summary Summary
	if n <= 0 {
		return summary, nil
	}

	cfg := r.cfg
	cfg.Seed = r.seedFor(0)
	s := New(cfg, r.source)

	for i := 0; i < n; i++ {
		if i > 0 {
			if err := s.Reset(r.seedFor(i)); err != nil {
				return summary, err
			}
		}

		res, err := s.Play(ctx)
		if err != nil {
			if res.Outcome == rules.OutcomeQuit {
				summary.Results = append(summary.Results, res)
				summary.Quit = true
			}
			return summary, err
		}
		summary.Results = append(summary.Results, res)

		if res.Outcome == rules.OutcomeQuit {
			summary.Quit = true
			r.logger.Info().Int("game", i+1).Msg("Player quit, stopping runs")
			break
		}

		r.logger.Info().
			Int("game", i+1).
			Int("of", n).
			Str("outcome", res.Outcome.String()).
			Int("moves", res.Moves).
			Uint32("max_tile", res.MaxTile).
			Msg("Game finished")
	}

	return summary, nil
}
