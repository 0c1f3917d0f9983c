package player

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"
)

// Strategy names accepted by New
const (
	StrategyHuman          = "human"
	StrategyTerminal       = "terminal"
	StrategyFirstAvailable = "first_available"
	StrategyCycle          = "cycle"
)

// Deps carries the I/O a move source may need.
type Deps struct {
	In       io.Reader
	Out      io.Writer
	Terminal *os.File
	Logger   zerolog.Logger
}

type factory func(Deps) (MoveSource, error)

var strategies = map[string]factory{
	StrategyHuman: func(d Deps) (MoveSource, error) {
		return NewHuman(d.In, d.Out, d.Logger), nil
	},
	StrategyTerminal: func(d Deps) (MoveSource, error) {
		if d.Terminal == nil {
			return nil, fmt.Errorf("%s strategy needs a terminal", StrategyTerminal)
		}
		return NewTerminalHuman(d.Terminal, d.Logger)
	},
	StrategyFirstAvailable: func(Deps) (MoveSource, error) {
		return FirstAvailable{}, nil
	},
	StrategyCycle: func(Deps) (MoveSource, error) {
		return &Cycle{}, nil
	},
}

// New builds the move source registered under strategy.
func New(strategy string, deps Deps) (MoveSource, error) {
	f, ok := strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return f(deps)
}

// Strategies lists the registered strategy names in sorted order.
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
