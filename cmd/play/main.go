package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// app carries the process I/O so commands can be driven from tests
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// tty is set when stdin is an interactive terminal
	tty *os.File
	// color is set when stdout can show ANSI colours
	color bool
}

func newApp(a *app) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play 2048 in the terminal, as a human or a bot",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "player",
				Aliases: []string{"p"},
				Value:   "human",
				Usage:   "player profile from the config (human, bot_v1, test, admin, ...)",
				Local:   true,
			},
			&cli.IntFlag{
				Name:    "runs",
				Aliases: []string{"r"},
				Value:   1,
				Usage:   "number of games to play in a row",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "seed the first game; game i uses seed+i",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "debug, info, warn, error or critical (default: the profile's level)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a config file",
				Local: true,
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "render tiles without ANSI colours",
			},
		},
		Action: a.play,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "print the metrics of every stored game of a player",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "player",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "player profile whose games to list",
					},
					&cli.StringFlag{
						Name:  "outcome",
						Usage: "only list games that ended this way (won, stuck, move_limit)",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "path to a config file",
					},
				},
				Action: a.history,
			},
		},
	}
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		color:  term.IsTerminal(int(os.Stdout.Fd())),
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		a.tty = os.Stdin
	}

	if err := newApp(a).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "play:", err)
		os.Exit(1)
	}
}
