package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

const prompt = "Make a move: "

var keyAliases = map[string]core.Direction{
	"w": core.Up,
	"d": core.Right,
	"s": core.Down,
	"a": core.Left,
}

// ParseInput turns a line of user input into a request. Direction names,
// WASD keys and raw numeric codes are accepted; numeric codes are passed
// through unchecked so the engine can reject them.
func ParseInput(line string) (MoveRequest, bool) {
	word := strings.ToLower(strings.TrimSpace(line))
	switch word {
	case "q", "quit", "exit":
		return Quit(), true
	}
	if d, ok := core.DirectionFromName(word); ok {
		return Move(d), true
	}
	if d, ok := keyAliases[word]; ok {
		return Move(d), true
	}
	if code, err := strconv.Atoi(word); err == nil {
		return MoveRequest{Code: code}, true
	}
	return MoveRequest{}, false
}

// Human reads one move per line.
type Human struct {
	in     *bufio.Reader
	out    io.Writer
	logger zerolog.Logger
}

func NewHuman(in io.Reader, out io.Writer, logger zerolog.Logger) *Human {
	return &Human{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger.With().Str("component", "HumanInput").Logger(),
	}
}

// NextMove prompts until a recognised line is read. End of input quits.
func (h *Human) NextMove(ctx context.Context, _ View) (MoveRequest, error) {
	for {
		if err := ctx.Err(); err != nil {
			return MoveRequest{}, err
		}

		fmt.Fprint(h.out, prompt)
		line, err := h.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return Quit(), nil
			}
			return MoveRequest{}, fmt.Errorf("read move: %w", err)
		}

		if req, ok := ParseInput(line); ok {
			return req, nil
		}
		h.logger.Warn().
			Str("input", strings.TrimSpace(line)).
			Msg("Not a recognized move; valid moves are up, right, down, or left")
	}
}

// TerminalHuman reads arrow keys from a terminal in raw mode. The terminal is
// only held in raw mode while waiting for a key so logs and the board render
// normally in between.
type TerminalHuman struct {
	f      *os.File
	in     *bufio.Reader
	logger zerolog.Logger
}

// NewTerminalHuman fails when f is not a terminal.
func NewTerminalHuman(f *os.File, logger zerolog.Logger) (*TerminalHuman, error) {
	if !term.IsTerminal(int(f.Fd())) {
		return nil, fmt.Errorf("%s is not a terminal", f.Name())
	}
	return &TerminalHuman{
		f:      f,
		in:     bufio.NewReader(f),
		logger: logger.With().Str("component", "TerminalInput").Logger(),
	}, nil
}

func (h *TerminalHuman) NextMove(ctx context.Context, _ View) (MoveRequest, error) {
	if err := ctx.Err(); err != nil {
		return MoveRequest{}, err
	}

	fd := int(h.f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return MoveRequest{}, fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			h.logger.Error().Err(err).Msg("Failed to restore terminal")
		}
	}()

	for {
		req, ok, err := ReadKey(h.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Quit(), nil
			}
			return MoveRequest{}, err
		}
		if ok {
			return req, nil
		}
		if err := ctx.Err(); err != nil {
			return MoveRequest{}, err
		}
	}
}

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

var arrowKeys = map[byte]core.Direction{
	'A': core.Up,
	'C': core.Right,
	'B': core.Down,
	'D': core.Left,
}

// ReadKey consumes one key press. It returns ok=false for keys that do not
// map to a move so the caller can keep reading.
func ReadKey(r *bufio.Reader) (MoveRequest, bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return MoveRequest{}, false, err
	}

	switch b {
	case keyCtrlC, 'q', 'Q':
		return Quit(), true, nil
	case keyEscape:
		next, err := r.ReadByte()
		if err != nil {
			return MoveRequest{}, false, err
		}
		if next != '[' {
			return MoveRequest{}, false, nil
		}
		code, err := r.ReadByte()
		if err != nil {
			return MoveRequest{}, false, err
		}
		if d, ok := arrowKeys[code]; ok {
			return Move(d), true, nil
		}
		return MoveRequest{}, false, nil
	}

	if d, ok := keyAliases[strings.ToLower(string(b))]; ok {
		return Move(d), true, nil
	}
	return MoveRequest{}, false, nil
}
