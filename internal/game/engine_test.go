package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/game/events"
	"github.com/mitchelldurbincs/go2048/internal/testutil"
)

// Helper to create a deterministic RNG for tests
func newTestRNG() *rand.Rand {
	return testutil.NewTestRNG(testutil.DefaultSeed)
}

func newTestEngine(t *testing.T, b core.Board) *Engine {
	t.Helper()
	e, err := NewEngineFromBoard(GameConfig{
		GameID: "test-game",
		Rng:    newTestRNG(),
		Logger: zerolog.New(zerolog.NewTestWriter(t)),
	}, b)
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	e := NewEngine(GameConfig{Rng: newTestRNG(), Logger: zerolog.Nop()})

	require.NotNil(t, e)
	assert.NotEmpty(t, e.GameID(), "a game id should be generated")
	assert.Equal(t, 1, e.Board().TileCount(), "one tile is dealt at start")
	assert.Contains(t, []uint32{2, 4}, e.MaxTile())
	assert.False(t, e.IsOver())
}

func TestNewEngine_Deterministic(t *testing.T) {
	seed := int64(99)
	a := NewEngine(GameConfig{Rng: NewRNG(&seed)})
	b := NewEngine(GameConfig{Rng: NewRNG(&seed)})
	assert.Equal(t, a.Board(), b.Board())

	for _, d := range []core.Direction{core.Left, core.Up, core.Right, core.Down, core.Left} {
		_, errA := a.Move(d)
		_, errB := b.Move(d)
		require.NoError(t, errA)
		require.NoError(t, errB)
	}
	assert.Equal(t, a.Board(), b.Board())
}

func TestNewEngineFromBoard_RejectsInvalidTiles(t *testing.T) {
	_, err := NewEngineFromBoard(GameConfig{}, core.Board{{3}})
	assert.True(t, errors.Is(err, core.ErrInvalidTile))
}

func TestEngine_Move_MergeAndSpawn(t *testing.T) {
	e := newTestEngine(t, core.Board{{2, 2}})

	moved, err := e.Move(core.Left)
	require.NoError(t, err)
	assert.True(t, moved)

	b := e.Board()
	assert.Equal(t, uint32(4), b[0][0], "row compacts to [4,0,0,0]")
	assert.Equal(t, 2, b.TileCount(), "exactly one new tile appears")

	compacted := core.Board{{4}}
	assert.Equal(t, 1, testutil.CountDiff(compacted, b))
	spawned := b.Sum() - compacted.Sum()
	assert.Contains(t, []uint64{2, 4}, spawned)
}

func TestEngine_Move_NoChange(t *testing.T) {
	start := core.Board{{2, 4, 2, 4}}
	e := newTestEngine(t, start)

	moved, err := e.Move(core.Left)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, start, e.Board(), "no spawn on a rejected move")

	moved, err = e.Move(core.Up)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, start, e.Board())
}

func TestEngine_Move_InvalidDirection(t *testing.T) {
	start := core.Board{{2}}
	e := newTestEngine(t, start)

	for _, code := range []int{-1, 4, 42} {
		moved, err := e.Move(core.Direction(code))
		assert.False(t, moved)
		assert.True(t, errors.Is(err, core.ErrInvalidDirection))
	}
	assert.Equal(t, start, e.Board())
}

func TestEngine_SpawnTile(t *testing.T) {
	t.Run("fills an empty cell with 2 or 4", func(t *testing.T) {
		e := newTestEngine(t, core.Board{})
		cell, value, err := e.SpawnTile()
		require.NoError(t, err)
		assert.True(t, cell.IsValid())
		assert.Contains(t, []uint32{2, 4}, value)
		assert.Equal(t, value, e.Board().At(cell))
	})

	t.Run("full board", func(t *testing.T) {
		e := newTestEngine(t, testutil.StuckBoard())
		_, _, err := e.SpawnTile()
		assert.True(t, errors.Is(err, core.ErrNoEmptyCell))
		assert.Equal(t, testutil.StuckBoard(), e.Board())
	})

	t.Run("only empty cell is chosen", func(t *testing.T) {
		b := testutil.StuckBoard()
		b[2][1] = 0
		e := newTestEngine(t, b)
		cell, _, err := e.SpawnTile()
		require.NoError(t, err)
		assert.Equal(t, core.NewCell(2, 1), cell)
	})

	t.Run("both values appear", func(t *testing.T) {
		e := newTestEngine(t, core.Board{})
		seen := map[uint32]int{}
		for i := 0; i < 200; i++ {
			e.board = core.Board{}
			_, v, err := e.SpawnTile()
			require.NoError(t, err)
			seen[v]++
		}
		assert.Len(t, seen, 2)
		assert.Greater(t, seen[2], 50)
		assert.Greater(t, seen[4], 50)
	})
}

func TestEngine_TerminalPredicates(t *testing.T) {
	tests := []struct {
		name  string
		board core.Board
		won   bool
		stuck bool
	}{
		{"empty board", core.Board{}, false, false},
		{"stuck board", testutil.StuckBoard(), false, true},
		{"full board with a merge", testutil.NearlyStuckBoard(), false, false},
		{"2048 with empty cells", testutil.WonBoard(), true, false},
		{"4096 is not a win", core.Board{{4096}}, false, false},
		{"1024 is not a win", core.Board{{1024, 1024}}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.board)
			assert.Equal(t, tt.won, e.IsWon())
			assert.Equal(t, tt.stuck, e.IsStuck())
			assert.Equal(t, tt.won || tt.stuck, e.IsOver())
			assert.Equal(t, tt.board, e.Board(), "predicates must not mutate the board")
		})
	}
}

func TestEngine_IsStuck_FalseWithEmptyCell(t *testing.T) {
	b := testutil.StuckBoard()
	for _, c := range (core.Board{}).EmptyCells() {
		holed := b
		holed[c.Row][c.Col] = 0
		e := newTestEngine(t, holed)
		assert.False(t, e.IsStuck(), "cell %s empty", c)
	}
}

func TestEngine_ReachesWin(t *testing.T) {
	e := newTestEngine(t, testutil.AlmostWonBoard())
	moved, err := e.Move(core.Left)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.True(t, e.IsWon())
	assert.True(t, e.IsOver())
	assert.Equal(t, uint32(2048), e.MaxTile())
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t, testutil.StuckBoard())
	e.Reset()
	assert.Equal(t, 1, e.Board().TileCount())
	assert.False(t, e.IsOver())
}

func TestEngine_Events(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())

	var types []string
	for _, et := range []string{events.TypeMoveApplied, events.TypeMoveRejected, events.TypeTileSpawned} {
		bus.SubscribeFunc(et, func(ev events.Event) { types = append(types, ev.Type()) })
	}

	e, err := NewEngineFromBoard(GameConfig{
		GameID:    "test-game",
		Rng:       newTestRNG(),
		Logger:    zerolog.Nop(),
		Publisher: bus,
	}, core.Board{{2, 2}})
	require.NoError(t, err)

	_, err = e.Move(core.Left)
	require.NoError(t, err)
	_, _ = e.Move(core.Direction(9))

	assert.Equal(t, []string{events.TypeMoveApplied, events.TypeTileSpawned, events.TypeMoveRejected}, types)
}

// slideByHand moves every line of b toward the edge d points at, walking
// the cells one by one instead of rotating the board
func slideByHand(b core.Board, d core.Direction) core.Board {
	var out core.Board
	for i := 0; i < core.Size; i++ {
		var cells [core.Size][2]int
		for k := 0; k < core.Size; k++ {
			switch d {
			case core.Up:
				cells[k] = [2]int{k, i}
			case core.Down:
				cells[k] = [2]int{core.Size - 1 - k, i}
			case core.Left:
				cells[k] = [2]int{i, k}
			case core.Right:
				cells[k] = [2]int{i, core.Size - 1 - k}
			}
		}

		var tiles []uint32
		merged := false
		for _, c := range cells {
			v := b[c[0]][c[1]]
			if v == 0 {
				continue
			}
			if n := len(tiles); n > 0 && !merged && tiles[n-1] == v {
				tiles[n-1] *= 2
				merged = true
				continue
			}
			tiles = append(tiles, v)
			merged = false
		}
		for k, v := range tiles {
			out[cells[k][0]][cells[k][1]] = v
		}
	}
	return out
}

// randomBoard fills a board with tiles up to 2048. Half the boards are full
// so stuck positions come up regularly.
func randomBoard(rng *rand.Rand) core.Board {
	var b core.Board
	full := rng.Intn(2) == 0
	maxExp := 1 + rng.Intn(11)
	for r := range b {
		for c := range b[r] {
			if !full && rng.Intn(3) == 0 {
				continue
			}
			b[r][c] = 1 << (1 + rng.Intn(maxExp))
		}
	}
	return b
}

func TestEngine_MoveProperties(t *testing.T) {
	boards := 20000
	if testing.Short() {
		boards = 2000
	}
	rng := testutil.NewTestRNG(testutil.DefaultSeed)

	stuckSeen := 0
	for i := 0; i < boards; i++ {
		b := randomBoard(rng)
		anyChange := false

		for _, d := range core.AllDirections {
			e, err := NewEngineFromBoard(GameConfig{GameID: "random-board", Rng: rng, Logger: zerolog.Nop()}, b)
			require.NoError(t, err)

			want := slideByHand(b, d)
			moved, err := e.Move(d)
			require.NoError(t, err)

			if want == b {
				require.False(t, moved, "board %v dir %s", b, d)
				require.Equal(t, b, e.Board(), "a rejected move leaves the board alone")
				continue
			}
			anyChange = true
			require.True(t, moved, "board %v dir %s", b, d)

			got := e.Board()
			require.Equal(t, 1, testutil.CountDiff(want, got), "compacted board plus one tile: %v dir %s", b, d)
			for r := range got {
				for c := range got[r] {
					if got[r][c] != want[r][c] {
						assert.Zero(t, want[r][c])
						assert.Contains(t, []uint32{2, 4}, got[r][c])
					}
				}
			}
		}

		e, err := NewEngineFromBoard(GameConfig{GameID: "random-board", Rng: rng, Logger: zerolog.Nop()}, b)
		require.NoError(t, err)
		stuck := !b.HasEmpty() && !anyChange
		require.Equal(t, stuck, e.IsStuck(), "board %v", b)
		require.Equal(t, b, e.Board(), "IsStuck does not modify the board")
		if stuck {
			stuckSeen++
		}
	}
	assert.Positive(t, stuckSeen, "the generator should produce some stuck boards")
}

func TestEngine_Stats(t *testing.T) {
	e := newTestEngine(t, core.Board{{2, 2, 4}, {8}})
	s := e.Stats()
	assert.Equal(t, uint64(16), s.Score)
	assert.Equal(t, uint32(8), s.MaxTile)
	assert.Equal(t, 12, s.EmptyCells)
	assert.Equal(t, map[uint32]int{2: 2, 4: 1, 8: 1}, s.TileCounts)
	assert.Equal(t, []core.Direction{core.Right, core.Down, core.Left}, s.LegalMoves)
}

func TestRenderBoard(t *testing.T) {
	b := core.Board{{2, 16, 128, 2048}}
	out := RenderBoard(b, false)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2*core.Size+1)
	assert.Equal(t, "   -    -    -    -  ", lines[0])
	assert.Equal(t, "|  2   16   128 2048 |", lines[1])
	assert.Equal(t, "|  0    0    0    0  |", lines[3])

	colored := newTestEngine(t, b).Render(true)
	assert.Contains(t, colored, "\033[")
	assert.Contains(t, colored, "2048")
}
