package gameserver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNoDeadlock runs cleanup while games are created, moved and read
func TestNoDeadlock(t *testing.T) {
	cfg := testManagerConfig()
	cfg.MaxGames = 0
	cfg.IdleTimeout = time.Nanosecond
	gm, _ := newTestManager(t, cfg, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			gm.cleanupGames()
			time.Sleep(time.Millisecond)
		}
	}()

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				state, err := gm.CreateGame("", nil)
				if err != nil {
					continue
				}
				// The game may already have been evicted; both outcomes are fine
				_, _ = gm.Move(context.Background(), state.GameID, state.LegalMoves[0], "")
				_, _ = gm.GetState(state.GameID)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Deadlock detected")
	}
}

func TestConcurrentGameAccess(t *testing.T) {
	gm, _ := newTestManager(t, testManagerConfig(), nil)
	state, err := gm.CreateGame("", nil)
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	moved := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				current, err := gm.GetState(state.GameID)
				if err != nil || current.Over || len(current.LegalMoves) == 0 {
					return
				}
				res, err := gm.Move(context.Background(), state.GameID, current.LegalMoves[0], "")
				if err != nil {
					return
				}
				if res.Moved {
					mu.Lock()
					moved++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	final, err := gm.GetState(state.GameID)
	require.NoError(t, err)
	assert.Equal(t, moved, final.Moves, "every accepted move is counted exactly once")
}
