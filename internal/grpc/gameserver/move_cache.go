package gameserver

import (
	"sync"
	"time"
)

const (
	moveCacheTTL   = 24 * time.Hour
	moveCacheLimit = 1000
)

type cachedMove struct {
	result MoveResult
	at     time.Time
}

// MoveCache answers a retried Move with the result of the first attempt.
// Entries are keyed by the client's request id, expire after moveCacheTTL
// and the oldest are evicted beyond moveCacheLimit.
type MoveCache struct {
	mu      sync.Mutex
	entries map[string]cachedMove
	order   []string
	now     func() time.Time
}

func NewMoveCache() *MoveCache {
	return &MoveCache{
		entries: make(map[string]cachedMove),
		now:     time.Now,
	}
}

// Lookup returns the remembered result for requestID. An empty id never hits.
func (c *MoveCache) Lookup(requestID string) (MoveResult, bool) {
	if requestID == "" {
		return MoveResult{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[requestID]
	if !ok {
		return MoveResult{}, false
	}
	if c.now().Sub(e.at) > moveCacheTTL {
		delete(c.entries, requestID)
		return MoveResult{}, false
	}
	return e.result, true
}

func (c *MoveCache) Remember(requestID string, result MoveResult) {
	if requestID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seen := c.entries[requestID]; !seen {
		c.order = append(c.order, requestID)
	}
	c.entries[requestID] = cachedMove{result: result, at: c.now()}

	for len(c.entries) > moveCacheLimit && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	// order may still name ids Lookup already expired
	if len(c.order) > 2*moveCacheLimit {
		live := c.order[:0]
		for _, id := range c.order {
			if _, ok := c.entries[id]; ok {
				live = append(live, id)
			}
		}
		c.order = live
	}
}

func (c *MoveCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
