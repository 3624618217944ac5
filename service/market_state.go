package service

import (
	"sync"
	"sync/atomic"

	"talos/domain/book"
)

// MarketState is the cached view of one symbol: the last snapshot and the
// most recent trades, newest first. Each value is immutable once stored, so
// readers never observe a partial write and repeated reads with no new
// commands return identical results.
type MarketState struct {
	Snapshot     *book.Snapshot `json:"snapshot"`
	RecentTrades []book.Trade   `json:"recentTrades"`
}

// stateCache maps symbol → atomically swappable MarketState. Written only by
// the consumer goroutine; read from anywhere without blocking the writer.
type stateCache struct {
	states sync.Map // string -> *atomic.Pointer[MarketState]
	depth  int      // max recent trades kept per symbol
}

func newStateCache(depth int) *stateCache {
	return &stateCache{depth: depth}
}

func (c *stateCache) cell(symbol string) *atomic.Pointer[MarketState] {
	if p, ok := c.states.Load(symbol); ok {
		return p.(*atomic.Pointer[MarketState])
	}
	p, _ := c.states.LoadOrStore(symbol, new(atomic.Pointer[MarketState]))
	return p.(*atomic.Pointer[MarketState])
}

// put merges the result of one processed command into the symbol's state and
// swaps it in. Consumer goroutine only.
func (c *stateCache) put(snap *book.Snapshot, trades []book.Trade) {
	cell := c.cell(snap.Symbol)
	old := cell.Load()

	recent := make([]book.Trade, 0, c.depth)
	for i := len(trades) - 1; i >= 0 && len(recent) < c.depth; i-- {
		recent = append(recent, trades[i])
	}
	if old != nil {
		for _, t := range old.RecentTrades {
			if len(recent) == c.depth {
				break
			}
			recent = append(recent, t)
		}
	}

	cell.Store(&MarketState{Snapshot: snap, RecentTrades: recent})
}

// get returns the symbol's state. Unknown symbols yield a nil snapshot and
// an empty trade list, not an error.
func (c *stateCache) get(symbol string) MarketState {
	if p, ok := c.states.Load(symbol); ok {
		if st := p.(*atomic.Pointer[MarketState]).Load(); st != nil {
			return *st
		}
	}
	return MarketState{RecentTrades: []book.Trade{}}
}
