// Package engine routes sequenced commands to per-symbol order books.
//
// It is driven by exactly one goroutine (the service's consumer loop) and so
// holds no locks of its own. Its only coupling to the outside world is the
// publish callback handed in at construction.
package engine

import (
	"go.uber.org/zap"

	"talos/domain/book"
)

// PublishFunc receives the snapshot and trades produced by one processed
// command.
type PublishFunc func(snap *book.Snapshot, trades []book.Trade)

// Engine owns the symbol → order book mapping. Books are created lazily on
// the first order for a symbol.
type Engine struct {
	books   map[string]*book.OrderBook
	depth   int
	publish PublishFunc
	log     *zap.Logger
}

func New(depth int, publish PublishFunc, log *zap.Logger) *Engine {
	return &Engine{
		books:   make(map[string]*book.OrderBook),
		depth:   depth,
		publish: publish,
		log:     log,
	}
}

// Route processes one sequenced command: match against the symbol's book,
// build the top-of-book snapshot at the command's sequence, and hand both to
// the publish callback.
func (e *Engine) Route(env *book.Envelope) {
	o := env.Order
	b := e.books[o.Symbol]
	if b == nil {
		b = book.NewOrderBook(o.Symbol)
		e.books[o.Symbol] = b
		e.log.Info("order book created", zap.String("symbol", o.Symbol))
	}

	trades := b.Process(o)
	snap := b.Snapshot(env.Seq, e.depth)
	e.publish(snap, trades)
}

// Books reports how many symbols have a live book.
func (e *Engine) Books() int { return len(e.books) }
