package service

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"talos/domain/book"
	"talos/engine"
	"talos/infra/sequence"
)

/*
OrderService is the ONLY write entry point into the engine.

Any number of goroutines call Submit; exactly one consumer goroutine drains
the ring in sequence order and performs every book mutation. That single
writer is what lets the book and the engine run lock-free.
*/

var ErrStopped = errors.New("service: engine stopped")

// SubmitRequest is a validated order submission. Validation (positive price
// and quantity, known side, non-empty symbol) is the caller's job; the core
// does not re-check.
type SubmitRequest struct {
	Symbol   string
	Side     book.Side
	Price    int64
	Quantity int64
}

// Ack is returned to the submitter immediately; matching happens after.
type Ack struct {
	OrderID string `json:"orderId"`
	Seq     int64  `json:"sequence"`
}

type OrderService struct {
	ring  *sequence.Ring
	eng   *engine.Engine
	cache *stateCache
	pub   Publisher
	log   *zap.Logger

	lastSeq atomic.Int64 // last fully processed sequence, -1 at start
	started atomic.Bool
	wg      sync.WaitGroup
}

// NewOrderService wires all dependencies. No globals. No magic.
//
// snapshotDepth bounds the price levels per snapshot side, historyDepth the
// recent trades kept per symbol; both must be positive.
func NewOrderService(
	ring *sequence.Ring,
	snapshotDepth int,
	historyDepth int,
	pub Publisher,
	log *zap.Logger,
) (*OrderService, error) {
	if snapshotDepth <= 0 {
		return nil, fmt.Errorf("service: snapshot depth %d must be positive", snapshotDepth)
	}
	if historyDepth <= 0 {
		return nil, fmt.Errorf("service: history depth %d must be positive", historyDepth)
	}

	s := &OrderService{
		ring:  ring,
		cache: newStateCache(historyDepth),
		pub:   pub,
		log:   log,
	}
	s.lastSeq.Store(-1)
	s.eng = engine.New(snapshotDepth, s.onResult, log)
	return s, nil
}

// Submit assigns an order id, claims a sequence and publishes the command.
// It returns as soon as the command is in the ring; it does not wait for
// matching. Safe for concurrent use.
func (s *OrderService) Submit(req SubmitRequest) (Ack, error) {
	seq, err := s.ring.Claim()
	if err != nil {
		return Ack{}, ErrStopped
	}

	o := &book.Order{
		ID:          uuid.NewV4().String(),
		Symbol:      req.Symbol,
		Side:        req.Side,
		Price:       req.Price,
		Remaining:   req.Quantity,
		SubmittedAt: time.Now().UnixNano(),
		Seq:         seq,
	}
	s.ring.Publish(seq, &book.Envelope{Seq: seq, Order: o})

	return Ack{OrderID: o.ID, Seq: seq}, nil
}

// Start launches the single consumer goroutine. Idempotent.
func (s *OrderService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.consume()
	s.log.Info("matching consumer started")
}

// Stop interrupts the consumer's wait and joins it deterministically. Any
// command already being processed finishes first.
func (s *OrderService) Stop() {
	s.ring.Close()
	s.wg.Wait()
	s.log.Info("matching consumer stopped",
		zap.Int64("lastSeq", s.lastSeq.Load()))
}

// LastProcessedSeq returns the last fully processed sequence, -1 before
// anything has been processed.
func (s *OrderService) LastProcessedSeq() int64 {
	return s.lastSeq.Load()
}

// MarketState is a read-only query of the per-symbol cache. It never blocks
// the writer and repeated calls with no new commands are idempotent.
func (s *OrderService) MarketState(symbol string) MarketState {
	return s.cache.get(symbol)
}

// consume is the single-writer loop. A panic escaping it is fatal for the
// whole engine; there is deliberately no supervisory restart.
func (s *OrderService) consume() {
	defer s.wg.Done()
	next := s.lastSeq.Load() + 1
	for {
		env, err := s.ring.WaitFor(next)
		if err != nil {
			return
		}
		s.eng.Route(env)
		s.lastSeq.Store(next)
		s.ring.MarkConsumed(next)
		next++
	}
}

// onResult runs on the consumer goroutine after each processed command:
// cache first, then the external notification channel.
func (s *OrderService) onResult(snap *book.Snapshot, trades []book.Trade) {
	s.cache.put(snap, trades)
	if s.pub != nil {
		_ = s.pub.Publish(snap, trades)
	}
}
