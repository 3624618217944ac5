package sequence

import (
	"errors"
	"fmt"
	"sync/atomic"

	"talos/domain/book"
)

var (
	// ErrClosed is returned once the ring has been closed and no further
	// commands will be sequenced or delivered.
	ErrClosed = errors.New("sequence: ring closed")
)

type slot struct {
	// ready holds the sequence last published into this slot, -1 before
	// first use. The envelope is written before the ready store, so a
	// consumer that observes ready == seq also observes the envelope.
	ready atomic.Int64
	env   *book.Envelope
}

// Ring is a bounded multi-producer/single-consumer command queue.
//
// Producers claim a globally unique, strictly increasing sequence, publish
// their envelope into the slot seq&mask, and block (spin/park) whenever the
// claimed sequence would lap the consumer by more than the capacity. The one
// consumer observes sequences strictly in order.
//
// There is no timeout: a stalled consumer stalls every producer. That is a
// deliberate property of the design, not a bug.
type Ring struct {
	next  atomic.Int64 // next sequence to hand out
	_pad1 [56]byte
	// consumed is the last sequence the consumer finished with, -1 at start.
	consumed atomic.Int64
	_pad2    [56]byte

	closed atomic.Bool

	slots []slot
	mask  int64
	wait  WaitStrategy
}

// NewRing allocates a ring of the given capacity, which must be a power of
// two so that slot index = seq & (capacity-1).
func NewRing(capacity int, wait WaitStrategy) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("sequence: capacity %d is not a power of two", capacity)
	}
	r := &Ring{
		slots: make([]slot, capacity),
		mask:  int64(capacity - 1),
		wait:  wait,
	}
	r.consumed.Store(-1)
	for i := range r.slots {
		r.slots[i].ready.Store(-1)
	}
	return r, nil
}

func (r *Ring) Capacity() int { return len(r.slots) }

// Claim reserves the next sequence number. It blocks while the sequence
// would reuse a slot the consumer has not yet freed, and fails only once the
// ring has been closed.
func (r *Ring) Claim() (int64, error) {
	seq := r.next.Add(1) - 1
	attempt := 0
	for seq-r.consumed.Load() > int64(len(r.slots)) {
		if r.closed.Load() {
			return 0, ErrClosed
		}
		attempt = r.wait.Wait(attempt)
	}
	return seq, nil
}

// Publish stores the envelope for a claimed sequence and marks the slot
// ready. The envelope contents are visible to the consumer before the mark.
func (r *Ring) Publish(seq int64, env *book.Envelope) {
	s := &r.slots[seq&r.mask]
	s.env = env
	s.ready.Store(seq)
}

// WaitFor blocks until the given sequence has been published, returning its
// envelope. It returns ErrClosed once the ring is closed and the sequence is
// still unpublished. Consumer-side only.
func (r *Ring) WaitFor(seq int64) (*book.Envelope, error) {
	s := &r.slots[seq&r.mask]
	attempt := 0
	for s.ready.Load() != seq {
		if r.closed.Load() && s.ready.Load() != seq {
			return nil, ErrClosed
		}
		attempt = r.wait.Wait(attempt)
	}
	return s.env, nil
}

// MarkConsumed frees the slot of a fully processed sequence and advances the
// consumed cursor so producers may reuse it. Consumer-side only, and must be
// called in sequence order.
func (r *Ring) MarkConsumed(seq int64) {
	r.slots[seq&r.mask].env = nil
	r.consumed.Store(seq)
}

// Close unblocks the waiting consumer and any producer stuck on a full ring.
// Idempotent.
func (r *Ring) Close() {
	r.closed.Store(true)
}
