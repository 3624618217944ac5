// Package archive persists market data to a local pebble store: the latest
// snapshot per symbol and an append-only trade journal.
//
// It is a downstream sink for auditing and external consumers. The engine
// never reads its own book back from here.
package archive

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"talos/domain/book"
)

// ErrNoSnapshot is returned when a symbol has no archived snapshot yet.
var ErrNoSnapshot = errors.New("archive: no snapshot for symbol")

type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// keys: s:<symbol> latest snapshot, t:<symbol>:<8-byte big-endian trade id>
func kSnapshot(symbol string) []byte {
	return []byte("s:" + symbol)
}

func kTrade(symbol string, id int64) []byte {
	key := make([]byte, 0, len(symbol)+11)
	key = append(key, 't', ':')
	key = append(key, symbol...)
	key = append(key, ':')
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return append(key, buf[:]...)
}

// Publish writes the latest snapshot and appends the trades in one batch.
func (s *Store) Publish(snap *book.Snapshot, trades []book.Trade) error {
	b := s.db.NewBatch()
	defer b.Close()

	val, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := b.Set(kSnapshot(snap.Symbol), val, nil); err != nil {
		return err
	}
	for _, t := range trades {
		tv, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if err := b.Set(kTrade(t.Symbol, t.ID), tv, nil); err != nil {
			return err
		}
	}
	return s.db.Apply(b, pebble.Sync)
}

// LastSnapshot returns the most recently archived snapshot for a symbol.
func (s *Store) LastSnapshot(symbol string) (*book.Snapshot, error) {
	val, closer, err := s.db.Get(kSnapshot(symbol))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	defer closer.Close()

	var snap book.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Trades returns up to limit archived trades for a symbol, newest first.
func (s *Store) Trades(symbol string, limit int) ([]book.Trade, error) {
	lower := []byte("t:" + symbol + ":")
	upper := append(append([]byte{}, lower...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]book.Trade, 0, limit)
	for ok := iter.Last(); ok && len(out) < limit; ok = iter.Prev() {
		var t book.Trade
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, iter.Error()
}
