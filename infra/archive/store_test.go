package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talos/domain/book"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLastSnapshotMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LastSnapshot("BTC-USD")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestPublishThenReadBack(t *testing.T) {
	s := newTestStore(t)

	snap := &book.Snapshot{
		Symbol: "BTC-USD",
		Seq:    3,
		Bids:   []book.PriceLevel{{Price: 100, Qty: 5}},
		Asks:   []book.PriceLevel{},
	}
	trades := []book.Trade{
		{ID: 1, Symbol: "BTC-USD", BuyOrderID: "b", SellOrderID: "s", Price: 100, Qty: 2, Seq: 3},
		{ID: 2, Symbol: "BTC-USD", BuyOrderID: "b", SellOrderID: "s2", Price: 101, Qty: 1, Seq: 3},
	}
	require.NoError(t, s.Publish(snap, trades))

	got, err := s.LastSnapshot("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	hist, err := s.Trades("BTC-USD", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, int64(2), hist[0].ID, "newest first")
	assert.Equal(t, int64(1), hist[1].ID)
}

func TestLatestSnapshotWins(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Publish(&book.Snapshot{Symbol: "BTC-USD", Seq: 1}, nil))
	require.NoError(t, s.Publish(&book.Snapshot{Symbol: "BTC-USD", Seq: 2}, nil))

	got, err := s.LastSnapshot("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Seq)
}

func TestTradesLimitAndSymbolIsolation(t *testing.T) {
	s := newTestStore(t)

	var btc, eth []book.Trade
	for i := int64(1); i <= 5; i++ {
		btc = append(btc, book.Trade{ID: i, Symbol: "BTC-USD", Price: 100, Qty: 1})
		eth = append(eth, book.Trade{ID: i, Symbol: "ETH-USD", Price: 50, Qty: 1})
	}
	require.NoError(t, s.Publish(&book.Snapshot{Symbol: "BTC-USD", Seq: 1}, btc))
	require.NoError(t, s.Publish(&book.Snapshot{Symbol: "ETH-USD", Seq: 2}, eth))

	hist, err := s.Trades("BTC-USD", 3)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	for _, tr := range hist {
		assert.Equal(t, "BTC-USD", tr.Symbol)
	}
	assert.Equal(t, int64(5), hist[0].ID)
}
