package book

// OrderBook is the price-time-priority book for a single symbol.
//
// It holds no lock: only the engine's single consumer goroutine ever touches
// it. Concurrent readers get immutable Snapshot values instead.
type OrderBook struct {
	symbol string
	bids   *bookSide
	asks   *bookSide

	lastTradeID int64
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   newBookSide(Buy),
		asks:   newBookSide(Sell),
	}
}

func (b *OrderBook) Symbol() string { return b.symbol }

// Process matches an incoming order against the opposite side and rests any
// remainder at its own price. Trades always execute at the resting order's
// price. Returned trades are in execution order.
func (b *OrderBook) Process(o *Order) []Trade {
	var trades []Trade

	opp := b.asks
	own := b.bids
	if o.Side == Sell {
		opp = b.bids
		own = b.asks
	}

	for o.Remaining > 0 {
		lvl := opp.best()
		if lvl == nil || !marketable(o, lvl.price) {
			break
		}

		resting := lvl.head
		qty := min64(o.Remaining, resting.Remaining)
		o.Remaining -= qty
		resting.Remaining -= qty
		lvl.qty -= qty

		trades = append(trades, b.newTrade(o, resting, lvl.price, qty))

		if resting.Remaining == 0 {
			lvl.popHead()
			if lvl.empty() {
				opp.remove(lvl.price)
			}
		}
	}

	if o.Remaining > 0 {
		own.getOrCreate(o.Price).enqueue(o)
	}
	return trades
}

// TopBids returns up to depth best bid levels, highest price first.
func (b *OrderBook) TopBids(depth int) []PriceLevel {
	return b.bids.top(depth)
}

// TopAsks returns up to depth best ask levels, lowest price first.
func (b *OrderBook) TopAsks(depth int) []PriceLevel {
	return b.asks.top(depth)
}

// Snapshot builds the immutable top-of-book view for the given command
// sequence.
func (b *OrderBook) Snapshot(seq int64, depth int) *Snapshot {
	return &Snapshot{
		Symbol: b.symbol,
		Seq:    seq,
		Bids:   b.TopBids(depth),
		Asks:   b.TopAsks(depth),
	}
}

// BidLevels and AskLevels report how many price levels each side holds.
func (b *OrderBook) BidLevels() int { return b.bids.len() }
func (b *OrderBook) AskLevels() int { return b.asks.len() }

func (b *OrderBook) newTrade(incoming, resting *Order, price, qty int64) Trade {
	b.lastTradeID++
	t := Trade{
		ID:     b.lastTradeID,
		Symbol: b.symbol,
		Price:  price,
		Qty:    qty,
		Seq:    incoming.Seq,
	}
	if incoming.Side == Buy {
		t.BuyOrderID = incoming.ID
		t.SellOrderID = resting.ID
	} else {
		t.BuyOrderID = resting.ID
		t.SellOrderID = incoming.ID
	}
	return t
}

// marketable reports whether the incoming order can trade at the best
// opposite price.
func marketable(o *Order, best int64) bool {
	if o.Side == Buy {
		return o.Price >= best
	}
	return o.Price <= best
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
