package book

// PriceLevel is the aggregated view of one price on one side: the price and
// the sum of remaining quantities of every order resting there.
type PriceLevel struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
}

// Snapshot is the immutable top-of-book view produced once per processed
// command. Bids are ordered by descending price, asks by ascending price.
type Snapshot struct {
	Symbol string       `json:"symbol"`
	Seq    int64        `json:"seq"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
}
