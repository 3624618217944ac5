package book

// Side of the book an order belongs to.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the side an order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order is a pure domain entity. Price is in integer ticks, Remaining in
// integer lots. Remaining only ever decreases and never goes negative.
// Once resting, the order is owned by the book side it sits on.
type Order struct {
	ID          string
	Symbol      string
	Side        Side
	Price       int64
	Remaining   int64
	SubmittedAt int64 // unix nanos at submission
	Seq         int64 // assigned by the sequencer at claim time

	next *Order
	prev *Order
}

// Trade is one execution between an incoming and a resting order.
// Immutable once created. Price is always the resting order's price.
type Trade struct {
	ID          int64  `json:"id"` // per-symbol monotonic
	Symbol      string `json:"symbol"`
	BuyOrderID  string `json:"buyOrderId"`
	SellOrderID string `json:"sellOrderId"`
	Price       int64  `json:"price"`
	Qty         int64  `json:"qty"`
	Seq         int64  `json:"seq"` // sequence of the command that caused it
}

// Envelope is the unit flowing through the sequencer ring.
type Envelope struct {
	Seq   int64
	Order *Order
}
