package httpserver

import (
	"errors"

	"talos/domain/book"
)

// SubmitOrderRequest is the JSON body of POST /api/v1/orders.
type SubmitOrderRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// validate enforces the input contract before anything reaches the core:
// the engine itself never re-validates.
func (r SubmitOrderRequest) validate() (book.Side, error) {
	if r.Symbol == "" {
		return 0, errors.New("symbol is required")
	}
	if r.Price < 1 {
		return 0, errors.New("price must be >= 1")
	}
	if r.Quantity < 1 {
		return 0, errors.New("quantity must be >= 1")
	}
	switch r.Side {
	case "BUY":
		return book.Buy, nil
	case "SELL":
		return book.Sell, nil
	default:
		return 0, errors.New("side must be BUY or SELL")
	}
}

type sequenceResponse struct {
	Sequence int64 `json:"sequence"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// wsSubscribeRequest is the client → server control message on /ws.
type wsSubscribeRequest struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
}

// wsMarketData is pushed on a symbol's channel after each processed command.
type wsMarketData struct {
	Channel  string         `json:"channel"`
	Snapshot *book.Snapshot `json:"snapshot"`
	Trades   []book.Trade   `json:"trades"`
}
