package service

import (
	"go.uber.org/zap"

	"talos/domain/book"
)

// Publisher is the notification channel the engine hands results to after
// each processed command. Implementations live outside the core: the
// websocket hub, the kafka feeds, the pebble archive.
type Publisher interface {
	Publish(snap *book.Snapshot, trades []book.Trade) error
}

// MultiPublisher fans one result out to several publishers. A failing sink
// is logged and skipped; publish failures never reach the matching loop.
type MultiPublisher struct {
	pubs []Publisher
	log  *zap.Logger
}

func NewMultiPublisher(log *zap.Logger, pubs ...Publisher) *MultiPublisher {
	return &MultiPublisher{pubs: pubs, log: log}
}

func (m *MultiPublisher) Publish(snap *book.Snapshot, trades []book.Trade) error {
	for _, p := range m.pubs {
		if err := p.Publish(snap, trades); err != nil {
			m.log.Warn("publish failed",
				zap.String("symbol", snap.Symbol),
				zap.Int64("seq", snap.Seq),
				zap.Error(err),
			)
		}
	}
	return nil
}
