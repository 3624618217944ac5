// Package kafka publishes market-data snapshots to a kafka topic, one
// message per processed command, keyed by symbol so per-symbol ordering is
// preserved across partitions.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"talos/domain/book"
)

const publishTimeout = 2 * time.Second

type SnapshotFeed struct {
	writer *kafka.Writer
}

func NewSnapshotFeed(brokers []string, topic string) *SnapshotFeed {
	return &SnapshotFeed{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish sends the snapshot for one processed command. Trades travel on the
// trade feed, not here.
func (f *SnapshotFeed) Publish(snap *book.Snapshot, _ []book.Trade) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(snap.Symbol),
		Value: payload,
	})
}

func (f *SnapshotFeed) Close() error {
	return f.writer.Close()
}
