// Package broadcaster pushes executed trades onto a kafka topic for
// downstream consumers (risk, settlement, tickers). One message per trade,
// keyed by symbol.
package broadcaster

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"talos/domain/book"
)

type TradeFeed struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func New(brokers []string, topic string, log *zap.Logger) (*TradeFeed, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &TradeFeed{
		producer: producer,
		topic:    topic,
		log:      log,
	}, nil
}

// Publish sends every trade of one processed command. The snapshot travels
// on the snapshot feed, not here.
func (f *TradeFeed) Publish(_ *book.Snapshot, trades []book.Trade) error {
	for _, t := range trades {
		payload, err := json.Marshal(t)
		if err != nil {
			return err
		}
		msg := &sarama.ProducerMessage{
			Topic: f.topic,
			Key:   sarama.StringEncoder(t.Symbol),
			Value: sarama.ByteEncoder(payload),
		}
		if _, _, err := f.producer.SendMessage(msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *TradeFeed) Close() error {
	return f.producer.Close()
}
