package repository

import (
	"context"
	"fmt"

	"CoinSage/internal/domain/models"
	domsvc "CoinSage/internal/domain/service"
	pkgkafka "CoinSage/pkg/kafka"
)

// KafkaAlertSink publishes high-score signals to the alert topic.
// Payload is the full SignalResult json.
type KafkaAlertSink struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertSink(producer *pkgkafka.Producer, topic string) *KafkaAlertSink {
	return &KafkaAlertSink{producer: producer, topic: topic}
}

func (s *KafkaAlertSink) Notify(ctx context.Context, res *models.SignalResult) error {
	if res == nil {
		return fmt.Errorf("alert result is nil")
	}
	key := []byte(res.ItemID + ":" + res.Market)
	if err := s.producer.Publish(ctx, s.topic, key, res); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

var _ domsvc.AlertSink = (*KafkaAlertSink)(nil)
