package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/agroclim/dssat-weather-etl/internal/config"
	"github.com/agroclim/dssat-weather-etl/internal/domain"
)

// DLQWriter publishes rejected station datasets to the dead-letter topic.
// It implements pipeline.Rejecter.
type DLQWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewDLQWriter creates a producer for the configured dead-letter topic.
func NewDLQWriter(cfg *config.Config, logger *slog.Logger) *DLQWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaDLQTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &DLQWriter{writer: w, logger: logger}
}

// Reject serializes and publishes a rejected dataset.
func (w *DLQWriter) Reject(ctx context.Context, rejected domain.RejectedDataset) error {
	msg, err := serializeRejected(rejected)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *DLQWriter) Close() error {
	return w.writer.Close()
}

// serializeRejected marshals a RejectedDataset into a Kafka message keyed by
// station, with the rejection reason as a header.
func serializeRejected(rejected domain.RejectedDataset) (kafkago.Message, error) {
	data, err := json.Marshal(rejected)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize rejected dataset: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rejected.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "reason", Value: []byte(rejected.Reason)},
			{Key: "rejected_at", Value: []byte(rejected.RejectedAt.Format(time.RFC3339))},
		},
	}, nil
}
