// Package kafka publishes readings to a Kafka topic for the feed replayer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/verdantlab/envsim-dashboard/internal/config"
	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// Writer produces reading messages to the configured topic.
// It implements feed.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured feed topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishDay serializes one day's readings and publishes them in a single
// WriteMessages call. Messages are keyed by region so per-region ordering
// survives partitioning.
func (w *Writer) PublishDay(ctx context.Context, datasetID uuid.UUID, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(readings))
	for i := range readings {
		msg, err := serializeToMessage(datasetID, readings[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a reading into a Kafka message.
func serializeToMessage(datasetID uuid.UUID, r domain.Reading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.Region),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "dataset_id", Value: []byte(datasetID.String())},
			{Key: "date", Value: []byte(r.Date.Format(domain.DateLayout))},
		},
	}, nil
}
