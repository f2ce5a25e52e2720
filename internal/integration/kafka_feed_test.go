//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/verdantlab/envsim-dashboard/internal/adapter/kafka"
	"github.com/verdantlab/envsim-dashboard/internal/config"
	"github.com/verdantlab/envsim-dashboard/internal/domain"
	"github.com/verdantlab/envsim-dashboard/internal/feed"
	"github.com/verdantlab/envsim-dashboard/internal/observability"
	"github.com/verdantlab/envsim-dashboard/internal/simulate"
)

const testTopic = "test-environment-readings"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("envsim-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic so message order is total.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial kafka")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func newConsumer(t *testing.T, broker, topic string) *kafkago.Reader {
	t.Helper()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// readingMessage holds a deserialized message read from the readings topic.
type readingMessage struct {
	Reading domain.Reading
	Key     string
	Headers map[string]string
}

// readReading reads a single message from the consumer and deserializes it.
func readReading(ctx context.Context, t *testing.T, consumer *kafkago.Reader) readingMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from readings topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var r domain.Reading
	require.NoError(t, json.Unmarshal(msg.Value, &r), "unmarshal reading message")

	return readingMessage{Reading: r, Key: string(msg.Key), Headers: headers}
}

// TestKafkaWriterPublishDay verifies the adapter layer: one day's batch
// round-trips through Kafka with region keys and dataset headers intact.
func TestKafkaWriterPublishDay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	ds := simulate.New(42).Generate(2024, 1)
	require.Len(t, ds.Readings, 4)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishDay(ctx, ds.ID, ds.Readings))

	consumer := newConsumer(t, broker, testTopic)
	for i, want := range ds.Readings {
		rm := readReading(ctx, t, consumer)

		assert.Equal(t, string(want.Region), rm.Key, "message %d", i)
		assert.Equal(t, want, rm.Reading)
		assert.Equal(t, ds.ID.String(), rm.Headers["dataset_id"])
		assert.Equal(t, "2024-01-01", rm.Headers["date"])
	}
}

// TestFeedReplayEndToEnd wires the replayer to a real broker and verifies the
// whole dataset arrives day by day, in date order, without drops.
func TestFeedReplayEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	ds := simulate.New(42).Generate(2024, 3)
	total := len(ds.Readings)
	require.Equal(t, 12, total)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	rep := feed.New(writer, discardLogger(), observability.NewMetricsForTesting(), nil, 50*time.Millisecond)

	errCh := make(chan error, 1)
	go func() { errCh <- rep.Run(ctx, ds) }()

	consumer := newConsumer(t, broker, testTopic)

	received := make([]readingMessage, 0, total)
	for len(received) < total {
		received = append(received, readReading(ctx, t, consumer))
	}

	require.NoError(t, <-errCh)

	// Every message belongs to the replayed dataset.
	regionCounts := map[string]int{}
	for _, rm := range received {
		assert.Equal(t, ds.ID.String(), rm.Headers["dataset_id"])
		regionCounts[rm.Key]++
	}
	for _, region := range domain.Regions() {
		assert.Equal(t, 3, regionCounts[string(region)], "region %s", region)
	}

	// Days arrive in order, one batch of four readings per date.
	for i, rm := range received {
		wantDate := time.Date(2024, 1, 1+i/4, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantDate, rm.Reading.Date, "message %d", i)
	}

	assert.NoError(t, rep.CheckReadiness(ctx))
}
