package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// --- mocks ---

type mockToken struct {
	err error
}

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *mockToken) Error() error { return t.err }

type publishedMsg struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient records publishes; the embedded interface panics on anything
// else, which no test should reach.
type mockClient struct {
	pahomqtt.Client
	published []publishedMsg
	err       error
}

func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) pahomqtt.Token {
	if m.err == nil {
		m.published = append(m.published, publishedMsg{topic: topic, qos: qos, payload: payload.([]byte)})
	}
	return &mockToken{err: m.err}
}

func newTestPublisher(client pahomqtt.Client) *Publisher {
	return &Publisher{client: client, prefix: "envsim/readings", logger: slog.Default()}
}

// --- tests ---

func TestPublishDay(t *testing.T) {
	m := &mockClient{}
	p := newTestPublisher(m)
	datasetID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	readings := []domain.Reading{
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Region: domain.RegionNorth, AirQualityPM25: 52.5, SoilMoisture: 31.2, PollutionIndex: 44.8},
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Region: domain.RegionEast, AirQualityPM25: 48.0, SoilMoisture: 29.5, PollutionIndex: 41.3},
	}

	err := p.PublishDay(context.Background(), datasetID, readings)

	require.NoError(t, err)
	require.Len(t, m.published, 2)
	assert.Equal(t, "envsim/readings/North", m.published[0].topic)
	assert.Equal(t, "envsim/readings/East", m.published[1].topic)
	assert.Equal(t, byte(0), m.published[0].qos)

	var body struct {
		DatasetID string         `json:"dataset_id"`
		Reading   domain.Reading `json:"reading"`
	}
	require.NoError(t, json.Unmarshal(m.published[0].payload, &body))
	assert.Equal(t, datasetID.String(), body.DatasetID)
	assert.Equal(t, readings[0], body.Reading)
	assert.Contains(t, string(m.published[0].payload), `"date":"2024-03-15"`)
}

func TestPublishDay_EmptyBatch(t *testing.T) {
	m := &mockClient{}
	p := newTestPublisher(m)

	err := p.PublishDay(context.Background(), uuid.New(), nil)

	require.NoError(t, err)
	assert.Empty(t, m.published)
}

func TestPublishDay_PublishError(t *testing.T) {
	m := &mockClient{err: errors.New("connection lost")}
	p := newTestPublisher(m)
	readings := []domain.Reading{
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Region: domain.RegionNorth},
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Region: domain.RegionEast},
	}

	err := p.PublishDay(context.Background(), uuid.New(), readings)

	// The first failure aborts the batch; the replayer retries the day.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish envsim/readings/North")
	assert.Empty(t, m.published)
}

func TestTopic(t *testing.T) {
	p := newTestPublisher(&mockClient{})

	assert.Equal(t, "envsim/readings/West", p.topic(domain.RegionWest))
}
