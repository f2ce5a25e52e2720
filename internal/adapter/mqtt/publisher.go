// Package mqtt publishes readings to an MQTT broker, one topic per region.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/verdantlab/envsim-dashboard/internal/config"
	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// Publisher delivers readings to <prefix>/<region> topics at QoS 0.
// It implements feed.Publisher.
type Publisher struct {
	client pahomqtt.Client
	prefix string
	logger *slog.Logger
}

// message is the MQTT payload. MQTT v3 has no message headers, so the
// dataset id travels inside the body.
type message struct {
	DatasetID string         `json:"dataset_id"`
	Reading   domain.Reading `json:"reading"`
}

// NewPublisher connects to the configured broker.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("envsim-feed-" + uuid.NewString()[:8])

	client := pahomqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "topic_prefix", cfg.MQTTTopicPrefix)
	return &Publisher{client: client, prefix: cfg.MQTTTopicPrefix, logger: logger}, nil
}

// PublishDay sends each reading of the batch to its region topic. The first
// failed publish aborts the batch; the caller retries the whole day.
func (p *Publisher) PublishDay(_ context.Context, datasetID uuid.UUID, readings []domain.Reading) error {
	for _, r := range readings {
		payload, err := json.Marshal(message{DatasetID: datasetID.String(), Reading: r})
		if err != nil {
			return fmt.Errorf("serialize reading: %w", err)
		}
		token := p.client.Publish(p.topic(r.Region), 0, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", p.topic(r.Region), err)
		}
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

func (p *Publisher) topic(region domain.Region) string {
	return p.prefix + "/" + string(region)
}
