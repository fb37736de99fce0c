package render

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eclipse/paho.golang/paho"
)

// mqttPublisher is the slice of the paho client the sink needs.
type mqttPublisher interface {
	Publish(ctx context.Context, p *paho.Publish) (*paho.PublishResponse, error)
}

// MQTTSink publishes snapshots as JSON to an MQTT v5 topic at QoS 0.
// The client must already be connected; connection management stays with
// the caller. Publishes are bounded by a timeout so a stalled broker
// cannot wedge the dispatcher worker.
type MQTTSink struct {
	client  mqttPublisher
	topic   string
	timeout time.Duration
}

// NewMQTTSink returns a sink publishing to topic via client.
func NewMQTTSink(client *paho.Client, topic string) *MQTTSink {
	return &MQTTSink{
		client:  client,
		topic:   topic,
		timeout: time.Second,
	}
}

// Publish serializes the snapshot and fires it at the topic.
func (s *MQTTSink) Publish(snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("render: marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err = s.client.Publish(ctx, &paho.Publish{
		QoS:     0,
		Topic:   s.topic,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("render: mqtt publish: %w", err)
	}
	return nil
}
