package mqttbus

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the part of the bus producers depend on.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// ClientPublisher publishes on a shared client with the QoS chosen by QoSFor.
type ClientPublisher struct {
	client mqtt.Client
}

func NewPublisher(client mqtt.Client) *ClientPublisher {
	return &ClientPublisher{client: client}
}

func (p *ClientPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, QoSFor(topic), false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqttbus: publish %s: %w", topic, err)
	}
	return nil
}

// PublishJSON marshals v and publishes it on topic.
func PublishJSON(p Publisher, topic string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqttbus: marshal for %s: %w", topic, err)
	}
	return p.Publish(topic, b)
}

// QoSFor returns 1 for topics whose loss is visible to a farmer, 0 otherwise.
func QoSFor(topic string) byte {
	t := strings.TrimSpace(topic)
	if strings.HasPrefix(t, "event/evaluation") ||
		strings.HasPrefix(t, "speech/") {
		return 1
	}
	return 0
}
