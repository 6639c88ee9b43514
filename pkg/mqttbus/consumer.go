package mqttbus

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Handler processes one message received on a subscribed filter.
type Handler func(filter string, msg mqtt.Message) error

// Consumer subscribes a handler to several topic filters.
type Consumer struct {
	client  mqtt.Client
	filters []string
	handler Handler
	log     *zap.SugaredLogger
}

func NewConsumer(client mqtt.Client, filters []string, handler Handler, log *zap.SugaredLogger) *Consumer {
	return &Consumer{client: client, filters: filters, handler: handler, log: log}
}

// Run subscribes to every filter and blocks until ctx is done, then unsubscribes.
// A failed subscription is returned before blocking.
func (c *Consumer) Run(ctx context.Context) error {
	for _, filter := range c.filters {
		token := c.client.Subscribe(filter, QoSFor(filter), c.callback(filter))
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqttbus: subscribe %s: %w", filter, err)
		}
		c.log.Infof("mqttbus: subscribed to %s", filter)
	}

	<-ctx.Done()

	c.client.Unsubscribe(c.filters...).Wait()
	return nil
}

func (c *Consumer) callback(filter string) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		if c.handler == nil {
			c.log.Warnf("mqttbus: no handler for %s", filter)
			return
		}
		if err := c.handler(filter, msg); err != nil {
			c.log.Errorf("mqttbus: handling %s: %v", msg.Topic(), err)
		}
	}
}
