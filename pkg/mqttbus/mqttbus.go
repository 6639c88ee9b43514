// Package mqttbus wraps the paho MQTT client used for sensor ingest,
// evaluation events and the voice kiosk.
package mqttbus

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
	// MaxRetries bounds connection attempts; 0 means 5.
	MaxRetries int `yaml:"max_retries"`
}

func (c Config) Broker() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port)
}

// Connect dials the broker with exponential backoff. The client is
// disconnected when ctx is done.
func Connect(ctx context.Context, cfg Config, log *zap.SugaredLogger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker())
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 5
	}

	var client mqtt.Client
	op := func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warnf("mqttbus: connect to %s failed: %v", cfg.Broker(), token.Error())
			return token.Error()
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("mqttbus: no connection after %d attempts: %w", retries, err)
	}
	log.Infof("mqttbus: connected to %s", cfg.Broker())

	go func() {
		<-ctx.Done()
		Close(client, log)
	}()
	return client, nil
}

// Close disconnects the client if it is still connected.
func Close(client mqtt.Client, log *zap.SugaredLogger) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		log.Info("mqttbus: connection closed")
	}
}
