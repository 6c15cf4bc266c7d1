package rabbitmq

import (
	"context"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
)

// Handler processes one delivery; topic is the subscription filter it came from.
type Handler func(topic string, message mqtt.Message) error

// qos 1 for operator-originated events, at most once for everything else
func qosFor(topic string) byte {
	t := strings.TrimSpace(topic)
	if strings.HasPrefix(t, "event/configSaved") ||
		strings.HasPrefix(t, "event/actualIrrigation") {
		return 1
	}
	return 0
}

// MultiConsumer subscribes one handler to several topic filters.
type MultiConsumer struct {
	client  mqtt.Client
	topics  []string
	handler Handler
}

func NewMultiConsumer(client mqtt.Client, topics []string, handler Handler) *MultiConsumer {
	return &MultiConsumer{client: client, topics: topics, handler: handler}
}

// ConsumeMessage subscribes to every topic and blocks until ctx is cancelled.
// It returns the first subscription error.
func (m *MultiConsumer) ConsumeMessage(ctx context.Context) error {
	for _, topic := range m.topics {
		topic := topic
		token := m.client.Subscribe(topic, qosFor(topic), func(_ mqtt.Client, msg mqtt.Message) {
			if m.handler == nil {
				logger.Warnf(ctx, "no handler set for topic %s", topic)
				return
			}
			if err := m.handler(topic, msg); err != nil {
				logger.Errorf(ctx, "error handling message on %s: %v", msg.Topic(), err)
			}
		})
		if token.Wait() && token.Error() != nil {
			return token.Error()
		}
		logger.Infof(ctx, "subscribed to %s", topic)
	}

	<-ctx.Done()

	for _, topic := range m.topics {
		m.client.Unsubscribe(topic).Wait()
	}
	return nil
}
