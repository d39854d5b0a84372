package events

import (
	"context"
	"encoding/json"

	"github.com/NeuralTrust/XSSGuard/pkg/infra/breaker"
	"github.com/go-redis/redis/v8"
)

const DefaultDetectionsChannel = "xssguard:detections"

type Event interface {
	Type() string
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Message is the envelope written to the channel.
type Message struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

type redisEventPublisher struct {
	client  redis.Cmdable
	channel string
	breaker breaker.CircuitBreaker
}

// NewRedisEventPublisher publishes events on a redis pub/sub channel. A nil breaker
// publishes directly.
func NewRedisEventPublisher(client redis.Cmdable, channel string, cb breaker.CircuitBreaker) Publisher {
	if channel == "" {
		channel = DefaultDetectionsChannel
	}
	return &redisEventPublisher{
		client:  client,
		channel: channel,
		breaker: cb,
	}
}

func (p *redisEventPublisher) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Message{
		Type:  ev.Type(),
		Event: b,
	})
	if err != nil {
		return err
	}
	publish := func() error {
		return p.client.Publish(ctx, p.channel, data).Err()
	}
	if p.breaker == nil {
		return publish()
	}
	return p.breaker.Execute(publish)
}
