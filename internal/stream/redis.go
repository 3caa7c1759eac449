// Package stream publishes outbox events to Redis Streams.
package stream

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

// NewClient connects to the Redis instance at addr.
func NewClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return client, nil
}

// RedisPublisher appends outbox events to a single stream with XADD.
type RedisPublisher struct {
	client rueidis.Client
	stream string
}

// NewRedisPublisher returns a publisher writing to stream.
func NewRedisPublisher(client rueidis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Publish appends ev to the stream. The entry id is assigned by Redis.
func (p *RedisPublisher) Publish(ctx context.Context, ev model.OutboxEvent) error {
	cmd := p.client.B().Xadd().Key(p.stream).Id("*").
		FieldValue().FieldValue("event_id", strconv.FormatInt(ev.ID, 10)).
		FieldValue("event_type", string(ev.EventType)).
		FieldValue("aggregate_id", ev.AggregateID).
		FieldValue("payload", string(ev.Payload)).
		Build()

	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
