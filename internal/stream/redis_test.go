package stream

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

func TestRedisPublisher_Publish(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client, err := NewClient(addr)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream := "test:table:events:" + time.Now().Format("150405.000000000")
	defer client.Do(context.Background(), client.B().Del().Key(stream).Build())

	pub := NewRedisPublisher(client, stream)
	ev := model.OutboxEvent{
		ID:          7,
		AggregateID: "t-1",
		EventType:   model.EventParticipantJoined,
		Payload:     []byte(`{"table_id":"t-1"}`),
	}
	require.NoError(t, pub.Publish(ctx, ev))

	entries, err := client.Do(ctx, client.B().Xrange().Key(stream).Start("-").End("+").Build()).AsXRange()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "7", entries[0].FieldValues["event_id"])
	assert.Equal(t, "participant_joined", entries[0].FieldValues["event_type"])
	assert.Equal(t, "t-1", entries[0].FieldValues["aggregate_id"])
	assert.Equal(t, `{"table_id":"t-1"}`, entries[0].FieldValues["payload"])
}
