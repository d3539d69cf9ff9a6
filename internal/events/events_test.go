package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Idahel/js-project-api/config"
	"github.com/Idahel/js-project-api/types"
)

type published struct {
	channel string
	data    []byte
	attrs   map[string]string
}

// memoryBackend delivers published messages to Subscribe through a buffered
// channel.
type memoryBackend struct {
	sent   []published
	queue  chan Message
	closed bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{queue: make(chan Message, 16)}
}

func (m *memoryBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	m.sent = append(m.sent, published{channel: channel, data: data, attrs: attrs})
	m.queue <- Message{ID: "m", Data: data, Attributes: attrs}
	return "m", nil
}

func (m *memoryBackend) Subscribe(ctx context.Context, _ string, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-m.queue:
			if err := handler(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func (m *memoryBackend) Close() error {
	m.closed = true
	return nil
}

func TestBusPublishEncodesEvent(t *testing.T) {
	backend := newMemoryBackend()
	bus := NewBus(backend, "thought-events")

	thought := types.Thought{ID: "abc", Message: "hello world", Hearts: 1}
	require.NoError(t, bus.Publish(context.Background(), ThoughtEvent{Type: ThoughtLiked, Thought: thought}))

	require.Len(t, backend.sent, 1)
	sent := backend.sent[0]
	assert.Equal(t, "thought-events", sent.channel)
	assert.Equal(t, map[string]string{"type": "thought.liked"}, sent.attrs)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(sent.data, &decoded))
	assert.Equal(t, "thought.liked", decoded["type"])
	assert.NotEmpty(t, decoded["occurredAt"])
	assert.NotContains(t, decoded, "actorId")
	assert.Equal(t, "hello world", decoded["thought"].(map[string]any)["message"])
}

func TestBusSubscribeDecodesAndSkipsGarbage(t *testing.T) {
	backend := newMemoryBackend()
	bus := NewBus(backend, "thought-events")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	backend.queue <- Message{ID: "junk", Data: []byte("not json")}
	require.NoError(t, bus.Publish(ctx, ThoughtEvent{Type: ThoughtCreated, ActorID: "u1", Thought: types.Thought{ID: "t1"}}))

	var got []ThoughtEvent
	err := bus.Subscribe(ctx, func(_ context.Context, ev ThoughtEvent) error {
		got = append(got, ev)
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 1)
	assert.Equal(t, ThoughtCreated, got[0].Type)
	assert.Equal(t, "u1", got[0].ActorID)
	assert.Equal(t, "t1", got[0].Thought.ID)
}

func TestBusClose(t *testing.T) {
	backend := newMemoryBackend()
	require.NoError(t, NewBus(backend, "c").Close())
	assert.True(t, backend.closed)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.EventsConfig{Backend: "kafka"})
	assert.ErrorContains(t, err, `unknown events backend "kafka"`)

	_, err = Open(context.Background(), config.EventsConfig{})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.EventsConfig{Backend: BackendRabbitMQ})
	assert.ErrorContains(t, err, "rabbitmq url is required")
}

func TestNopPublish(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), ThoughtEvent{Type: ThoughtDeleted}))
}
