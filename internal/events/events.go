// Package events publishes thought lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Idahel/js-project-api/types"
)

// Kind names a thought lifecycle event.
type Kind string

const (
	ThoughtCreated Kind = "thought.created"
	ThoughtLiked   Kind = "thought.liked"
	ThoughtUpdated Kind = "thought.updated"
	ThoughtDeleted Kind = "thought.deleted"
)

const attrType = "type"

// ThoughtEvent is the JSON payload written to the broker.
type ThoughtEvent struct {
	Type       Kind          `json:"type"`
	Thought    types.Thought `json:"thought"`
	ActorID    string        `json:"actorId,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Bus encodes thought events onto a single backend channel.
type Bus struct {
	backend Backend
	channel string
}

// NewBus constructs a Bus publishing to channel on backend.
func NewBus(backend Backend, channel string) *Bus {
	return &Bus{backend: backend, channel: channel}
}

// Publish sends ev to the bus channel.
func (b *Bus) Publish(ctx context.Context, ev ThoughtEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	if _, err := b.backend.Publish(ctx, b.channel, data, map[string]string{attrType: string(ev.Type)}); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Subscribe decodes events from the bus channel until ctx is done. Messages
// that are not valid events are acknowledged and dropped.
func (b *Bus) Subscribe(ctx context.Context, fn func(ctx context.Context, ev ThoughtEvent) error) error {
	return b.backend.Subscribe(ctx, b.channel, func(ctx context.Context, msg Message) error {
		var ev ThoughtEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return nil
		}
		return fn(ctx, ev)
	})
}

// Channel returns the queue or topic name.
func (b *Bus) Channel() string {
	return b.channel
}

// Close closes the underlying backend.
func (b *Bus) Close() error {
	return b.backend.Close()
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ThoughtEvent) error { return nil }
