package events

import (
	"context"
	"fmt"

	"github.com/Idahel/js-project-api/config"
)

const (
	BackendRabbitMQ = "rabbitmq"
	BackendPubSub   = "pubsub"
)

// Open connects the broker named by cfg.Backend and wraps it in a Bus.
func Open(ctx context.Context, cfg config.EventsConfig) (*Bus, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case BackendRabbitMQ:
		backend, err = NewRabbitMQClient(cfg.RabbitMQ)
	case BackendPubSub:
		backend, err = NewPubSubClient(ctx, cfg.PubSub)
	case "":
		return nil, fmt.Errorf("events backend is not configured")
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	return NewBus(backend, cfg.Channel), nil
}
