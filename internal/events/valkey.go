package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"
)

// DefaultChannel is used when no channel is configured
const DefaultChannel = "promptgate:prompts"

// ValkeyPublisher publishes prompt events on a Valkey pub/sub channel.
type ValkeyPublisher struct {
	client  valkey.Client
	channel string
}

// NewValkeyPublisher connects to Valkey at addr and verifies the connection.
func NewValkeyPublisher(addr, channel string) (*ValkeyPublisher, error) {
	if channel == "" {
		channel = DefaultChannel
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	slog.Info("Initialized Valkey event publisher", "address", addr, "channel", channel)
	return &ValkeyPublisher{client: client, channel: channel}, nil
}

// PublishPrompt implements Publisher
func (p *ValkeyPublisher) PublishPrompt(ctx context.Context, ev PromptEvent) error {
	msg, err := ev.Encode()
	if err != nil {
		return err
	}
	cmd := p.client.B().Publish().Channel(p.channel).Message(msg).Build()
	return p.client.Do(ctx, cmd).Error()
}

// Close implements Publisher
func (p *ValkeyPublisher) Close() {
	p.client.Close()
}
