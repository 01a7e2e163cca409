// Package events fans out notifications about committed prompts.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/crewdigital/promptgate/internal/config"
	"github.com/crewdigital/promptgate/internal/models"
)

// TypePromptCreated is the event type published after a prompt commits
const TypePromptCreated = "prompt.created"

// PromptEvent describes a committed prompt record.
type PromptEvent struct {
	Type             string    `json:"type"`
	PromptID         uint      `json:"id"`
	UserID           *uint     `json:"user_id"`
	Model            string    `json:"model"`
	ProcessingTimeMs *int64    `json:"processing_time_ms"`
	Kind             string    `json:"kind,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewPromptEvent builds the event for a committed prompt. Kind is taken from
// the record's "type" metadata, e.g. "invoice_extraction".
func NewPromptEvent(p *models.Prompt) PromptEvent {
	ev := PromptEvent{
		Type:             TypePromptCreated,
		PromptID:         p.ID,
		UserID:           p.UserID,
		Model:            p.ModelName,
		ProcessingTimeMs: p.ProcessingTimeMs,
		CreatedAt:        p.CreatedAt,
	}
	if kind, ok := p.MetaData["type"].(string); ok {
		ev.Kind = kind
	}
	return ev
}

// Encode returns the wire form of the event
func (e PromptEvent) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(data), nil
}

// Publisher delivers prompt events. Delivery is best effort; callers log
// failures and never undo the committed record.
type Publisher interface {
	PublishPrompt(ctx context.Context, ev PromptEvent) error
	Close()
}

// Noop discards every event.
type Noop struct{}

// PublishPrompt implements Publisher
func (Noop) PublishPrompt(context.Context, PromptEvent) error { return nil }

// Close implements Publisher
func (Noop) Close() {}

// New creates the publisher selected by configuration.
func New(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Type {
	case "", "none":
		return Noop{}, nil
	case "valkey":
		if cfg.ValkeyAddr == "" {
			return nil, fmt.Errorf("valkey address is required when events type is valkey")
		}
		return NewValkeyPublisher(cfg.ValkeyAddr, cfg.Channel)
	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: none, valkey)", cfg.Type)
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []PromptEvent
}

// PublishPrompt implements Publisher
func (r *Recorder) PublishPrompt(_ context.Context, ev PromptEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
	return nil
}

// Close implements Publisher
func (r *Recorder) Close() {}

// PublishSafe publishes ev and logs instead of returning a failure.
func PublishSafe(ctx context.Context, p Publisher, ev PromptEvent) {
	if p == nil {
		return
	}
	if err := p.PublishPrompt(ctx, ev); err != nil {
		slog.Warn("Failed to publish prompt event", "prompt_id", ev.PromptID, "error", err)
	}
}
