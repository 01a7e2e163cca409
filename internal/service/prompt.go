package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crewdigital/promptgate/internal/audit"
	"github.com/crewdigital/promptgate/internal/events"
	"github.com/crewdigital/promptgate/internal/llm"
	"github.com/crewdigital/promptgate/internal/models"
	"gorm.io/gorm"
)

// PromptService runs prompts through the generation backend and stores the
// results.
type PromptService struct {
	db           *gorm.DB
	generator    llm.Generator
	publisher    events.Publisher
	defaultModel string
}

// NewPromptService creates a new PromptService.
func NewPromptService(db *gorm.DB, generator llm.Generator, publisher events.Publisher, defaultModel string) *PromptService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if defaultModel == "" {
		defaultModel = models.DefaultModelName
	}
	return &PromptService{
		db:           db,
		generator:    generator,
		publisher:    publisher,
		defaultModel: defaultModel,
	}
}

// Create calls the generator once and persists the completed prompt together
// with its audit entry in one transaction. A generator failure returns
// before anything is written.
func (s *PromptService) Create(ctx context.Context, req CreatePromptRequest, userID uint) (*models.Prompt, error) {
	if strings.TrimSpace(req.PromptText) == "" {
		return nil, &ValidationError{Message: "prompt_text must not be empty"}
	}
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	action := req.Action
	if action == "" {
		action = audit.ActionCreatePrompt
	}

	result, err := s.generator.Generate(ctx, req.PromptText, model, req.Options)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	metadata := make(map[string]interface{}, len(result.Metadata)+len(req.Metadata))
	for k, v := range result.Metadata {
		metadata[k] = v
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	output := result.OutputText
	latency := result.LatencyMs
	prompt := models.Prompt{
		UserID:           &userID,
		PromptText:       req.PromptText,
		ResponseText:     &output,
		ModelName:        model,
		ProcessingTimeMs: &latency,
		MetaData:         metadata,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prompt).Error; err != nil {
			return fmt.Errorf("create prompt: %w", err)
		}
		return audit.LogAction(tx, &userID, action, audit.PromptResource(prompt.ID), map[string]interface{}{
			"model":              model,
			"processing_time_ms": latency,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Prompt created", "prompt_id", prompt.ID, "user_id", userID, "model", model, "latency_ms", latency)
	events.PublishSafe(ctx, s.publisher, events.NewPromptEvent(&prompt))
	return &prompt, nil
}

// List returns the prompts owned by userID, newest first.
func (s *PromptService) List(userID uint, page Page) ([]models.Prompt, error) {
	page, err := page.normalize(DefaultPromptLimit)
	if err != nil {
		return nil, err
	}

	var prompts []models.Prompt
	err = s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&prompts).Error
	if err != nil {
		return nil, err
	}
	return prompts, nil
}

// Get returns a prompt owned by userID. A prompt owned by someone else is
// reported exactly like a missing one.
func (s *PromptService) Get(id, userID uint) (*models.Prompt, error) {
	var prompt models.Prompt
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&prompt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prompt, nil
}

// ListAll returns prompts across all accounts, newest first.
func (s *PromptService) ListAll(page Page) ([]models.Prompt, error) {
	page, err := page.normalize(DefaultAccountLimit)
	if err != nil {
		return nil, err
	}

	var prompts []models.Prompt
	err = s.db.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&prompts).Error
	if err != nil {
		return nil, err
	}
	return prompts, nil
}
