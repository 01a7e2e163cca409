// Package invoice extracts structured invoice data from free text using the
// prompt pipeline in JSON output mode.
package invoice

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/crewdigital/promptgate/internal/audit"
	"github.com/crewdigital/promptgate/internal/llm"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/crewdigital/promptgate/internal/service"
)

// MetadataType tags prompt records created by the extractor
const MetadataType = "invoice_extraction"

// DefaultCurrency is assumed when the model omits a currency
const DefaultCurrency = "USD"

// ParseErrorMessage is reported when the model output is not a JSON object
const ParseErrorMessage = "Failed to parse JSON"

const instruction = `You are an invoice extraction AI. Extract the following fields from the text into a JSON object:
- invoice_number (string)
- vendor_name (string)
- date (string, YYYY-MM-DD)
- items (list of objects with description, quantity, unit_price, total)
- total_amount (float)
- currency (string, e.g. USD, EUR)

Respond ONLY with the JSON object. No preamble.`

// Result is either the extracted JSON object or the fallback
// {"error": ..., "raw": ...} when the output could not be parsed.
type Result map[string]interface{}

// BuildPrompt combines the extraction instruction with the input text.
func BuildPrompt(text string) string {
	return instruction + "\n\nINPUT TEXT:\n" + text
}

// Parse interprets model output. Anything that is not a JSON object yields
// the fallback result carrying the raw output and ok is false.
func Parse(output string) (res Result, ok bool) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &parsed); err != nil || parsed == nil {
		return Result{"error": ParseErrorMessage, "raw": output}, false
	}
	if c, ok := parsed["currency"].(string); !ok || c == "" {
		parsed["currency"] = DefaultCurrency
	}
	return Result(parsed), true
}

// PromptCreator is the part of the prompt pipeline the extractor needs.
type PromptCreator interface {
	Create(ctx context.Context, req service.CreatePromptRequest, userID uint) (*models.Prompt, error)
}

// Extractor runs invoice extraction through the prompt pipeline.
type Extractor struct {
	prompts PromptCreator
}

// NewExtractor creates a new Extractor.
func NewExtractor(prompts PromptCreator) *Extractor {
	return &Extractor{prompts: prompts}
}

// Extract asks the model for an invoice JSON object describing text. The
// prompt record is persisted before parsing; a persistence or backend
// failure is returned as an error, while unparseable output is a normal
// fallback Result.
func (e *Extractor) Extract(ctx context.Context, text string, userID uint, model string) (Result, *models.Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &service.ValidationError{Message: "text_content must not be empty"}
	}

	prompt, err := e.prompts.Create(ctx, service.CreatePromptRequest{
		PromptText: BuildPrompt(text),
		Model:      model,
		Metadata:   map[string]interface{}{"type": MetadataType},
		Options:    llm.Options{Format: "json"},
		Action:     audit.ActionExtractInvoice,
	}, userID)
	if err != nil {
		return nil, nil, err
	}

	var output string
	if prompt.ResponseText != nil {
		output = *prompt.ResponseText
	}
	res, ok := Parse(output)
	if !ok {
		slog.Warn("Invoice extraction returned non-JSON output", "prompt_id", prompt.ID, "model", prompt.ModelName)
	}
	return res, prompt, nil
}
