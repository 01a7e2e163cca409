package cliclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CreatePrompt runs a prompt through the server's generation backend.
func (c *Client) CreatePrompt(ctx context.Context, req CreatePromptRequest) (*Prompt, error) {
	var prompt Prompt
	if _, err := c.Post(ctx, "/prompts", req, &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// ListPrompts returns the caller's prompts, newest first.
func (c *Client) ListPrompts(ctx context.Context, opts ListOptions) ([]Prompt, error) {
	var prompts []Prompt
	if _, err := c.Get(ctx, "/prompts"+opts.query(), &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

// GetPrompt returns one of the caller's prompts.
func (c *Client) GetPrompt(ctx context.Context, id uint) (*Prompt, error) {
	var prompt Prompt
	if _, err := c.Get(ctx, fmt.Sprintf("/prompts/%d", id), &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// ExtractInvoice asks the server to extract invoice fields from text. The
// result is either the invoice object or {"error", "raw"} when the model
// output could not be parsed.
func (c *Client) ExtractInvoice(ctx context.Context, req ExtractInvoiceRequest) (map[string]interface{}, error) {
	var result map[string]interface{}
	if _, err := c.Post(ctx, "/extract-invoice", req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Skip > 0 {
		q.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
