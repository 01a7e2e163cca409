package cliclient

import "context"

// ListUsers returns all accounts (requires users:read).
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) ([]User, error) {
	var users []User
	_, err := c.Get(ctx, "/admin/users"+opts.query(), &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListAllPrompts returns prompts across all accounts (requires prompts:read_all).
func (c *Client) ListAllPrompts(ctx context.Context, opts ListOptions) ([]Prompt, error) {
	var prompts []Prompt
	_, err := c.Get(ctx, "/admin/all-prompts"+opts.query(), &prompts)
	if err != nil {
		return nil, err
	}
	return prompts, nil
}
