package api

import (
	"context"
	"net/http"
)

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, draft CategoryDraft) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPost, "/categories", nil, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, draft CategoryDraft) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPatch, "/categories/"+id, nil, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a category. Tasks referencing it are not
// cascaded; they degrade to an unknown-category display on the client.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+id, nil, nil, nil)
}
