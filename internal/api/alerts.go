package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avertin/pricepulse/internal/model"
)

// ListAlerts fetches the user's alert rules, newest first.
func (c *Client) ListAlerts(ctx context.Context) ([]model.AlertRule, error) {
	var rules []model.AlertRule
	if err := c.doJSON(ctx, http.MethodGet, "/alerts/", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CreateAlert creates a new alert rule and returns the server-assigned entity.
func (c *Client) CreateAlert(ctx context.Context, draft model.AlertDraft) (model.AlertRule, error) {
	var rule model.AlertRule
	err := c.doJSON(ctx, http.MethodPost, "/alerts/", draft, &rule)
	return rule, err
}

// DeleteAlert removes an alert rule.
func (c *Client) DeleteAlert(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/alerts/%d", id), nil, nil)
}

// ToggleAlert flips an alert rule's active flag and returns the updated entity.
func (c *Client) ToggleAlert(ctx context.Context, id int64) (model.AlertRule, error) {
	var rule model.AlertRule
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/alerts/%d/toggle", id), nil, &rule)
	return rule, err
}
