// Package alerts maintains the local cache of the user's alert rules,
// reconciled against the gateway.
//
// Every mutation is pessimistic: the cache changes only after the server
// acknowledges, and a failed call leaves the cache untouched. There is no
// speculative local insert to roll back.
package alerts

import (
	"context"
	"log/slog"
	"sync"

	"github.com/avertin/pricepulse/internal/api"
	"github.com/avertin/pricepulse/internal/model"
)

// Registry is the in-memory alert rule cache, ordered newest-first and
// unique by rule ID.
type Registry struct {
	api    *api.Client
	logger *slog.Logger

	mu    sync.RWMutex
	rules []model.AlertRule
}

// NewRegistry creates an empty registry backed by the given API client.
func NewRegistry(client *api.Client, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		api:    client,
		logger: logger,
	}
}

// Refresh replaces the entire cache with the server's current listing.
// Called after session restore and login.
func (r *Registry) Refresh(ctx context.Context) error {
	rules, err := r.api.ListAlerts(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.rules = rules
	r.mu.Unlock()

	r.logger.Debug("alert cache refreshed", "count", len(rules))
	return nil
}

// Create submits a new rule. On success the server-assigned entity is
// inserted at the front of the cache.
func (r *Registry) Create(ctx context.Context, draft model.AlertDraft) (model.AlertRule, error) {
	rule, err := r.api.CreateAlert(ctx, draft)
	if err != nil {
		return model.AlertRule{}, err
	}

	r.mu.Lock()
	r.rules = append([]model.AlertRule{rule}, r.rules...)
	r.mu.Unlock()

	r.logger.Info("alert created",
		"id", rule.ID,
		"symbol", rule.Symbol,
		"condition", rule.Condition,
		"target", rule.TargetPrice,
	)
	return rule, nil
}

// Toggle flips a rule's active flag. On success the cached entry is
// replaced wholesale by the server's entity. If the id is not cached
// locally the update is dropped silently.
func (r *Registry) Toggle(ctx context.Context, id int64) (model.AlertRule, error) {
	rule, err := r.api.ToggleAlert(ctx, id)
	if err != nil {
		return model.AlertRule{}, err
	}

	r.mu.Lock()
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules[i] = rule
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info("alert toggled", "id", id, "active", rule.Active)
	return rule, nil
}

// Delete removes a rule. On success the cached entry is removed.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	if err := r.api.DeleteAlert(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info("alert deleted", "id", id)
	return nil
}

// Rules returns a copy of the cache, newest first.
func (r *Registry) Rules() []model.AlertRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.AlertRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of cached rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Clear empties the cache. Part of session teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.rules = nil
	r.mu.Unlock()
}
