package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Prices
// -----------------------------------------------------------------------------

// PriceQuote is the latest known quote for a single symbol. A newer quote
// replaces the older one wholesale; there is no field-level merge.
type PriceQuote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency,omitempty"`
	Source    string          `json:"source,omitempty"`
	Volume    float64         `json:"volume,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Alerts
// -----------------------------------------------------------------------------

// AlertCondition is the trigger condition of an alert rule.
type AlertCondition string

const (
	ConditionAbove   AlertCondition = "above"
	ConditionBelow   AlertCondition = "below"
	ConditionCrosses AlertCondition = "crosses"
	ConditionRange   AlertCondition = "range"
)

// NotificationType is a delivery channel for triggered alerts.
type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationSMS   NotificationType = "sms"
)

// AlertRule is a server-owned alert rule as returned by the gateway.
// ID and TriggeredCount are assigned server-side; TriggeredCount is
// monotonically non-decreasing.
type AlertRule struct {
	ID                int64            `json:"id"`
	Symbol            string           `json:"symbol"`
	Condition         AlertCondition   `json:"condition"`
	TargetPrice       decimal.Decimal  `json:"target_price"`
	TargetPriceHigh   *decimal.Decimal `json:"target_price_high,omitempty"`
	NotificationTypes string           `json:"notification_types"`
	CooldownMinutes   int              `json:"cooldown_minutes"`
	Active            bool             `json:"active"`
	TriggeredCount    int              `json:"triggered_count"`
	CreatedAt         time.Time        `json:"created_at"`
	LastTriggeredAt   *time.Time       `json:"last_triggered_at,omitempty"`
}

// Notifications parses the comma-separated NotificationTypes wire field.
func (r AlertRule) Notifications() []NotificationType {
	if r.NotificationTypes == "" {
		return nil
	}
	parts := strings.Split(r.NotificationTypes, ",")
	out := make([]NotificationType, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, NotificationType(p))
		}
	}
	return out
}

// AlertDraft is the client-side payload for creating a new alert rule.
type AlertDraft struct {
	Symbol            string           `json:"symbol"`
	Condition         AlertCondition   `json:"condition"`
	TargetPrice       decimal.Decimal  `json:"target_price"`
	TargetPriceHigh   *decimal.Decimal `json:"target_price_high,omitempty"`
	NotificationTypes string           `json:"notification_types,omitempty"`
	CooldownMinutes   int              `json:"cooldown_minutes,omitempty"`
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

// UserProfile is the authenticated user's profile.
type UserProfile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
