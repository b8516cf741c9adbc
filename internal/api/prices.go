package api

import (
	"context"
	"net/http"
	"time"

	"github.com/avertin/pricepulse/internal/model"
)

// priceSnapshotResponse is the GET /prices/ body.
type priceSnapshotResponse struct {
	Prices    map[string]model.PriceQuote `json:"prices"`
	Count     int                         `json:"count"`
	Timestamp time.Time                   `json:"timestamp"`
}

// PriceSnapshot fetches the current quote for every known symbol. It is the
// bootstrap fallback for populating the price cache before the stream is up.
func (c *Client) PriceSnapshot(ctx context.Context) (map[string]model.PriceQuote, error) {
	var resp priceSnapshotResponse
	if err := c.doJSON(ctx, http.MethodGet, "/prices/", nil, &resp); err != nil {
		return nil, err
	}

	// The gateway keys quotes by symbol but leaves the symbol field set in
	// the value as well; trust the key.
	for sym, q := range resp.Prices {
		if q.Symbol == "" {
			q.Symbol = sym
			resp.Prices[sym] = q
		}
	}

	return resp.Prices, nil
}
