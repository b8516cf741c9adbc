package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avertin/pricepulse/internal/model"
)

// Kind classifies an inbound frame. Every frame decodes to exactly one
// kind; ambiguity between a delta and a partial snapshot cannot arise.
type Kind int

const (
	// KindUnknown is any frame that matches no recognized shape.
	KindUnknown Kind = iota
	// KindSnapshot carries a bulk symbol → quote mapping.
	KindSnapshot
	// KindHeartbeat is a liveness-only frame with no price data.
	KindHeartbeat
	// KindDelta is a single-symbol incremental quote update.
	KindDelta
)

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindHeartbeat:
		return "heartbeat"
	case KindDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Frame is the decoded form of one inbound stream message.
type Frame struct {
	Kind     Kind
	Snapshot map[string]model.PriceQuote // set when Kind == KindSnapshot
	Delta    model.PriceQuote            // set when Kind == KindDelta
}

// envelope covers every inbound frame shape:
//
//	snapshot:  {"type":"snapshot","prices":{SYM:{...}},...}
//	heartbeat: {"type":"heartbeat",...} (the server's pong counts too)
//	delta:     {"symbol":SYM,"price":...,...} — no type field; the symbol
//	           field is the discriminator
type envelope struct {
	Type   string                      `json:"type"`
	Prices map[string]model.PriceQuote `json:"prices"`

	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Source    string          `json:"source"`
	Volume    float64         `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// DecodeFrame parses raw frame bytes into the tagged union. A JSON parse
// failure is returned as an error; a well-formed frame of unrecognized
// shape decodes to KindUnknown.
func DecodeFrame(data []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Frame{Kind: KindUnknown}, fmt.Errorf("parse frame: %w", err)
	}

	switch env.Type {
	case "snapshot":
		snap := env.Prices
		if snap == nil {
			snap = map[string]model.PriceQuote{}
		}
		for sym, q := range snap {
			if q.Symbol == "" {
				q.Symbol = sym
				snap[sym] = q
			}
		}
		return Frame{Kind: KindSnapshot, Snapshot: snap}, nil

	case "heartbeat", "pong":
		return Frame{Kind: KindHeartbeat}, nil

	case "":
		if env.Symbol != "" {
			return Frame{Kind: KindDelta, Delta: model.PriceQuote{
				Symbol:    env.Symbol,
				Price:     env.Price,
				Currency:  env.Currency,
				Source:    env.Source,
				Volume:    env.Volume,
				Timestamp: env.Timestamp,
			}}, nil
		}
		return Frame{Kind: KindUnknown}, nil

	default:
		return Frame{Kind: KindUnknown}, nil
	}
}

// pingMessage is the outbound liveness probe.
type pingMessage struct {
	Type string `json:"type"`
}
