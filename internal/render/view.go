// Package render derives an immutable view from synchronization-core
// snapshots and computes patch instructions between successive views.
//
// The derivation is pure: it knows nothing about presentation technology
// and never reaches back into the stores it was built from.
package render

import (
	"github.com/shopspring/decimal"

	"github.com/avertin/pricepulse/internal/model"
	"github.com/avertin/pricepulse/internal/pricestore"
	"github.com/avertin/pricepulse/internal/stream"
)

// Row is one rendered instrument line.
type Row struct {
	Symbol        string
	Name          string
	Category      string
	Icon          string
	Price         decimal.Decimal
	ChangePercent decimal.Decimal
	HasChange     bool
	AlertCount    int // active alert rules on this symbol
}

// View is a complete immutable dashboard state.
type View struct {
	Rows          []Row
	Connection    stream.State
	Authenticated bool
	AlertTotal    int
}

// Input is the snapshot set a view is derived from. Callers assemble it
// from the price store, alert registry, and stream state.
type Input struct {
	Entries       []pricestore.Entry
	Changes       map[string]decimal.Decimal
	Rules         []model.AlertRule
	Connection    stream.State
	Authenticated bool
}

// Build derives a view. Row order follows the entry order, which callers
// obtain from the store in catalog order.
func Build(in Input) View {
	active := make(map[string]int)
	for _, r := range in.Rules {
		if r.Active {
			active[r.Symbol]++
		}
	}

	rows := make([]Row, 0, len(in.Entries))
	for _, e := range in.Entries {
		row := Row{
			Symbol:     e.Instrument.Symbol,
			Name:       e.Instrument.Name,
			Category:   string(e.Instrument.Category),
			Icon:       e.Instrument.Icon,
			Price:      e.Quote.Price,
			AlertCount: active[e.Instrument.Symbol],
		}
		if change, ok := in.Changes[e.Instrument.Symbol]; ok {
			row.ChangePercent = change
			row.HasChange = true
		}
		rows = append(rows, row)
	}

	return View{
		Rows:          rows,
		Connection:    in.Connection,
		Authenticated: in.Authenticated,
		AlertTotal:    len(in.Rules),
	}
}

// PatchOp is the kind of a view patch.
type PatchOp string

const (
	OpAdd    PatchOp = "add"
	OpUpdate PatchOp = "update"
	OpRemove PatchOp = "remove"
)

// Patch is one instruction for bringing a rendered surface from the
// previous view to the next one.
type Patch struct {
	Op  PatchOp
	Row Row
}

// Diff computes the patches between two views, keyed by symbol. Added and
// updated rows appear in next-view order; removals follow.
func Diff(prev, next View) []Patch {
	prevRows := make(map[string]Row, len(prev.Rows))
	for _, r := range prev.Rows {
		prevRows[r.Symbol] = r
	}

	var patches []Patch
	seen := make(map[string]struct{}, len(next.Rows))
	for _, r := range next.Rows {
		seen[r.Symbol] = struct{}{}
		old, ok := prevRows[r.Symbol]
		switch {
		case !ok:
			patches = append(patches, Patch{Op: OpAdd, Row: r})
		case !rowEqual(old, r):
			patches = append(patches, Patch{Op: OpUpdate, Row: r})
		}
	}

	for _, r := range prev.Rows {
		if _, ok := seen[r.Symbol]; !ok {
			patches = append(patches, Patch{Op: OpRemove, Row: r})
		}
	}

	return patches
}

func rowEqual(a, b Row) bool {
	return a.Symbol == b.Symbol &&
		a.Name == b.Name &&
		a.Category == b.Category &&
		a.Icon == b.Icon &&
		a.Price.Equal(b.Price) &&
		a.ChangePercent.Equal(b.ChangePercent) &&
		a.HasChange == b.HasChange &&
		a.AlertCount == b.AlertCount
}
