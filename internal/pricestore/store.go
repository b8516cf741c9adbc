// Package pricestore holds the canonical in-memory price cache: one quote
// per catalog symbol, overwritten wholesale on every inbound frame.
package pricestore

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/avertin/pricepulse/internal/catalog"
	"github.com/avertin/pricepulse/internal/model"
)

// Entry pairs an instrument with its current quote for filtered views.
type Entry struct {
	Instrument catalog.Instrument
	Quote      model.PriceQuote
}

// Store is the canonical symbol → latest quote mapping. The catalog is
// small and bounded, so there is no eviction.
type Store struct {
	catalog *catalog.Catalog

	mu     sync.RWMutex
	quotes map[string]model.PriceQuote
	refs   map[string]decimal.Decimal // first price seen per symbol this session
}

// NewStore creates an empty price store over the given catalog.
func NewStore(cat *catalog.Catalog) *Store {
	return &Store{
		catalog: cat,
		quotes:  make(map[string]model.PriceQuote, cat.Len()),
		refs:    make(map[string]decimal.Decimal, cat.Len()),
	}
}

// Get returns the latest quote for a symbol.
func (s *Store) Get(symbol string) (model.PriceQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	return q, ok
}

// UpsertOne stores a quote and returns the previous quote for the symbol,
// if any. The new quote fully replaces the old one.
func (s *Store) UpsertOne(q model.PriceQuote) (model.PriceQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.quotes[q.Symbol]
	s.quotes[q.Symbol] = q
	if _, ok := s.refs[q.Symbol]; !ok {
		s.refs[q.Symbol] = q.Price
	}
	return prev, had
}

// MergeSnapshot bulk-upserts every quote of a snapshot frame. Iteration
// order is irrelevant: keys are unique, so the final state is the same.
// No previous values are captured.
func (s *Store) MergeSnapshot(quotes map[string]model.PriceQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sym, q := range quotes {
		if q.Symbol == "" {
			q.Symbol = sym
		}
		s.quotes[sym] = q
		if _, ok := s.refs[sym]; !ok {
			s.refs[sym] = q.Price
		}
	}
}

// Len returns the number of symbols holding a quote.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

// FilteredView returns the entries whose instrument category matches, in
// catalog insertion order. catalog.CategoryAll matches everything. Symbols
// without a quote yet are skipped.
func (s *Store) FilteredView(category string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, in := range s.catalog.Instruments() {
		if category != catalog.CategoryAll && string(in.Category) != category {
			continue
		}
		q, ok := s.quotes[in.Symbol]
		if !ok {
			continue
		}
		out = append(out, Entry{Instrument: in, Quote: q})
	}
	return out
}

// ChangePercent computes the percentage change of the current price against
// the session reference price (the first price seen for the symbol). The
// second return is false when no quote or reference exists, or the
// reference is zero.
func (s *Store) ChangePercent(symbol string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[symbol]
	if !ok {
		return decimal.Zero, false
	}
	ref, ok := s.refs[symbol]
	if !ok || ref.IsZero() {
		return decimal.Zero, false
	}

	hundred := decimal.NewFromInt(100)
	return q.Price.Sub(ref).Div(ref).Mul(hundred), true
}
