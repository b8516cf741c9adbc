package pricestore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avertin/pricepulse/internal/catalog"
	"github.com/avertin/pricepulse/internal/model"
)

func quote(symbol string, price float64, ts time.Time) model.PriceQuote {
	return model.PriceQuote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(price),
		Currency:  "USD",
		Timestamp: ts,
	}
}

func TestUpsertOne_CapturesPrevious(t *testing.T) {
	s := NewStore(catalog.Default())
	t0 := time.Now().UTC()
	t1 := t0.Add(time.Second)

	if _, had := s.UpsertOne(quote("BTC", 65000, t0)); had {
		t.Error("first upsert reported a previous quote")
	}

	prev, had := s.UpsertOne(quote("BTC", 65500, t1))
	if !had {
		t.Fatal("second upsert reported no previous quote")
	}
	if !prev.Price.Equal(decimal.NewFromInt(65000)) {
		t.Errorf("previous price = %s, want 65000", prev.Price)
	}

	got, ok := s.Get("BTC")
	if !ok {
		t.Fatal("BTC missing after upsert")
	}
	if !got.Price.Equal(decimal.NewFromInt(65500)) {
		t.Errorf("current price = %s, want 65500", got.Price)
	}
	if !got.Timestamp.Equal(t1) {
		t.Errorf("current timestamp = %v, want %v", got.Timestamp, t1)
	}
}

func TestMergeSnapshot(t *testing.T) {
	s := NewStore(catalog.Default())
	now := time.Now().UTC()

	snap := map[string]model.PriceQuote{
		"BTC":  quote("BTC", 65000, now),
		"ETH":  quote("ETH", 3500, now),
		"GOLD": quote("GOLD", 2400, now),
	}
	s.MergeSnapshot(snap)

	for sym, want := range snap {
		got, ok := s.Get(sym)
		if !ok {
			t.Fatalf("Get(%q) missing after snapshot", sym)
		}
		if !got.Price.Equal(want.Price) {
			t.Errorf("Get(%q).Price = %s, want %s", sym, got.Price, want.Price)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestMergeSnapshot_FillsSymbolFromKey(t *testing.T) {
	s := NewStore(catalog.Default())

	s.MergeSnapshot(map[string]model.PriceQuote{
		"ETH": {Price: decimal.NewFromInt(3500)},
	})

	got, _ := s.Get("ETH")
	if got.Symbol != "ETH" {
		t.Errorf("Symbol = %q, want ETH", got.Symbol)
	}
}

func TestFilteredView_CategoryAndOrder(t *testing.T) {
	cat := catalog.Default()
	s := NewStore(cat)
	now := time.Now().UTC()

	// Populate out of catalog order on purpose.
	s.UpsertOne(quote("GOLD", 2400, now))
	s.UpsertOne(quote("ETH", 3500, now))
	s.UpsertOne(quote("BTC", 65000, now))
	s.UpsertOne(quote("SP500", 5500, now))

	crypto := s.FilteredView("crypto")
	if len(crypto) != 2 {
		t.Fatalf("len(crypto) = %d, want 2", len(crypto))
	}
	// Catalog order: BTC before ETH.
	if crypto[0].Instrument.Symbol != "BTC" || crypto[1].Instrument.Symbol != "ETH" {
		t.Errorf("crypto order = [%s %s], want [BTC ETH]",
			crypto[0].Instrument.Symbol, crypto[1].Instrument.Symbol)
	}

	all := s.FilteredView(catalog.CategoryAll)
	if len(all) != 4 {
		t.Fatalf("len(all) = %d, want 4", len(all))
	}
	// Insertion order of the catalog, not alphabetical and not upsert order.
	wantOrder := []string{"BTC", "ETH", "SP500", "GOLD"}
	for i, want := range wantOrder {
		if all[i].Instrument.Symbol != want {
			t.Errorf("all[%d] = %s, want %s", i, all[i].Instrument.Symbol, want)
		}
	}
}

func TestFilteredView_SkipsSymbolsWithoutQuote(t *testing.T) {
	s := NewStore(catalog.Default())
	s.UpsertOne(quote("BTC", 65000, time.Now()))

	view := s.FilteredView(catalog.CategoryAll)
	if len(view) != 1 {
		t.Errorf("len(view) = %d, want 1", len(view))
	}
}

func TestChangePercent(t *testing.T) {
	s := NewStore(catalog.Default())
	now := time.Now().UTC()

	if _, ok := s.ChangePercent("BTC"); ok {
		t.Error("ChangePercent on empty store should report not-ok")
	}

	s.UpsertOne(quote("BTC", 64000, now))
	s.UpsertOne(quote("BTC", 65600, now.Add(time.Minute)))

	change, ok := s.ChangePercent("BTC")
	if !ok {
		t.Fatal("ChangePercent not ok after two quotes")
	}
	// (65600 - 64000) / 64000 * 100 = 2.5
	if !change.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("change = %s, want 2.5", change)
	}
}

func TestChangePercent_ZeroReference(t *testing.T) {
	s := NewStore(catalog.Default())

	s.UpsertOne(model.PriceQuote{Symbol: "BTC", Price: decimal.Zero})
	s.UpsertOne(quote("BTC", 100, time.Now()))

	if _, ok := s.ChangePercent("BTC"); ok {
		t.Error("zero reference price must not produce a change percent")
	}
}
