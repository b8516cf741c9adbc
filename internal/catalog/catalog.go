// Package catalog holds the fixed instrument catalog the dashboard tracks.
// The catalog is loaded once at startup and never mutated; view ordering
// everywhere in the application is the catalog's insertion order.
package catalog

import "fmt"

// Category groups instruments for filtered views.
type Category string

const (
	CategoryCrypto      Category = "crypto"
	CategoryStocks      Category = "stocks"
	CategoryIndices     Category = "indices"
	CategoryCommodities Category = "commodities"
	CategoryOther       Category = "other"
)

// CategoryAll is the filter value matching every instrument.
const CategoryAll = "all"

// Instrument is one entry of the static catalog.
type Instrument struct {
	Symbol   string
	Name     string
	Category Category
	Icon     string
}

// Catalog is an immutable, ordered set of instruments keyed by symbol.
type Catalog struct {
	instruments []Instrument
	index       map[string]int
}

// New builds a catalog from an ordered instrument list.
// Symbols must be unique.
func New(instruments []Instrument) (*Catalog, error) {
	c := &Catalog{
		instruments: make([]Instrument, len(instruments)),
		index:       make(map[string]int, len(instruments)),
	}
	copy(c.instruments, instruments)
	for i, in := range c.instruments {
		if in.Symbol == "" {
			return nil, fmt.Errorf("instrument %d: empty symbol", i)
		}
		if _, dup := c.index[in.Symbol]; dup {
			return nil, fmt.Errorf("duplicate symbol %q", in.Symbol)
		}
		c.index[in.Symbol] = i
	}
	return c, nil
}

// Get returns the instrument for a symbol.
func (c *Catalog) Get(symbol string) (Instrument, bool) {
	i, ok := c.index[symbol]
	if !ok {
		return Instrument{}, false
	}
	return c.instruments[i], true
}

// Has reports whether the symbol is part of the catalog.
func (c *Catalog) Has(symbol string) bool {
	_, ok := c.index[symbol]
	return ok
}

// Instruments returns the catalog in insertion order.
func (c *Catalog) Instruments() []Instrument {
	out := make([]Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

// Len returns the number of instruments.
func (c *Catalog) Len() int {
	return len(c.instruments)
}

// Default returns the built-in dashboard catalog.
func Default() *Catalog {
	c, err := New(defaultInstruments)
	if err != nil {
		// defaultInstruments is a compile-time constant list; a duplicate
		// here is a programming error.
		panic(err)
	}
	return c
}

var defaultInstruments = []Instrument{
	{Symbol: "BTC", Name: "Bitcoin", Category: CategoryCrypto, Icon: "₿"},
	{Symbol: "ETH", Name: "Ethereum", Category: CategoryCrypto, Icon: "Ξ"},
	{Symbol: "SOL", Name: "Solana", Category: CategoryCrypto, Icon: "◎"},
	{Symbol: "XRP", Name: "Ripple", Category: CategoryCrypto, Icon: "✕"},
	{Symbol: "ADA", Name: "Cardano", Category: CategoryCrypto, Icon: "₳"},
	{Symbol: "DOGE", Name: "Dogecoin", Category: CategoryCrypto, Icon: "Ð"},
	{Symbol: "DOT", Name: "Polkadot", Category: CategoryCrypto, Icon: "●"},
	{Symbol: "LINK", Name: "Chainlink", Category: CategoryCrypto, Icon: "⬡"},
	{Symbol: "LTC", Name: "Litecoin", Category: CategoryCrypto, Icon: "Ł"},
	{Symbol: "BNB", Name: "BNB", Category: CategoryCrypto, Icon: "◆"},
	{Symbol: "AVAX", Name: "Avalanche", Category: CategoryCrypto, Icon: "▲"},
	{Symbol: "ATOM", Name: "Cosmos", Category: CategoryCrypto, Icon: "⚛"},
	{Symbol: "APPLE", Name: "Apple Inc.", Category: CategoryStocks, Icon: "A"},
	{Symbol: "MICROSOFT", Name: "Microsoft", Category: CategoryStocks, Icon: "⊞"},
	{Symbol: "GOOGLE", Name: "Alphabet", Category: CategoryStocks, Icon: "G"},
	{Symbol: "AMAZON", Name: "Amazon", Category: CategoryStocks, Icon: "a"},
	{Symbol: "NVIDIA", Name: "NVIDIA", Category: CategoryStocks, Icon: "◇"},
	{Symbol: "META", Name: "Meta Platforms", Category: CategoryStocks, Icon: "∞"},
	{Symbol: "TESLA", Name: "Tesla", Category: CategoryStocks, Icon: "T"},
	{Symbol: "RELIANCE", Name: "Reliance Industries", Category: CategoryStocks, Icon: "R"},
	{Symbol: "TCS", Name: "Tata Consultancy", Category: CategoryStocks, Icon: "T"},
	{Symbol: "INFOSYS", Name: "Infosys", Category: CategoryStocks, Icon: "I"},
	{Symbol: "SP500", Name: "S&P 500", Category: CategoryIndices, Icon: "§"},
	{Symbol: "NASDAQ", Name: "NASDAQ Composite", Category: CategoryIndices, Icon: "N"},
	{Symbol: "DOWJONES", Name: "Dow Jones Industrial", Category: CategoryIndices, Icon: "D"},
	{Symbol: "NIFTY50", Name: "NIFTY 50", Category: CategoryIndices, Icon: "₹"},
	{Symbol: "SENSEX", Name: "BSE SENSEX", Category: CategoryIndices, Icon: "₹"},
	{Symbol: "GOLD", Name: "Gold", Category: CategoryCommodities, Icon: "Au"},
	{Symbol: "SILVER", Name: "Silver", Category: CategoryCommodities, Icon: "Ag"},
	{Symbol: "CRUDE_OIL", Name: "Crude Oil", Category: CategoryCommodities, Icon: "🛢"},
	{Symbol: "NATURAL_GAS", Name: "Natural Gas", Category: CategoryCommodities, Icon: "♨"},
}
