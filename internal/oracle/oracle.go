package oracle

import "math/big"

// PriceOracle resolves a token symbol to its USD unit price. Implementations
// must value unknown tokens at one USD per unit rather than failing, so
// aggregation over arbitrary positions never errors.
type PriceOracle interface {
	Price(token string) *big.Int
}

// Static is a fixed in-process price table.
type Static struct {
	prices map[string]int64
}

// NewStatic builds the default price table for the supported stablecoin set.
func NewStatic() *Static {
	return &Static{prices: map[string]int64{
		"USDC": 1,
		"USDT": 1,
		"DAI":  1,
		"ICP":  5,
	}}
}

// NewStaticWithPrices builds a price table from the provided entries.
func NewStaticWithPrices(prices map[string]int64) *Static {
	table := make(map[string]int64, len(prices))
	for token, price := range prices {
		table[token] = price
	}
	return &Static{prices: table}
}

// Price returns the fixed USD unit price for the token, or 1 when the token
// has no table entry.
func (s *Static) Price(token string) *big.Int {
	if price, ok := s.prices[token]; ok {
		return big.NewInt(price)
	}
	return big.NewInt(1)
}
