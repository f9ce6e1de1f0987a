package domain

import "github.com/shopspring/decimal"

// Asset is a tradable instrument in the simulated market.
// Created once per scenario start from the catalog, mutated every simulated
// day by the price engine, never deleted mid-scenario.
type Asset struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Class     AssetClass      `json:"type"`
	Price     decimal.Decimal `json:"currentPrice"`
	Change24h float64         `json:"change24h"` // percent delta of the latest daily move
	Volume    int64           `json:"volume"`
}

// Clone returns an independent copy of the asset.
func (a *Asset) Clone() *Asset {
	c := *a
	return &c
}

// CloneAssets deep-copies an asset slice.
func CloneAssets(assets []*Asset) []*Asset {
	out := make([]*Asset, len(assets))
	for i, a := range assets {
		out[i] = a.Clone()
	}
	return out
}
