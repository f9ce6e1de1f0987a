package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is an open holding in a single asset, keyed by symbol within a
// portfolio. A position with quantity <= 0 must not persist; the ledger
// removes it.
type Position struct {
	ID           string          `json:"id"`
	AssetID      string          `json:"assetId"`
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AvgCost      decimal.Decimal `json:"averagePrice"` // weighted average of all buy fills
	CurrentPrice decimal.Decimal `json:"currentPrice"` // mirrors the asset's latest price
}

// MarketValue is quantity x current price.
func (p *Position) MarketValue() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// ProfitLoss is quantity x (current price - average cost).
func (p *Position) ProfitLoss() decimal.Decimal {
	return p.CurrentPrice.Sub(p.AvgCost).Mul(decimal.NewFromInt(p.Quantity))
}

// ProfitLossPercent is the unrealized P/L relative to cost basis, in percent.
func (p *Position) ProfitLossPercent() float64 {
	cost := p.AvgCost.Mul(decimal.NewFromInt(p.Quantity))
	if cost.IsZero() {
		return 0
	}
	pct, _ := p.ProfitLoss().Div(cost).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// Clone returns an independent copy of the position.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// PerformanceMetric is an immutable valuation snapshot, appended on every
// trade and every day advance. P/L figures are measured against the
// scenario's initial cash.
type PerformanceMetric struct {
	Timestamp         time.Time       `json:"timestamp"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	ProfitLoss        decimal.Decimal `json:"profitLoss"`
	ProfitLossPercent float64         `json:"profitLossPercent"`
}

// Portfolio owns the learner's cash, open positions and performance history
// for one in-progress scenario.
type Portfolio struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	Cash        decimal.Decimal      `json:"cash"`
	Positions   map[string]*Position `json:"positions"`
	Performance []PerformanceMetric  `json:"performance"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewPortfolio creates a fresh portfolio with the given starting cash and a
// single initial performance snapshot at zero profit.
func NewPortfolio(id, userID string, initialCash decimal.Decimal, now time.Time) *Portfolio {
	return &Portfolio{
		ID:        id,
		UserID:    userID,
		Cash:      initialCash,
		Positions: make(map[string]*Position),
		Performance: []PerformanceMetric{{
			Timestamp:         now,
			TotalValue:        initialCash,
			ProfitLoss:        decimal.Zero,
			ProfitLossPercent: 0,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalValue is cash plus the market value of every open position.
func (pf *Portfolio) TotalValue() decimal.Decimal {
	total := pf.Cash
	for _, pos := range pf.Positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// Position returns the open position for symbol, or nil.
func (pf *Portfolio) Position(symbol string) *Position {
	return pf.Positions[symbol]
}

// Clone deep-copies the portfolio. Trade execution and day advancement
// operate on a clone and commit it only after persistence succeeds, so a
// storage failure cannot leave in-memory state desynchronized.
func (pf *Portfolio) Clone() *Portfolio {
	c := *pf
	c.Positions = make(map[string]*Position, len(pf.Positions))
	for sym, pos := range pf.Positions {
		c.Positions[sym] = pos.Clone()
	}
	c.Performance = make([]PerformanceMetric, len(pf.Performance))
	copy(c.Performance, pf.Performance)
	return &c
}
