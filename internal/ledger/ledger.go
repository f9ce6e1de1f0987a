// Package ledger implements portfolio bookkeeping: trade execution against
// current market prices, position revaluation on day advances, and the
// append-only performance history.
//
// All functions mutate the portfolio they are given and nothing else.
// Callers that need commit-after-persist semantics pass a clone and swap it
// in once storage succeeds.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ports"
)

// ExecuteTrade validates and applies a market order against the portfolio
// and returns the resulting audit record. Market orders only; the fill
// price is the asset's current price. On any validation error the portfolio
// is left untouched.
func ExecuteTrade(
	pf *domain.Portfolio,
	asset *domain.Asset,
	side domain.TradeSide,
	quantity int64,
	initialCash decimal.Decimal,
	now time.Time,
) (*domain.Trade, error) {
	if quantity <= 0 {
		return nil, ports.ErrInvalidQuantity
	}

	price := asset.Price
	total := price.Mul(decimal.NewFromInt(quantity))

	switch side {
	case domain.Buy:
		if pf.Cash.LessThan(total) {
			return nil, fmt.Errorf("buy %d %s for %s with cash %s: %w",
				quantity, asset.Symbol, total, pf.Cash, ports.ErrInsufficientFunds)
		}
		pf.Cash = pf.Cash.Sub(total)
		applyBuy(pf, asset, quantity, price)

	case domain.Sell:
		pos := pf.Position(asset.Symbol)
		if pos == nil || pos.Quantity < quantity {
			held := int64(0)
			if pos != nil {
				held = pos.Quantity
			}
			return nil, fmt.Errorf("sell %d %s holding %d: %w",
				quantity, asset.Symbol, held, ports.ErrInsufficientHoldings)
		}
		pf.Cash = pf.Cash.Add(total)
		pos.Quantity -= quantity
		pos.CurrentPrice = price
		if pos.Quantity <= 0 {
			// Cost basis is discarded with the position; flat positions
			// do not persist.
			delete(pf.Positions, asset.Symbol)
		}

	default:
		return nil, fmt.Errorf("trade side %q: %w", side, ports.ErrInvalidRequest)
	}

	pf.UpdatedAt = now
	AppendMetric(pf, initialCash, now)

	return &domain.Trade{
		ID:          uuid.NewString(),
		PortfolioID: pf.ID,
		AssetID:     asset.ID,
		Symbol:      asset.Symbol,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		Total:       total,
		Timestamp:   now,
		Status:      domain.TradeExecuted,
	}, nil
}

// applyBuy adds quantity at price to the symbol's position, re-averaging the
// cost basis, or opens a new position on the first buy.
func applyBuy(pf *domain.Portfolio, asset *domain.Asset, quantity int64, price decimal.Decimal) {
	pos := pf.Position(asset.Symbol)
	if pos == nil {
		pf.Positions[asset.Symbol] = &domain.Position{
			ID:           uuid.NewString(),
			AssetID:      asset.ID,
			Symbol:       asset.Symbol,
			Quantity:     quantity,
			AvgCost:      price,
			CurrentPrice: price,
		}
		return
	}

	oldQty := decimal.NewFromInt(pos.Quantity)
	newQty := decimal.NewFromInt(pos.Quantity + quantity)
	fillCost := price.Mul(decimal.NewFromInt(quantity))
	pos.AvgCost = pos.AvgCost.Mul(oldQty).Add(fillCost).Div(newQty)
	pos.Quantity += quantity
	pos.CurrentPrice = price
}

// Revalue mirrors the given asset prices into the portfolio's open
// positions. Symbols without a position are ignored.
func Revalue(pf *domain.Portfolio, assets []*domain.Asset) {
	for _, a := range assets {
		if pos := pf.Position(a.Symbol); pos != nil {
			pos.CurrentPrice = a.Price
		}
	}
}

// AppendMetric appends a performance snapshot measured against the
// scenario's initial cash. Profit figures are recomputed from the current
// total value every time, never carried forward.
func AppendMetric(pf *domain.Portfolio, initialCash decimal.Decimal, now time.Time) {
	total := pf.TotalValue()
	pl := total.Sub(initialCash)

	var plPct float64
	if !initialCash.IsZero() {
		plPct, _ = pl.Div(initialCash).Mul(decimal.NewFromInt(100)).Float64()
	}

	pf.Performance = append(pf.Performance, domain.PerformanceMetric{
		Timestamp:         now,
		TotalValue:        total,
		ProfitLoss:        pl,
		ProfitLossPercent: plPct,
	})
}
