package scenario

import (
	"time"

	"github.com/shopspring/decimal"

	"tradeTutor/internal/domain"
)

// PerformanceSummary condenses a finished run into the figures the
// evaluation oracle is asked to judge and the result document records.
type PerformanceSummary struct {
	InitialCash   decimal.Decimal
	FinalValue    decimal.Decimal
	ReturnPercent float64
	TotalTrades   int
	BuyTrades     int
	SellTrades    int
	MaxDrawdown   float64 // deepest peak-to-trough decline of total value, as a fraction
	DaysPlayed    int
	FirstTradeAt  time.Time
	LastTradeAt   time.Time
}

// Summarize computes performance figures from the portfolio's valuation
// history and the trade log.
func Summarize(sc *domain.Scenario, pf *domain.Portfolio, trades []*domain.Trade) PerformanceSummary {
	s := PerformanceSummary{
		InitialCash: sc.InitialCash,
		FinalValue:  pf.TotalValue(),
		TotalTrades: len(trades),
	}

	if !sc.InitialCash.IsZero() {
		s.ReturnPercent, _ = s.FinalValue.Sub(sc.InitialCash).
			Div(sc.InitialCash).Mul(decimal.NewFromInt(100)).Float64()
	}

	for _, t := range trades {
		switch t.Side {
		case domain.Buy:
			s.BuyTrades++
		case domain.Sell:
			s.SellTrades++
		}
		if s.FirstTradeAt.IsZero() || t.Timestamp.Before(s.FirstTradeAt) {
			s.FirstTradeAt = t.Timestamp
		}
		if t.Timestamp.After(s.LastTradeAt) {
			s.LastTradeAt = t.Timestamp
		}
	}

	// Walk the equity curve for the deepest drawdown.
	peak := decimal.Zero
	for _, m := range pf.Performance {
		if m.TotalValue.GreaterThan(peak) {
			peak = m.TotalValue
			continue
		}
		if peak.IsZero() {
			continue
		}
		dd, _ := peak.Sub(m.TotalValue).Div(peak).Float64()
		if dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	// The initial snapshot does not count as a played day.
	if n := len(pf.Performance); n > 1 {
		s.DaysPlayed = n - 1
	}
	return s
}
