package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ports"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPortfolio(cash string) *domain.Portfolio {
	return domain.NewPortfolio("pf-1", "user-1", decimal.RequireFromString(cash), testNow)
}

func newTestAsset(symbol, price string) *domain.Asset {
	return &domain.Asset{
		ID:     "a-" + symbol,
		Symbol: symbol,
		Name:   symbol,
		Class:  domain.ClassStock,
		Price:  decimal.RequireFromString(price),
	}
}

func TestExecuteTrade_Buy(t *testing.T) {
	pf := newTestPortfolio("100000")
	asset := newTestAsset("AAPL", "150.25")
	initial := pf.Cash

	trade, err := ExecuteTrade(pf, asset, domain.Buy, 10, initial, testNow)
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.Equal(t, "98497.5", pf.Cash.String())
	assert.Equal(t, "1502.5", trade.Total.String())
	assert.Equal(t, domain.TradeExecuted, trade.Status)
	assert.Equal(t, domain.Buy, trade.Side)
	assert.NotEmpty(t, trade.ID)

	pos := pf.Position("AAPL")
	require.NotNil(t, pos)
	assert.Equal(t, int64(10), pos.Quantity)
	assert.Equal(t, "150.25", pos.AvgCost.String())
	assert.Equal(t, "150.25", pos.CurrentPrice.String())

	// A trade at market price moves value between cash and positions but
	// never changes the total.
	assert.True(t, pf.TotalValue().Equal(initial), "total value changed: %s", pf.TotalValue())
}

func TestExecuteTrade_BuyReAveragesCostBasis(t *testing.T) {
	pf := newTestPortfolio("100000")
	initial := pf.Cash

	asset := newTestAsset("TSLA", "100")
	_, err := ExecuteTrade(pf, asset, domain.Buy, 10, initial, testNow)
	require.NoError(t, err)

	asset.Price = decimal.RequireFromString("200")
	_, err = ExecuteTrade(pf, asset, domain.Buy, 10, initial, testNow)
	require.NoError(t, err)

	pos := pf.Position("TSLA")
	require.NotNil(t, pos)
	assert.Equal(t, int64(20), pos.Quantity)
	assert.True(t, pos.AvgCost.Equal(decimal.RequireFromString("150")), "avg cost = %s", pos.AvgCost)
	assert.Equal(t, "200", pos.CurrentPrice.String())
	assert.Equal(t, "97000", pf.Cash.String())
}

func TestExecuteTrade_SellRealizesProfit(t *testing.T) {
	pf := newTestPortfolio("100000")
	initial := pf.Cash
	asset := newTestAsset("AAPL", "150.25")

	_, err := ExecuteTrade(pf, asset, domain.Buy, 10, initial, testNow)
	require.NoError(t, err)

	// Price appreciates, then the learner exits in full.
	asset.Price = decimal.RequireFromString("160.25")
	Revalue(pf, []*domain.Asset{asset})

	trade, err := ExecuteTrade(pf, asset, domain.Sell, 10, initial, testNow)
	require.NoError(t, err)
	assert.Equal(t, "1602.5", trade.Total.String())
	assert.Equal(t, "100097.5", pf.Cash.String())

	// Fully closed positions do not persist.
	assert.Nil(t, pf.Position("AAPL"))
	assert.Len(t, pf.Positions, 0)
}

func TestExecuteTrade_PartialSellKeepsCostBasis(t *testing.T) {
	pf := newTestPortfolio("100000")
	initial := pf.Cash
	asset := newTestAsset("AAPL", "100")

	_, err := ExecuteTrade(pf, asset, domain.Buy, 10, initial, testNow)
	require.NoError(t, err)

	asset.Price = decimal.RequireFromString("110")
	_, err = ExecuteTrade(pf, asset, domain.Sell, 4, initial, testNow)
	require.NoError(t, err)

	pos := pf.Position("AAPL")
	require.NotNil(t, pos)
	assert.Equal(t, int64(6), pos.Quantity)
	assert.Equal(t, "100", pos.AvgCost.String(), "partial sells must not touch the cost basis")
	assert.Equal(t, "110", pos.CurrentPrice.String())
}

func TestExecuteTrade_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		cash     string
		side     domain.TradeSide
		quantity int64
		setup    func(pf *domain.Portfolio, asset *domain.Asset)
		wantErr  error
	}{
		{
			name:     "zero quantity",
			cash:     "100000",
			side:     domain.Buy,
			quantity: 0,
			wantErr:  ports.ErrInvalidQuantity,
		},
		{
			name:     "negative quantity",
			cash:     "100000",
			side:     domain.Sell,
			quantity: -5,
			wantErr:  ports.ErrInvalidQuantity,
		},
		{
			name:     "insufficient funds",
			cash:     "100",
			side:     domain.Buy,
			quantity: 1,
			wantErr:  ports.ErrInsufficientFunds,
		},
		{
			name:     "sell without position",
			cash:     "100000",
			side:     domain.Sell,
			quantity: 1,
			wantErr:  ports.ErrInsufficientHoldings,
		},
		{
			name:     "sell more than held",
			cash:     "100000",
			side:     domain.Sell,
			quantity: 11,
			setup: func(pf *domain.Portfolio, asset *domain.Asset) {
				_, err := ExecuteTrade(pf, asset, domain.Buy, 10, pf.Cash, testNow)
				if err != nil {
					panic(err)
				}
			},
			wantErr: ports.ErrInsufficientHoldings,
		},
		{
			name:     "unknown side",
			cash:     "100000",
			side:     domain.TradeSide("short"),
			quantity: 1,
			wantErr:  ports.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := newTestPortfolio(tt.cash)
			asset := newTestAsset("AAPL", "150.25")
			if tt.setup != nil {
				tt.setup(pf, asset)
			}

			cashBefore := pf.Cash
			valueBefore := pf.TotalValue()
			metricsBefore := len(pf.Performance)

			trade, err := ExecuteTrade(pf, asset, tt.side, tt.quantity, decimal.RequireFromString(tt.cash), testNow)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			assert.Nil(t, trade)

			// A rejected trade leaves the portfolio untouched.
			assert.True(t, pf.Cash.Equal(cashBefore))
			assert.True(t, pf.TotalValue().Equal(valueBefore))
			assert.Len(t, pf.Performance, metricsBefore)
		})
	}
}

func TestExecuteTrade_AppendsPerformanceMetric(t *testing.T) {
	pf := newTestPortfolio("100000")
	initial := pf.Cash
	asset := newTestAsset("AAPL", "150.25")

	require.Len(t, pf.Performance, 1)

	_, err := ExecuteTrade(pf, asset, domain.Buy, 10, initial, testNow)
	require.NoError(t, err)
	require.Len(t, pf.Performance, 2)

	last := pf.Performance[1]
	assert.True(t, last.TotalValue.Equal(initial))
	assert.True(t, last.ProfitLoss.IsZero())
	assert.Zero(t, last.ProfitLossPercent)
}

func TestRevalue(t *testing.T) {
	pf := newTestPortfolio("100000")
	initial := pf.Cash
	asset := newTestAsset("AAPL", "100")
	_, err := ExecuteTrade(pf, asset, domain.Buy, 10, initial, testNow)
	require.NoError(t, err)

	repriced := newTestAsset("AAPL", "125")
	other := newTestAsset("GOOGL", "2800.50")
	Revalue(pf, []*domain.Asset{repriced, other})

	pos := pf.Position("AAPL")
	require.NotNil(t, pos)
	assert.Equal(t, "125", pos.CurrentPrice.String())
	assert.Equal(t, "100", pos.AvgCost.String())
	assert.Equal(t, "250", pos.ProfitLoss().String())
	assert.InDelta(t, 25.0, pos.ProfitLossPercent(), 1e-9)
}

func TestAppendMetric_MeasuresAgainstInitialCash(t *testing.T) {
	pf := newTestPortfolio("100000")
	initial := pf.Cash
	asset := newTestAsset("AAPL", "100")
	_, err := ExecuteTrade(pf, asset, domain.Buy, 100, initial, testNow)
	require.NoError(t, err)

	// 10% rally on the position: 100 shares x 10 = 1000 profit.
	Revalue(pf, []*domain.Asset{newTestAsset("AAPL", "110")})
	AppendMetric(pf, initial, testNow.Add(24*time.Hour))

	last := pf.Performance[len(pf.Performance)-1]
	assert.Equal(t, "101000", last.TotalValue.String())
	assert.Equal(t, "1000", last.ProfitLoss.String())
	assert.InDelta(t, 1.0, last.ProfitLossPercent, 1e-9)

	// Metrics are recomputed from scratch, not accumulated: a second
	// snapshot at the same prices reports the same figures.
	AppendMetric(pf, initial, testNow.Add(48*time.Hour))
	again := pf.Performance[len(pf.Performance)-1]
	assert.Equal(t, "1000", again.ProfitLoss.String())
}
