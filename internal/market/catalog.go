package market

import (
	"github.com/shopspring/decimal"

	"tradeTutor/internal/domain"
)

// DefaultCatalog returns the fixed catalog of tradable instruments with
// their starting prices and volumes. The catalog is reset to this state at
// every scenario start; assets are never added or removed mid-scenario.
func DefaultCatalog() []*domain.Asset {
	return []*domain.Asset{
		{
			ID:        "1",
			Symbol:    "AAPL",
			Name:      "Apple Inc.",
			Class:     domain.ClassStock,
			Price:     decimal.RequireFromString("150.25"),
			Change24h: 2.5,
			Volume:    50_000_000,
		},
		{
			ID:        "2",
			Symbol:    "GOOGL",
			Name:      "Alphabet Inc.",
			Class:     domain.ClassStock,
			Price:     decimal.RequireFromString("2800.50"),
			Change24h: -1.2,
			Volume:    20_000_000,
		},
		{
			ID:        "3",
			Symbol:    "TSLA",
			Name:      "Tesla Inc.",
			Class:     domain.ClassStock,
			Price:     decimal.RequireFromString("725.75"),
			Change24h: 5.8,
			Volume:    80_000_000,
		},
		{
			ID:        "4",
			Symbol:    "BTC",
			Name:      "Bitcoin",
			Class:     domain.ClassCrypto,
			Price:     decimal.NewFromInt(42000),
			Change24h: -3.5,
			Volume:    25_000_000_000,
		},
		{
			ID:        "5",
			Symbol:    "ETH",
			Name:      "Ethereum",
			Class:     domain.ClassCrypto,
			Price:     decimal.NewFromInt(2200),
			Change24h: -2.1,
			Volume:    12_000_000_000,
		},
		{
			ID:        "6",
			Symbol:    "UST10",
			Name:      "US 10-Year Treasury Note",
			Class:     domain.ClassBond,
			Price:     decimal.RequireFromString("98.40"),
			Change24h: 0.1,
			Volume:    8_000_000,
		},
		{
			ID:        "7",
			Symbol:    "GOLD",
			Name:      "Gold Spot",
			Class:     domain.ClassCommodity,
			Price:     decimal.RequireFromString("1890.00"),
			Change24h: 0.7,
			Volume:    15_000_000,
		},
	}
}
