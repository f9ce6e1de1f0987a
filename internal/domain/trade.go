package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable audit record of an executed instruction. It is
// created atomically with the ledger mutation it describes and never
// updated afterward.
type Trade struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	AssetID     string          `json:"assetId"`
	Symbol      string          `json:"symbol"`
	Side        TradeSide       `json:"type"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"` // fill price (current market price)
	Total       decimal.Decimal `json:"total"` // quantity x price
	Timestamp   time.Time       `json:"timestamp"`
	Status      TradeStatus     `json:"status"`
}
