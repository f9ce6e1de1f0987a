package market

import (
	"hash/fnv"
	"math/rand"
	"time"

	"tradeTutor/internal/domain"
)

// PricePoint is one day of a historical chart series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// HistorySeed derives a deterministic seed for an asset's chart series from
// the scenario and symbol, so repeated chart requests within one scenario
// produce the same history.
func HistorySeed(scenarioID, symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(scenarioID))
	h.Write([]byte{0})
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

// History generates a backwards random walk of daily prices ending at the
// asset's current price. The walk is seeded, so for a fixed seed the series
// is stable across calls and agrees with itself; charts no longer drift away
// from the live price between renders.
func History(asset *domain.Asset, days int, seed int64, now time.Time) []PricePoint {
	rng := rand.New(rand.NewSource(seed))
	vol := BaseVolatility(asset.Class)

	// Walk backwards from today's price, then reverse into chronological
	// order with today last.
	prices := make([]float64, days+1)
	price, _ := asset.Price.Float64()
	prices[days] = price
	for i := days - 1; i >= 0; i-- {
		step := (rng.Float64()*2 - 1) * vol
		price = price / (1 + step)
		prices[i] = price
	}

	points := make([]PricePoint, days+1)
	for i := 0; i <= days; i++ {
		points[i] = PricePoint{
			Date:  now.AddDate(0, 0, i-days),
			Price: prices[i],
		}
	}
	return points
}
