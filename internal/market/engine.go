package market

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"tradeTutor/internal/domain"
)

// Per-asset-class base daily volatility. These are uniform draw bounds, not
// standard deviations of a statistical model.
const (
	volStock     = 0.02
	volBond      = 0.005
	volCrypto    = 0.05
	volCommodity = 0.03
	volForex     = 0.01

	volumeJitter = 0.15 // daily volume perturbation bound

	economicMultiplier = 1.5 // "economic" events hit harder
)

// Event magnitude draw bounds per impact sign.
const (
	shockMin   = 0.03
	shockMax   = 0.08
	neutralMax = 0.01
)

// pricePrecision is the number of decimal places kept on simulated prices.
const pricePrecision = 4

// Engine advances asset prices day by day. It owns its own random source so
// simulations can be made deterministic in tests and so the live price path
// and chart history agree for a given scenario seed.
type Engine struct {
	rng        *rand.Rand
	multiplier float64 // scales base volatility; 1.0 for ordinary scenarios
}

// NewEngine creates a price engine seeded with the given source.
// A multiplier <= 0 is treated as 1.
func NewEngine(seed int64, multiplier float64) *Engine {
	if multiplier <= 0 {
		multiplier = 1
	}
	return &Engine{
		rng:        rand.New(rand.NewSource(seed)),
		multiplier: multiplier,
	}
}

// BaseVolatility returns the per-class daily volatility bound.
func BaseVolatility(class domain.AssetClass) float64 {
	switch class {
	case domain.ClassStock:
		return volStock
	case domain.ClassBond:
		return volBond
	case domain.ClassCrypto:
		return volCrypto
	case domain.ClassCommodity:
		return volCommodity
	case domain.ClassForex:
		return volForex
	default:
		return volStock
	}
}

// AdvanceDay produces a new asset list with every price perturbed by an
// independent random factor plus any event-driven trend, and every volume
// perturbed independently. The input slice is not mutated.
func (e *Engine) AdvanceDay(assets []*domain.Asset, conditions []domain.MarketCondition) []*domain.Asset {
	out := make([]*domain.Asset, len(assets))
	for i, a := range assets {
		out[i] = e.advanceAsset(a, conditions)
	}
	return out
}

func (e *Engine) advanceAsset(a *domain.Asset, conditions []domain.MarketCondition) *domain.Asset {
	vol := BaseVolatility(a.Class) * e.multiplier

	// Event shocks become the trend factor; on shock days the ordinary
	// noise is reduced to half the shock magnitude so events dominate.
	trend := 0.0
	shocked := false
	for i := range conditions {
		c := &conditions[i]
		if !c.Affects(a.Symbol) {
			continue
		}
		trend += e.drawMagnitude(c)
		shocked = true
	}
	if shocked {
		vol = math.Abs(trend) / 2
	}

	randomFactor := e.uniform(-vol, vol)

	oldPrice := a.Price
	newPrice := oldPrice.Mul(decimal.NewFromFloat(1 + randomFactor + trend)).Round(pricePrecision)

	next := a.Clone()
	next.Price = newPrice
	next.Change24h = percentDelta(oldPrice, newPrice)
	next.Volume = perturbVolume(a.Volume, e.uniform(-volumeJitter, volumeJitter))
	return next
}

// drawMagnitude maps an event's impact sign to a magnitude draw.
func (e *Engine) drawMagnitude(c *domain.MarketCondition) float64 {
	var mag float64
	switch c.Impact {
	case domain.ImpactPositive:
		mag = e.uniform(shockMin, shockMax)
	case domain.ImpactNegative:
		mag = -e.uniform(shockMin, shockMax)
	default:
		mag = e.uniform(-neutralMax, neutralMax)
	}
	if c.EventType == domain.EventEconomic {
		mag *= economicMultiplier
	}
	return mag
}

func (e *Engine) uniform(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

func percentDelta(old, new decimal.Decimal) float64 {
	if old.IsZero() {
		return 0
	}
	pct, _ := new.Sub(old).Div(old).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

func perturbVolume(volume int64, factor float64) int64 {
	v := int64(math.Floor(float64(volume) * (1 + factor)))
	if v < 0 {
		return 0
	}
	return v
}
