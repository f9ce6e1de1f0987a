package domain

// AssetClass categorizes a tradable instrument.
type AssetClass string

const (
	ClassStock     AssetClass = "stock"
	ClassBond      AssetClass = "bond"
	ClassCrypto    AssetClass = "crypto"
	ClassCommodity AssetClass = "commodity"
	ClassForex     AssetClass = "forex"
)

// TradeSide represents the side of a trade (buy or sell).
type TradeSide string

const (
	Buy  TradeSide = "buy"
	Sell TradeSide = "sell"
)

// TradeStatus represents the lifecycle state of a trade record.
type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeExecuted  TradeStatus = "executed"
	TradeCancelled TradeStatus = "cancelled"
	TradeFailed    TradeStatus = "failed"
)

// Difficulty grades a scenario for the learner.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// Category identifies the kind of market environment a scenario simulates.
type Category string

const (
	CategoryCrisis      Category = "crisis"
	CategoryGrowth      Category = "growth"
	CategoryVolatility  Category = "volatility"
	CategoryEventDriven Category = "event-driven"
	CategoryCustom      Category = "custom"
)

// EventType classifies a scheduled market event.
type EventType string

const (
	EventNews      EventType = "news"
	EventEconomic  EventType = "economic"
	EventPolitical EventType = "political"
	EventTechnical EventType = "technical"
)

// Impact is the direction of a market event's price effect.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// ObjectiveType classifies what a scenario objective measures.
type ObjectiveType string

const (
	ObjectiveReturn   ObjectiveType = "return"
	ObjectiveRisk     ObjectiveType = "risk"
	ObjectiveHoldings ObjectiveType = "holdings"
	ObjectiveTrades   ObjectiveType = "trades"
)

// MaterialStatus tracks processing of an uploaded study document.
type MaterialStatus string

const (
	MaterialProcessing MaterialStatus = "processing"
	MaterialReady      MaterialStatus = "ready"
	MaterialError      MaterialStatus = "error"
)

// Phase is the game controller's state machine position.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseConfiguring Phase = "configuring"
	PhaseRunning     Phase = "running"
	PhaseComplete    Phase = "complete"
)

// Speed is the simulation speed multiplier for timer-driven day advancement.
type Speed int

const (
	Speed1  Speed = 1
	Speed2  Speed = 2
	Speed5  Speed = 5
	Speed10 Speed = 10
)

// IsValid reports whether the speed is one of the supported multipliers.
func (s Speed) IsValid() bool {
	switch s {
	case Speed1, Speed2, Speed5, Speed10:
		return true
	}
	return false
}
