package market

import "tradeTutor/internal/domain"

// cannedEvent is a schedule entry positioned as a fraction of the scenario
// duration, so the same storyline works for a 30-day and a 365-day run.
type cannedEvent struct {
	at          float64 // fraction of duration, clamped to [1, duration]
	eventType   domain.EventType
	impact      domain.Impact
	description string
	affected    []string
}

var allAssets = []string{domain.WildcardAll}

var cannedSchedules = map[domain.Category][]cannedEvent{
	domain.CategoryCrisis: {
		{0.02, domain.EventEconomic, domain.ImpactNegative, "Major bank reports unexpected losses; credit markets seize up", allAssets},
		{0.25, domain.EventNews, domain.ImpactNegative, "Mortgage defaults accelerate across the sector", []string{"AAPL", "GOOGL", "TSLA"}},
		{0.5, domain.EventEconomic, domain.ImpactNegative, "Central bank emergency meeting fails to calm markets", allAssets},
		{0.65, domain.EventPolitical, domain.ImpactNeutral, "Government announces bailout negotiations", allAssets},
		{0.85, domain.EventEconomic, domain.ImpactPositive, "Stimulus package passes; early signs of stabilization", allAssets},
	},
	domain.CategoryGrowth: {
		{0.1, domain.EventEconomic, domain.ImpactPositive, "GDP growth beats forecasts for the third straight quarter", allAssets},
		{0.35, domain.EventNews, domain.ImpactPositive, "Record earnings season lifts large-cap technology", []string{"AAPL", "GOOGL", "TSLA"}},
		{0.6, domain.EventTechnical, domain.ImpactNeutral, "Indexes consolidate near all-time highs", allAssets},
		{0.8, domain.EventEconomic, domain.ImpactPositive, "Rate cut fuels a broad risk-on rally", allAssets},
	},
	domain.CategoryVolatility: {
		{0.1, domain.EventNews, domain.ImpactNegative, "Surprise regulatory probe rattles crypto markets", []string{"BTC", "ETH"}},
		{0.3, domain.EventTechnical, domain.ImpactPositive, "Short squeeze sends beaten-down names sharply higher", []string{"TSLA"}},
		{0.5, domain.EventEconomic, domain.ImpactNegative, "Inflation print comes in hot; rate path repriced", allAssets},
		{0.7, domain.EventNews, domain.ImpactPositive, "Institutional adoption headline lifts digital assets", []string{"BTC", "ETH"}},
		{0.9, domain.EventTechnical, domain.ImpactNegative, "Options expiry triggers a late washout", allAssets},
	},
	domain.CategoryEventDriven: {
		{0.15, domain.EventPolitical, domain.ImpactNegative, "Trade dispute escalates with new tariff threats", allAssets},
		{0.4, domain.EventNews, domain.ImpactPositive, "Breakthrough product announcement surprises the street", []string{"AAPL"}},
		{0.6, domain.EventPolitical, domain.ImpactNeutral, "Election results arrive broadly as polled", allAssets},
		{0.8, domain.EventEconomic, domain.ImpactNegative, "Key commodity supply disruption feeds through to prices", []string{"GOLD", "UST10"}},
	},
}

// CannedConditions returns the built-in day-indexed event schedule for a
// scenario category. The "custom" category has no canned schedule and
// returns nil; its conditions come from the generation oracle.
func CannedConditions(category domain.Category, duration int) []domain.MarketCondition {
	events, ok := cannedSchedules[category]
	if !ok || duration <= 0 {
		return nil
	}
	out := make([]domain.MarketCondition, 0, len(events))
	for _, ev := range events {
		day := int(float64(duration) * ev.at)
		if day < 1 {
			day = 1
		}
		if day > duration {
			day = duration
		}
		out = append(out, domain.MarketCondition{
			Day:            day,
			EventType:      ev.eventType,
			Description:    ev.description,
			Impact:         ev.impact,
			AffectedAssets: ev.affected,
		})
	}
	return out
}
