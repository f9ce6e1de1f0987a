package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WildcardAll in a MarketCondition's affected-asset list matches every asset.
const WildcardAll = "ALL"

// Objective is a learning goal attached to a scenario. The Achieved flag is
// only ever set post-hoc during evaluation, never while the scenario runs.
type Objective struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Type        ObjectiveType `json:"type"`
	Target      float64       `json:"target"`
	Achieved    bool          `json:"achieved"`
}

// MarketCondition is a day-indexed market event. Read-only once the scenario
// is created; consumed once per matching day.
type MarketCondition struct {
	Day            int       `json:"day"`
	EventType      EventType `json:"eventType"`
	Description    string    `json:"description"`
	Impact         Impact    `json:"impact"`
	AffectedAssets []string  `json:"affectedAssets"`
}

// Affects reports whether the condition applies to the given symbol,
// honoring the "ALL" wildcard.
func (mc *MarketCondition) Affects(symbol string) bool {
	for _, s := range mc.AffectedAssets {
		if s == WildcardAll || s == symbol {
			return true
		}
	}
	return false
}

// Scenario is a generated or canned learning exercise. Immutable once
// created.
type Scenario struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  Difficulty        `json:"difficulty"`
	Category    Category          `json:"category"`
	InitialCash decimal.Decimal   `json:"initialCash"`
	Duration    int               `json:"duration"` // in simulated days
	Objectives  []Objective       `json:"objectives"`
	Conditions  []MarketCondition `json:"marketConditions"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ConditionsForDay returns the market events scheduled for the given day.
func (s *Scenario) ConditionsForDay(day int) []MarketCondition {
	var out []MarketCondition
	for _, c := range s.Conditions {
		if c.Day == day {
			out = append(out, c)
		}
	}
	return out
}

// ScenarioResult is the outcome of a finished scenario, including the
// evaluation oracle's score and narrative feedback.
type ScenarioResult struct {
	ID                  string          `json:"id"`
	ScenarioID          string          `json:"scenarioId"`
	UserID              string          `json:"userId"`
	FinalValue          decimal.Decimal `json:"finalValue"`
	ReturnPercent       float64         `json:"returnPercent"`
	ObjectivesCompleted int             `json:"objectivesCompleted"`
	TotalObjectives     int             `json:"totalObjectives"`
	Trades              []*Trade        `json:"trades"`
	Score               int             `json:"score"`
	Feedback            string          `json:"feedback"`
	Strengths           []string        `json:"strengths"`
	Improvements        []string        `json:"improvements"`
	CompletedAt         time.Time       `json:"completedAt"`
}
