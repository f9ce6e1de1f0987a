package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ports"
)

// Evaluator scores a finished scenario run via the text-generation oracle.
// Oracle failure never blocks the flow: the result degrades to score 0 with
// empty feedback lists.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates a scenario evaluator.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg}, nil
}

// evaluationPayload is the JSON object the oracle is asked to produce.
type evaluationPayload struct {
	Score        int      `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Evaluate hands the finished run to the oracle and assembles the scenario
// result. Objective achievement is decided here, post-hoc; nothing sets the
// achieved flag while the scenario runs.
func (e *Evaluator) Evaluate(ctx context.Context, session *Session, sc *domain.Scenario, pf *domain.Portfolio, trades []*domain.Trade) *domain.ScenarioResult {
	summary := Summarize(sc, pf, trades)
	completed, objectives := evaluateObjectives(sc, summary)

	res := &domain.ScenarioResult{
		ID:                  uuid.NewString(),
		ScenarioID:          sc.ID,
		UserID:              pf.UserID,
		FinalValue:          summary.FinalValue,
		ReturnPercent:       summary.ReturnPercent,
		ObjectivesCompleted: completed,
		TotalObjectives:     len(objectives),
		Trades:              trades,
		Strengths:           []string{},
		Improvements:        []string{},
		CompletedAt:         time.Now().UTC(),
	}

	content := buildEvaluationContent(sc, summary, trades)
	text, err := e.cfg.Oracle.Complete(ctx, ports.OracleRequest{
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		Messages:  session.Messages(content),
	})
	if err != nil {
		e.cfg.Logger.Warn(ctx, "evaluation degraded to fallback result", map[string]interface{}{"scenarioID": sc.ID, "reason": err.Error()})
		return res
	}
	session.Record(content, text)

	raw, err := ExtractJSON(text)
	if err != nil {
		e.cfg.Logger.Warn(ctx, "evaluation reply had no JSON, using fallback result", map[string]interface{}{"scenarioID": sc.ID})
		return res
	}
	var payload evaluationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		e.cfg.Logger.Warn(ctx, "evaluation payload undecodable, using fallback result", map[string]interface{}{"scenarioID": sc.ID})
		return res
	}

	res.Score = clampScore(payload.Score)
	res.Feedback = payload.Feedback
	if payload.Strengths != nil {
		res.Strengths = payload.Strengths
	}
	if payload.Improvements != nil {
		res.Improvements = payload.Improvements
	}
	return res
}

// evaluateObjectives checks the mechanically verifiable objective types
// against the summary. Return objectives compare the final return percent to
// the target; risk objectives compare max drawdown; trade objectives compare
// trade count. Holdings objectives need the oracle's judgment and stay
// unachieved here.
func evaluateObjectives(sc *domain.Scenario, summary PerformanceSummary) (int, []domain.Objective) {
	objectives := make([]domain.Objective, len(sc.Objectives))
	copy(objectives, sc.Objectives)

	completed := 0
	for i := range objectives {
		switch objectives[i].Type {
		case domain.ObjectiveReturn:
			objectives[i].Achieved = summary.ReturnPercent >= objectives[i].Target
		case domain.ObjectiveRisk:
			objectives[i].Achieved = summary.MaxDrawdown*100 <= objectives[i].Target
		case domain.ObjectiveTrades:
			objectives[i].Achieved = float64(summary.TotalTrades) >= objectives[i].Target
		}
		if objectives[i].Achieved {
			completed++
		}
	}
	return completed, objectives
}

func buildEvaluationContent(sc *domain.Scenario, summary PerformanceSummary, trades []*domain.Trade) interface{} {
	tradeLines := make([]string, 0, len(trades))
	for _, t := range trades {
		tradeLines = append(tradeLines, fmt.Sprintf("%s %s %d %s @ %s (total %s)",
			t.Timestamp.Format("2006-01-02"), t.Side, t.Quantity, t.Symbol, t.Price, t.Total))
	}

	doc, _ := json.Marshal(map[string]interface{}{
		"scenario":      sc.Title,
		"category":      sc.Category,
		"difficulty":    sc.Difficulty,
		"initialCash":   summary.InitialCash,
		"finalValue":    summary.FinalValue,
		"returnPercent": summary.ReturnPercent,
		"maxDrawdown":   summary.MaxDrawdown,
		"daysPlayed":    summary.DaysPlayed,
		"trades":        tradeLines,
	})

	return fmt.Sprintf("Evaluate this student's performance in a simulated trading scenario:\n%s\n"+
		"Reply with a JSON object {\"score\": 0-100, \"feedback\": string, \"strengths\": [], \"improvements\": []}.",
		string(doc))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
