package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/market"
	"tradeTutor/internal/ports"
)

// Config holds the oracle parameters shared by the generator and evaluator.
type Config struct {
	Model     string
	MaxTokens int
	Oracle    ports.TextOracle
	Logger    ports.Logger
}

func (c Config) validate() error {
	if c.Oracle == nil || c.Logger == nil {
		return fmt.Errorf("oracle and logger are required: %w", ports.ErrConfigurationError)
	}
	if c.Model == "" || c.MaxTokens <= 0 {
		return fmt.Errorf("oracle model and max tokens are required: %w", ports.ErrConfigurationError)
	}
	return nil
}

// Generator produces scenarios from uploaded course materials via the
// text-generation oracle, with canned presets as the oracle-less fallback.
type Generator struct {
	cfg Config
}

// NewGenerator creates a scenario generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// scenarioPayload is the JSON object the oracle is asked to produce.
type scenarioPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Difficulty  string  `json:"difficulty"`
	Category    string  `json:"category"`
	InitialCash float64 `json:"initialCash"`
	Duration    int     `json:"duration"`
	Objectives  []struct {
		Description string  `json:"description"`
		Type        string  `json:"type"`
		Target      float64 `json:"target"`
	} `json:"objectives"`
	MarketConditions []struct {
		Day            int      `json:"day"`
		EventType      string   `json:"eventType"`
		Description    string   `json:"description"`
		Impact         string   `json:"impact"`
		AffectedAssets []string `json:"affectedAssets"`
	} `json:"marketConditions"`
}

// Generate asks the oracle to build a scenario from the given materials.
// A malformed or JSON-free reply is a hard failure for the call; callers
// fall back to a canned preset if they want one.
func (g *Generator) Generate(ctx context.Context, session *Session, materials []*domain.UploadedMaterial, category domain.Category, difficulty domain.Difficulty) (*domain.Scenario, error) {
	content := buildGenerationContent(materials, category, difficulty)

	text, err := g.cfg.Oracle.Complete(ctx, ports.OracleRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		Messages:  session.Messages(content),
	})
	if err != nil {
		g.cfg.Logger.Error(ctx, err, "scenario generation oracle call failed")
		return nil, fmt.Errorf("scenario generation: %w", err)
	}
	session.Record(content, text)

	raw, err := ExtractJSON(text)
	if err != nil {
		g.cfg.Logger.Error(ctx, err, "scenario generation reply had no JSON", map[string]interface{}{"replyLength": len(text)})
		return nil, err
	}

	var payload scenarioPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode scenario payload: %v: %w", err, ports.ErrMalformedOracleReply)
	}

	sc := payloadToScenario(&payload, category, difficulty)
	g.cfg.Logger.Info(ctx, "scenario generated", map[string]interface{}{
		"scenarioID": sc.ID,
		"title":      sc.Title,
		"duration":   sc.Duration,
		"conditions": len(sc.Conditions),
	})
	return sc, nil
}

// SuggestTopics asks the oracle for scenario topic ideas drawn from the
// materials. The reply must contain a JSON array of strings.
func (g *Generator) SuggestTopics(ctx context.Context, session *Session, materials []*domain.UploadedMaterial) ([]string, error) {
	content := buildTopicsContent(materials)

	text, err := g.cfg.Oracle.Complete(ctx, ports.OracleRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		Messages:  session.Messages(content),
	})
	if err != nil {
		return nil, fmt.Errorf("topic suggestion: %w", err)
	}
	session.Record(content, text)

	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, fmt.Errorf("decode topic list: %v: %w", err, ports.ErrMalformedOracleReply)
	}
	return topics, nil
}

// Analysis is the structured reading of one uploaded document.
type Analysis struct {
	Summary         string   `json:"summary"`
	KeyInsights     []string `json:"keyInsights"`
	Recommendations []string `json:"recommendations"`
	RiskLevel       string   `json:"riskLevel"`
	RiskFactors     []string `json:"riskFactors"`
}

// Analyze asks the oracle to summarize a document. A failed oracle call is
// an error so the material can be flagged; a reply that merely lacks the
// expected JSON degrades to a free-text summary instead.
func (g *Generator) Analyze(ctx context.Context, session *Session, m *domain.UploadedMaterial) (*Analysis, error) {
	content := materialContent(m, "Analyze this financial course document. Reply with a JSON object "+
		`{"summary", "keyInsights": [], "recommendations": [], "riskLevel": "low|medium|high", "riskFactors": []}.`)

	text, err := g.cfg.Oracle.Complete(ctx, ports.OracleRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		Messages:  session.Messages(content),
	})
	if err != nil {
		g.cfg.Logger.Error(ctx, err, "document analysis oracle call failed", map[string]interface{}{"material": m.FileName})
		return nil, fmt.Errorf("document analysis: %w", err)
	}
	session.Record(content, text)

	fallback := &Analysis{Summary: text, RiskLevel: "medium"}
	raw, err := ExtractJSON(text)
	if err != nil {
		return fallback, nil
	}
	var a Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return fallback, nil
	}
	return &a, nil
}

// Preset returns the built-in scenario for a category, used when no oracle
// output is available. The custom category has no preset.
func Preset(category domain.Category) *domain.Scenario {
	p, ok := presets[category]
	if !ok {
		return nil
	}
	sc := p // copy
	sc.ID = uuid.NewString()
	sc.CreatedAt = time.Now().UTC()
	sc.Conditions = market.CannedConditions(category, sc.Duration)
	sc.Objectives = make([]domain.Objective, len(p.Objectives))
	copy(sc.Objectives, p.Objectives)
	for i := range sc.Objectives {
		sc.Objectives[i].ID = uuid.NewString()
	}
	return &sc
}

var presets = map[domain.Category]domain.Scenario{
	domain.CategoryCrisis: {
		Title:       "Market Crash 2008",
		Description: "Navigate a credit crisis: protect capital while banks fail and liquidity evaporates.",
		Difficulty:  domain.DifficultyIntermediate,
		Category:    domain.CategoryCrisis,
		InitialCash: decimal.NewFromInt(100000),
		Duration:    90,
		IsActive:    true,
		Objectives: []domain.Objective{
			{Description: "Finish with no worse than a 10% loss", Type: domain.ObjectiveReturn, Target: -10},
			{Description: "Make at least 5 trades", Type: domain.ObjectiveTrades, Target: 5},
		},
	},
	domain.CategoryGrowth: {
		Title:       "Bull Run",
		Description: "Ride a sustained expansion without over-concentrating your book.",
		Difficulty:  domain.DifficultyBeginner,
		Category:    domain.CategoryGrowth,
		InitialCash: decimal.NewFromInt(100000),
		Duration:    60,
		IsActive:    true,
		Objectives: []domain.Objective{
			{Description: "Achieve a 15% return", Type: domain.ObjectiveReturn, Target: 15},
		},
	},
	domain.CategoryVolatility: {
		Title:       "Whipsaw Weeks",
		Description: "Survive violent two-sided swings driven by crypto headlines and rate repricing.",
		Difficulty:  domain.DifficultyAdvanced,
		Category:    domain.CategoryVolatility,
		InitialCash: decimal.NewFromInt(100000),
		Duration:    45,
		IsActive:    true,
		Objectives: []domain.Objective{
			{Description: "Achieve a 5% return", Type: domain.ObjectiveReturn, Target: 5},
			{Description: "Keep drawdown under 20%", Type: domain.ObjectiveRisk, Target: 20},
		},
	},
	domain.CategoryEventDriven: {
		Title:       "Headline Season",
		Description: "Trade around scheduled political and corporate catalysts.",
		Difficulty:  domain.DifficultyIntermediate,
		Category:    domain.CategoryEventDriven,
		InitialCash: decimal.NewFromInt(100000),
		Duration:    30,
		IsActive:    true,
		Objectives: []domain.Objective{
			{Description: "Achieve an 8% return", Type: domain.ObjectiveReturn, Target: 8},
		},
	},
}

func payloadToScenario(p *scenarioPayload, category domain.Category, difficulty domain.Difficulty) *domain.Scenario {
	sc := &domain.Scenario{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Description: p.Description,
		Difficulty:  difficulty,
		Category:    category,
		InitialCash: decimal.NewFromFloat(p.InitialCash),
		Duration:    p.Duration,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if d := domain.Difficulty(p.Difficulty); d != "" {
		sc.Difficulty = d
	}
	if sc.InitialCash.LessThanOrEqual(decimal.Zero) {
		sc.InitialCash = decimal.NewFromInt(100000)
	}
	if sc.Duration <= 0 {
		sc.Duration = 30
	}

	for _, o := range p.Objectives {
		sc.Objectives = append(sc.Objectives, domain.Objective{
			ID:          uuid.NewString(),
			Description: o.Description,
			Type:        domain.ObjectiveType(o.Type),
			Target:      o.Target,
		})
	}
	for _, c := range p.MarketConditions {
		if c.Day < 1 || c.Day > sc.Duration {
			continue
		}
		affected := c.AffectedAssets
		if len(affected) == 0 {
			affected = []string{domain.WildcardAll}
		}
		sc.Conditions = append(sc.Conditions, domain.MarketCondition{
			Day:            c.Day,
			EventType:      domain.EventType(c.EventType),
			Description:    c.Description,
			Impact:         domain.Impact(c.Impact),
			AffectedAssets: affected,
		})
	}

	// Non-custom categories without generated events fall back to the
	// canned schedule so the market still has a storyline.
	if len(sc.Conditions) == 0 && category != domain.CategoryCustom {
		sc.Conditions = market.CannedConditions(category, sc.Duration)
	}
	return sc
}

func buildGenerationContent(materials []*domain.UploadedMaterial, category domain.Category, difficulty domain.Difficulty) interface{} {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a %s-difficulty trading scenario in the %q category based on the attached course materials. ", difficulty, category)
	sb.WriteString("Reply with a single JSON object with keys: title, description, difficulty, category, ")
	sb.WriteString("initialCash, duration (days), objectives (description, type, target) and ")
	sb.WriteString("marketConditions (day, eventType, description, impact, affectedAssets; use [\"ALL\"] for market-wide events).")
	return materialsContent(materials, sb.String())
}

func buildTopicsContent(materials []*domain.UploadedMaterial) interface{} {
	return materialsContent(materials,
		"Suggest 5 trading scenario topics drawn from the attached course materials. Reply with a JSON array of strings.")
}

// materialsContent embeds document payloads alongside the instruction text,
// PDF uploads as base64 document blocks and everything else as inline text.
func materialsContent(materials []*domain.UploadedMaterial, instruction string) interface{} {
	if len(materials) == 0 {
		return instruction
	}
	blocks := make([]interface{}, 0, len(materials)+1)
	for _, m := range materials {
		blocks = append(blocks, materialBlock(m))
	}
	blocks = append(blocks, ports.TextBlock{Type: "text", Text: instruction})
	return blocks
}

func materialContent(m *domain.UploadedMaterial, instruction string) interface{} {
	return []interface{}{
		materialBlock(m),
		ports.TextBlock{Type: "text", Text: instruction},
	}
}

func materialBlock(m *domain.UploadedMaterial) interface{} {
	if m.FileType == "application/pdf" {
		return ports.DocumentBlock{
			Type: "document",
			Source: ports.DocumentSource{
				Type:      "base64",
				MediaType: m.FileType,
				Data:      m.Content,
			},
		}
	}
	return ports.TextBlock{
		Type: "text",
		Text: fmt.Sprintf("--- %s ---\n%s", m.FileName, m.Content),
	}
}

// ExtractJSON returns the first {...} or [...] substring of the oracle's
// free-text reply. The oracle wraps its JSON in prose, so extraction is
// positional: first opening brace or bracket through the matching last
// closing one.
func ExtractJSON(text string) (string, error) {
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start, closer := -1, byte('}')
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start = objStart
	case arrStart >= 0:
		start, closer = arrStart, ']'
	}
	if start < 0 {
		return "", ports.ErrMalformedOracleReply
	}

	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return "", ports.ErrMalformedOracleReply
	}
	return text[start : end+1], nil
}
