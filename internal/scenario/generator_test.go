package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// mockOracle returns a fixed reply or error and records the request.
type mockOracle struct {
	reply    string
	err      error
	requests []ports.OracleRequest
}

func (m *mockOracle) Complete(_ context.Context, req ports.OracleRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockOracle) Forward(_ context.Context, body []byte) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return body, nil
}

func newTestGenerator(t *testing.T, oracle *mockOracle) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{
		Model:     "test-model",
		MaxTokens: 1024,
		Oracle:    oracle,
		Logger:    &mockLogger{},
	})
	require.NoError(t, err)
	return g
}

func TestNewGenerator_RequiresDependencies(t *testing.T) {
	_, err := NewGenerator(Config{Model: "m", MaxTokens: 10})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewGenerator(Config{Oracle: &mockOracle{}, Logger: &mockLogger{}, MaxTokens: 10})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "object wrapped in prose",
			text: "Here is your scenario:\n```json\n{\"title\":\"x\"}\n```\nEnjoy!",
			want: `{"title":"x"}`,
		},
		{
			name: "array wrapped in prose",
			text: `Some ideas: ["a", "b"] hope that helps`,
			want: `["a", "b"]`,
		},
		{
			name: "object before array",
			text: `{"items": [1, 2]} trailing`,
			want: `{"items": [1, 2]}`,
		},
		{
			name:    "no json at all",
			text:    "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "opener without closer",
			text:    "broken { reply",
			wantErr: true,
		},
		{
			name:    "empty string",
			text:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ports.ErrMalformedOracleReply)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate_MapsPayload(t *testing.T) {
	oracle := &mockOracle{reply: `Here you go:
	{
		"title": "Crypto Winter",
		"description": "Survive a prolonged downturn in digital assets.",
		"difficulty": "advanced",
		"initialCash": 50000,
		"duration": 45,
		"objectives": [
			{"description": "Limit losses to 5%", "type": "return", "target": -5},
			{"description": "Keep drawdown under 15%", "type": "risk", "target": 15}
		],
		"marketConditions": [
			{"day": 3, "eventType": "news", "description": "Exchange insolvency rumors", "impact": "negative", "affectedAssets": ["BTC", "ETH"]},
			{"day": 99, "eventType": "news", "description": "out of range", "impact": "positive", "affectedAssets": ["BTC"]},
			{"day": 20, "eventType": "economic", "description": "Rate decision", "impact": "neutral", "affectedAssets": []}
		]
	}`}
	g := newTestGenerator(t, oracle)
	session := NewSession()

	sc, err := g.Generate(context.Background(), session, nil, domain.CategoryCustom, domain.DifficultyBeginner)
	require.NoError(t, err)

	assert.Equal(t, "Crypto Winter", sc.Title)
	assert.Equal(t, domain.DifficultyAdvanced, sc.Difficulty, "payload difficulty overrides the requested one")
	assert.Equal(t, domain.CategoryCustom, sc.Category)
	assert.Equal(t, "50000", sc.InitialCash.String())
	assert.Equal(t, 45, sc.Duration)
	assert.True(t, sc.IsActive)
	assert.NotEmpty(t, sc.ID)

	require.Len(t, sc.Objectives, 2)
	assert.Equal(t, domain.ObjectiveReturn, sc.Objectives[0].Type)
	assert.False(t, sc.Objectives[0].Achieved, "objectives start unachieved")

	// The day-99 condition exceeds the 45-day duration and is dropped; the
	// empty affected list becomes the ALL wildcard.
	require.Len(t, sc.Conditions, 2)
	assert.Equal(t, 3, sc.Conditions[0].Day)
	assert.Equal(t, []string{domain.WildcardAll}, sc.Conditions[1].AffectedAssets)

	// The exchange is recorded in the session for follow-up calls.
	assert.Len(t, oracle.requests[0].Messages, 1)
	_, err = g.SuggestTopics(context.Background(), session, nil)
	require.Error(t, err) // reply is not an array, but the history grew
	assert.Len(t, oracle.requests[1].Messages, 3)
}

func TestGenerate_DefaultsAndCannedFallback(t *testing.T) {
	oracle := &mockOracle{reply: `{"title": "Sparse", "description": "d", "objectives": [], "marketConditions": []}`}
	g := newTestGenerator(t, oracle)

	sc, err := g.Generate(context.Background(), NewSession(), nil, domain.CategoryCrisis, domain.DifficultyBeginner)
	require.NoError(t, err)

	assert.Equal(t, "100000", sc.InitialCash.String())
	assert.Equal(t, 30, sc.Duration)
	assert.Equal(t, domain.DifficultyBeginner, sc.Difficulty)
	assert.NotEmpty(t, sc.Conditions, "non-custom categories fall back to the canned schedule")
}

func TestGenerate_OracleFailure(t *testing.T) {
	g := newTestGenerator(t, &mockOracle{err: ports.ErrOracleUnavailable})
	_, err := g.Generate(context.Background(), NewSession(), nil, domain.CategoryCrisis, domain.DifficultyBeginner)
	assert.ErrorIs(t, err, ports.ErrOracleUnavailable)
}

func TestGenerate_MalformedReply(t *testing.T) {
	g := newTestGenerator(t, &mockOracle{reply: "no json here"})
	_, err := g.Generate(context.Background(), NewSession(), nil, domain.CategoryCrisis, domain.DifficultyBeginner)
	assert.ErrorIs(t, err, ports.ErrMalformedOracleReply)
}

func TestSuggestTopics(t *testing.T) {
	oracle := &mockOracle{reply: `Sure: ["Options basics", "Risk parity", "Momentum"]`}
	g := newTestGenerator(t, oracle)

	topics, err := g.SuggestTopics(context.Background(), NewSession(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Options basics", "Risk parity", "Momentum"}, topics)
}

func TestAnalyze_OracleFailureIsAnError(t *testing.T) {
	g := newTestGenerator(t, &mockOracle{err: errors.New("boom")})
	m := &domain.UploadedMaterial{FileName: "notes.txt", FileType: "text/plain", Content: "hello"}

	a, err := g.Analyze(context.Background(), NewSession(), m)
	require.Error(t, err)
	assert.Nil(t, a)
}

func TestAnalyze_FreeTextReplyBecomesSummary(t *testing.T) {
	g := newTestGenerator(t, &mockOracle{reply: "This document covers portfolio diversification."})
	m := &domain.UploadedMaterial{FileName: "notes.txt", FileType: "text/plain", Content: "hello"}

	a, err := g.Analyze(context.Background(), NewSession(), m)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "This document covers portfolio diversification.", a.Summary)
	assert.Equal(t, "medium", a.RiskLevel)
}

func TestAnalyze_ParsesStructuredReply(t *testing.T) {
	g := newTestGenerator(t, &mockOracle{reply: `Here you go: {"summary": "s", "keyInsights": ["k"], "riskLevel": "low"}`})
	m := &domain.UploadedMaterial{FileName: "notes.txt", FileType: "text/plain", Content: "hello"}

	a, err := g.Analyze(context.Background(), NewSession(), m)
	require.NoError(t, err)
	assert.Equal(t, "s", a.Summary)
	assert.Equal(t, []string{"k"}, a.KeyInsights)
	assert.Equal(t, "low", a.RiskLevel)
}

func TestPreset(t *testing.T) {
	sc := Preset(domain.CategoryCrisis)
	require.NotNil(t, sc)
	assert.Equal(t, "Market Crash 2008", sc.Title)
	assert.Equal(t, "100000", sc.InitialCash.String())
	assert.Equal(t, 90, sc.Duration)
	assert.NotEmpty(t, sc.ID)
	assert.NotEmpty(t, sc.Conditions)
	for _, o := range sc.Objectives {
		assert.NotEmpty(t, o.ID)
		assert.False(t, o.Achieved)
	}

	// Each call yields an independent copy.
	other := Preset(domain.CategoryCrisis)
	assert.NotEqual(t, sc.ID, other.ID)

	assert.Nil(t, Preset(domain.CategoryCustom))
	assert.Nil(t, Preset(domain.Category("nonsense")))
}
