package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/game"
	"tradeTutor/internal/ports"
	"tradeTutor/internal/scenario"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// stubOracle drives both the proxy and the generation endpoints.
type stubOracle struct {
	completeReply string
	completeErr   error
	forwardReply  []byte
	forwardErr    error
}

func (o *stubOracle) Complete(context.Context, ports.OracleRequest) (string, error) {
	if o.completeErr != nil {
		return "", o.completeErr
	}
	return o.completeReply, nil
}

func (o *stubOracle) Forward(_ context.Context, body []byte) ([]byte, error) {
	if o.forwardErr != nil {
		return nil, o.forwardErr
	}
	if o.forwardReply != nil {
		return o.forwardReply, nil
	}
	return body, nil
}

// memStore implements every repository port in memory.
type memStore struct {
	mu         sync.Mutex
	portfolios map[string]*domain.Portfolio
	trades     []*domain.Trade
	scenarios  map[string]*domain.Scenario
	results    []*domain.ScenarioResult
	materials  map[string]*domain.UploadedMaterial
	users      map[string]*domain.User
}

func newMemStore() *memStore {
	return &memStore{
		portfolios: make(map[string]*domain.Portfolio),
		scenarios:  make(map[string]*domain.Scenario),
		materials:  make(map[string]*domain.UploadedMaterial),
		users:      make(map[string]*domain.User),
	}
}

func (s *memStore) SavePortfolio(_ context.Context, pf *domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolios[pf.ID] = pf.Clone()
	return nil
}

func (s *memStore) FindPortfolio(_ context.Context, id string) (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pf, ok := s.portfolios[id]; ok {
		return pf.Clone(), nil
	}
	return nil, nil
}

func (s *memStore) FindLatestByUser(_ context.Context, userID string) (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *domain.Portfolio
	for _, pf := range s.portfolios {
		if pf.UserID == userID && (latest == nil || pf.CreatedAt.After(latest.CreatedAt)) {
			latest = pf
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Clone(), nil
}

func (s *memStore) SaveTrade(_ context.Context, trade *domain.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, trade)
	return nil
}

func (s *memStore) FindByPortfolio(_ context.Context, portfolioID string) ([]*domain.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Trade
	for _, t := range s.trades {
		if t.PortfolioID == portfolioID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) SaveScenario(_ context.Context, sc *domain.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios[sc.ID] = sc
	return nil
}

func (s *memStore) FindScenario(_ context.Context, id string) (*domain.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenarios[id], nil
}

func (s *memStore) FindAllScenarios(_ context.Context) ([]*domain.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Scenario, 0, len(s.scenarios))
	for _, sc := range s.scenarios {
		out = append(out, sc)
	}
	return out, nil
}

func (s *memStore) SaveResult(_ context.Context, res *domain.ScenarioResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return nil
}

func (s *memStore) FindResultsByUser(_ context.Context, userID string, limit int) ([]*domain.ScenarioResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ScenarioResult
	for _, r := range s.results {
		if r.UserID == userID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) SaveMaterial(_ context.Context, m *domain.UploadedMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[m.ID] = m
	return nil
}

func (s *memStore) FindMaterialsByUser(_ context.Context, userID string) ([]*domain.UploadedMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.UploadedMaterial, 0)
	for _, m := range s.materials {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) UpdateMaterialStatus(_ context.Context, id string, status domain.MaterialStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		return ports.ErrNotFound
	}
	m.Status = status
	return nil
}

func (s *memStore) DeleteMaterial(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.materials[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.materials, id)
	return nil
}

func (s *memStore) SaveUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *memStore) FindUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func newTestServer(t *testing.T, oracle *stubOracle) (*Server, *memStore) {
	t.Helper()
	store := newMemStore()
	logger := &mockLogger{}

	oracleCfg := scenario.Config{Model: "test-model", MaxTokens: 256, Oracle: oracle, Logger: logger}
	generator, err := scenario.NewGenerator(oracleCfg)
	require.NoError(t, err)
	evaluator, err := scenario.NewEvaluator(oracleCfg)
	require.NoError(t, err)

	gameSvc, err := game.NewService(game.Config{
		Logger:      logger,
		Portfolios:  store,
		Trades:      store,
		Results:     store,
		Evaluator:   evaluator,
		DayInterval: time.Hour,
		Seed:        func() int64 { return 42 },
	})
	require.NoError(t, err)
	t.Cleanup(gameSvc.Close)

	srv, err := New(Config{
		Port:        "0",
		FrontendURL: "http://localhost:5173",
		Logger:      logger,
		Oracle:      oracle,
		Game:        gameSvc,
		Generator:   generator,
		Scenarios:   store,
		Materials:   store,
		Results:     store,
		Users:       store,
		Trades:      store,
	})
	require.NoError(t, err)
	return srv, store
}

func doRequest(srv *Server, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("X-User-ID", "user-1")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{})
	rec := doRequest(srv, http.MethodGet, "/health", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestProxy_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{})

	for _, body := range []map[string]interface{}{
		{},
		{"model": "m"},
		{"model": "m", "max_tokens": 10},
		{"max_tokens": 10, "messages": []string{}},
	} {
		rec := doRequest(srv, http.MethodPost, "/api/claude/messages", body, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Missing required fields: model, max_tokens, messages", resp.Error)
	}
}

func TestProxy_Unconfigured(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{forwardErr: ports.ErrOracleUnconfigured})

	rec := doRequest(srv, http.MethodPost, "/api/claude/messages", map[string]interface{}{
		"model":      "m",
		"max_tokens": 10,
		"messages":   []map[string]string{{"role": "user", "content": "hi"}},
	}, false)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "API key not configured")
}

func TestProxy_ForwardsVerbatim(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{forwardReply: []byte(`{"id": "msg_1"}`)})

	rec := doRequest(srv, http.MethodPost, "/api/claude/messages", map[string]interface{}{
		"model":      "m",
		"max_tokens": 10,
		"messages":   []map[string]string{{"role": "user", "content": "hi"}},
	}, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": "msg_1"}`, rec.Body.String())
}

func TestProxy_UpstreamError(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{forwardErr: &ports.OracleError{
		Status:  http.StatusTooManyRequests,
		Message: "oracle returned status 429",
		Details: map[string]interface{}{"type": "rate_limit_error"},
	}})

	rec := doRequest(srv, http.MethodPost, "/api/claude/messages", map[string]interface{}{
		"model":      "m",
		"max_tokens": 10,
		"messages":   []map[string]string{{"role": "user", "content": "hi"}},
	}, false)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	assert.Contains(t, resp.Error, "429")
}

func TestGameFlow(t *testing.T) {
	srv, store := newTestServer(t, &stubOracle{completeErr: errors.New("offline")})

	// Authentication is required to start.
	rec := doRequest(srv, http.MethodPost, "/api/game/start", map[string]string{"category": "growth"}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/game/start", map[string]string{"category": "growth"}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var started struct {
		Scenario  *domain.Scenario  `json:"scenario"`
		Portfolio *domain.Portfolio `json:"portfolio"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, "Bull Run", started.Scenario.Title)
	assert.Equal(t, "100000", started.Portfolio.Cash.String())
	assert.Len(t, store.scenarios, 1, "preset starts are persisted")

	// Buy, then advance a day.
	rec = doRequest(srv, http.MethodPost, "/api/game/trades", map[string]interface{}{
		"symbol": "AAPL", "type": "buy", "quantity": 10,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var trade domain.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trade))
	assert.Equal(t, "1502.5", trade.Total.String())

	rec = doRequest(srv, http.MethodPost, "/api/game/advance", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var st game.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 1, st.Day)

	// Oversized sell is rejected with a 400.
	rec = doRequest(srv, http.MethodPost, "/api/game/trades", map[string]interface{}{
		"symbol": "AAPL", "type": "sell", "quantity": 999,
	}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Evaluation is gated until the final day.
	rec = doRequest(srv, http.MethodPost, "/api/game/evaluate", nil, true)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Invalid speed.
	rec = doRequest(srv, http.MethodPost, "/api/game/speed", map[string]int{"speed": 7}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/game/speed", map[string]int{"speed": 5}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/game/reset", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, domain.PhaseIdle, st.Phase)
}

func TestStart_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{})

	rec := doRequest(srv, http.MethodPost, "/api/game/start", map[string]string{}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/game/start", map[string]string{"category": "custom"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "custom category has no preset")

	rec = doRequest(srv, http.MethodPost, "/api/game/start", map[string]string{"scenarioId": "ghost"}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetHistory(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{})

	rec := doRequest(srv, http.MethodGet, "/api/assets/AAPL/history?days=60", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var points []struct {
		Date  time.Time `json:"date"`
		Price float64   `json:"price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	assert.Len(t, points, 61)

	rec = doRequest(srv, http.MethodGet, "/api/assets/DOGE/history", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/assets/AAPL/history?days=-1", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateScenario_FallsBackToPreset(t *testing.T) {
	srv, store := newTestServer(t, &stubOracle{completeErr: errors.New("oracle offline")})

	rec := doRequest(srv, http.MethodPost, "/api/scenarios/generate", map[string]string{
		"category": "crisis", "difficulty": "intermediate",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sc domain.Scenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, "Market Crash 2008", sc.Title)
	assert.Len(t, store.scenarios, 1)
}

func TestGenerateScenario_FromOracle(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{completeReply: `{
		"title": "Custom Run", "description": "d", "duration": 15, "initialCash": 25000,
		"objectives": [], "marketConditions": [{"day": 2, "eventType": "news", "description": "x", "impact": "positive", "affectedAssets": ["AAPL"]}]
	}`})

	rec := doRequest(srv, http.MethodPost, "/api/scenarios/generate", map[string]string{"category": "custom"}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sc domain.Scenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, "Custom Run", sc.Title)
	assert.Equal(t, 15, sc.Duration)
}

func TestSuggestTopics(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{completeReply: `["Hedging 101", "Sector rotation"]`})

	rec := doRequest(srv, http.MethodPost, "/api/topics/suggest", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Hedging 101", "Sector rotation"}, resp["topics"])
}

func uploadRequest(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestMaterialUpload(t *testing.T) {
	srv, store := newTestServer(t, &stubOracle{completeReply: `{"summary": "s", "riskLevel": "low"}`})

	body, contentType := uploadRequest(t, "notes.txt", "diversification lowers risk")
	req := httptest.NewRequest(http.MethodPost, "/api/materials/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m domain.UploadedMaterial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "notes.txt", m.FileName)
	assert.Equal(t, "text/plain", m.FileType)
	assert.Equal(t, "diversification lowers risk", m.Content)

	// Background analysis flips the status to ready.
	assert.Eventually(t, func() bool {
		stored, _ := store.FindMaterialsByUser(context.Background(), "user-1")
		return len(stored) == 1 && stored[0].Status == domain.MaterialReady
	}, 2*time.Second, 10*time.Millisecond)

	// Unsupported extension.
	body, contentType = uploadRequest(t, "malware.exe", "nope")
	req = httptest.NewRequest(http.MethodPost, "/api/materials/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Listing and deletion.
	rec = doRequest(srv, http.MethodGet, "/api/materials/", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var materials []*domain.UploadedMaterial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &materials))
	require.Len(t, materials, 1)

	rec = doRequest(srv, http.MethodDelete, "/api/materials/"+materials[0].ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(srv, http.MethodDelete, "/api/materials/"+materials[0].ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaterialUpload_AnalysisFailureFlagsMaterial(t *testing.T) {
	srv, store := newTestServer(t, &stubOracle{completeErr: errors.New("oracle offline")})

	body, contentType := uploadRequest(t, "notes.txt", "dollar cost averaging")
	req := httptest.NewRequest(http.MethodPost, "/api/materials/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Eventually(t, func() bool {
		stored, _ := store.FindMaterialsByUser(context.Background(), "user-1")
		return len(stored) == 1 && stored[0].Status == domain.MaterialError
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListResults_RequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, &stubOracle{})

	rec := doRequest(srv, http.MethodGet, "/api/results", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/results", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var results []*domain.ScenarioResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Empty(t, results)
}
