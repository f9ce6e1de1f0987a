package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ports"
	"tradeTutor/internal/scenario"
)

const (
	maxMaterialSize = 10 << 20 // 10MB
	maxProxyBody    = 25 << 20
)

// materialTypes maps accepted upload extensions to their MIME type.
var materialTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Trading simulator API is running",
	})
}

// handleProxy forwards a messages-API request verbatim to the oracle. The
// frontend never sees the API key.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body", nil)
		return
	}

	var probe struct {
		Model     string          `json:"model"`
		MaxTokens int             `json:"max_tokens"`
		Messages  json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &probe); err != nil ||
		probe.Model == "" || probe.MaxTokens == 0 || len(probe.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: model, max_tokens, messages", nil)
		return
	}

	reply, err := s.cfg.Oracle.Forward(r.Context(), body)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}

// --- game ---

type startRequest struct {
	ScenarioID string          `json:"scenarioId"`
	Category   domain.Category `json:"category"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	var sc *domain.Scenario
	switch {
	case req.ScenarioID != "":
		sc, err = s.cfg.Scenarios.FindScenario(r.Context(), req.ScenarioID)
		if err != nil {
			respondError(w, err)
			return
		}
		if sc == nil {
			writeError(w, http.StatusNotFound, "scenario not found", nil)
			return
		}
	case req.Category != "":
		sc = scenario.Preset(req.Category)
		if sc == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("no preset scenario for category %q", req.Category), nil)
			return
		}
		if err := s.cfg.Scenarios.SaveScenario(r.Context(), sc); err != nil {
			respondError(w, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "scenarioId or category is required", nil)
		return
	}

	pf, err := s.cfg.Game.StartScenario(r.Context(), user, sc)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"scenario":  sc,
		"portfolio": pf,
	})
}

type tradeRequest struct {
	Symbol   string           `json:"symbol"`
	Side     domain.TradeSide `json:"type"`
	Quantity int64            `json:"quantity"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Side != domain.Buy && req.Side != domain.Sell {
		writeError(w, http.StatusBadRequest, "type must be \"buy\" or \"sell\"", nil)
		return
	}

	trade, err := s.cfg.Game.ExecuteTrade(r.Context(), req.Symbol, req.Side, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleListTrades(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Game.Trades())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Game.AdvanceDay(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Game.State())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.cfg.Game.Pause()
	writeJSON(w, http.StatusOK, s.cfg.Game.State())
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	if err := s.cfg.Game.Resume(); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Game.State())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed domain.Speed `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := s.cfg.Game.SetSpeed(req.Speed); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Game.State())
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.cfg.Game.Reset()
	writeJSON(w, http.StatusOK, s.cfg.Game.State())
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Game.State())
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	res, err := s.cfg.Game.Evaluate(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAssetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer", nil)
			return
		}
		days = parsed
	}

	points, err := s.cfg.Game.History(symbol, days)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// --- scenarios ---

type generateRequest struct {
	Category   domain.Category   `json:"category"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

func (s *Server) handleGenerateScenario(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Category == "" {
		req.Category = domain.CategoryCustom
	}
	if req.Difficulty == "" {
		req.Difficulty = domain.DifficultyIntermediate
	}

	materials, err := s.readyMaterials(r, user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	sc, err := s.cfg.Generator.Generate(r.Context(), s.cfg.Game.Session(), materials, req.Category, req.Difficulty)
	if err != nil {
		// The preset keeps the flow alive when the oracle cannot deliver.
		if sc = scenario.Preset(req.Category); sc == nil {
			respondError(w, err)
			return
		}
		s.cfg.Logger.Warn(r.Context(), "scenario generation fell back to preset", map[string]interface{}{
			"category": req.Category,
			"reason":   err.Error(),
		})
	}

	if err := s.cfg.Scenarios.SaveScenario(r.Context(), sc); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.cfg.Scenarios.FindAllScenarios(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleSuggestTopics(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		respondError(w, err)
		return
	}
	materials, err := s.readyMaterials(r, user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	topics, err := s.cfg.Generator.SuggestTopics(r.Context(), s.cfg.Game.Session(), materials)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"topics": topics})
}

// --- materials ---

func (s *Server) handleUploadMaterial(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxMaterialSize + 1024); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a \"file\" field", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a \"file\" field", nil)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimeType, ok := materialTypes[ext]
	if !ok {
		respondError(w, fmt.Errorf("%s: %w", ext, ports.ErrUnsupportedFileType))
		return
	}
	if header.Size > maxMaterialSize {
		respondError(w, fmt.Errorf("%d bytes: %w", header.Size, ports.ErrFileTooLarge))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxMaterialSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file payload", nil)
		return
	}

	content := string(data)
	if mimeType == "application/pdf" {
		content = base64.StdEncoding.EncodeToString(data)
	}

	m := &domain.UploadedMaterial{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		FileName:   header.Filename,
		FileType:   mimeType,
		FileSize:   header.Size,
		Content:    content,
		UploadedAt: time.Now().UTC(),
		Status:     domain.MaterialProcessing,
	}
	if err := s.cfg.Materials.SaveMaterial(r.Context(), m); err != nil {
		respondError(w, err)
		return
	}

	// Analysis runs in the background; the material flips to ready (or
	// error) once the oracle has seen it.
	go s.analyzeMaterial(m)

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) analyzeMaterial(m *domain.UploadedMaterial) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	status := domain.MaterialReady
	analysis, err := s.cfg.Generator.Analyze(ctx, s.cfg.Game.Session(), m)
	if err != nil {
		status = domain.MaterialError
	} else {
		s.cfg.Logger.Info(ctx, "material analyzed", map[string]interface{}{
			"materialID": m.ID,
			"riskLevel":  analysis.RiskLevel,
		})
	}

	if err := s.cfg.Materials.UpdateMaterialStatus(ctx, m.ID, status); err != nil {
		s.cfg.Logger.Error(ctx, err, "failed to update material status", map[string]interface{}{"materialID": m.ID})
	}
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		respondError(w, err)
		return
	}
	materials, err := s.cfg.Materials.FindMaterialsByUser(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (s *Server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	if _, err := s.currentUser(r); err != nil {
		respondError(w, err)
		return
	}
	if err := s.cfg.Materials.DeleteMaterial(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- results ---

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		respondError(w, err)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	results, err := s.cfg.Results.FindResultsByUser(r.Context(), user.ID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// --- helpers ---

// currentUser resolves the caller from the X-User-ID header, creating the
// profile document on first sight. Authentication proper lives upstream;
// the API trusts the gateway-provided identity.
func (s *Server) currentUser(r *http.Request) (*domain.User, error) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return nil, ports.ErrNotAuthenticated
	}

	user, err := s.cfg.Users.FindUser(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &domain.User{ID: id, CreatedAt: time.Now().UTC()}
		if err := s.cfg.Users.SaveUser(r.Context(), user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *Server) readyMaterials(r *http.Request, userID string) ([]*domain.UploadedMaterial, error) {
	all, err := s.cfg.Materials.FindMaterialsByUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	ready := make([]*domain.UploadedMaterial, 0, len(all))
	for _, m := range all {
		if m.Status != domain.MaterialError {
			ready = append(ready, m)
		}
	}
	return ready, nil
}
