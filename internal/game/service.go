// Package game hosts the simulation controller: the Idle → Running →
// Complete state machine, the day-advance clock, and the serialization of
// every portfolio mutation for one user session.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ledger"
	"tradeTutor/internal/market"
	"tradeTutor/internal/metrics"
	"tradeTutor/internal/ports"
	"tradeTutor/internal/scenario"
)

// defaultDayInterval is the wall-clock time of one simulated day at speed 1.
const defaultDayInterval = 5 * time.Second

// Publisher receives market/portfolio snapshots after every mutation, for
// streaming to connected clients. Implementations must not block.
type Publisher interface {
	Broadcast(v interface{})
}

// MarketUpdate is the snapshot published after each trade and day advance.
type MarketUpdate struct {
	Type       string          `json:"type"` // always "market_update"
	Day        int             `json:"day"`
	Assets     []*domain.Asset `json:"assets"`
	Cash       decimal.Decimal `json:"cash"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Timestamp  time.Time       `json:"timestamp"`
}

// State is a point-in-time snapshot of the live simulation cursor. It is
// reconstructable from the stored portfolio and scenario; nothing here is
// authoritative beyond the current process.
type State struct {
	Phase     domain.Phase      `json:"phase"`
	Scenario  *domain.Scenario  `json:"currentScenario,omitempty"`
	Portfolio *domain.Portfolio `json:"portfolio,omitempty"`
	Assets    []*domain.Asset   `json:"assets"`
	Day       int               `json:"currentDay"`
	Paused    bool              `json:"isPaused"`
	Speed     domain.Speed      `json:"speed"`
}

// Config holds the controller's dependencies.
type Config struct {
	Logger     ports.Logger
	Portfolios ports.PortfolioRepository
	Trades     ports.TradeRepository
	Results    ports.ResultRepository
	Evaluator  *scenario.Evaluator

	// DayInterval is the cadence of one simulated day at speed 1.
	// Defaults to 5s.
	DayInterval time.Duration

	// Seed produces the engine seed for a new scenario run. Defaults to
	// wall-clock nanoseconds; tests inject a fixed seed.
	Seed func() int64

	// Publisher is optional; nil disables streaming.
	Publisher Publisher
}

// Service is the game clock / controller. All mutation is serialized
// through its mutex; the timer goroutine is owned by the service and is
// cancelled atomically with pause, speed changes and reset so no tick can
// fire across a scenario boundary.
type Service struct {
	cfg Config

	mu        sync.Mutex
	phase     domain.Phase
	user      *domain.User
	scen      *domain.Scenario
	portfolio *domain.Portfolio
	assets    []*domain.Asset
	trades    []*domain.Trade
	engine    *market.Engine
	session   *scenario.Session
	day       int
	paused    bool
	speed     domain.Speed
	timerStop chan struct{}
}

// NewService creates the controller in the Idle phase with the default
// asset catalog loaded.
func NewService(cfg Config) (*Service, error) {
	if cfg.Logger == nil || cfg.Portfolios == nil || cfg.Trades == nil || cfg.Results == nil || cfg.Evaluator == nil {
		return nil, fmt.Errorf("missing required dependencies for game service: %w", ports.ErrConfigurationError)
	}
	if cfg.DayInterval <= 0 {
		cfg.DayInterval = defaultDayInterval
	}
	if cfg.Seed == nil {
		cfg.Seed = func() int64 { return time.Now().UnixNano() }
	}
	return &Service{
		cfg:     cfg,
		phase:   domain.PhaseIdle,
		assets:  market.DefaultCatalog(),
		speed:   domain.Speed1,
		paused:  true,
		session: scenario.NewSession(),
	}, nil
}

// StartScenario creates a fresh portfolio for the user, resets the asset
// catalog and trade history, and enters the Running phase paused. The
// caller unpauses (or steps manually) to begin play.
func (s *Service) StartScenario(ctx context.Context, user *domain.User, sc *domain.Scenario) (*domain.Portfolio, error) {
	if user == nil {
		return nil, ports.ErrNotAuthenticated
	}
	if sc == nil || sc.Duration <= 0 {
		return nil, fmt.Errorf("scenario with a positive duration is required: %w", ports.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Configuring covers portfolio creation and persistence; a storage
	// failure rolls the phase back and leaves any prior run intact.
	prev := s.phase
	s.phase = domain.PhaseConfiguring

	now := time.Now().UTC()
	pf := domain.NewPortfolio(uuid.NewString(), user.ID, sc.InitialCash, now)
	if err := s.cfg.Portfolios.SavePortfolio(ctx, pf); err != nil {
		s.phase = prev
		s.cfg.Logger.Error(ctx, err, "failed to persist new portfolio", map[string]interface{}{"scenarioID": sc.ID})
		return nil, fmt.Errorf("persist portfolio: %w", err)
	}

	s.stopTimerLocked()
	s.user = user
	s.scen = sc
	s.portfolio = pf
	s.assets = market.DefaultCatalog()
	s.trades = nil
	s.engine = market.NewEngine(s.cfg.Seed(), 1)
	s.session.Reset()
	s.day = 0
	s.paused = true
	s.speed = domain.Speed1
	s.phase = domain.PhaseRunning

	metrics.ScenariosStarted.WithLabelValues(string(sc.Category)).Inc()
	s.cfg.Logger.Info(ctx, "scenario started", map[string]interface{}{
		"scenarioID":  sc.ID,
		"title":       sc.Title,
		"duration":    sc.Duration,
		"initialCash": sc.InitialCash.String(),
		"userID":      user.ID,
	})
	return pf, nil
}

// ExecuteTrade applies a market order against the current prices. The new
// portfolio state is computed on a clone and committed only after both the
// portfolio and the trade record persist, so a storage failure surfaces as
// a failed trade with no partial state visible to the caller.
func (s *Service) ExecuteTrade(ctx context.Context, symbol string, side domain.TradeSide, quantity int64) (*domain.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scen == nil || s.portfolio == nil {
		return nil, ports.ErrNoActiveScenario
	}
	asset := s.assetBySymbolLocked(symbol)
	if asset == nil {
		return nil, fmt.Errorf("symbol %q: %w", symbol, ports.ErrUnknownAsset)
	}

	now := time.Now().UTC()
	next := s.portfolio.Clone()
	trade, err := ledger.ExecuteTrade(next, asset, side, quantity, s.scen.InitialCash, now)
	if err != nil {
		return nil, err
	}

	// One logical transaction: both writes must land before commit.
	if err := s.cfg.Portfolios.SavePortfolio(ctx, next); err != nil {
		s.cfg.Logger.Error(ctx, err, "trade aborted: portfolio persistence failed", map[string]interface{}{"symbol": symbol})
		return nil, fmt.Errorf("persist portfolio: %w", err)
	}
	if err := s.cfg.Trades.SaveTrade(ctx, trade); err != nil {
		s.cfg.Logger.Error(ctx, err, "trade aborted: trade persistence failed", map[string]interface{}{"symbol": symbol})
		return nil, fmt.Errorf("persist trade: %w", err)
	}

	s.portfolio = next
	s.trades = append(s.trades, trade)

	metrics.TradesTotal.WithLabelValues(string(side)).Inc()
	s.cfg.Logger.Info(ctx, "trade executed", map[string]interface{}{
		"tradeID":  trade.ID,
		"symbol":   symbol,
		"side":     side,
		"quantity": quantity,
		"price":    trade.Price.String(),
		"cash":     next.Cash.String(),
	})
	s.publishLocked(now)
	return trade, nil
}

// AdvanceDay steps the simulation forward one day: today's scheduled events
// shock the affected assets, ordinary volatility moves the rest, positions
// are revalued and a performance snapshot is appended. Reaching the
// scenario duration transitions to Complete and stops the clock.
func (s *Service) AdvanceDay(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceDayLocked(ctx)
}

func (s *Service) advanceDayLocked(ctx context.Context) error {
	if s.scen == nil || s.portfolio == nil {
		return ports.ErrNoActiveScenario
	}
	// Past the final day advancing is a no-op; the counter never moves.
	if s.phase == domain.PhaseComplete {
		return nil
	}
	if s.phase != domain.PhaseRunning {
		return ports.ErrNoActiveScenario
	}
	if s.day >= s.scen.Duration {
		s.completeLocked(ctx)
		return nil
	}

	nextDay := s.day + 1
	conditions := s.scen.ConditionsForDay(nextDay)
	newAssets := s.engine.AdvanceDay(s.assets, conditions)

	now := time.Now().UTC()
	next := s.portfolio.Clone()
	ledger.Revalue(next, newAssets)
	next.UpdatedAt = now
	ledger.AppendMetric(next, s.scen.InitialCash, now)

	if err := s.cfg.Portfolios.SavePortfolio(ctx, next); err != nil {
		// Neither prices nor portfolio are committed; the day repeats on
		// the next tick.
		s.cfg.Logger.Error(ctx, err, "day advance aborted: persistence failed", map[string]interface{}{"day": nextDay})
		return fmt.Errorf("persist portfolio: %w", err)
	}

	s.assets = newAssets
	s.portfolio = next
	s.day = nextDay

	metrics.DayAdvancesTotal.Inc()
	if len(conditions) > 0 {
		s.cfg.Logger.Info(ctx, "market events applied", map[string]interface{}{"day": nextDay, "events": len(conditions)})
	}
	s.cfg.Logger.Debug(ctx, "day advanced", map[string]interface{}{
		"day":        nextDay,
		"totalValue": next.TotalValue().String(),
	})
	s.publishLocked(now)

	if s.day >= s.scen.Duration {
		s.completeLocked(ctx)
	}
	return nil
}

func (s *Service) completeLocked(ctx context.Context) {
	if s.phase == domain.PhaseComplete {
		return
	}
	s.stopTimerLocked()
	s.paused = true
	s.phase = domain.PhaseComplete
	s.cfg.Logger.Info(ctx, "scenario complete", map[string]interface{}{
		"scenarioID": s.scen.ID,
		"day":        s.day,
		"finalValue": s.portfolio.TotalValue().String(),
	})
}

// Evaluate hands the finished run to the evaluation oracle and persists the
// result. Only available once the scenario has reached its final day.
func (s *Service) Evaluate(ctx context.Context) (*domain.ScenarioResult, error) {
	s.mu.Lock()
	if s.scen == nil || s.portfolio == nil {
		s.mu.Unlock()
		return nil, ports.ErrNoActiveScenario
	}
	if s.day < s.scen.Duration {
		s.mu.Unlock()
		return nil, ports.ErrScenarioNotEnded
	}
	sc := s.scen
	pf := s.portfolio.Clone()
	trades := make([]*domain.Trade, len(s.trades))
	copy(trades, s.trades)
	session := s.session
	s.mu.Unlock()

	// The oracle call runs outside the critical section; it can be slow
	// and must not block pause/reset.
	res := s.cfg.Evaluator.Evaluate(ctx, session, sc, pf, trades)

	if err := s.cfg.Results.SaveResult(ctx, res); err != nil {
		// The learner still gets their result; only the archive is behind.
		s.cfg.Logger.Error(ctx, err, "failed to persist scenario result", map[string]interface{}{"scenarioID": sc.ID})
	}
	metrics.EvaluationsTotal.Inc()
	return res, nil
}

// Pause stops the clock. Trading remains possible while paused.
func (s *Service) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.stopTimerLocked()
}

// Resume starts the clock at the current speed.
func (s *Service) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scen == nil || s.phase != domain.PhaseRunning {
		return ports.ErrNoActiveScenario
	}
	s.paused = false
	s.startTimerLocked()
	return nil
}

// SetSpeed changes the clock multiplier, restarting the interval at the new
// cadence if the clock is running.
func (s *Service) SetSpeed(speed domain.Speed) error {
	if !speed.IsValid() {
		return ports.ErrInvalidSpeed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
	if !s.paused && s.phase == domain.PhaseRunning {
		s.startTimerLocked()
	}
	return nil
}

// Reset clears the scenario, portfolio, day counter and trade list,
// regenerates the asset catalog and returns to Idle.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.scen = nil
	s.portfolio = nil
	s.trades = nil
	s.assets = market.DefaultCatalog()
	s.engine = nil
	s.session.Reset()
	s.day = 0
	s.paused = true
	s.speed = domain.Speed1
	s.phase = domain.PhaseIdle
}

// Close cancels the clock. The service is not usable afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

// State returns a copy of the live simulation cursor.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Phase:  s.phase,
		Assets: domain.CloneAssets(s.assets),
		Day:    s.day,
		Paused: s.paused,
		Speed:  s.speed,
	}
	st.Scenario = s.scen
	if s.portfolio != nil {
		st.Portfolio = s.portfolio.Clone()
	}
	return st
}

// Trades returns the session's trade history, oldest first.
func (s *Service) Trades() []*domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// History returns the seeded chart series for a symbol. The seed is derived
// from the scenario and symbol, so repeated calls within one scenario agree
// with each other and with the live price.
func (s *Service) History(symbol string, days int) ([]market.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset := s.assetBySymbolLocked(symbol)
	if asset == nil {
		return nil, fmt.Errorf("symbol %q: %w", symbol, ports.ErrUnknownAsset)
	}
	scenarioID := ""
	if s.scen != nil {
		scenarioID = s.scen.ID
	}
	seed := market.HistorySeed(scenarioID, symbol)
	return market.History(asset, days, seed, time.Now().UTC()), nil
}

// Session exposes the oracle conversation context for generation calls made
// on behalf of this game session.
func (s *Service) Session() *scenario.Session {
	return s.session
}

// --- clock internals ---

// startTimerLocked (re)starts the day-advance ticker at the current speed.
// Caller holds the mutex.
func (s *Service) startTimerLocked() {
	s.stopTimerLocked()
	stop := make(chan struct{})
	s.timerStop = stop
	interval := s.cfg.DayInterval / time.Duration(s.speed)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// stopTimerLocked cancels the ticker goroutine. Caller holds the mutex.
func (s *Service) stopTimerLocked() {
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}

// tick advances one day on the clock's cadence. If the previous advance is
// still being persisted the tick is skipped rather than interleaved.
func (s *Service) tick() {
	if !s.mu.TryLock() {
		metrics.TicksSkipped.Inc()
		return
	}
	defer s.mu.Unlock()
	if s.paused || s.phase != domain.PhaseRunning {
		return
	}
	if err := s.advanceDayLocked(context.Background()); err != nil {
		s.cfg.Logger.Error(context.Background(), err, "timer-driven day advance failed")
	}
}

func (s *Service) assetBySymbolLocked(symbol string) *domain.Asset {
	for _, a := range s.assets {
		if a.Symbol == symbol {
			return a
		}
	}
	return nil
}

func (s *Service) publishLocked(now time.Time) {
	if s.cfg.Publisher == nil {
		return
	}
	s.cfg.Publisher.Broadcast(MarketUpdate{
		Type:       "market_update",
		Day:        s.day,
		Assets:     domain.CloneAssets(s.assets),
		Cash:       s.portfolio.Cash,
		TotalValue: s.portfolio.TotalValue(),
		Timestamp:  now,
	})
}
