package ports

import (
	"context"

	"tradeTutor/internal/domain"
)

// PortfolioRepository stores portfolio documents, including embedded
// positions and the performance history.
type PortfolioRepository interface {
	// SavePortfolio inserts or fully replaces a portfolio document.
	SavePortfolio(ctx context.Context, pf *domain.Portfolio) error
	// FindPortfolio retrieves a portfolio by id. Returns nil, nil if not found.
	FindPortfolio(ctx context.Context, id string) (*domain.Portfolio, error)
	// FindLatestByUser retrieves the most recently created portfolio for a
	// user, if any. Returns nil, nil if the user has none.
	FindLatestByUser(ctx context.Context, userID string) (*domain.Portfolio, error)
}

// TradeRepository stores the append-only trade audit log.
type TradeRepository interface {
	// SaveTrade appends a trade record.
	SaveTrade(ctx context.Context, trade *domain.Trade) error
	// FindByPortfolio retrieves all trades for a portfolio, newest first.
	FindByPortfolio(ctx context.Context, portfolioID string) ([]*domain.Trade, error)
}

// ScenarioRepository stores scenario documents.
type ScenarioRepository interface {
	// SaveScenario inserts a scenario document.
	SaveScenario(ctx context.Context, sc *domain.Scenario) error
	// FindScenario retrieves a scenario by id. Returns nil, nil if not found.
	FindScenario(ctx context.Context, id string) (*domain.Scenario, error)
	// FindAllScenarios retrieves all stored scenarios, newest first.
	FindAllScenarios(ctx context.Context) ([]*domain.Scenario, error)
}

// ResultRepository stores finished-scenario evaluation results.
type ResultRepository interface {
	// SaveResult appends a scenario result.
	SaveResult(ctx context.Context, res *domain.ScenarioResult) error
	// FindResultsByUser retrieves a user's most recent results, up to limit.
	FindResultsByUser(ctx context.Context, userID string, limit int) ([]*domain.ScenarioResult, error)
}

// MaterialRepository stores uploaded course materials.
type MaterialRepository interface {
	// SaveMaterial inserts an uploaded material document.
	SaveMaterial(ctx context.Context, m *domain.UploadedMaterial) error
	// FindMaterialsByUser retrieves a user's materials, newest first.
	FindMaterialsByUser(ctx context.Context, userID string) ([]*domain.UploadedMaterial, error)
	// UpdateMaterialStatus sets the processing status of a material.
	UpdateMaterialStatus(ctx context.Context, id string, status domain.MaterialStatus) error
	// DeleteMaterial removes a material document.
	DeleteMaterial(ctx context.Context, id string) error
}

// UserRepository stores user profile documents.
type UserRepository interface {
	// SaveUser inserts or replaces a user document.
	SaveUser(ctx context.Context, u *domain.User) error
	// FindUser retrieves a user by id. Returns nil, nil if not found.
	FindUser(ctx context.Context, id string) (*domain.User, error)
}
