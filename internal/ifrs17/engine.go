package ifrs17

import "context"

// SnapshotLoader supplies the current snapshot.
type SnapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Engine exposes the reporting operations. Every call loads the snapshot
// first and fails with the loader's error, unchanged, if it is unavailable.
type Engine struct {
	loader SnapshotLoader
}

// NewEngine creates an engine reading from loader.
func NewEngine(loader SnapshotLoader) *Engine {
	return &Engine{loader: loader}
}

// Metadata returns reporting date, currency, portfolios and description.
func (e *Engine) Metadata(ctx context.Context) (*MetadataView, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildMetadata(s), nil
}

// DashboardSummary returns totals, trend percentages and the portfolio breakdown.
func (e *Engine) DashboardSummary(ctx context.Context) (*Summary, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSummary(s), nil
}

// LiabilityTrend returns closing liability per cohort year.
func (e *Engine) LiabilityTrend(ctx context.Context) (*TrendSeries, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLiabilityTrend(s), nil
}

// CSMTrend returns closing CSM per cohort year.
func (e *Engine) CSMTrend(ctx context.Context) (*TrendSeries, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCSMTrend(s), nil
}

// PortfolioComparison returns the per-portfolio comparison table.
func (e *Engine) PortfolioComparison(ctx context.Context) ([]ComparisonRow, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildPortfolioComparison(s), nil
}

// Dashboard returns every dashboard view, or none of them.
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDashboard(s), nil
}

// LiabilityReconciliation returns the liability roll-forward table.
func (e *Engine) LiabilityReconciliation(ctx context.Context) (*LiabilityReconciliation, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLiabilityReconciliation(s), nil
}

// CSMReconciliation returns the CSM roll-forward table.
func (e *Engine) CSMReconciliation(ctx context.Context) (*CSMReconciliation, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCSMReconciliation(s), nil
}

// Data returns raw data, optionally filtered.
func (e *Engine) Data(ctx context.Context, f SliceFilter) (DataSlice, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDataSlice(s, f)
}
