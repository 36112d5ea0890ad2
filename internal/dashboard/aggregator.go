// Package dashboard aggregates the analytics endpoints behind each dashboard
// tab into a single view-model, issuing each tab's calls as one concurrent batch.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// ErrUnknownTab is returned when asked to aggregate a tab that does not exist.
var ErrUnknownTab = errors.New("unknown dashboard tab")

// Source defines the analytics reads the aggregator issues.
// Implemented by *analytics.Client.
type Source interface {
	ExecutiveDashboard(ctx context.Context, orgID string, q analytics.Query) (*analytics.ExecutiveDashboard, error)
	HealthScore(ctx context.Context, orgID string, q analytics.Query) (*analytics.HealthScore, error)
	OKRs(ctx context.Context, orgID string, q analytics.Query) (*analytics.OKRList, error)
	AverageDonation(ctx context.Context, orgID string, q analytics.Query) (*analytics.AverageDonation, error)
	Insights(ctx context.Context, orgID string, q analytics.Query) (*analytics.InsightList, error)
	LapsedRate(ctx context.Context, orgID string, q analytics.Query) (*analytics.LapsedRate, error)
	MissionVision(ctx context.Context, orgID string) (*analytics.MissionVision, error)
	GoldenTriangle(ctx context.Context, orgID string, q analytics.Query) (*analytics.GoldenTriangle, error)
	DonorChurnTrend(ctx context.Context, orgID string, q analytics.Query) (*analytics.ChurnTrend, error)
	RevenueForecast(ctx context.Context, orgID string, q analytics.Query) (*analytics.RevenueForecast, error)
	ChurnRisk(ctx context.Context, orgID string, q analytics.Query) (*analytics.ChurnRisk, error)
	Momentum(ctx context.Context, orgID string, q analytics.Query) (*analytics.Momentum, error)
	GoalAttainment(ctx context.Context, orgID string, q analytics.Query) (*analytics.GoalAttainment, error)
	InvestmentContinuum(ctx context.Context, orgID string, q analytics.Query) (*analytics.InvestmentContinuum, error)
	RevenueDiversification(ctx context.Context, orgID string, q analytics.Query) (*analytics.RevenueDiversification, error)
	MultiYearTrends(ctx context.Context, orgID string, q analytics.Query) (*analytics.MultiYearTrends, error)
	CashflowGrid(ctx context.Context, orgID string, q analytics.Query) (*analytics.CashflowGrid, error)
	CampaignROI(ctx context.Context, orgID string, q analytics.Query) (*analytics.CampaignROI, error)
	StrategicSummary(ctx context.Context, orgID string, q analytics.Query) (*analytics.StrategicSummary, error)
	SWOT(ctx context.Context, orgID string, q analytics.Query) (*analytics.SWOT, error)
}

// Compile-time interface check
var _ Source = (*analytics.Client)(nil)

// FetchError names the endpoint whose call failed an aggregation.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Aggregator builds tab view-models from a Source.
type Aggregator struct {
	source Source
	limit  int
	now    func() time.Time
}

// NewAggregator creates an aggregator. limit caps concurrent calls per batch;
// zero or less means unlimited.
func NewAggregator(source Source, limit int) *Aggregator {
	return &Aggregator{
		source: source,
		limit:  limit,
		now:    time.Now,
	}
}

// Aggregate dispatches to the aggregation for tab.
func (a *Aggregator) Aggregate(ctx context.Context, tab types.Tab, orgID string, p types.Params) (types.ViewModel, error) {
	switch tab {
	case types.TabOverview:
		return a.Overview(ctx, orgID, p)
	case types.TabFinancial:
		return a.Financial(ctx, orgID, p)
	case types.TabStrategy:
		return a.Strategy(ctx, orgID, p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
}

// Overview fetches the executive dashboard batch. Any failed call fails the
// whole aggregation and cancels the rest of the batch.
func (a *Aggregator) Overview(ctx context.Context, orgID string, p types.Params) (*types.OverviewModel, error) {
	start := time.Now()
	q := p.Query()
	m := &types.OverviewModel{OrgID: orgID, Params: p}

	g, gctx := errgroup.WithContext(ctx)
	a.applyLimit(g)

	src := a.source
	fetch(g, gctx, "executive-dashboard", &m.Executive, func(ctx context.Context) (*analytics.ExecutiveDashboard, error) {
		return src.ExecutiveDashboard(ctx, orgID, q)
	})
	fetch(g, gctx, "health-score", &m.Health, func(ctx context.Context) (*analytics.HealthScore, error) {
		return src.HealthScore(ctx, orgID, q)
	})
	fetch(g, gctx, "okrs", &m.OKRs, func(ctx context.Context) (*analytics.OKRList, error) {
		return src.OKRs(ctx, orgID, q)
	})
	fetch(g, gctx, "avg-donation", &m.AvgDonation, func(ctx context.Context) (*analytics.AverageDonation, error) {
		return src.AverageDonation(ctx, orgID, q)
	})
	fetch(g, gctx, "insights", &m.Insights, func(ctx context.Context) (*analytics.InsightList, error) {
		return src.Insights(ctx, orgID, q)
	})
	fetch(g, gctx, "lapsed-rate", &m.Lapsed, func(ctx context.Context) (*analytics.LapsedRate, error) {
		return src.LapsedRate(ctx, orgID, q)
	})
	fetch(g, gctx, "mission-vision", &m.MissionVision, func(ctx context.Context) (*analytics.MissionVision, error) {
		return src.MissionVision(ctx, orgID)
	})
	fetch(g, gctx, "golden-triangle", &m.GoldenTriangle, func(ctx context.Context) (*analytics.GoldenTriangle, error) {
		return src.GoldenTriangle(ctx, orgID, q)
	})
	fetch(g, gctx, "donor-churn-trend", &m.ChurnTrend, func(ctx context.Context) (*analytics.ChurnTrend, error) {
		return src.DonorChurnTrend(ctx, orgID, q)
	})
	fetch(g, gctx, "revenue-forecast", &m.Forecast, func(ctx context.Context) (*analytics.RevenueForecast, error) {
		return src.RevenueForecast(ctx, orgID, q)
	})
	fetch(g, gctx, "churn-risk", &m.ChurnRisk, func(ctx context.Context) (*analytics.ChurnRisk, error) {
		return src.ChurnRisk(ctx, orgID, q)
	})
	fetch(g, gctx, "momentum", &m.Momentum, func(ctx context.Context) (*analytics.Momentum, error) {
		return src.Momentum(ctx, orgID, q)
	})
	fetch(g, gctx, "goal-attainment", &m.GoalAttainment, func(ctx context.Context) (*analytics.GoalAttainment, error) {
		return src.GoalAttainment(ctx, orgID, q)
	})

	if err := g.Wait(); err != nil {
		a.logFailure(types.TabOverview, orgID, err)
		return nil, err
	}

	m.FetchedAt = a.now().UTC()
	a.logSuccess(types.TabOverview, orgID, 13, start)
	return m, nil
}

// Strategy fetches the strategic planning batch. Like Overview it is all-or-nothing.
func (a *Aggregator) Strategy(ctx context.Context, orgID string, p types.Params) (*types.StrategyModel, error) {
	start := time.Now()
	q := p.Query()
	m := &types.StrategyModel{OrgID: orgID, Params: p}

	g, gctx := errgroup.WithContext(ctx)
	a.applyLimit(g)

	src := a.source
	fetch(g, gctx, "strategic-summary", &m.Summary, func(ctx context.Context) (*analytics.StrategicSummary, error) {
		return src.StrategicSummary(ctx, orgID, q)
	})
	fetch(g, gctx, "swot", &m.SWOT, func(ctx context.Context) (*analytics.SWOT, error) {
		return src.SWOT(ctx, orgID, q)
	})
	fetch(g, gctx, "investment-continuum", &m.Continuum, func(ctx context.Context) (*analytics.InvestmentContinuum, error) {
		return src.InvestmentContinuum(ctx, orgID, q)
	})

	if err := g.Wait(); err != nil {
		a.logFailure(types.TabStrategy, orgID, err)
		return nil, err
	}

	m.FetchedAt = a.now().UTC()
	a.logSuccess(types.TabStrategy, orgID, 3, start)
	return m, nil
}

// Financial fetches the financial trends batch. Individual failures leave the
// corresponding field nil and are listed in Missing; only an authentication
// failure or cancellation fails the aggregation.
func (a *Aggregator) Financial(ctx context.Context, orgID string, p types.Params) (*types.FinancialModel, error) {
	start := time.Now()
	q := p.Query()
	m := &types.FinancialModel{OrgID: orgID, Params: p}

	var mu sync.Mutex
	tolerate := func(ctx context.Context, endpoint string, err error) error {
		if analytics.IsUnauthorized(err) || ctx.Err() != nil {
			return &FetchError{Endpoint: endpoint, Err: err}
		}
		slog.Warn("financial fetch failed, continuing without it",
			"component", "dashboard",
			"org_id", orgID,
			"endpoint", endpoint,
			"error", err,
		)
		mu.Lock()
		m.Missing = append(m.Missing, endpoint)
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	a.applyLimit(g)

	src := a.source
	fetchTolerant(g, gctx, "revenue-diversification", &m.Diversification, tolerate, func(ctx context.Context) (*analytics.RevenueDiversification, error) {
		return src.RevenueDiversification(ctx, orgID, q)
	})
	fetchTolerant(g, gctx, "multi-year-trends", &m.Trends, tolerate, func(ctx context.Context) (*analytics.MultiYearTrends, error) {
		return src.MultiYearTrends(ctx, orgID, q)
	})
	fetchTolerant(g, gctx, "cashflow-grid", &m.Cashflow, tolerate, func(ctx context.Context) (*analytics.CashflowGrid, error) {
		return src.CashflowGrid(ctx, orgID, q)
	})
	fetchTolerant(g, gctx, "campaign-roi", &m.CampaignROI, tolerate, func(ctx context.Context) (*analytics.CampaignROI, error) {
		return src.CampaignROI(ctx, orgID, q)
	})

	if err := g.Wait(); err != nil {
		a.logFailure(types.TabFinancial, orgID, err)
		return nil, err
	}

	sort.Strings(m.Missing)
	m.FetchedAt = a.now().UTC()
	a.logSuccess(types.TabFinancial, orgID, 4, start)
	return m, nil
}

func (a *Aggregator) applyLimit(g *errgroup.Group) {
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
}

// fetch runs call in g and stores its result in dst. Each call owns its own
// destination so results land in request order regardless of completion order.
func fetch[T any](g *errgroup.Group, ctx context.Context, endpoint string, dst **T, call func(context.Context) (*T, error)) {
	g.Go(func() error {
		v, err := call(ctx)
		if err != nil {
			return &FetchError{Endpoint: endpoint, Err: err}
		}
		*dst = v
		return nil
	})
}

func fetchTolerant[T any](g *errgroup.Group, ctx context.Context, endpoint string, dst **T,
	onErr func(context.Context, string, error) error, call func(context.Context) (*T, error)) {
	g.Go(func() error {
		v, err := call(ctx)
		if err != nil {
			return onErr(ctx, endpoint, err)
		}
		*dst = v
		return nil
	})
}

func (a *Aggregator) logSuccess(tab types.Tab, orgID string, calls int, start time.Time) {
	slog.Info("aggregation completed",
		"component", "dashboard",
		"tab", string(tab),
		"org_id", orgID,
		"calls", calls,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (a *Aggregator) logFailure(tab types.Tab, orgID string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	level := slog.LevelError
	if analytics.IsUnauthorized(err) {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "aggregation failed",
		"component", "dashboard",
		"tab", string(tab),
		"org_id", orgID,
		"error", err,
	)
}
