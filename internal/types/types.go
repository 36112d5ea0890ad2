package types

import (
	"time"

	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// Tab identifies a dashboard view.
type Tab string

const (
	TabOverview  Tab = "overview"
	TabFinancial Tab = "financial"
	TabStrategy  Tab = "strategy"
)

// Tabs lists every dashboard tab in display order.
var Tabs = []Tab{TabOverview, TabFinancial, TabStrategy}

// ParseTab returns the Tab named by s.
func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Period selector values accepted by the analytics API.
const (
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodYTD     = "ytd"
)

// Periods lists every accepted period selector.
var Periods = []string{PeriodMonth, PeriodQuarter, PeriodYear, PeriodYTD}

// Params are the period/year selectors of a dashboard view.
type Params struct {
	Period string `json:"period,omitempty"`
	Year   int    `json:"year,omitempty"`
	Years  int    `json:"years,omitempty"`
}

// Query converts the selectors into an API query.
func (p Params) Query() analytics.Query {
	return analytics.Query{Period: p.Period, Year: p.Year, Years: p.Years}
}

// ViewModel is the aggregated snapshot behind one tab.
type ViewModel interface {
	ViewTab() Tab
}

// OverviewModel is the executive dashboard view-model.
// Every field is populated; the overview aggregation is all-or-nothing.
type OverviewModel struct {
	OrgID          string                        `json:"org_id"`
	Params         Params                        `json:"params"`
	Executive      *analytics.ExecutiveDashboard `json:"executive"`
	Health         *analytics.HealthScore        `json:"health"`
	OKRs           *analytics.OKRList            `json:"okrs"`
	AvgDonation    *analytics.AverageDonation    `json:"avg_donation"`
	Insights       *analytics.InsightList        `json:"insights"`
	Lapsed         *analytics.LapsedRate         `json:"lapsed"`
	MissionVision  *analytics.MissionVision      `json:"mission_vision"`
	GoldenTriangle *analytics.GoldenTriangle     `json:"golden_triangle"`
	ChurnTrend     *analytics.ChurnTrend         `json:"churn_trend"`
	Forecast       *analytics.RevenueForecast    `json:"forecast"`
	ChurnRisk      *analytics.ChurnRisk          `json:"churn_risk"`
	Momentum       *analytics.Momentum           `json:"momentum"`
	GoalAttainment *analytics.GoalAttainment     `json:"goal_attainment"`
	FetchedAt      time.Time                     `json:"fetched_at"`
}

func (*OverviewModel) ViewTab() Tab { return TabOverview }

// FinancialModel is the financial trends view-model. Fields whose fetch
// failed are nil and named in Missing.
type FinancialModel struct {
	OrgID           string                            `json:"org_id"`
	Params          Params                            `json:"params"`
	Diversification *analytics.RevenueDiversification `json:"diversification"`
	Trends          *analytics.MultiYearTrends        `json:"trends"`
	Cashflow        *analytics.CashflowGrid           `json:"cashflow"`
	CampaignROI     *analytics.CampaignROI            `json:"campaign_roi"`
	Missing         []string                          `json:"missing,omitempty"`
	FetchedAt       time.Time                         `json:"fetched_at"`
}

func (*FinancialModel) ViewTab() Tab { return TabFinancial }

// StrategyModel is the strategic planning view-model.
type StrategyModel struct {
	OrgID     string                         `json:"org_id"`
	Params    Params                         `json:"params"`
	Summary   *analytics.StrategicSummary    `json:"summary"`
	SWOT      *analytics.SWOT                `json:"swot"`
	Continuum *analytics.InvestmentContinuum `json:"continuum"`
	FetchedAt time.Time                      `json:"fetched_at"`
}

func (*StrategyModel) ViewTab() Tab { return TabStrategy }

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Upstream string `json:"upstream"`
}

// MutationResponse is returned by the BFF for successful CRUD calls.
type MutationResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// CachedToken is an access token saved by the CLI for a named profile.
// A zero ExpiresAt means the token does not expire locally.
type CachedToken struct {
	ID          string    `json:"id"`
	Profile     string    `json:"profile"`
	AccessToken string    `json:"-"`
	APIURL      string    `json:"api_url"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token has expired at now.
func (t *CachedToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// ExportRecord logs a report written by the export command.
type ExportRecord struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	ReportType string    `json:"report_type"`
	Format     string    `json:"format"`
	Filename   string    `json:"filename"`
	Location   string    `json:"location"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}
