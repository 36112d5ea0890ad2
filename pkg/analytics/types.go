package analytics

import (
	"net/url"
	"strconv"
	"time"
)

// Query holds the period/year selectors shared by most read endpoints.
type Query struct {
	Period string // month, quarter, year, ytd
	Year   int    // Fiscal year; zero means server default
	Years  int    // Lookback for multi-year endpoints
}

// Values encodes the query as URL parameters, skipping zero fields.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Period != "" {
		v.Set("period", q.Period)
	}
	if q.Year != 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}
	if q.Years != 0 {
		v.Set("years", strconv.Itoa(q.Years))
	}
	return v
}

// ExecutiveDashboard is the headline KPI block for an organization.
type ExecutiveDashboard struct {
	TotalRevenue   float64  `json:"total_revenue"`
	RevenueGrowth  float64  `json:"revenue_growth"`
	TotalDonors    int      `json:"total_donors"`
	ActiveDonors   int      `json:"active_donors"`
	NewDonors      int      `json:"new_donors"`
	RetentionRate  *float64 `json:"retention_rate,omitempty"`
	AverageGift    float64  `json:"average_gift"`
	WebsiteTraffic float64  `json:"website_traffic,omitempty"`
	ConversionRate float64  `json:"conversion_rate,omitempty"`
}

// HealthScore is the server-computed organizational health score.
type HealthScore struct {
	Score      float64            `json:"score"`
	Grade      string             `json:"grade,omitempty"`
	Components map[string]float64 `json:"components,omitempty"`
}

// KeyResult is one measurable result under an objective.
type KeyResult struct {
	Description string  `json:"description"`
	Target      float64 `json:"target"`
	Current     float64 `json:"current"`
	Unit        string  `json:"unit,omitempty"`
}

// OKR status values reported by the server.
const (
	OKRStatusOnTrack   = "on_track"
	OKRStatusAtRisk    = "at_risk"
	OKRStatusOffTrack  = "off_track"
	OKRStatusCompleted = "completed"
)

// OKR is an objective with its key results.
type OKR struct {
	ID         string      `json:"id"`
	Objective  string      `json:"objective"`
	Owner      string      `json:"owner,omitempty"`
	Progress   float64     `json:"progress"`
	Status     string      `json:"status"`
	KeyResults []KeyResult `json:"key_results,omitempty"`
}

// OKRList wraps the okrs endpoint response.
type OKRList struct {
	OKRs []OKR `json:"okrs"`
}

// AverageDonation holds gift-size statistics.
type AverageDonation struct {
	Average      float64 `json:"average_donation"`
	Median       float64 `json:"median_donation,omitempty"`
	PriorAverage float64 `json:"prior_average,omitempty"`
	ChangePct    float64 `json:"change_pct,omitempty"`
}

// Insight is a server-generated recommendation.
type Insight struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// InsightList wraps the insights endpoint response.
type InsightList struct {
	Insights []Insight `json:"insights"`
}

// LapsedRate describes donors who stopped giving.
type LapsedRate struct {
	Rate         float64 `json:"lapsed_rate"`
	LapsedDonors int     `json:"lapsed_donors"`
	TotalDonors  int     `json:"total_donors"`
}

// MissionVision carries the organization's statements as entered by its staff.
type MissionVision struct {
	Mission string   `json:"mission"`
	Vision  string   `json:"vision"`
	Values  []string `json:"values,omitempty"`
}

// GoldenTriangle scores acquisition, retention and upgrade balance.
type GoldenTriangle struct {
	Acquisition float64 `json:"acquisition"`
	Retention   float64 `json:"retention"`
	Upgrade     float64 `json:"upgrade"`
	Balance     string  `json:"balance,omitempty"`
}

// ChurnPoint is one period of the donor churn trend.
type ChurnPoint struct {
	Period    string  `json:"period"`
	ChurnRate float64 `json:"churn_rate"`
	Churned   int     `json:"churned"`
	Retained  int     `json:"retained"`
}

// ChurnTrend wraps the donor-churn trend response.
type ChurnTrend struct {
	Trend []ChurnPoint `json:"trend"`
}

// ForecastPoint is one period of the revenue forecast. Actual is nil for future periods.
type ForecastPoint struct {
	Period   string   `json:"period"`
	Actual   *float64 `json:"actual,omitempty"`
	Forecast float64  `json:"forecast"`
	Lower    float64  `json:"lower,omitempty"`
	Upper    float64  `json:"upper,omitempty"`
}

// RevenueForecast is the predictive revenue forecast.
type RevenueForecast struct {
	Points          []ForecastPoint `json:"points"`
	ProjectedAnnual float64         `json:"projected_annual"`
	Confidence      float64         `json:"confidence,omitempty"`
}

// AtRiskDonor is a donor flagged by the churn model.
type AtRiskDonor struct {
	DonorID        string  `json:"donor_id"`
	Name           string  `json:"name"`
	Probability    float64 `json:"probability"`
	LifetimeGiving float64 `json:"lifetime_giving"`
}

// ChurnRisk summarizes churn-model risk buckets.
type ChurnRisk struct {
	HighRisk      int           `json:"high_risk"`
	MediumRisk    int           `json:"medium_risk"`
	LowRisk       int           `json:"low_risk"`
	AtRiskRevenue float64       `json:"at_risk_revenue"`
	Donors        []AtRiskDonor `json:"donors,omitempty"`
}

// Momentum is the predictive momentum indicator. Score is nil when the model has no data.
type Momentum struct {
	Score   *float64 `json:"momentum_score,omitempty"`
	Trend   string   `json:"trend,omitempty"`
	Drivers []string `json:"drivers,omitempty"`
}

// GoalAttainment projects progress against the annual goal.
type GoalAttainment struct {
	Goal        float64 `json:"goal"`
	Raised      float64 `json:"raised"`
	Projected   float64 `json:"projected"`
	Probability float64 `json:"probability"`
	OnTrack     bool    `json:"on_track"`
}

// ContinuumStage is one stage of the donor investment continuum.
type ContinuumStage struct {
	Stage   string  `json:"stage"`
	Donors  int     `json:"donors"`
	Revenue float64 `json:"revenue"`
}

// InvestmentContinuum wraps the investment-continuum response.
type InvestmentContinuum struct {
	Stages []ContinuumStage `json:"stages"`
}

// RevenueSource is one revenue stream and its share of the total.
type RevenueSource struct {
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"`
}

// RevenueDiversification describes how revenue is spread across sources.
type RevenueDiversification struct {
	Sources []RevenueSource `json:"sources"`
	Index   float64         `json:"diversification_index"`
}

// YearTrend is one fiscal year of the multi-year trend.
type YearTrend struct {
	Year      int     `json:"year"`
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetIncome float64 `json:"net_income"`
	Donors    int     `json:"donors"`
}

// MultiYearTrends wraps the multi-year trend response.
type MultiYearTrends struct {
	Years []YearTrend `json:"years"`
}

// CashflowRow is one year of monthly inflows and outflows.
type CashflowRow struct {
	Year     int       `json:"year"`
	Inflows  []float64 `json:"inflows"`
	Outflows []float64 `json:"outflows"`
}

// CashflowGrid is the three-year month-by-month cashflow grid.
type CashflowGrid struct {
	Months []string      `json:"months"`
	Rows   []CashflowRow `json:"rows"`
}

// CampaignResult is one campaign's return on investment.
type CampaignResult struct {
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
	ROI     float64 `json:"roi"`
}

// CampaignROI wraps the campaign roi-analysis response.
type CampaignROI struct {
	Campaigns []CampaignResult `json:"campaigns"`
}

// StrategicSummary is the narrative strategy overview.
type StrategicSummary struct {
	Summary    string   `json:"summary"`
	Priorities []string `json:"priorities,omitempty"`
	Score      float64  `json:"score,omitempty"`
}

// SWOT is the strengths/weaknesses/opportunities/threats analysis.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// AdminRequest is a pending request for user access.
type AdminRequest struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Organization string    `json:"organization,omitempty"`
	Role         string    `json:"role,omitempty"`
	Status       string    `json:"status"`
	RequestedAt  time.Time `json:"requested_at"`
}

// AdminRequestList wraps the pending-requests response.
type AdminRequestList struct {
	Requests []AdminRequest `json:"requests"`
}

// Event is a fundraising event.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Location    string `json:"location,omitempty"`
	Capacity    *int   `json:"capacity,omitempty"`
	Status      string `json:"status,omitempty"`
}

// TicketType is a ticket tier for an event.
type TicketType struct {
	ID       string  `json:"id,omitempty"`
	EventID  string  `json:"event_id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity *int    `json:"quantity,omitempty"`
}

// Registration is an attendee registration.
type Registration struct {
	ID            string     `json:"id,omitempty"`
	EventID       string     `json:"event_id,omitempty"`
	TicketTypeID  string     `json:"ticket_type_id,omitempty"`
	AttendeeName  string     `json:"attendee_name"`
	AttendeeEmail string     `json:"attendee_email"`
	CheckedIn     bool       `json:"checked_in,omitempty"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
}

// ThankYou requests a thank-you communication to a donor.
type ThankYou struct {
	DonorID    string `json:"donor_id"`
	DonationID string `json:"donation_id,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Task is a follow-up task for staff.
type Task struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// ReportRequest selects the report to export.
type ReportRequest struct {
	ReportType string `json:"report_type"`
	Format     string `json:"format"`
	Period     string `json:"period,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// Ack is the generic acknowledgement returned by mutation endpoints.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
