package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Endpoint path templates. %s placeholders take path-escaped identifiers.
const (
	PathExecutiveDashboard     = "/api/v1/analytics/executive-dashboard/%s"
	PathHealthScore            = "/api/v1/analytics/health-score/%s"
	PathOKRs                   = "/api/v1/analytics/okrs/%s"
	PathAverageDonation        = "/api/v1/analytics/avg-donation/%s"
	PathInsights               = "/api/v1/analytics/insights/%s"
	PathLapsedRate             = "/api/v1/analytics/lapsed-rate/%s"
	PathMissionVision          = "/api/v1/organizations/%s/mission-vision"
	PathGoldenTriangle         = "/api/v1/analytics/golden-triangle/%s"
	PathDonorChurnTrend        = "/api/v1/analytics/donor-churn/trend/%s"
	PathRevenueForecast        = "/api/v1/predictive/%s/revenue-forecast"
	PathChurnRisk              = "/api/v1/predictive/%s/churn-risk"
	PathMomentum               = "/api/v1/predictive/%s/momentum"
	PathGoalAttainment         = "/api/v1/predictive/%s/goal-attainment"
	PathInvestmentContinuum    = "/api/v1/analytics/investment-continuum/%s"
	PathRevenueDiversification = "/api/v1/financial/%s/revenue-diversification"
	PathMultiYearTrends        = "/api/v1/financial/%s/multi-year-trends"
	PathCashflowGrid           = "/api/v1/financial/%s/cashflow-grid"
	PathCampaignROI            = "/api/v1/campaigns/%s/roi-analysis"
	PathStrategicSummary       = "/api/v1/strategy/%s/summary"
	PathSWOT                   = "/api/v1/strategy/%s/swot"

	PathPendingRequests = "/api/admin/requests/pending"
	PathApproveRequest  = "/api/admin/requests/%s/approve"
	PathRejectRequest   = "/api/admin/requests/%s/reject"

	PathEvents        = "/api/v1/events/%s"
	PathEvent         = "/api/v1/events/%s/%s"
	PathTicketTypes   = "/api/v1/events/%s/tickets"
	PathTicketType    = "/api/v1/tickets/%s"
	PathRegistrations = "/api/v1/events/%s/registrations"
	PathCheckIn       = "/api/v1/registrations/%s/check-in"
	PathThankYou      = "/api/v1/communications/%s/thank-you"
	PathTasks         = "/api/v1/tasks/%s"
	PathExportReport  = "/api/v1/reports/%s/export"
)

// Path fills a path template with path-escaped identifiers.
func Path(template string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(template, args...)
}

func get[T any](ctx context.Context, c *Client, path string, q Query) (*T, error) {
	var out T
	if err := c.GetJSON(ctx, path, q.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecutiveDashboard fetches the headline KPIs.
func (c *Client) ExecutiveDashboard(ctx context.Context, orgID string, q Query) (*ExecutiveDashboard, error) {
	return get[ExecutiveDashboard](ctx, c, Path(PathExecutiveDashboard, orgID), q)
}

// HealthScore fetches the server health score.
func (c *Client) HealthScore(ctx context.Context, orgID string, q Query) (*HealthScore, error) {
	return get[HealthScore](ctx, c, Path(PathHealthScore, orgID), q)
}

// OKRs fetches objectives and key results.
func (c *Client) OKRs(ctx context.Context, orgID string, q Query) (*OKRList, error) {
	return get[OKRList](ctx, c, Path(PathOKRs, orgID), q)
}

// AverageDonation fetches gift-size statistics.
func (c *Client) AverageDonation(ctx context.Context, orgID string, q Query) (*AverageDonation, error) {
	return get[AverageDonation](ctx, c, Path(PathAverageDonation, orgID), q)
}

// Insights fetches server-generated recommendations.
func (c *Client) Insights(ctx context.Context, orgID string, q Query) (*InsightList, error) {
	return get[InsightList](ctx, c, Path(PathInsights, orgID), q)
}

// LapsedRate fetches the lapsed donor rate.
func (c *Client) LapsedRate(ctx context.Context, orgID string, q Query) (*LapsedRate, error) {
	return get[LapsedRate](ctx, c, Path(PathLapsedRate, orgID), q)
}

// MissionVision fetches the mission and vision statements.
func (c *Client) MissionVision(ctx context.Context, orgID string) (*MissionVision, error) {
	return get[MissionVision](ctx, c, Path(PathMissionVision, orgID), Query{})
}

// GoldenTriangle fetches the acquisition/retention/upgrade balance.
func (c *Client) GoldenTriangle(ctx context.Context, orgID string, q Query) (*GoldenTriangle, error) {
	return get[GoldenTriangle](ctx, c, Path(PathGoldenTriangle, orgID), q)
}

// DonorChurnTrend fetches churn by period.
func (c *Client) DonorChurnTrend(ctx context.Context, orgID string, q Query) (*ChurnTrend, error) {
	return get[ChurnTrend](ctx, c, Path(PathDonorChurnTrend, orgID), q)
}

// RevenueForecast fetches the predictive revenue forecast.
func (c *Client) RevenueForecast(ctx context.Context, orgID string, q Query) (*RevenueForecast, error) {
	return get[RevenueForecast](ctx, c, Path(PathRevenueForecast, orgID), q)
}

// ChurnRisk fetches churn-model risk buckets.
func (c *Client) ChurnRisk(ctx context.Context, orgID string, q Query) (*ChurnRisk, error) {
	return get[ChurnRisk](ctx, c, Path(PathChurnRisk, orgID), q)
}

// Momentum fetches the momentum indicator.
func (c *Client) Momentum(ctx context.Context, orgID string, q Query) (*Momentum, error) {
	return get[Momentum](ctx, c, Path(PathMomentum, orgID), q)
}

// GoalAttainment fetches goal attainment projections.
func (c *Client) GoalAttainment(ctx context.Context, orgID string, q Query) (*GoalAttainment, error) {
	return get[GoalAttainment](ctx, c, Path(PathGoalAttainment, orgID), q)
}

// InvestmentContinuum fetches the donor investment continuum.
func (c *Client) InvestmentContinuum(ctx context.Context, orgID string, q Query) (*InvestmentContinuum, error) {
	return get[InvestmentContinuum](ctx, c, Path(PathInvestmentContinuum, orgID), q)
}

// RevenueDiversification fetches revenue by source.
func (c *Client) RevenueDiversification(ctx context.Context, orgID string, q Query) (*RevenueDiversification, error) {
	return get[RevenueDiversification](ctx, c, Path(PathRevenueDiversification, orgID), q)
}

// MultiYearTrends fetches yearly revenue/expense trends.
func (c *Client) MultiYearTrends(ctx context.Context, orgID string, q Query) (*MultiYearTrends, error) {
	return get[MultiYearTrends](ctx, c, Path(PathMultiYearTrends, orgID), q)
}

// CashflowGrid fetches the three-year cashflow grid.
func (c *Client) CashflowGrid(ctx context.Context, orgID string, q Query) (*CashflowGrid, error) {
	return get[CashflowGrid](ctx, c, Path(PathCashflowGrid, orgID), q)
}

// CampaignROI fetches campaign return on investment.
func (c *Client) CampaignROI(ctx context.Context, orgID string, q Query) (*CampaignROI, error) {
	return get[CampaignROI](ctx, c, Path(PathCampaignROI, orgID), q)
}

// StrategicSummary fetches the strategy narrative.
func (c *Client) StrategicSummary(ctx context.Context, orgID string, q Query) (*StrategicSummary, error) {
	return get[StrategicSummary](ctx, c, Path(PathStrategicSummary, orgID), q)
}

// SWOT fetches the SWOT analysis.
func (c *Client) SWOT(ctx context.Context, orgID string, q Query) (*SWOT, error) {
	return get[SWOT](ctx, c, Path(PathSWOT, orgID), q)
}

// PendingRequests lists user access requests awaiting an admin decision.
func (c *Client) PendingRequests(ctx context.Context) (*AdminRequestList, error) {
	return get[AdminRequestList](ctx, c, PathPendingRequests, Query{})
}

// ApproveRequest approves a pending access request.
func (c *Client) ApproveRequest(ctx context.Context, requestID string) (*Ack, error) {
	var ack Ack
	if err := c.PostJSON(ctx, Path(PathApproveRequest, requestID), struct{}{}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// RejectRequest rejects a pending access request. reason may be empty.
func (c *Client) RejectRequest(ctx context.Context, requestID, reason string) (*Ack, error) {
	body := struct {
		Reason string `json:"reason,omitempty"`
	}{Reason: reason}

	var ack Ack
	if err := c.PostJSON(ctx, Path(PathRejectRequest, requestID), body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// CreateEvent creates an event. The payload is sent byte-for-byte; fields the
// client does not model reach the API untouched.
func (c *Client) CreateEvent(ctx context.Context, orgID string, payload json.RawMessage) (*Event, error) {
	var ev Event
	if err := c.doRaw(ctx, http.MethodPost, Path(PathEvents, orgID), nil, payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateEvent replaces an event's fields.
func (c *Client) UpdateEvent(ctx context.Context, orgID, eventID string, payload json.RawMessage) (*Event, error) {
	var ev Event
	if err := c.doRaw(ctx, http.MethodPut, Path(PathEvent, orgID, eventID), nil, payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(ctx context.Context, orgID, eventID string) error {
	return c.Delete(ctx, Path(PathEvent, orgID, eventID), nil)
}

// CreateTicketType adds a ticket tier to an event.
func (c *Client) CreateTicketType(ctx context.Context, eventID string, payload json.RawMessage) (*TicketType, error) {
	var tt TicketType
	if err := c.doRaw(ctx, http.MethodPost, Path(PathTicketTypes, eventID), nil, payload, &tt); err != nil {
		return nil, err
	}
	return &tt, nil
}

// UpdateTicketType replaces a ticket tier.
func (c *Client) UpdateTicketType(ctx context.Context, ticketID string, payload json.RawMessage) (*TicketType, error) {
	var tt TicketType
	if err := c.doRaw(ctx, http.MethodPut, Path(PathTicketType, ticketID), nil, payload, &tt); err != nil {
		return nil, err
	}
	return &tt, nil
}

// DeleteTicketType removes a ticket tier.
func (c *Client) DeleteTicketType(ctx context.Context, ticketID string) error {
	return c.Delete(ctx, Path(PathTicketType, ticketID), nil)
}

// CreateRegistration registers an attendee for an event.
func (c *Client) CreateRegistration(ctx context.Context, eventID string, payload json.RawMessage) (*Registration, error) {
	var reg Registration
	if err := c.doRaw(ctx, http.MethodPost, Path(PathRegistrations, eventID), nil, payload, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// CheckIn marks a registration as checked in.
func (c *Client) CheckIn(ctx context.Context, registrationID string) (*Registration, error) {
	var reg Registration
	if err := c.PostJSON(ctx, Path(PathCheckIn, registrationID), struct{}{}, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// SendThankYou queues a thank-you communication.
func (c *Client) SendThankYou(ctx context.Context, orgID string, payload json.RawMessage) (*Ack, error) {
	var ack Ack
	if err := c.doRaw(ctx, http.MethodPost, Path(PathThankYou, orgID), nil, payload, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// CreateTask creates a staff task.
func (c *Client) CreateTask(ctx context.Context, orgID string, payload json.RawMessage) (*Task, error) {
	var task Task
	if err := c.doRaw(ctx, http.MethodPost, Path(PathTasks, orgID), nil, payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
