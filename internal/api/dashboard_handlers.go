package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/p2sg/wiseinvestor/internal/charts"
	"github.com/p2sg/wiseinvestor/internal/dashboard"
	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// DashboardResponse is everything a client needs to render one tab.
type DashboardResponse struct {
	Tab    types.Tab                `json:"tab"`
	Model  types.ViewModel          `json:"model"`
	Scores *metrics.Scores          `json:"scores,omitempty"`
	Charts map[string]charts.Option `json:"charts,omitempty"`
}

// WhatIfResponse is the calculator outcome and its projection chart.
type WhatIfResponse struct {
	metrics.WhatIfResult
	Chart charts.Option `json:"chart"`
}

// intParam parses an optional integer query parameter. Absent means zero.
func intParam(q url.Values, name string, c *validation.Collector) int {
	raw := q.Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.Add(&validation.ValidationError{Field: name, Message: "must be an integer"})
		return 0
	}
	return v
}

// floatParam parses an optional finite number. Absent means zero.
func floatParam(q url.Values, name string, c *validation.Collector) (float64, bool) {
	raw := q.Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		c.Add(&validation.ValidationError{Field: name, Message: "must be a number"})
		return 0, false
	}
	return v, true
}

func paramsFromQuery(q url.Values, c *validation.Collector) types.Params {
	p := types.Params{
		Period: q.Get("period"),
		Year:   intParam(q, "year", c),
		Years:  intParam(q, "years", c),
	}
	if !c.HasErrors() {
		for _, e := range validation.ValidateParams(p) {
			c.Add(&e)
		}
	}
	return p
}

// Dashboard handles GET /api/v1/orgs/{orgID}/dashboard/{tab}
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	tab, ok := types.ParseTab(urlParam(r, "tab"))
	if !ok {
		WriteProblem(w, r, http.StatusNotFound, fmt.Sprintf("Unknown dashboard tab %q", urlParam(r, "tab")))
		return
	}

	orgID := urlParam(r, "orgID")
	var c validation.Collector
	c.Add(validation.ValidateIdentifier("org_id", orgID))
	params := paramsFromQuery(r.URL.Query(), &c)
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	agg := dashboard.NewAggregator(h.clientFor(r), h.concurrency)
	model, err := agg.Aggregate(r.Context(), tab, orgID, params)
	if err != nil {
		if analytics.IsUnauthorized(err) || r.Context().Err() != nil {
			h.writeError(w, r, err, "")
			return
		}
		WriteProblemWithRetry(w, r, "Failed to load dashboard data")
		return
	}

	resp := DashboardResponse{Tab: tab, Model: model}
	switch m := model.(type) {
	case *types.OverviewModel:
		scores := metrics.Compute(m, h.thresholds)
		resp.Scores = &scores
		resp.Charts = h.charts.Overview(m, scores)
	case *types.FinancialModel:
		resp.Charts = h.charts.Financial(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// MissionVision handles GET /api/v1/orgs/{orgID}/mission-vision
// The upstream body is relayed byte-for-byte.
func (h *Handler) MissionVision(w http.ResponseWriter, r *http.Request) {
	orgID := urlParam(r, "orgID")
	if err := validation.ValidateIdentifier("org_id", orgID); err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
		return
	}

	raw, err := h.clientFor(r).Forward(r.Context(), http.MethodGet, analytics.Path(analytics.PathMissionVision, orgID), nil)
	if err != nil {
		h.writeError(w, r, err, "Failed to load mission and vision")
		return
	}
	if raw == nil {
		WriteProblem(w, r, http.StatusNotFound, "Mission and vision have not been set")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// WhatIf handles GET /api/v1/orgs/{orgID}/what-if
//
// Query: traffic, conversion, gift_size (percent, 0-100), optional base
// revenue and reset=true. Without base, the current total revenue is
// fetched from the executive dashboard.
func (h *Handler) WhatIf(w http.ResponseWriter, r *http.Request) {
	orgID := urlParam(r, "orgID")
	q := r.URL.Query()

	var c validation.Collector
	c.Add(validation.ValidateIdentifier("org_id", orgID))
	var p metrics.WhatIfParams
	p.TrafficIncrease, _ = floatParam(q, "traffic", &c)
	p.ConversionIncrease, _ = floatParam(q, "conversion", &c)
	p.GiftSizeIncrease, _ = floatParam(q, "gift_size", &c)
	baseRevenue, hasBase := floatParam(q, "base", &c)
	if q.Get("reset") == "true" {
		p = metrics.Reset()
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}
	if errs := validation.ValidateWhatIf(p, baseRevenue); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Adjustments are out of range", errs)
		return
	}

	base := metrics.WhatIfBase{Revenue: baseRevenue}
	if !hasBase {
		ex, err := h.clientFor(r).ExecutiveDashboard(r.Context(), orgID, analytics.Query{})
		if err != nil {
			h.writeError(w, r, err, "Failed to load current revenue")
			return
		}
		base = metrics.BaseFromOverview(&types.OverviewModel{Executive: ex})
	}

	writeJSON(w, http.StatusOK, WhatIfResponse{
		WhatIfResult: metrics.WhatIf(base, p),
		Chart:        h.charts.WhatIfProjection(base.Revenue, p),
	})
}
