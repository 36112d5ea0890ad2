package metrics

import (
	"math"
	"testing"

	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

func ptr(v float64) *float64 { return &v }

func allScores(s Scores) map[string]float64 {
	return map[string]float64{
		"vision":         s.Vision,
		"strategy":       s.Strategy,
		"momentum":       s.Momentum,
		"retention":      s.Retention,
		"engagement":     s.Engagement,
		"revenue":        s.Revenue,
		"growth":         s.Growth,
		"sustainability": s.Sustainability,
		"overall":        s.Overall,
	}
}

func TestCompute_ScoresClampedForExtremeInputs(t *testing.T) {
	tests := []struct {
		name  string
		model *types.OverviewModel
	}{
		{
			name: "revenue far above threshold",
			model: &types.OverviewModel{
				Executive: &analytics.ExecutiveDashboard{
					TotalRevenue:  1e15,
					RevenueGrowth: 5000,
					TotalDonors:   10,
					ActiveDonors:  1000,
					RetentionRate: ptr(250),
				},
				OKRs: &analytics.OKRList{OKRs: []analytics.OKR{
					{Progress: 400, Status: analytics.OKRStatusCompleted},
				}},
				Momentum: &analytics.Momentum{Score: ptr(1e9)},
			},
		},
		{
			name: "negative everything",
			model: &types.OverviewModel{
				Executive: &analytics.ExecutiveDashboard{
					TotalRevenue:  -500,
					RevenueGrowth: -900,
					TotalDonors:   100,
					ActiveDonors:  -5,
					RetentionRate: ptr(-10),
				},
				OKRs: &analytics.OKRList{OKRs: []analytics.OKR{
					{Progress: -50, Status: analytics.OKRStatusOffTrack},
				}},
				Momentum: &analytics.Momentum{Score: ptr(-1e9)},
			},
		},
		{
			name: "lapsed rate above 100",
			model: &types.OverviewModel{
				Lapsed: &analytics.LapsedRate{Rate: 180},
			},
		},
		{
			name: "not a number",
			model: &types.OverviewModel{
				Momentum: &analytics.Momentum{Score: ptr(math.NaN())},
			},
		},
		{
			name:  "nil model",
			model: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Compute(tt.model, DefaultThresholds())
			for name, v := range allScores(s) {
				if math.IsNaN(v) || v < 0 || v > 100 {
					t.Errorf("%s = %v, want within [0, 100]", name, v)
				}
			}
		})
	}
}

func TestCompute_RevenueCappedLinearScaling(t *testing.T) {
	th := Thresholds{RevenueThreshold: 2_000_000}
	m := &types.OverviewModel{Executive: &analytics.ExecutiveDashboard{TotalRevenue: 500_000}}

	s := Compute(m, th)
	if s.Revenue != 25 {
		t.Errorf("Revenue = %v, want 25", s.Revenue)
	}

	m.Executive.TotalRevenue = 50_000_000
	if s := Compute(m, th); s.Revenue != 100 {
		t.Errorf("Revenue = %v, want 100", s.Revenue)
	}
}

func TestCompute_KnownModel(t *testing.T) {
	m := &types.OverviewModel{
		Executive: &analytics.ExecutiveDashboard{
			TotalRevenue:  800_000,
			TotalDonors:   1000,
			ActiveDonors:  600,
			RetentionRate: ptr(80),
		},
		OKRs: &analytics.OKRList{OKRs: []analytics.OKR{
			{Progress: 90, Status: analytics.OKRStatusOnTrack},
			{Progress: 50, Status: analytics.OKRStatusAtRisk},
			{Progress: 100, Status: analytics.OKRStatusCompleted},
			{Progress: 20, Status: analytics.OKRStatusOffTrack},
		}},
		Momentum: &analytics.Momentum{Score: ptr(60)},
	}

	s := Compute(m, DefaultThresholds())

	checks := map[string][2]float64{
		"vision":         {s.Vision, 65},
		"strategy":       {s.Strategy, 50},
		"momentum":       {s.Momentum, 60},
		"retention":      {s.Retention, 80},
		"engagement":     {s.Engagement, 60},
		"revenue":        {s.Revenue, 80},
		"growth":         {s.Growth, 70},
		"sustainability": {s.Sustainability, 70},
	}
	for name, c := range checks {
		if math.Abs(c[0]-c[1]) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, c[0], c[1])
		}
	}
	if s.Quadrant != QuadrantWiseInvestor {
		t.Errorf("Quadrant = %q, want %q", s.Quadrant, QuadrantWiseInvestor)
	}
	wantOverall := (65.0 + 50 + 60 + 80 + 60 + 80 + 70 + 70) / 8
	if math.Abs(s.Overall-wantOverall) > 1e-9 {
		t.Errorf("Overall = %v, want %v", s.Overall, wantOverall)
	}
}

func TestCompute_Fallbacks(t *testing.T) {
	// Given: no momentum score and no retention rate
	m := &types.OverviewModel{
		Executive: &analytics.ExecutiveDashboard{RevenueGrowth: 12},
		Lapsed:    &analytics.LapsedRate{Rate: 35},
		Momentum:  &analytics.Momentum{},
	}

	// When: scores are computed
	s := Compute(m, DefaultThresholds())

	// Then: momentum uses 50 + growth and retention uses 100 - lapsed
	if s.Momentum != 62 {
		t.Errorf("Momentum = %v, want 62", s.Momentum)
	}
	if s.Retention != 65 {
		t.Errorf("Retention = %v, want 65", s.Retention)
	}
}

func TestCompute_ZeroDonorsDoesNotDivideByZero(t *testing.T) {
	m := &types.OverviewModel{Executive: &analytics.ExecutiveDashboard{ActiveDonors: 10}}
	if s := Compute(m, DefaultThresholds()); s.Engagement != 0 {
		t.Errorf("Engagement = %v, want 0", s.Engagement)
	}
}

func TestCompute_ZeroThresholdYieldsZeroRevenue(t *testing.T) {
	m := &types.OverviewModel{Executive: &analytics.ExecutiveDashboard{TotalRevenue: 10}}
	if s := Compute(m, Thresholds{}); s.Revenue != 0 {
		t.Errorf("Revenue = %v, want 0", s.Revenue)
	}
}

func TestClassifyQuadrant_Boundaries(t *testing.T) {
	tests := []struct {
		growth, sustainability float64
		want                   Quadrant
	}{
		{70, 70, QuadrantWiseInvestor},
		{70, 69, QuadrantGrowthFocused},
		{69, 70, QuadrantStableTraditional},
		{69, 69, QuadrantNeedsAttention},
		{100, 100, QuadrantWiseInvestor},
		{0, 0, QuadrantNeedsAttention},
		{69.999, 70, QuadrantStableTraditional},
	}
	for _, tt := range tests {
		if got := ClassifyQuadrant(tt.growth, tt.sustainability); got != tt.want {
			t.Errorf("ClassifyQuadrant(%v, %v) = %q, want %q", tt.growth, tt.sustainability, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := map[float64]float64{
		-1:           0,
		0:            0,
		42.5:         42.5,
		100:          100,
		100.0001:     100,
		math.Inf(1):  100,
		math.Inf(-1): 0,
	}
	for in, want := range tests {
		if got := Clamp(in); got != want {
			t.Errorf("Clamp(%v) = %v, want %v", in, got, want)
		}
	}
}
