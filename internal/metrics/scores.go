// Package metrics derives composite health scores, quadrant placement and
// what-if revenue projections from a dashboard view-model. Everything here is
// pure arithmetic on data the analytics API already computed.
package metrics

import (
	"math"

	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// QuadrantThreshold is the cutoff on both axes of the growth/sustainability grid.
const QuadrantThreshold = 70.0

// Quadrant is a bucket of the growth/sustainability grid.
type Quadrant string

const (
	QuadrantWiseInvestor      Quadrant = "wise_investor"
	QuadrantGrowthFocused     Quadrant = "growth_focused"
	QuadrantStableTraditional Quadrant = "stable_traditional"
	QuadrantNeedsAttention    Quadrant = "needs_attention"
)

// Thresholds tunes the capped linear scalings.
type Thresholds struct {
	RevenueThreshold float64 `json:"revenue_threshold" yaml:"revenue_threshold"`
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{RevenueThreshold: 1_000_000}
}

// Scores are the derived percentages for one overview model. Every value is in [0, 100].
type Scores struct {
	Vision         float64  `json:"vision"`
	Strategy       float64  `json:"strategy"`
	Momentum       float64  `json:"momentum"`
	Retention      float64  `json:"retention"`
	Engagement     float64  `json:"engagement"`
	Revenue        float64  `json:"revenue"`
	Growth         float64  `json:"growth"`
	Sustainability float64  `json:"sustainability"`
	Overall        float64  `json:"overall"`
	Quadrant       Quadrant `json:"quadrant"`
}

// Compute derives the health-framework scores from m. A nil model or nil
// fields contribute zero.
func Compute(m *types.OverviewModel, th Thresholds) Scores {
	if m == nil {
		m = &types.OverviewModel{}
	}

	var s Scores
	s.Vision = okrProgress(m.OKRs)
	s.Strategy = okrOnTrackShare(m.OKRs)
	s.Momentum = momentum(m.Momentum, m.Executive)
	s.Retention = retention(m.Executive, m.Lapsed)

	if ex := m.Executive; ex != nil {
		s.Engagement = Ratio(float64(ex.ActiveDonors), float64(ex.TotalDonors))
		s.Revenue = Capped(ex.TotalRevenue, th.RevenueThreshold)
	}

	s.Growth = Clamp((s.Revenue + s.Momentum) / 2)
	s.Sustainability = Clamp((s.Retention + s.Engagement) / 2)
	s.Overall = Clamp(mean(
		s.Vision, s.Strategy, s.Momentum, s.Retention,
		s.Engagement, s.Revenue, s.Growth, s.Sustainability,
	))
	s.Quadrant = ClassifyQuadrant(s.Growth, s.Sustainability)
	return s
}

// ClassifyQuadrant places (growth, sustainability) on the 2×2 grid.
func ClassifyQuadrant(growth, sustainability float64) Quadrant {
	highGrowth := growth >= QuadrantThreshold
	highSustainability := sustainability >= QuadrantThreshold

	switch {
	case highGrowth && highSustainability:
		return QuadrantWiseInvestor
	case highGrowth:
		return QuadrantGrowthFocused
	case highSustainability:
		return QuadrantStableTraditional
	default:
		return QuadrantNeedsAttention
	}
}

// Clamp bounds v to [0, 100]. NaN maps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

// Capped scales value against threshold: min(100, value / threshold * 100).
func Capped(value, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	return Clamp(value / threshold * 100)
}

// Ratio returns part/whole as a clamped percentage; zero when whole is not positive.
func Ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return Clamp(part / whole * 100)
}

func okrProgress(list *analytics.OKRList) float64 {
	if list == nil || len(list.OKRs) == 0 {
		return 0
	}
	progress := make([]float64, len(list.OKRs))
	for i, o := range list.OKRs {
		progress[i] = Clamp(o.Progress)
	}
	return Clamp(mean(progress...))
}

func okrOnTrackShare(list *analytics.OKRList) float64 {
	if list == nil || len(list.OKRs) == 0 {
		return 0
	}
	var good int
	for _, o := range list.OKRs {
		if o.Status == analytics.OKRStatusOnTrack || o.Status == analytics.OKRStatusCompleted {
			good++
		}
	}
	return Ratio(float64(good), float64(len(list.OKRs)))
}

// momentum prefers the model's score and falls back to 50 + revenue growth.
func momentum(m *analytics.Momentum, ex *analytics.ExecutiveDashboard) float64 {
	if m != nil && m.Score != nil {
		return Clamp(*m.Score)
	}
	if ex != nil {
		return Clamp(50 + ex.RevenueGrowth)
	}
	return 0
}

// retention prefers the reported rate and falls back to 100 - lapsed rate.
func retention(ex *analytics.ExecutiveDashboard, lapsed *analytics.LapsedRate) float64 {
	if ex != nil && ex.RetentionRate != nil {
		return Clamp(*ex.RetentionRate)
	}
	if lapsed != nil {
		return Clamp(100 - lapsed.Rate)
	}
	return 0
}

func mean(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
