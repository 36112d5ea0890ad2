package metrics

import (
	"math"

	"github.com/p2sg/wiseinvestor/internal/types"
)

// Slider bounds for what-if adjustments, in percent.
const (
	MinAdjustment = 0.0
	MaxAdjustment = 100.0
)

// ProjectionHorizons are the year counts reported by WhatIf.
var ProjectionHorizons = []int{1, 3, 5, 10}

// WhatIfParams are the three independent levers, each a percentage increase.
type WhatIfParams struct {
	TrafficIncrease    float64 `json:"traffic_increase"`
	ConversionIncrease float64 `json:"conversion_increase"`
	GiftSizeIncrease   float64 `json:"gift_size_increase"`
}

// Reset returns the default, all-zero adjustments.
func Reset() WhatIfParams {
	return WhatIfParams{}
}

// IsZero reports whether no lever is adjusted.
func (p WhatIfParams) IsZero() bool {
	return p == WhatIfParams{}
}

// Multiplier is the compounded one-year growth factor of all three levers.
func (p WhatIfParams) Multiplier() float64 {
	return (1 + p.TrafficIncrease/100) *
		(1 + p.ConversionIncrease/100) *
		(1 + p.GiftSizeIncrease/100)
}

// Project compounds base by the lever multiplier for the given number of years.
func Project(base float64, p WhatIfParams, years int) float64 {
	return base * math.Pow(p.Multiplier(), float64(years))
}

// WhatIfBase holds the current values the levers act on.
type WhatIfBase struct {
	Revenue        float64 `json:"revenue"`
	Traffic        float64 `json:"traffic,omitempty"`
	ConversionRate float64 `json:"conversion_rate,omitempty"`
	AverageGift    float64 `json:"average_gift,omitempty"`
}

// BaseFromOverview reads the what-if base values from an overview model.
func BaseFromOverview(m *types.OverviewModel) WhatIfBase {
	var b WhatIfBase
	if m == nil || m.Executive == nil {
		return b
	}
	ex := m.Executive
	b.Revenue = ex.TotalRevenue
	b.Traffic = ex.WebsiteTraffic
	b.ConversionRate = ex.ConversionRate
	b.AverageGift = ex.AverageGift
	if b.AverageGift == 0 && m.AvgDonation != nil {
		b.AverageGift = m.AvgDonation.Average
	}
	return b
}

// Projection is the projected revenue after Years years.
type Projection struct {
	Years    int     `json:"years"`
	Revenue  float64 `json:"revenue"`
	Increase float64 `json:"increase"`
}

// WhatIfResult is the outcome shown next to the sliders.
type WhatIfResult struct {
	Params         WhatIfParams `json:"params"`
	Base           WhatIfBase   `json:"base"`
	Multiplier     float64      `json:"multiplier"`
	Traffic        float64      `json:"traffic,omitempty"`
	ConversionRate float64      `json:"conversion_rate,omitempty"`
	AverageGift    float64      `json:"average_gift,omitempty"`
	Projections    []Projection `json:"projections"`
}

// WhatIf computes the adjusted levers and the projections for each horizon.
func WhatIf(base WhatIfBase, p WhatIfParams) WhatIfResult {
	r := WhatIfResult{
		Params:         p,
		Base:           base,
		Multiplier:     p.Multiplier(),
		Traffic:        base.Traffic * (1 + p.TrafficIncrease/100),
		ConversionRate: base.ConversionRate * (1 + p.ConversionIncrease/100),
		AverageGift:    base.AverageGift * (1 + p.GiftSizeIncrease/100),
		Projections:    make([]Projection, 0, len(ProjectionHorizons)),
	}
	for _, years := range ProjectionHorizons {
		revenue := Project(base.Revenue, p, years)
		r.Projections = append(r.Projections, Projection{
			Years:    years,
			Revenue:  revenue,
			Increase: revenue - base.Revenue,
		})
	}
	return r
}
