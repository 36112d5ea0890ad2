package charts

import (
	"fmt"
	"strconv"

	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Palette is the dashboard's series color order.
var Palette = []string{"#1f4e79", "#2e86ab", "#f18f01", "#c73e1d", "#3b1f2b", "#6a994e"}

// Builder turns view-model fields into chart options.
type Builder struct {
	placeholders bool
}

// NewBuilder creates a builder. With placeholders disabled, charts without
// server data are returned with empty series.
func NewBuilder(placeholders bool) *Builder {
	return &Builder{placeholders: placeholders}
}

// stub returns the placeholder generator for a chart, or nil when
// placeholders are disabled.
func (b *Builder) stub(orgID, chart string) *placeholder {
	if !b.placeholders {
		return nil
	}
	return newPlaceholder(orgID, chart)
}

// RevenueForecast plots actual revenue against the forecast.
func (b *Builder) RevenueForecast(orgID string, f *analytics.RevenueForecast) Option {
	opt := Option{
		Title:   Title{Text: "Revenue Forecast"},
		Tooltip: &Tooltip{Trigger: "axis"},
		Legend:  &Legend{Data: []string{"Actual", "Forecast"}},
		YAxis:   valueAxis(FormatCurrency),
		Color:   Palette,
	}
	actual := Series{Name: "Actual", Type: "line", Smooth: true, Data: []any{}}
	forecast := Series{Name: "Forecast", Type: "line", Smooth: true, Data: []any{}}

	if f != nil && len(f.Points) > 0 {
		periods := make([]string, len(f.Points))
		for i, pt := range f.Points {
			periods[i] = pt.Period
			if pt.Actual != nil {
				actual.Data = append(actual.Data, *pt.Actual)
			} else {
				actual.Data = append(actual.Data, nil)
			}
			forecast.Data = append(forecast.Data, pt.Forecast)
		}
		opt.XAxis = categoryAxis(periods)
	} else {
		opt.XAxis = categoryAxis(months)
		if p := b.stub(orgID, NameRevenueForecast); p != nil {
			values := p.walk(len(months), p.between(40_000, 120_000), 8_000)
			for i, v := range values {
				if i < 6 {
					actual.Data = append(actual.Data, v)
				} else {
					actual.Data = append(actual.Data, nil)
				}
				forecast.Data = append(forecast.Data, v)
			}
			opt.Placeholder = true
		}
	}

	opt.Series = []Series{actual, forecast}
	return opt
}

// DonorChurnTrend plots the churn rate per period.
func (b *Builder) DonorChurnTrend(orgID string, t *analytics.ChurnTrend) Option {
	opt := Option{
		Title:   Title{Text: "Donor Churn Trend"},
		Tooltip: &Tooltip{Trigger: "axis"},
		YAxis:   valueAxis(FormatPercent),
		Color:   Palette,
	}
	s := Series{Name: "Churn Rate", Type: "line", Smooth: true, Data: []any{}}

	if t != nil && len(t.Trend) > 0 {
		periods := make([]string, len(t.Trend))
		for i, pt := range t.Trend {
			periods[i] = pt.Period
			s.Data = append(s.Data, pt.ChurnRate)
		}
		opt.XAxis = categoryAxis(periods)
	} else {
		opt.XAxis = categoryAxis(months)
		if p := b.stub(orgID, NameDonorChurnTrend); p != nil {
			s.Data = numbers(p.walk(len(months), p.between(5, 25), 2))
			opt.Placeholder = true
		}
	}

	opt.Series = []Series{s}
	return opt
}

var placeholderSources = []string{"Individual Giving", "Major Gifts", "Foundations", "Corporate", "Events"}

// RevenueDiversification is a pie of revenue by source.
func (b *Builder) RevenueDiversification(orgID string, d *analytics.RevenueDiversification) Option {
	opt := Option{
		Title:   Title{Text: "Revenue Diversification"},
		Tooltip: &Tooltip{Trigger: "item", Formatter: "{b}: ${c} ({d}%)"},
		Color:   Palette,
	}
	s := Series{Name: "Revenue", Type: "pie", Radius: "60%", Data: []any{}}
	var names []string

	if d != nil && len(d.Sources) > 0 {
		for _, src := range d.Sources {
			names = append(names, src.Source)
			s.Data = append(s.Data, NamedValue{Name: src.Source, Value: src.Amount})
		}
		if d.Index > 0 {
			opt.Title.Subtext = fmt.Sprintf("Diversification index %.2f", d.Index)
		}
	} else if p := b.stub(orgID, NameRevenueDiversification); p != nil {
		for _, name := range placeholderSources {
			names = append(names, name)
			s.Data = append(s.Data, NamedValue{Name: name, Value: p.between(10_000, 250_000)})
		}
		opt.Placeholder = true
	}

	opt.Legend = &Legend{Data: names}
	opt.Series = []Series{s}
	return opt
}

// GoldenTriangle is a radar of acquisition, retention and upgrade.
func (b *Builder) GoldenTriangle(orgID string, g *analytics.GoldenTriangle) Option {
	opt := Option{
		Title:   Title{Text: "Golden Triangle"},
		Tooltip: &Tooltip{Trigger: "item"},
		Radar: &Radar{Indicator: []RadarIndicator{
			{Name: "Acquisition", Max: 100},
			{Name: "Retention", Max: 100},
			{Name: "Upgrade", Max: 100},
		}},
		Color: Palette,
	}
	s := Series{Name: "Golden Triangle", Type: "radar", Data: []any{}}

	switch {
	case g != nil:
		s.Data = append(s.Data, NamedValue{
			Name:  "Current",
			Value: []float64{metrics.Clamp(g.Acquisition), metrics.Clamp(g.Retention), metrics.Clamp(g.Upgrade)},
		})
		if g.Balance != "" {
			opt.Title.Subtext = g.Balance
		}
	default:
		if p := b.stub(orgID, NameGoldenTriangle); p != nil {
			s.Data = append(s.Data, NamedValue{
				Name:  "Current",
				Value: []float64{p.between(30, 90), p.between(30, 90), p.between(30, 90)},
			})
			opt.Placeholder = true
		}
	}

	opt.Series = []Series{s}
	return opt
}

// HealthGauge shows a single score on a 0 to 100 gauge.
func (b *Builder) HealthGauge(title string, score float64) Option {
	return Option{
		Title:   Title{Text: title},
		Tooltip: &Tooltip{Trigger: "item", Formatter: "{b}: {c}"},
		Series: []Series{{
			Name: title,
			Type: "gauge",
			Min:  f64(0),
			Max:  f64(100),
			Data: []any{NamedValue{Name: title, Value: round2(metrics.Clamp(score))}},
		}},
		Color: Palette,
	}
}

// QuadrantScatter places the organization on the growth/sustainability grid.
func (b *Builder) QuadrantScatter(s metrics.Scores) Option {
	axis := func(name string) *Axis {
		return &Axis{
			Type:      "value",
			Name:      name,
			Min:       f64(0),
			Max:       f64(100),
			AxisLabel: &AxisLabel{Formatter: FormatPlain},
			SplitLine: &SplitLine{Show: false},
		}
	}
	return Option{
		Title:   Title{Text: "Wise Investor Quadrant", Subtext: string(s.Quadrant)},
		Tooltip: &Tooltip{Trigger: "item", Formatter: "Growth {c0}, Sustainability {c1}"},
		XAxis:   axis("Growth"),
		YAxis:   axis("Sustainability"),
		Series: []Series{{
			Name: "Organization",
			Type: "scatter",
			Data: []any{[]float64{round2(s.Growth), round2(s.Sustainability)}},
			MarkLine: &MarkLine{
				Silent: true,
				Data: []MarkLineItem{
					{Name: "Growth threshold", XAxis: f64(metrics.QuadrantThreshold)},
					{Name: "Sustainability threshold", YAxis: f64(metrics.QuadrantThreshold)},
				},
			},
		}},
		Color: Palette,
	}
}

// MultiYearTrends is a grouped bar of revenue, expenses and net income per year.
func (b *Builder) MultiYearTrends(orgID string, t *analytics.MultiYearTrends) Option {
	opt := Option{
		Title:   Title{Text: "Multi-Year Trends"},
		Tooltip: &Tooltip{Trigger: "axis"},
		Legend:  &Legend{Data: []string{"Revenue", "Expenses", "Net Income"}},
		YAxis:   valueAxis(FormatCurrency),
		Color:   Palette,
	}
	revenue := Series{Name: "Revenue", Type: "bar", Data: []any{}}
	expenses := Series{Name: "Expenses", Type: "bar", Data: []any{}}
	net := Series{Name: "Net Income", Type: "bar", Data: []any{}}

	if t != nil && len(t.Years) > 0 {
		years := make([]string, len(t.Years))
		for i, y := range t.Years {
			years[i] = strconv.Itoa(y.Year)
			revenue.Data = append(revenue.Data, y.Revenue)
			expenses.Data = append(expenses.Data, y.Expenses)
			net.Data = append(net.Data, y.NetIncome)
		}
		opt.XAxis = categoryAxis(years)
	} else {
		labels := []string{"Y-4", "Y-3", "Y-2", "Y-1", "Y"}
		opt.XAxis = categoryAxis(labels)
		if p := b.stub(orgID, NameMultiYearTrends); p != nil {
			rev := p.walk(len(labels), p.between(500_000, 2_000_000), 150_000)
			for _, r := range rev {
				e := round2(r * p.between(0.7, 0.98))
				revenue.Data = append(revenue.Data, r)
				expenses.Data = append(expenses.Data, e)
				net.Data = append(net.Data, round2(r-e))
			}
			opt.Placeholder = true
		}
	}

	opt.Series = []Series{revenue, expenses, net}
	return opt
}

// CashflowGrid stacks monthly inflows over outflows for each year.
// Outflows are plotted as negative values.
func (b *Builder) CashflowGrid(orgID string, g *analytics.CashflowGrid) Option {
	opt := Option{
		Title:   Title{Text: "Cashflow"},
		Tooltip: &Tooltip{Trigger: "axis"},
		YAxis:   valueAxis(FormatCurrency),
		Color:   Palette,
	}

	var rows []analytics.CashflowRow
	labels := months
	if g != nil && len(g.Rows) > 0 {
		rows = g.Rows
		if len(g.Months) > 0 {
			labels = g.Months
		}
	} else if p := b.stub(orgID, NameCashflowGrid); p != nil {
		for i := 0; i < 3; i++ {
			rows = append(rows, analytics.CashflowRow{
				Year:     i - 2,
				Inflows:  p.walk(len(months), p.between(50_000, 150_000), 20_000),
				Outflows: p.walk(len(months), p.between(40_000, 120_000), 15_000),
			})
		}
		opt.Placeholder = true
	}
	opt.XAxis = categoryAxis(labels)

	var legend []string
	for _, row := range rows {
		year := yearLabel(row.Year)
		in := Series{Name: year + " Inflows", Type: "bar", Stack: year, Data: numbers(row.Inflows)}
		outValues := make([]float64, len(row.Outflows))
		for i, v := range row.Outflows {
			outValues[i] = -v
		}
		out := Series{Name: year + " Outflows", Type: "bar", Stack: year, Data: numbers(outValues)}
		legend = append(legend, in.Name, out.Name)
		opt.Series = append(opt.Series, in, out)
	}
	if opt.Series == nil {
		opt.Series = []Series{}
	}
	opt.Legend = &Legend{Data: legend}
	return opt
}

// yearLabel renders a fiscal year, or a relative label for synthetic rows.
func yearLabel(year int) string {
	if year > 0 {
		return strconv.Itoa(year)
	}
	if year == 0 {
		return "Y"
	}
	return "Y" + strconv.Itoa(year)
}

// OKRProgress is a horizontal bar of progress per objective.
func (b *Builder) OKRProgress(orgID string, list *analytics.OKRList) Option {
	opt := Option{
		Title:   Title{Text: "OKR Progress"},
		Tooltip: &Tooltip{Trigger: "axis"},
		XAxis:   &Axis{Type: "value", Min: f64(0), Max: f64(100), AxisLabel: &AxisLabel{Formatter: FormatPercent}},
		Color:   Palette,
	}
	s := Series{Name: "Progress", Type: "bar", Data: []any{}}
	var objectives []string

	if list != nil && len(list.OKRs) > 0 {
		for _, o := range list.OKRs {
			objectives = append(objectives, o.Objective)
			s.Data = append(s.Data, metrics.Clamp(o.Progress))
		}
	} else if p := b.stub(orgID, NameOKRProgress); p != nil {
		for i := 1; i <= 4; i++ {
			objectives = append(objectives, fmt.Sprintf("Objective %d", i))
			s.Data = append(s.Data, p.between(10, 95))
		}
		opt.Placeholder = true
	}

	opt.YAxis = categoryAxis(objectives)
	opt.Series = []Series{s}
	return opt
}

// WhatIfProjection compares the flat baseline with the projected revenue
// over years 0 through 10.
func (b *Builder) WhatIfProjection(base float64, p metrics.WhatIfParams) Option {
	years := make([]string, 11)
	current := make([]float64, 11)
	projected := make([]float64, 11)
	for n := 0; n <= 10; n++ {
		years[n] = "Year " + strconv.Itoa(n)
		current[n] = round2(base)
		projected[n] = round2(metrics.Project(base, p, n))
	}
	return Option{
		Title:   Title{Text: "What-If Projection", Subtext: fmt.Sprintf("x%.4f per year", p.Multiplier())},
		Tooltip: &Tooltip{Trigger: "axis"},
		Legend:  &Legend{Data: []string{"Current", "Projected"}},
		XAxis:   categoryAxis(years),
		YAxis:   valueAxis(FormatCurrency),
		Series: []Series{
			{Name: "Current", Type: "line", Data: numbers(current)},
			{Name: "Projected", Type: "line", Smooth: true, Data: numbers(projected)},
		},
		Color: Palette,
	}
}

// CampaignROI is a bar of return on investment per campaign.
func (b *Builder) CampaignROI(orgID string, c *analytics.CampaignROI) Option {
	opt := Option{
		Title:   Title{Text: "Campaign ROI"},
		Tooltip: &Tooltip{Trigger: "axis"},
		YAxis:   valueAxis(FormatPercent),
		Color:   Palette,
	}
	s := Series{Name: "ROI", Type: "bar", Data: []any{}}
	var names []string

	if c != nil && len(c.Campaigns) > 0 {
		for _, camp := range c.Campaigns {
			names = append(names, camp.Name)
			s.Data = append(s.Data, camp.ROI)
		}
	} else if p := b.stub(orgID, NameCampaignROI); p != nil {
		for i := 1; i <= 5; i++ {
			names = append(names, fmt.Sprintf("Campaign %d", i))
			s.Data = append(s.Data, p.between(-20, 300))
		}
		opt.Placeholder = true
	}

	opt.XAxis = categoryAxis(names)
	opt.Series = []Series{s}
	return opt
}
