// Package charts builds declarative chart options for the dashboard views.
// Options mirror the ECharts option schema so the front end can hand them to
// the chart library unchanged.
package charts

// Axis label formatters.
const (
	FormatCurrency = "${value}"
	FormatPercent  = "{value}%"
	FormatPlain    = "{value}"
)

// Chart names, used as placeholder seeds and in logs.
const (
	NameRevenueForecast        = "revenue-forecast"
	NameDonorChurnTrend        = "donor-churn-trend"
	NameRevenueDiversification = "revenue-diversification"
	NameGoldenTriangle         = "golden-triangle"
	NameHealthGauge            = "health-gauge"
	NameQuadrantScatter        = "quadrant-scatter"
	NameMultiYearTrends        = "multi-year-trends"
	NameCashflowGrid           = "cashflow-grid"
	NameOKRProgress            = "okr-progress"
	NameWhatIfProjection       = "what-if-projection"
	NameCampaignROI            = "campaign-roi"
)

// Option is a chart configuration.
type Option struct {
	Title       Title    `json:"title"`
	Tooltip     *Tooltip `json:"tooltip,omitempty"`
	Legend      *Legend  `json:"legend,omitempty"`
	XAxis       *Axis    `json:"xAxis,omitempty"`
	YAxis       *Axis    `json:"yAxis,omitempty"`
	Radar       *Radar   `json:"radar,omitempty"`
	Series      []Series `json:"series"`
	Color       []string `json:"color,omitempty"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

type Title struct {
	Text    string `json:"text"`
	Subtext string `json:"subtext,omitempty"`
}

type Tooltip struct {
	Trigger   string `json:"trigger"`
	Formatter string `json:"formatter,omitempty"`
}

type Legend struct {
	Data []string `json:"data"`
}

// Axis is an x or y axis. Data is set for category axes only.
type Axis struct {
	Type      string     `json:"type"`
	Name      string     `json:"name,omitempty"`
	Data      []string   `json:"data,omitempty"`
	Min       *float64   `json:"min,omitempty"`
	Max       *float64   `json:"max,omitempty"`
	AxisLabel *AxisLabel `json:"axisLabel,omitempty"`
	SplitLine *SplitLine `json:"splitLine,omitempty"`
}

type AxisLabel struct {
	Formatter string `json:"formatter"`
}

type SplitLine struct {
	Show bool `json:"show"`
}

// Radar configures the polar grid of a radar chart.
type Radar struct {
	Indicator []RadarIndicator `json:"indicator"`
}

type RadarIndicator struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}

// Series is one data series. Data holds numbers, [x, y] pairs or
// NamedValue entries depending on Type.
type Series struct {
	Name     string    `json:"name,omitempty"`
	Type     string    `json:"type"`
	Stack    string    `json:"stack,omitempty"`
	Smooth   bool      `json:"smooth,omitempty"`
	Radius   string    `json:"radius,omitempty"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Data     []any     `json:"data"`
	MarkLine *MarkLine `json:"markLine,omitempty"`
}

// NamedValue is a labelled data point for pie, gauge and radar series.
type NamedValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// MarkLine draws reference lines over a series.
type MarkLine struct {
	Silent bool           `json:"silent"`
	Data   []MarkLineItem `json:"data"`
}

type MarkLineItem struct {
	Name  string   `json:"name,omitempty"`
	XAxis *float64 `json:"xAxis,omitempty"`
	YAxis *float64 `json:"yAxis,omitempty"`
}

func f64(v float64) *float64 { return &v }

func valueAxis(formatter string) *Axis {
	return &Axis{Type: "value", AxisLabel: &AxisLabel{Formatter: formatter}}
}

func categoryAxis(data []string) *Axis {
	return &Axis{Type: "category", Data: data}
}

func numbers(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
