package charts

import (
	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/types"
)

// Overview builds every chart of the overview tab, keyed by chart name.
func (b *Builder) Overview(m *types.OverviewModel, s metrics.Scores) map[string]Option {
	return map[string]Option{
		NameHealthGauge:      b.HealthGauge("Overall Health", s.Overall),
		NameQuadrantScatter:  b.QuadrantScatter(s),
		NameRevenueForecast:  b.RevenueForecast(m.OrgID, m.Forecast),
		NameDonorChurnTrend:  b.DonorChurnTrend(m.OrgID, m.ChurnTrend),
		NameGoldenTriangle:   b.GoldenTriangle(m.OrgID, m.GoldenTriangle),
		NameOKRProgress:      b.OKRProgress(m.OrgID, m.OKRs),
		NameWhatIfProjection: b.WhatIfProjection(metrics.BaseFromOverview(m).Revenue, metrics.Reset()),
	}
}

// Financial builds every chart of the financial tab. Fields listed in
// Missing fall back to placeholders like any other absent data.
func (b *Builder) Financial(m *types.FinancialModel) map[string]Option {
	return map[string]Option{
		NameRevenueDiversification: b.RevenueDiversification(m.OrgID, m.Diversification),
		NameMultiYearTrends:        b.MultiYearTrends(m.OrgID, m.Trends),
		NameCashflowGrid:           b.CashflowGrid(m.OrgID, m.Cashflow),
		NameCampaignROI:            b.CampaignROI(m.OrgID, m.CampaignROI),
	}
}
