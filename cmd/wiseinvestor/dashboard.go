package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p2sg/wiseinvestor/internal/dashboard"
	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

var (
	dashOrg     string
	dashTab     string
	dashPeriod  string
	dashYear    int
	dashYears   int
	dashRetries int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show one dashboard tab for an organization",
	Long: "Loads every analytics call behind a tab and prints the result.\n" +
		"Tabs: overview, financial, strategy.",
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashOrg, "org", "", "Organization id (required)")
	dashboardCmd.Flags().StringVar(&dashTab, "tab", string(types.TabOverview), "Dashboard tab")
	dashboardCmd.Flags().StringVar(&dashPeriod, "period", "", "Period selector: month, quarter, year, ytd")
	dashboardCmd.Flags().IntVar(&dashYear, "year", 0, "Fiscal year")
	dashboardCmd.Flags().IntVar(&dashYears, "years", 0, "Lookback in years for trend endpoints")
	dashboardCmd.Flags().IntVar(&dashRetries, "retries", 0, "Retry a failed load this many times")
}

// dashboardOutput is the --json shape of the dashboard command.
type dashboardOutput struct {
	Tab    types.Tab       `json:"tab"`
	Model  types.ViewModel `json:"model"`
	Scores *metrics.Scores `json:"scores,omitempty"`
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tab, ok := types.ParseTab(dashTab)
	if !ok {
		return fmt.Errorf("unknown tab %q (want overview, financial or strategy)", dashTab)
	}
	params := types.Params{Period: dashPeriod, Year: dashYear, Years: dashYears}
	var c validation.Collector
	c.Add(validation.ValidateIdentifier("org", dashOrg))
	for _, e := range validation.ValidateParams(params) {
		c.Add(&e)
	}
	if err := c.Err(); err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := s.client(ctx)
	if err != nil {
		return err
	}

	view := dashboard.NewView(dashboard.NewAggregator(client, s.cfg.Dashboard.ConcurrencyLimit))
	model, err := view.Activate(ctx, tab, dashOrg, params)
	for attempt := 1; err != nil && attempt <= dashRetries; attempt++ {
		if analytics.IsUnauthorized(err) || ctx.Err() != nil {
			break
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to load dashboard data: %v (retry %d of %d)\n",
			err, attempt, dashRetries)
		model, err = view.Retry(ctx)
	}
	if err != nil {
		if analytics.IsUnauthorized(err) {
			return s.checkAuth(ctx, err)
		}
		return fmt.Errorf("failed to load dashboard data: %w", err)
	}

	out := dashboardOutput{Tab: tab, Model: model}
	if m, ok := model.(*types.OverviewModel); ok {
		scores := metrics.Compute(m, metrics.Thresholds{RevenueThreshold: s.cfg.Metrics.RevenueThreshold})
		out.Scores = &scores
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	switch m := model.(type) {
	case *types.OverviewModel:
		printOverview(w, m, *out.Scores)
	case *types.FinancialModel:
		printFinancial(w, m)
	case *types.StrategyModel:
		printStrategy(w, m)
	}
	return nil
}

func printOverview(out io.Writer, m *types.OverviewModel, s metrics.Scores) {
	if mv := m.MissionVision; mv != nil {
		fmt.Fprintf(out, "Mission: %s\nVision:  %s\n\n", orDash(mv.Mission), orDash(mv.Vision))
	}

	w := newTabWriter(out)
	if ex := m.Executive; ex != nil {
		fmt.Fprintf(w, "Total revenue\t%s\n", formatMoney(ex.TotalRevenue))
		fmt.Fprintf(w, "Revenue growth\t%s\n", formatPercent(ex.RevenueGrowth))
		fmt.Fprintf(w, "Donors\t%d total, %d active\n", ex.TotalDonors, ex.ActiveDonors)
	}
	if m.AvgDonation != nil {
		fmt.Fprintf(w, "Average donation\t%s\n", formatMoney(m.AvgDonation.Average))
	}
	if g := m.GoalAttainment; g != nil && g.Goal > 0 {
		fmt.Fprintf(w, "Goal\t%s of %s raised\n", formatMoney(g.Raised), formatMoney(g.Goal))
	}
	w.Flush()

	fmt.Fprintln(out)
	w = newTabWriter(out)
	fmt.Fprintln(w, "SCORE\tVALUE")
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"Vision", s.Vision},
		{"Strategy", s.Strategy},
		{"Momentum", s.Momentum},
		{"Retention", s.Retention},
		{"Engagement", s.Engagement},
		{"Revenue", s.Revenue},
		{"Growth", s.Growth},
		{"Sustainability", s.Sustainability},
		{"Overall", s.Overall},
	} {
		fmt.Fprintf(w, "%s\t%s\n", row.name, formatPercent(row.value))
	}
	w.Flush()
	fmt.Fprintf(out, "Quadrant: %s\n", quadrantLabel(s.Quadrant))

	if m.OKRs != nil && len(m.OKRs.OKRs) > 0 {
		fmt.Fprintln(out)
		w = newTabWriter(out)
		fmt.Fprintln(w, "OBJECTIVE\tPROGRESS\tSTATUS")
		for _, o := range m.OKRs.OKRs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.Objective, formatPercent(o.Progress), orDash(o.Status))
		}
		w.Flush()
	}

	if m.Insights != nil && len(m.Insights.Insights) > 0 {
		fmt.Fprintln(out, "\nInsights:")
		for _, in := range m.Insights.Insights {
			fmt.Fprintf(out, "  - %s: %s\n", in.Title, in.Description)
		}
	}
}

func quadrantLabel(q metrics.Quadrant) string {
	return strings.ReplaceAll(string(q), "_", " ")
}

func printFinancial(out io.Writer, m *types.FinancialModel) {
	if d := m.Diversification; d != nil {
		w := newTabWriter(out)
		fmt.Fprintln(w, "SOURCE\tAMOUNT\tSHARE")
		for _, src := range d.Sources {
			fmt.Fprintf(w, "%s\t%s\t%s\n", src.Source, formatMoney(src.Amount), formatPercent(src.Share))
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	if t := m.Trends; t != nil {
		w := newTabWriter(out)
		fmt.Fprintln(w, "YEAR\tREVENUE\tEXPENSES\tNET\tDONORS")
		for _, y := range t.Years {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
				y.Year, formatMoney(y.Revenue), formatMoney(y.Expenses), formatMoney(y.NetIncome), y.Donors)
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	if g := m.Cashflow; g != nil {
		w := newTabWriter(out)
		fmt.Fprintln(w, "YEAR\tINFLOWS\tOUTFLOWS\tNET")
		for _, row := range g.Rows {
			in, outflow := sum(row.Inflows), sum(row.Outflows)
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.Year, formatMoney(in), formatMoney(outflow), formatMoney(in-outflow))
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	if r := m.CampaignROI; r != nil {
		w := newTabWriter(out)
		fmt.Fprintln(w, "CAMPAIGN\tCOST\tREVENUE\tROI")
		for _, c := range r.Campaigns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, formatMoney(c.Cost), formatMoney(c.Revenue), formatPercent(c.ROI))
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	for _, endpoint := range m.Missing {
		fmt.Fprintf(out, "Unavailable: %s\n", endpoint)
	}
}

func printStrategy(out io.Writer, m *types.StrategyModel) {
	if s := m.Summary; s != nil {
		fmt.Fprintf(out, "%s\n", orDash(s.Summary))
		for i, p := range s.Priorities {
			fmt.Fprintf(out, "  %d. %s\n", i+1, p)
		}
		fmt.Fprintln(out)
	}

	if sw := m.SWOT; sw != nil {
		for _, section := range []struct {
			title string
			items []string
		}{
			{"Strengths", sw.Strengths},
			{"Weaknesses", sw.Weaknesses},
			{"Opportunities", sw.Opportunities},
			{"Threats", sw.Threats},
		} {
			fmt.Fprintf(out, "%s:\n", section.title)
			if len(section.items) == 0 {
				fmt.Fprintln(out, "  -")
			}
			for _, item := range section.items {
				fmt.Fprintf(out, "  - %s\n", item)
			}
		}
		fmt.Fprintln(out)
	}

	if c := m.Continuum; c != nil && len(c.Stages) > 0 {
		w := newTabWriter(out)
		fmt.Fprintln(w, "STAGE\tDONORS\tREVENUE")
		for _, st := range c.Stages {
			fmt.Fprintf(w, "%s\t%d\t%s\n", st.Stage, st.Donors, formatMoney(st.Revenue))
		}
		w.Flush()
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
