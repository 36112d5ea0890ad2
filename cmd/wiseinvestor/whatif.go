package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

var (
	whatifOrg        string
	whatifTraffic    float64
	whatifConversion float64
	whatifGiftSize   float64
	whatifBase       float64
)

var whatifCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Project revenue under traffic, conversion and gift-size increases",
	Long: "Each lever is a percentage increase between 0 and 100. Without --base the\n" +
		"organization's current total revenue is used.",
	Args: cobra.NoArgs,
	RunE: runWhatIf,
}

func init() {
	whatifCmd.Flags().StringVar(&whatifOrg, "org", "", "Organization id (required)")
	whatifCmd.Flags().Float64Var(&whatifTraffic, "traffic", 0, "Website traffic increase, percent")
	whatifCmd.Flags().Float64Var(&whatifConversion, "conversion", 0, "Conversion rate increase, percent")
	whatifCmd.Flags().Float64Var(&whatifGiftSize, "gift-size", 0, "Average gift increase, percent")
	whatifCmd.Flags().Float64Var(&whatifBase, "base", -1, "Baseline annual revenue; negative uses the current total revenue")
}

func runWhatIf(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p := metrics.WhatIfParams{
		TrafficIncrease:    whatifTraffic,
		ConversionIncrease: whatifConversion,
		GiftSizeIncrease:   whatifGiftSize,
	}
	hasBase := whatifBase >= 0

	var c validation.Collector
	c.Add(validation.ValidateIdentifier("org", whatifOrg))
	for _, e := range validation.ValidateWhatIf(p, max(whatifBase, 0)) {
		c.Add(&e)
	}
	if err := c.Err(); err != nil {
		return err
	}

	base := metrics.WhatIfBase{Revenue: whatifBase}
	if !hasBase {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		client, err := s.client(ctx)
		if err != nil {
			return err
		}
		ex, err := client.ExecutiveDashboard(ctx, whatifOrg, analytics.Query{})
		if err != nil {
			if analytics.IsUnauthorized(err) {
				return s.checkAuth(ctx, err)
			}
			return fmt.Errorf("failed to load current revenue: %w", err)
		}
		base = metrics.BaseFromOverview(&types.OverviewModel{Executive: ex})
	}

	result := metrics.WhatIf(base, p)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Baseline revenue: %s (multiplier %.3f)\n\n", formatMoney(base.Revenue), result.Multiplier)
	w := newTabWriter(out)
	fmt.Fprintln(w, "YEARS\tREVENUE\tINCREASE")
	for _, proj := range result.Projections {
		fmt.Fprintf(w, "%d\t%s\t%s\n", proj.Years, formatMoney(proj.Revenue), formatMoney(proj.Increase))
	}
	return w.Flush()
}
