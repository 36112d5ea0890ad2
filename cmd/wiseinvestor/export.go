package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/p2sg/wiseinvestor/internal/export"
	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

var (
	exportOrg    string
	exportType   string
	exportFormat string
	exportPeriod string
	exportYear   int
	exportDir    string
	historyLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download a report",
	Long: "Downloads a report under the filename chosen by the server. Existing files\n" +
		"are never overwritten. With an export bucket configured the report is also\n" +
		"uploaded and a time-limited download link is printed.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

var exportHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously exported reports",
	Args:  cobra.NoArgs,
	RunE:  runExportHistory,
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportOrg, "org", "", "Organization id (required)")

	exportCmd.Flags().StringVar(&exportType, "type", "", "Report type: executive, financial, donors, campaigns, strategy")
	exportCmd.Flags().StringVar(&exportFormat, "format", "pdf", "File format: pdf, csv, xlsx")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "", "Period selector: month, quarter, year, ytd")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "Fiscal year")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (overrides WISEINVESTOR_EXPORT_DIR)")

	exportHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries")

	exportCmd.AddCommand(exportHistoryCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := analytics.ReportRequest{
		ReportType: exportType,
		Format:     exportFormat,
		Period:     exportPeriod,
		Year:       exportYear,
	}
	var c validation.Collector
	c.Add(validation.ValidateIdentifier("org", exportOrg))
	for _, e := range validation.ValidateReportRequest(req) {
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
	uploader, err := export.NewUploader(s.cfg.Export)
	if err != nil {
		return err
	}

	dir := exportDir
	if dir == "" {
		dir = s.cfg.Export.Dir
	}

	res, err := export.NewExporter(client, dir, uploader, s.store).Export(ctx, exportOrg, req)
	if err != nil {
		if analytics.IsUnauthorized(err) {
			return s.checkAuth(ctx, err)
		}
		if res != nil {
			// The file is on disk even though the upload step failed.
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s, but the upload failed.\n", res.Path)
		}
		return fmt.Errorf("failed to export report: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Size)))
	if res.ObjectKey != "" {
		fmt.Fprintf(out, "Uploaded to %s\n", res.ObjectKey)
	}
	if res.URL != "" {
		fmt.Fprintf(out, "Download link (expires %s):\n  %s\n", humanize.Time(res.URLExpiry), res.URL)
	}
	return nil
}

func runExportHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// An empty --org lists exports for every organization.
	if exportOrg != "" {
		if err := validation.ValidateIdentifier("org", exportOrg); err != nil {
			return validation.Errors{*err}
		}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.store.ListExports(ctx, exportOrg, historyLimit)
	if err != nil {
		return fmt.Errorf("list exports: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"exports": records,
			"total":   len(records),
		})
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No exports found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "CREATED\tTYPE\tFORMAT\tFILE\tSIZE\tLOCATION")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ReportType,
			r.Format,
			r.Filename,
			humanize.Bytes(uint64(r.SizeBytes)),
			r.Location,
		)
	}
	return w.Flush()
}
