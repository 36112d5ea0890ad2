package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// ExportReport handles POST /api/v1/orgs/{orgID}/reports/export
// The upstream file is streamed through under the server's filename.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	orgID := urlParam(r, "orgID")

	var req analytics.ReportRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	var c validation.Collector
	c.Add(validation.ValidateIdentifier("org_id", orgID))
	for _, e := range validation.ValidateReportRequest(req) {
		c.Add(&e)
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	dl, err := h.clientFor(r).ExportReport(r.Context(), orgID, req)
	if err != nil {
		h.writeError(w, r, err, "Failed to export report")
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	if dl.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, dl.Body)
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		slog.Warn("report stream interrupted",
			"component", "api",
			"org_id", orgID,
			"bytes", n,
			"error", err,
		)
		return
	}

	slog.Info("report exported",
		"component", "api",
		"org_id", orgID,
		"report_type", req.ReportType,
		"format", req.Format,
		"filename", dl.Filename,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
