package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/p2sg/wiseinvestor/internal/store"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// ReportSource downloads a report. Implemented by *analytics.Client.
type ReportSource interface {
	ExportReport(ctx context.Context, orgID string, req analytics.ReportRequest) (*analytics.Download, error)
}

// Result describes a written report.
type Result struct {
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	ObjectKey   string    `json:"object_key,omitempty"`
	URL         string    `json:"url,omitempty"`
	URLExpiry   time.Time `json:"url_expiry,omitempty"`
}

// Exporter downloads reports into a directory, optionally uploads them,
// and records each export.
type Exporter struct {
	source   ReportSource
	dir      string
	uploader Uploader
	log      store.ExportLog
}

// NewExporter creates an Exporter. uploader and log may be nil.
func NewExporter(source ReportSource, dir string, uploader Uploader, log store.ExportLog) *Exporter {
	if uploader == nil {
		uploader = &NoopUploader{}
	}
	return &Exporter{source: source, dir: dir, uploader: uploader, log: log}
}

// Export downloads the report and writes it to the export directory under the
// server-supplied filename. An existing file of the same name is not
// overwritten; a numeric suffix is added instead.
func (e *Exporter) Export(ctx context.Context, orgID string, req analytics.ReportRequest) (*Result, error) {
	dl, err := e.source.ExportReport(ctx, orgID, req)
	if err != nil {
		return nil, err
	}
	defer dl.Body.Close()

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	path, size, err := writeUnique(e.dir, dl.Filename, dl.Body)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:        path,
		Filename:    filepath.Base(path),
		ContentType: dl.ContentType,
		Size:        size,
	}

	key, err := e.uploader.Upload(ctx, orgID, res.Filename, path, dl.ContentType)
	if err != nil {
		return res, err
	}
	if key != "" {
		res.ObjectKey = key
		res.URL, res.URLExpiry, err = e.uploader.PresignedURL(ctx, key)
		if err != nil && !errors.Is(err, ErrNotConfigured) {
			return res, err
		}
	}

	if e.log != nil {
		location := path
		if res.ObjectKey != "" {
			location = res.ObjectKey
		}
		if _, err := e.log.RecordExport(ctx, types.ExportRecord{
			OrgID:      orgID,
			ReportType: req.ReportType,
			Format:     req.Format,
			Filename:   res.Filename,
			Location:   location,
			SizeBytes:  size,
		}); err != nil {
			// The report itself was written; a missing history row is not fatal.
			slog.Warn("failed to record export",
				"component", "export",
				"org_id", orgID,
				"error", err,
			)
		}
	}

	slog.Info("report exported",
		"component", "export",
		"org_id", orgID,
		"report_type", req.ReportType,
		"filename", res.Filename,
		"size", size,
		"uploaded", res.ObjectKey != "",
	)
	return res, nil
}

// writeUnique copies r into dir/name, choosing "name (n).ext" when the file exists.
func writeUnique(dir, name string, r io.Reader) (string, int64, error) {
	name = filepath.Base(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, fmt.Errorf("create report file: %w", err)
		}

		n, err := io.Copy(f, r)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return "", 0, fmt.Errorf("write report file: %w", err)
		}
		return path, n, nil
	}
	return "", 0, fmt.Errorf("no free filename for %q in %s", name, dir)
}
