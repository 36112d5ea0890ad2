package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Download is a file returned by the export endpoint. The caller must close Body.
type Download struct {
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.ReadCloser
}

// ExportReport requests a report file. The filename comes from the
// Content-Disposition header when the server sends one.
func (c *Client) ExportReport(ctx context.Context, orgID string, in ReportRequest) (*Download, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode report request: %w", err)
	}

	path := Path(PathExportReport, orgID)
	resp, err := c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json", "*/*")
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	fallback := "report-" + orgID + extensionFor(contentType, in.Format)

	return &Download{
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition"), fallback),
		ContentType: contentType,
		Size:        resp.ContentLength,
		Body:        resp.Body,
	}, nil
}

// FilenameFromDisposition extracts the filename from a Content-Disposition
// header value. filename* (RFC 5987) wins over filename. Directory parts are
// stripped. Returns fallback when no usable name is present.
func FilenameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	name := params["filename"]
	if name == "" {
		return fallback
	}
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return fallback
	}
	return name
}

var formatExtensions = map[string]string{
	"pdf":  ".pdf",
	"csv":  ".csv",
	"xlsx": ".xlsx",
	"json": ".json",
}

var contentTypeExtensions = map[string]string{
	"application/pdf":  ".pdf",
	"text/csv":         ".csv",
	"application/json": ".json",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
}

func extensionFor(contentType, format string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := contentTypeExtensions[mediaType]; ok {
			return ext
		}
	}
	if ext, ok := formatExtensions[strings.ToLower(format)]; ok {
		return ext
	}
	return ".bin"
}
