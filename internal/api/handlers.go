// Package api is the backend-for-frontend HTTP service. It forwards the
// caller's bearer token to the analytics API, aggregates dashboard tabs,
// derives scores and chart options, and proxies CRUD mutations.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/p2sg/wiseinvestor/internal/charts"
	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// Options configures a Handler.
type Options struct {
	Version      string
	LoginPath    string
	Concurrency  int // Dashboard fan-out limit; <= 0 means unlimited
	Thresholds   metrics.Thresholds
	Placeholders bool
}

// Handler implements the API handlers
type Handler struct {
	client      *analytics.Client
	charts      *charts.Builder
	thresholds  metrics.Thresholds
	concurrency int
	loginPath   string
	version     string
}

// NewHandler creates a Handler over the analytics client. The client's own
// token is ignored; each request uses the caller's token.
func NewHandler(client *analytics.Client, opts Options) *Handler {
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.Thresholds == (metrics.Thresholds{}) {
		opts.Thresholds = metrics.DefaultThresholds()
	}
	return &Handler{
		client:      client,
		charts:      charts.NewBuilder(opts.Placeholders),
		thresholds:  opts.Thresholds,
		concurrency: opts.Concurrency,
		loginPath:   opts.LoginPath,
		version:     opts.Version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		Upstream: h.client.BaseURL(),
	})
}

// clientFor returns the analytics client bound to the caller's token.
func (h *Handler) clientFor(r *http.Request) *analytics.Client {
	token, _ := TokenFromContext(r.Context())
	return h.client.WithToken(token)
}

// writeError turns a failed operation into a response. Unauthorized errors
// redirect to login without writing any data.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// The caller went away; there is no one to answer.
		return
	}
	if analytics.IsUnauthorized(err) {
		slog.Info("upstream rejected token, redirecting to login",
			"component", "api",
			"path", r.URL.Path,
		)
		redirectToLogin(w, r, h.loginPath)
		return
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", verrs)
		return
	}

	slog.Warn("upstream call failed",
		"component", "api",
		"request_id", GetRequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	MapUpstreamError(w, r, err, fallback)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "component", "api", "error", err)
	}
}

// writeMutation writes the success envelope shared by every CRUD route.
func writeMutation(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.MutationResponse{OK: true, Message: message, Data: data})
}

// decodeBody decodes a JSON request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// readPayload reads a mutation body that is relayed upstream byte-for-byte.
// The body must be a single JSON value; it is never re-encoded.
func readPayload(r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("body is empty")
	}
	if !json.Valid(data) {
		return nil, errors.New("malformed value")
	}
	return json.RawMessage(data), nil
}

func writeInvalidJSON(w http.ResponseWriter, r *http.Request, err error) {
	WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
}

// urlParam returns a path parameter with any percent-encoding removed.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
