package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/p2sg/wiseinvestor/internal/config"
	"github.com/p2sg/wiseinvestor/internal/store"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

var (
	profileFlag string
	jsonOutput  bool
	verbose     bool
)

// errNotLoggedIn is returned when no usable token is cached for the profile.
var errNotLoggedIn = errors.New("not logged in: run 'wiseinvestor login --token <token>' first")

// session carries the configuration and token cache shared by the
// terminal commands.
type session struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	profile string
	cached  bool // client() authenticated with the profile's cached token
}

// openSession loads configuration, routes logs to stderr and opens the token cache.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := parseLogLevel(cfg.Log.Level)
	if !verbose && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), config.LogConfig{Format: "text"}, level))

	db, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open token cache: %w", err)
	}

	profile := profileFlag
	if profile == "" {
		profile = cfg.Store.Profile
	}
	return &session{cfg: cfg, store: db, profile: profile}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// client returns an analytics client authenticated as the session's profile.
// A token from WISEINVESTOR_TOKEN takes precedence over the cache.
func (s *session) client(ctx context.Context) (*analytics.Client, error) {
	c, err := newAnalyticsClient(s.cfg.Analytics)
	if err != nil {
		return nil, err
	}
	if c.HasToken() {
		s.cached = false
		return c, nil
	}

	tok, err := s.store.GetToken(ctx, s.profile)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, errNotLoggedIn
	case errors.Is(err, store.ErrTokenExpired):
		return nil, fmt.Errorf("session for profile %q expired %s: %w",
			s.profile, humanize.Time(tok.ExpiresAt), errNotLoggedIn)
	case err != nil:
		return nil, err
	}
	s.cached = true
	return c.WithToken(tok.AccessToken), nil
}

// checkAuth purges the cached token when err means the API rejected it,
// and replaces err with a prompt to log in again. A token supplied through
// the environment leaves the cache alone.
func (s *session) checkAuth(ctx context.Context, err error) error {
	if err == nil || !analytics.IsUnauthorized(err) {
		return err
	}
	if !s.cached {
		return fmt.Errorf("the API rejected the token from WISEINVESTOR_TOKEN: %w", err)
	}
	if derr := s.store.DeleteToken(ctx, s.profile); derr != nil && !errors.Is(derr, store.ErrNotFound) {
		slog.Warn("failed to clear cached token",
			"component", "cli",
			"profile", s.profile,
			"error", derr,
		)
	}
	return fmt.Errorf("your session has expired, please log in again: %w", errNotLoggedIn)
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// formatMoney renders whole dollars with thousands separators.
func formatMoney(v float64) string {
	if v < 0 {
		return "-$" + humanize.Comma(int64(math.Round(-v)))
	}
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
