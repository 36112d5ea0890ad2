package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/p2sg/wiseinvestor/internal/config"
	"github.com/p2sg/wiseinvestor/internal/store"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/internal/worker"
)

// logCapture captures slog output for testing
type logCapture struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (c *logCapture) handler() slog.Handler {
	return slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func (c *logCapture) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err == nil {
		c.entries = append(c.entries, entry)
	}
	return len(p), nil
}

func (c *logCapture) hasEntry(msg, key, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e["msg"] == msg && e[key] == value {
			return true
		}
	}
	return false
}

func captureLogs(t *testing.T) *logCapture {
	t.Helper()
	capture := &logCapture{}
	old := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	t.Cleanup(func() { slog.SetDefault(old) })
	return capture
}

func TestStartWorker_LogsLifecycleWithName(t *testing.T) {
	capture := captureLogs(t)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	ran := atomic.Bool{}
	startWorker(ctx, &wg, "token-sweeper", func(ctx context.Context) {
		ran.Store(true)
		<-ctx.Done()
	})

	cancel()
	wg.Wait()

	if !ran.Load() {
		t.Error("worker function was not called")
	}
	if !capture.hasEntry("worker started", "worker", "token-sweeper") {
		t.Error("expected 'worker started' with worker=token-sweeper")
	}
	if !capture.hasEntry("worker stopped", "worker", "token-sweeper") {
		t.Error("expected 'worker stopped' with worker=token-sweeper")
	}
}

// TestWorkerWaitGroupIntegration verifies workers are waited on during shutdown
func TestWorkerWaitGroupIntegration(t *testing.T) {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	completed := atomic.Bool{}
	startWorker(ctx, &wg, "slow-worker", func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		completed.Store(true)
	})

	cancel()
	wg.Wait()

	if !completed.Load() {
		t.Error("wg.Wait() returned before worker completed")
	}
}

func TestTokenSweeper_UnderStartWorker(t *testing.T) {
	// Given: a store holding one expired and one live token
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	for profile, exp := range map[string]time.Time{"stale": past, "live": future} {
		if _, err := db.SaveToken(ctx, types.CachedToken{Profile: profile, AccessToken: "t", ExpiresAt: exp}); err != nil {
			t.Fatalf("SaveToken(%s) error = %v", profile, err)
		}
	}

	// When: the sweeper runs in the serve lifecycle for a few ticks
	var wg sync.WaitGroup
	runCtx, cancel := context.WithCancel(ctx)
	startWorker(runCtx, &wg, "token-sweeper", worker.NewTokenSweeper(db, 5*time.Millisecond).Run)
	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()

	// Then: only the live token remains
	tokens, err := db.ListTokens(ctx)
	if err != nil {
		t.Fatalf("ListTokens() error = %v", err)
	}
	if len(tokens) != 1 || tokens[0].Profile != "live" {
		t.Errorf("tokens after sweep = %+v, want only 'live'", tokens)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Format: "json"}, slog.LevelInfo).Info("hello", "component", "cli")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json format produced %q: %v", buf.String(), err)
	}
	if entry["component"] != "cli" {
		t.Errorf("component = %v", entry["component"])
	}

	buf.Reset()
	newLogger(&buf, config.LogConfig{Format: "text"}, slog.LevelInfo).Info("hello", "component", "cli")
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "component=cli") {
		t.Errorf("text format = %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, config.LogConfig{Format: "json"}, slog.LevelWarn).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

func TestNewAnalyticsClient_FromConfig(t *testing.T) {
	c, err := newAnalyticsClient(config.AnalyticsConfig{
		BaseURL: "https://api.example.org/",
		Token:   "abc",
		Timeout: config.Duration(5 * time.Second),
	})
	if err != nil {
		t.Fatalf("newAnalyticsClient() error = %v", err)
	}
	if c.BaseURL() != "https://api.example.org" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
	if !c.HasToken() {
		t.Error("token from config was not applied")
	}

	if _, err := newAnalyticsClient(config.AnalyticsConfig{}); err == nil {
		t.Error("expected error for empty base URL")
	}
}
