package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/p2sg/wiseinvestor/internal/types"
)

// SQLiteStore is the local token cache and export log.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath, applies pragmas,
// and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// enablePragmas sets SQLite pragmas for durability and lock contention.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveToken stores the token for its profile, replacing any previous one.
func (s *SQLiteStore) SaveToken(ctx context.Context, token types.CachedToken) (*types.CachedToken, error) {
	token.Profile = strings.TrimSpace(token.Profile)
	if token.Profile == "" {
		return nil, ErrInvalidProfile
	}
	if token.AccessToken == "" {
		return nil, errors.New("access token is required")
	}

	token.ID = ulid.Make().String()
	token.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cached_tokens (id, profile, access_token, api_url, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			id = excluded.id,
			access_token = excluded.access_token,
			api_url = excluded.api_url,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, token.ID, token.Profile, token.AccessToken, token.APIURL,
		formatTime(token.CreatedAt), nullableTime(token.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	return &token, nil
}

// GetToken returns the token for profile. An expired token is returned
// together with ErrTokenExpired so callers can report when it lapsed.
func (s *SQLiteStore) GetToken(ctx context.Context, profile string) (*types.CachedToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile, access_token, api_url, created_at, expires_at
		FROM cached_tokens WHERE profile = ?
	`, profile)

	tok, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	if tok.Expired(s.now()) {
		return tok, ErrTokenExpired
	}
	return tok, nil
}

// DeleteToken removes the token for profile.
func (s *SQLiteStore) DeleteToken(ctx context.Context, profile string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cached_tokens WHERE profile = ?`, profile)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTokens returns every cached token ordered by profile.
func (s *SQLiteStore) ListTokens(ctx context.Context) ([]types.CachedToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile, access_token, api_url, created_at, expires_at
		FROM cached_tokens ORDER BY profile
	`)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var out []types.CachedToken
	for rows.Next() {
		tok, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out = append(out, *tok)
	}
	return out, rows.Err()
}

// DeleteExpired removes tokens that expired at or before now.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cached_tokens
		WHERE expires_at IS NOT NULL AND expires_at <= ?
	`, formatTime(now.UTC()))
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return res.RowsAffected()
}

// RecordExport logs an exported report.
func (s *SQLiteStore) RecordExport(ctx context.Context, rec types.ExportRecord) (*types.ExportRecord, error) {
	rec.ID = ulid.Make().String()
	rec.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exported_reports (id, org_id, report_type, format, filename, location, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.OrgID, rec.ReportType, rec.Format, rec.Filename, rec.Location, rec.SizeBytes, formatTime(rec.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("record export: %w", err)
	}
	return &rec, nil
}

// ListExports returns the most recent exports for orgID, newest first.
// An empty orgID lists every organization.
func (s *SQLiteStore) ListExports(ctx context.Context, orgID string, limit int) ([]types.ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, report_type, format, filename, location, size_bytes, created_at
		FROM exported_reports
		WHERE (? = '' OR org_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, orgID, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []types.ExportRecord
	for rows.Next() {
		var rec types.ExportRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.OrgID, &rec.ReportType, &rec.Format,
			&rec.Filename, &rec.Location, &rec.SizeBytes, &created); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		rec.CreatedAt, err = parseTime(created)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(row scanner) (*types.CachedToken, error) {
	var tok types.CachedToken
	var created string
	var expires sql.NullString
	if err := row.Scan(&tok.ID, &tok.Profile, &tok.AccessToken, &tok.APIURL, &created, &expires); err != nil {
		return nil, err
	}
	var err error
	if tok.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if expires.Valid {
		if tok.ExpiresAt, err = parseTime(expires.String); err != nil {
			return nil, err
		}
	}
	return &tok, nil
}

// Timestamps are stored as fixed-width UTC strings so they compare lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
