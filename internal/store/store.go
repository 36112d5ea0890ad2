package store

import (
	"context"
	"time"

	"github.com/p2sg/wiseinvestor/internal/types"
)

// TokenStore persists CLI access tokens, one per profile.
type TokenStore interface {
	SaveToken(ctx context.Context, token types.CachedToken) (*types.CachedToken, error)
	GetToken(ctx context.Context, profile string) (*types.CachedToken, error)
	DeleteToken(ctx context.Context, profile string) error
	ListTokens(ctx context.Context) ([]types.CachedToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Close() error
}

// ExportLog records reports written by the export command.
type ExportLog interface {
	RecordExport(ctx context.Context, rec types.ExportRecord) (*types.ExportRecord, error)
	ListExports(ctx context.Context, orgID string, limit int) ([]types.ExportRecord, error)
}

// Compile-time interface checks
var (
	_ TokenStore = (*SQLiteStore)(nil)
	_ ExportLog  = (*SQLiteStore)(nil)
)
