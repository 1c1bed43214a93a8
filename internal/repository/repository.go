// Package repository declares the storage interfaces the services depend on.
// Implementations live in the sqlite and postgres subpackages.
package repository

import (
	"context"

	"github.com/sakif/gitstats/internal/model"
)

// UserRepository stores users and their cached statistics.
type UserRepository interface {
	// Upsert creates the user on first login and refreshes the profile and
	// access token on later logins, keyed by GitHubID. It fills in ID,
	// CreatedAt and UpdatedAt. The cached statistics are left alone.
	Upsert(ctx context.Context, user *model.User) error

	// GetUserByID returns apperror.ErrNotFound for an unknown id.
	// User.Stats is non-nil only when every cached field is present.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// SaveStats writes all cached statistics fields of one user in a single
	// transaction: readers see either the old snapshot or the new one.
	SaveStats(ctx context.Context, userID string, stats *model.StatsSnapshot) error

	// ClearStats resets every cached field to NULL, forcing a recomputation.
	ClearStats(ctx context.Context, userID string) error
}

// Store is a UserRepository backed by a database connection the server owns.
type Store interface {
	UserRepository
	Ping(ctx context.Context) error
	Close() error
}
