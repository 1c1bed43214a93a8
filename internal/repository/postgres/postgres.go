// Package postgres implements the repository interfaces on PostgreSQL via a
// pgx connection pool. It is selected when DATABASE_URL is set; otherwise
// the server uses the sqlite package.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"

	"github.com/sakif/gitstats/internal/apperror"
	"github.com/sakif/gitstats/internal/model"
	"github.com/sakif/gitstats/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store is the PostgreSQL-backed store. Only this package and main touch
// the pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, checks the connection and migrates the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}
	return s, nil
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                   TEXT PRIMARY KEY,
			github_id            BIGINT NOT NULL UNIQUE,
			login                TEXT NOT NULL,
			email                TEXT NOT NULL DEFAULT '',
			avatar_url           TEXT NOT NULL DEFAULT '',
			access_token         TEXT NOT NULL DEFAULT '',
			repo_commits         JSONB,
			user_repo_info       JSONB,
			deletions            JSONB,
			contrib_repo_commits JSONB,
			stargazers           JSONB,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_login ON users(login);
	`)
	return err
}

// Upsert creates or refreshes a user keyed by GitHub id. The cached
// statistics of an existing user are not touched.
func (s *Store) Upsert(ctx context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return apperror.ValidationFailed("github_id", "github id is required")
	}
	if user.Login == "" {
		return apperror.ValidationFailed("login", "login is required")
	}

	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, github_id, login, email, avatar_url, access_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (github_id) DO UPDATE SET
			login        = EXCLUDED.login,
			email        = EXCLUDED.email,
			avatar_url   = EXCLUDED.avatar_url,
			access_token = EXCLUDED.access_token,
			updated_at   = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`, xid.New().String(), user.GitHubID, user.Login, user.Email, user.AvatarURL, user.AccessToken, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

// GetUserByID loads a user; Stats is nil unless every cached column decodes.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var (
		u    model.User
		cols model.StatsColumns
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, github_id, login, email, avatar_url, access_token,
		       repo_commits::text, user_repo_info::text, deletions::text,
		       contrib_repo_commits::text, stargazers::text,
		       created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&u.ID, &u.GitHubID, &u.Login, &u.Email, &u.AvatarURL, &u.AccessToken,
		&cols.RepoCommits, &cols.UserRepoInfo, &cols.Deletions, &cols.ContribRepoCommits, &cols.Stargazers,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}

	u.Stats, _ = model.DecodeStatsColumns(cols)
	return &u, nil
}

// SaveStats replaces every cached statistics column of a user in one
// transaction.
func (s *Store) SaveStats(ctx context.Context, userID string, stats *model.StatsSnapshot) error {
	if stats == nil {
		return apperror.ValidationFailed("stats", "stats snapshot is required")
	}
	cols, err := stats.Columns()
	if err != nil {
		return fmt.Errorf("postgres: encoding stats for user %s: %w", userID, err)
	}
	return s.writeStats(ctx, userID, cols)
}

// ClearStats sets every cached statistics column of a user back to NULL.
func (s *Store) ClearStats(ctx context.Context, userID string) error {
	return s.writeStats(ctx, userID, model.StatsColumns{})
}

func (s *Store) writeStats(ctx context.Context, userID string, cols model.StatsColumns) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("postgres: beginning stats transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	tag, err := tx.Exec(ctx, `
		UPDATE users SET
			repo_commits         = $1::jsonb,
			user_repo_info       = $2::jsonb,
			deletions            = $3::jsonb,
			contrib_repo_commits = $4::jsonb,
			stargazers           = $5::jsonb,
			updated_at           = NOW()
		WHERE id = $6
	`, cols.RepoCommits, cols.UserRepoInfo, cols.Deletions, cols.ContribRepoCommits, cols.Stargazers, userID)
	if err != nil {
		return fmt.Errorf("postgres: writing stats for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("user", userID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: committing stats for user %s: %w", userID, err)
	}
	return nil
}
