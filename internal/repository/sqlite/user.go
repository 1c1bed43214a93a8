package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/gitstats/internal/apperror"
	"github.com/sakif/gitstats/internal/model"
	"github.com/sakif/gitstats/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// Upsert creates or refreshes a user keyed by GitHub id.
//
// An existing user keeps its internal ID and its cached statistics; only
// the profile fields and the access token are updated.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return apperror.ValidationFailed("github_id", "github id is required")
	}
	if user.Login == "" {
		return apperror.ValidationFailed("login", "login is required")
	}

	var existingID string
	var createdAt time.Time
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, created_at FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID, &createdAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	now := time.Now().UTC()
	if existingID != "" {
		user.ID = existingID
		user.CreatedAt = createdAt
		user.UpdatedAt = now
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET login = ?, email = ?, avatar_url = ?, access_token = ?, updated_at = ?
			 WHERE id = ?`,
			user.Login, user.Email, user.AvatarURL, user.AccessToken, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, login, email, avatar_url, access_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.GitHubID, user.Login, user.Email, user.AvatarURL, user.AccessToken,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

// GetUserByID loads a user and decides whether its cached stats are usable.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var (
		u    model.User
		cols model.StatsColumns
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, login, email, avatar_url, access_token,
		        repo_commits, user_repo_info, deletions, contrib_repo_commits, stargazers,
		        created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID, &u.GitHubID, &u.Login, &u.Email, &u.AvatarURL, &u.AccessToken,
		&cols.RepoCommits, &cols.UserRepoInfo, &cols.Deletions, &cols.ContribRepoCommits, &cols.Stargazers,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	u.Stats, _ = model.DecodeStatsColumns(cols)
	return &u, nil
}

// SaveStats replaces every cached statistics column of a user in one
// transaction.
func (db *DB) SaveStats(ctx context.Context, userID string, stats *model.StatsSnapshot) error {
	if stats == nil {
		return apperror.ValidationFailed("stats", "stats snapshot is required")
	}
	cols, err := stats.Columns()
	if err != nil {
		return fmt.Errorf("sqlite: encoding stats for user %s: %w", userID, err)
	}
	return db.writeStats(ctx, userID, cols)
}

// ClearStats sets every cached statistics column of a user back to NULL.
func (db *DB) ClearStats(ctx context.Context, userID string) error {
	return db.writeStats(ctx, userID, model.StatsColumns{})
}

func (db *DB) writeStats(ctx context.Context, userID string, cols model.StatsColumns) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning stats transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET repo_commits = ?, user_repo_info = ?, deletions = ?, contrib_repo_commits = ?, stargazers = ?,
		     updated_at = ?
		 WHERE id = ?`,
		cols.RepoCommits, cols.UserRepoInfo, cols.Deletions, cols.ContribRepoCommits, cols.Stargazers,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing stats for user %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking stats update for user %s: %w", userID, err)
	}
	if n == 0 {
		return apperror.NotFound("user", userID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing stats for user %s: %w", userID, err)
	}
	return nil
}
