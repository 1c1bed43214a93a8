package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/gitstats/internal/apperror"
	"github.com/sakif/gitstats/internal/metrics"
	"github.com/sakif/gitstats/internal/model"
	"github.com/sakif/gitstats/internal/provider"
	"github.com/sakif/gitstats/internal/repository"
)

// StatsObserver is told how each lookup was served. *metrics.Metrics
// implements it.
type StatsObserver interface {
	ObserveCache(result string)
	ObserveSnapshot(elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveCache(string)            {}
func (noopObserver) ObserveSnapshot(time.Duration) {}

// unavailableNotice is shown instead of numbers when GitHub failed and the
// failure policy says not to pretend it returned nothing.
const unavailableNotice = "GitHub could not be reached, so statistics are unavailable right now. Try again later."

// StatsService serves the stats page from the per-user cache.
//
// CACHE STATE MACHINE (per user):
//
//	anonymous            → empty view, no provider calls, nothing stored
//	cached (all fields)  → view from the cache, no provider calls
//	not cached           → compute everything, store everything in one
//	                       transaction, view from the fresh snapshot
//
// "Not cached" includes a partially filled cache: if any one field is
// missing, all of them are recomputed so the page never mixes numbers from
// two different computations.
//
// There is no expiry. Two concurrent misses for the same user both compute
// and the last commit wins; the two snapshots describe the same account.
type StatsService struct {
	users    repository.UserRepository
	sources  SourceFactory
	observer StatsObserver
	logger   *slog.Logger
}

// NewStatsService wires a StatsService. observer may be nil.
func NewStatsService(users repository.UserRepository, sources SourceFactory, observer StatsObserver, logger *slog.Logger) *StatsService {
	if observer == nil {
		observer = noopObserver{}
	}
	return &StatsService{
		users:    users,
		sources:  sources,
		observer: observer,
		logger:   logger,
	}
}

// Stats returns the stats view for user, which is nil for anonymous visitors.
func (s *StatsService) Stats(ctx context.Context, user *model.User) (*model.StatsView, error) {
	if user == nil {
		s.observer.ObserveCache(metrics.CacheAnonymous)
		return model.EmptyStatsView(), nil
	}

	if user.Stats != nil {
		s.observer.ObserveCache(metrics.CacheHit)
		return model.NewStatsView(user.Stats), nil
	}

	s.observer.ObserveCache(metrics.CacheMiss)
	snapshot, err := s.compute(ctx, user)
	if err != nil {
		if errors.Is(err, provider.ErrFetch) {
			s.logger.Warn("stats unavailable, nothing cached",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
			view := model.EmptyStatsView()
			view.Notice = unavailableNotice
			return view, nil
		}
		return nil, err
	}

	if err := s.users.SaveStats(ctx, user.ID, snapshot); err != nil {
		return nil, fmt.Errorf("service/stats: caching stats for user %s: %w", user.ID, err)
	}
	user.Stats = snapshot

	return model.NewStatsView(snapshot), nil
}

// StatsForUserID loads the user and returns their stats view. An empty id,
// or the id of a user who no longer exists, is served as anonymous.
func (s *StatsService) StatsForUserID(ctx context.Context, userID string) (*model.StatsView, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Stats(ctx, user)
}

// Refresh drops the cached statistics of a user; the next Stats call
// recomputes them.
func (s *StatsService) Refresh(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.Unauthorized("log in to refresh statistics")
	}
	if err := s.users.ClearStats(ctx, userID); err != nil {
		return fmt.Errorf("service/stats: clearing stats for user %s: %w", userID, err)
	}
	s.logger.Info("stats cache cleared", slog.String("userID", userID))
	return nil
}

func (s *StatsService) lookup(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, nil
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("session refers to an unknown user", slog.String("userID", userID))
			return nil, nil
		}
		return nil, fmt.Errorf("service/stats: loading user %s: %w", userID, err)
	}
	return user, nil
}

func (s *StatsService) compute(ctx context.Context, user *model.User) (*model.StatsSnapshot, error) {
	source, err := s.sources.ForUser(user)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snapshot, err := source.Snapshot(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("service/stats: computing stats for %s: %w", user.Login, err)
	}
	s.observer.ObserveSnapshot(elapsed)

	s.logger.Info("stats computed",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
		slog.Duration("elapsed", elapsed),
		slog.Int("repos", len(snapshot.RepoInfo.Repos)),
	)
	return snapshot, nil
}
