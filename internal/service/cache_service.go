package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

const rosterKeyPrefix = "teamwork:roster:"

// CacheRepository stores JSON payloads by key.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RosterCache holds the team list of each major assignment. Cache failures
// are logged and otherwise ignored; callers always fall back to Postgres.
type RosterCache struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewRosterCache constructs a RosterCache. A disabled cache misses on every
// read.
func NewRosterCache(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *RosterCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterCache{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled reports whether reads can hit.
func (c *RosterCache) Enabled() bool {
	return c != nil && c.enabled && c.repo != nil
}

func rosterKey(majorAssignmentID string) string {
	return rosterKeyPrefix + majorAssignmentID
}

// Teams returns the cached roster and whether it was present.
func (c *RosterCache) Teams(ctx context.Context, majorAssignmentID string) ([]models.Team, bool) {
	if !c.Enabled() {
		return nil, false
	}
	start := time.Now()
	var teams []models.Team
	err := c.repo.Get(ctx, rosterKey(majorAssignmentID), &teams)
	hit := err == nil
	c.metrics.RecordCacheOperation(hit, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		c.logger.Warn("roster cache read failed", zap.String("major_assignment_id", majorAssignmentID), zap.Error(err))
	}
	return teams, hit
}

// StoreTeams caches the roster for the configured TTL.
func (c *RosterCache) StoreTeams(ctx context.Context, majorAssignmentID string, teams []models.Team) {
	if !c.Enabled() {
		return
	}
	start := time.Now()
	err := c.repo.Set(ctx, rosterKey(majorAssignmentID), teams, c.ttl)
	c.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		c.logger.Warn("roster cache write failed", zap.String("major_assignment_id", majorAssignmentID), zap.Error(err))
	}
}

// Forget drops the rosters of the given assignments.
func (c *RosterCache) Forget(ctx context.Context, majorAssignmentIDs ...string) {
	if !c.Enabled() || len(majorAssignmentIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(majorAssignmentIDs))
	for _, id := range majorAssignmentIDs {
		if id != "" {
			keys = append(keys, rosterKey(id))
		}
	}
	if err := c.repo.Delete(ctx, keys...); err != nil {
		c.logger.Warn("roster cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Flush drops every cached roster. Run at startup so a new release never
// serves rosters encoded by an older one.
func (c *RosterCache) Flush(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.repo.DeleteByPattern(ctx, rosterKeyPrefix+"*")
}
