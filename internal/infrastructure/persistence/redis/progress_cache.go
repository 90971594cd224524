package redis

import (
	"context"
	"errors"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
)

// ProgressCache is a read-through decorator over a progress store. Per-user
// snapshots are cached as a whole; any write invalidates the user's snapshot
// so the next read repopulates from the store.
//
// Redis failures never fail the caller: reads fall through to the store and
// writes proceed without invalidation (the TTL bounds the staleness window).
type ProgressCache struct {
	cache *Cache
	store achievement.ProgressRepository
}

// NewProgressCache wraps store with a Redis-backed snapshot cache.
func NewProgressCache(cache *Cache, store achievement.ProgressRepository) *ProgressCache {
	return &ProgressCache{cache: cache, store: store}
}

// Get returns the record for a (user, achievement) pair, preferring the
// cached user snapshot.
func (p *ProgressCache) Get(ctx context.Context, userID, achievementID string) (achievement.Progress, error) {
	var snapshot []achievement.Progress
	if err := p.cache.Get(ctx, ProgressKey(userID), &snapshot); err == nil {
		for _, rec := range snapshot {
			if rec.AchievementID == achievementID {
				return rec, nil
			}
		}
		// Missing from the snapshot: fall through to the store in case
		// another instance wrote since the snapshot was cached.
	}

	return p.store.Get(ctx, userID, achievementID)
}

// GetAllForUser returns every record for the user, populating the cache on
// miss.
func (p *ProgressCache) GetAllForUser(ctx context.Context, userID string) ([]achievement.Progress, error) {
	var snapshot []achievement.Progress
	err := p.cache.Get(ctx, ProgressKey(userID), &snapshot)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Degraded cache; serve from the store without repopulating.
		return p.store.GetAllForUser(ctx, userID)
	}

	records, err := p.store.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		// Best effort; a failed populate only costs the next read.
		_ = p.cache.Set(ctx, ProgressKey(userID), records, TTLProgressCache)
	}

	return records, nil
}

// Upsert writes through to the store and invalidates the user's snapshot.
func (p *ProgressCache) Upsert(ctx context.Context, rec achievement.Progress) error {
	if err := p.store.Upsert(ctx, rec); err != nil {
		return err
	}

	_ = p.cache.Delete(ctx, ProgressKey(rec.UserID))
	return nil
}

// Invalidate drops the cached snapshot for a user.
func (p *ProgressCache) Invalidate(ctx context.Context, userID string) error {
	return p.cache.Delete(ctx, ProgressKey(userID))
}

// InvalidateAll drops every cached progress snapshot.
func (p *ProgressCache) InvalidateAll(ctx context.Context) error {
	return p.cache.DeleteByPattern(ctx, PrefixProgress+"*")
}
