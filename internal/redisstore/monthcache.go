package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// MonthCache caches one masjid-month of prayer times.
//
// Entries are keyed by (masjid, month, version). Readers fetch the masjid's
// version before querying the database and store the result under that
// version; Invalidate bumps the version. A read that started before an
// invalidation therefore lands under a version nobody asks for again and
// expires unseen.
type MonthCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMonthCache returns a MonthCache whose entries expire after ttl.
func NewMonthCache(rdb *redis.Client, ttl time.Duration) *MonthCache {
	return &MonthCache{rdb: rdb, ttl: ttl}
}

func versionKey(masjidID uuid.UUID) string {
	return keyPrefix + "prayer_times:version:" + masjidID.String()
}

func monthKey(masjidID uuid.UUID, month string, version int64) string {
	return fmt.Sprintf("%sprayer_times:%s:%s:v%d", keyPrefix, masjidID, month, version)
}

// Version returns the masjid's current cache version. A masjid that was
// never invalidated is at version 0.
func (c *MonthCache) Version(ctx context.Context, masjidID uuid.UUID) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(masjidID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redisstore.MonthCache.Version: %w", err)
	}
	return v, nil
}

// Get returns the cached records for the month at version. The second result
// is false on a miss.
func (c *MonthCache) Get(ctx context.Context, masjidID uuid.UUID, month string, version int64) ([]domain.PrayerTime, bool, error) {
	data, err := c.rdb.Get(ctx, monthKey(masjidID, month, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redisstore.MonthCache.Get: %w", err)
	}

	var recs []domain.PrayerTime
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, fmt.Errorf("redisstore.MonthCache.Get: decode: %w", err)
	}
	return recs, true, nil
}

// Set stores records for the month under version.
func (c *MonthCache) Set(ctx context.Context, masjidID uuid.UUID, month string, version int64, recs []domain.PrayerTime) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("redisstore.MonthCache.Set: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, monthKey(masjidID, month, version), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore.MonthCache.Set: %w", err)
	}
	return nil
}

// Invalidate bumps the masjid's version so every cached month is bypassed.
func (c *MonthCache) Invalidate(ctx context.Context, inv domain.Invalidation) error {
	if err := c.rdb.Incr(ctx, versionKey(inv.MasjidID)).Err(); err != nil {
		return fmt.Errorf("redisstore.MonthCache.Invalidate: %w", err)
	}
	return nil
}
