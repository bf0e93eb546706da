// Package cache provides caching implementations for candle sources.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/candles/usecase"
)

// CachingCandleSource decorates a CandleSource with Redis caching.
// Entries live until the newest candle of the requested timeframe closes.
type CachingCandleSource struct {
	inner     usecase.CandleSource
	rdb       *redis.Client
	namespace string
	now       func() time.Time
}

var (
	_ usecase.CandleSource     = (*CachingCandleSource)(nil)
	_ usecase.CacheInvalidator = (*CachingCandleSource)(nil)
)

// NewCachingCandleSource wraps inner with Redis caching.
// A nil rdb disables caching. If namespace is empty, it uses "candles".
func NewCachingCandleSource(rdb *redis.Client, inner usecase.CandleSource, namespace string) *CachingCandleSource {
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingCandleSource{
		inner:     inner,
		rdb:       rdb,
		namespace: namespace,
		now:       time.Now,
	}
}

// GetCandles checks the cache first, then falls back to the wrapped source.
func (c *CachingCandleSource) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.GetCandles(ctx, symbol, timeframe, limit)
	}

	key := c.cacheKey(symbol, timeframe, limit)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Candle
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// corrupt entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.GetCandles(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, TTLUntilClose(timeframe, c.now())).Err(); err != nil {
			slog.Warn("failed to cache candles", "key", key, "error", err)
		}
	}

	return out, nil
}

// Invalidate drops every cached limit variant for symbol and timeframe.
func (c *CachingCandleSource) Invalidate(ctx context.Context, symbol, timeframe string) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.cacheKeyPrefix(symbol, timeframe)+"*")
}

func (c *CachingCandleSource) cacheKey(symbol, timeframe string, limit int) string {
	return fmt.Sprintf("%s%d", c.cacheKeyPrefix(symbol, timeframe), limit)
}

func (c *CachingCandleSource) cacheKeyPrefix(symbol, timeframe string) string {
	return fmt.Sprintf("%s:%s:%s:",
		c.namespace,
		safe(entity.NormalizeSymbol(symbol)),
		safe(timeframe),
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCandleSource) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// safe escapes characters that are problematic for Redis keys and glob patterns.
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_", "*", "_").Replace(s)
}
