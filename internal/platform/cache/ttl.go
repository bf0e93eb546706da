package cache

import (
	"time"

	"crypto_backend/internal/feature/candles/domain/entity"
)

const (
	minTTL = 5 * time.Second
	maxTTL = time.Hour
)

// TTLUntilClose はnow時点で形成中のローソク足が確定するまでの期間を返します。
// 結果は[5秒, 1時間]に丸められます。未知の時間足は最小値を返します。
func TTLUntilClose(timeframe string, now time.Time) time.Duration {
	d, ok := entity.TimeframeDuration(timeframe)
	if !ok {
		return minTTL
	}

	// 1wはUnixエポック（木曜）ではなく月曜始まりで区切る
	origin := time.Unix(0, 0).UTC()
	if timeframe == "1w" {
		origin = origin.Add(4 * 24 * time.Hour)
	}

	elapsed := now.UTC().Sub(origin) % d
	ttl := d - elapsed

	switch {
	case ttl < minTTL:
		return minTTL
	case ttl > maxTTL:
		return maxTTL
	}
	return ttl
}
