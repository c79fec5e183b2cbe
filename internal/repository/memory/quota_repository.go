package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// QuotaRepository tracks how many questions each user asked today. Counters
// live in memory and expire on their own; a restart resets the day, which is
// an accepted trade-off for a single-node deployment.
type QuotaRepository struct {
	cache *cache.Cache
}

func NewQuotaRepository() *QuotaRepository {
	// Entries expire after 24 hours and expired items are purged hourly.
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &QuotaRepository{
		cache: c,
	}
}

func (r *QuotaRepository) key(userId uuid.UUID, now time.Time) string {
	return fmt.Sprintf("usage:%s:%s", userId, now.Format("2006-01-02"))
}

// Increment bumps today's counter for the user and returns the new value.
func (r *QuotaRepository) Increment(userId uuid.UUID, now time.Time) int {
	key := r.key(userId, now)
	count := 1
	if x, found := r.cache.Get(key); found {
		count = x.(int) + 1
	}
	r.cache.Set(key, count, cache.DefaultExpiration)
	return count
}

// Usage returns today's counter without changing it.
func (r *QuotaRepository) Usage(userId uuid.UUID, now time.Time) int {
	if x, found := r.cache.Get(r.key(userId, now)); found {
		return x.(int)
	}
	return 0
}
