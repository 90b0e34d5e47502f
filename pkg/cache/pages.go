package cache

import (
	"errors"
	"time"

	gincache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
)

const jobKeyPrefix = "job:"

// JobPages caches the single job response under the job ID, so the writes
// that change a job can drop exactly that entry. A nil *JobPages or one
// without a store caches nothing.
type JobPages struct {
	store persist.CacheStore
	ttl   time.Duration
}

func NewJobPages(store persist.CacheStore, ttl time.Duration) *JobPages {
	return &JobPages{store: store, ttl: ttl}
}

func (p *JobPages) enabled() bool {
	return p != nil && p.store != nil && p.ttl > 0
}

// Handler serves GET /api/jobs/:id from the cache. The query string is not
// part of the key since the handler ignores it.
func (p *JobPages) Handler() gin.HandlerFunc {
	if !p.enabled() {
		return func(c *gin.Context) { c.Next() }
	}

	return gincache.Cache(p.store, p.ttl,
		gincache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, gincache.Strategy) {
			return true, gincache.Strategy{CacheKey: jobKey(c.Param("id"))}
		}),
	)
}

// Forget drops the cached responses of the given jobs
func (p *JobPages) Forget(jobIDs ...string) {
	if !p.enabled() {
		return
	}

	for _, id := range jobIDs {
		err := p.store.Delete(jobKey(id))
		if err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
			zap.L().Warn("Failed to drop cached job", zap.String("jobID", id), zap.Error(err))
		}
	}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}
