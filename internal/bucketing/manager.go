package bucketing

import (
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"cybercommand/internal/config"
)

// BucketingManager assigns deterministic event buckets so rows for one entity
// land in the same ClickHouse partition slice across epochs.
type BucketingManager struct {
	eventBuckets int
	hasherPool   sync.Pool
}

func NewBucketingManager(cfg *config.Config) *BucketingManager {
	bm := &BucketingManager{
		eventBuckets: cfg.Bucketing.EventBuckets,
	}

	// Pool of hash functions to avoid allocation overhead on bulk generation
	bm.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return bm
}

// GetEventBucket returns a consistent bucket for an entity key (0 to eventBuckets-1)
func (bm *BucketingManager) GetEventBucket(key string) int {
	return int(bm.getHash(key) % uint64(bm.eventBuckets))
}

// GetDateBucket returns the UTC date bucket for a timestamp
func (bm *BucketingManager) GetDateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// GetEventBuckets returns the configured bucket count
func (bm *BucketingManager) GetEventBuckets() int {
	return bm.eventBuckets
}

func (bm *BucketingManager) getHash(key string) uint64 {
	hasher := bm.hasherPool.Get().(hash.Hash64)
	defer bm.hasherPool.Put(hasher)

	hasher.Reset()
	hasher.Write([]byte(key))
	return hasher.Sum64()
}
