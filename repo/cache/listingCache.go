package cache

import (
	"sync"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/myErrors"
)

// ListingCache 定义了帖子快照的进程内缓存接口。
// - 目标: 减少重复的单条详情回源查询。
// - 语义: Get 未命中 (不存在或已过期) 返回 myErrors.ErrCacheMiss，
//   表示 "缓存不知道"，而不是 "帖子不存在"——权威的不存在判定必须回源。
// - 生命周期: 实例由 ListingStore 持有并注入，所有变更都经由 store 的
//   操作路径，避免隐藏的跨实例共享状态。
type ListingCache interface {
	// Get 返回缓存的帖子快照，仅当条目存在且 now - fetchedAt < TTL。
	Get(id uint64) (*entities.Listing, error)

	// Put 无条件覆盖条目并盖上当前时间戳。
	// 单条回源与整表刷新都会调用。
	Put(listing *entities.Listing)

	// Invalidate 移除指定条目，帖子删除成功后调用。
	Invalidate(id uint64)

	// Clear 清空全部条目，整表刷新以新数据整体取代旧缓存时调用。
	Clear()

	// Len 返回当前条目数 (含已过期但未清理的条目)，仅用于观测。
	Len() int
}

// entry 是缓存内部条目: 帖子快照 + 写入时间。
type entry struct {
	listing   *entities.Listing
	fetchedAt time.Time
}

// listingCache 是 ListingCache 的内存实现。
// 不设容量上限——单个社区的帖子量级下可以接受；规模化后需要换成带淘汰的实现。
type listingCache struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	ttl     time.Duration
	now     func() time.Time // 可注入的时钟，便于在测试中推进时间
	logger  *core.ZapLogger
}

// NewListingCache 创建一个帖子内存缓存。
// - ttl <= 0 时由调用方负责传入默认值 (constant.ListingCacheTTL)。
func NewListingCache(ttl time.Duration, logger *core.ZapLogger) ListingCache {
	return &listingCache{
		entries: make(map[uint64]entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// NewListingCacheWithClock 与 NewListingCache 相同，但允许注入时钟。
// 用于测试中确定性地模拟 TTL 过期。
func NewListingCacheWithClock(ttl time.Duration, logger *core.ZapLogger, now func() time.Time) ListingCache {
	c := NewListingCache(ttl, logger).(*listingCache)
	c.now = now
	return c
}

// Get 实现带 TTL 判定的读取。
func (c *listingCache) Get(id uint64) (*entities.Listing, error) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil, myErrors.ErrCacheMiss
	}

	// 过期条目等同于未命中。这里不主动删除过期条目:
	// 随后的回源成功会用 Put 覆盖它，整表刷新会 Clear 掉它。
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		c.logger.Debug("帖子缓存条目已过期，按未命中处理",
			zap.Uint64("listingID", id),
			zap.Time("fetchedAt", e.fetchedAt),
		)
		return nil, myErrors.ErrCacheMiss
	}

	return e.listing, nil
}

// Put 实现无条件写入。
func (c *listingCache) Put(listing *entities.Listing) {
	if listing == nil {
		return
	}
	c.mu.Lock()
	c.entries[listing.ID] = entry{listing: listing, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate 实现单条移除。
func (c *listingCache) Invalidate(id uint64) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Clear 实现整体清空。
func (c *listingCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[uint64]entry)
	c.mu.Unlock()
}

// Len 返回条目数。
func (c *listingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
