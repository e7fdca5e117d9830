package service

import (
	"context"
	"sync"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/vo"
	"github.com/Xushengqwer/listing_service/myErrors"
)

// ListingFeed 是一份无限滚动信息流的状态机。
// - 每个会话持有一个实例，内部累积自第 0 页起加载的全部条目。
// - 筛选条件 (分类/关键词) 变更会重置到第 0 页并重新加载。
// - 代际计数 (generation): 每次筛选变更使代际 +1，加载结果带着发起时的
//   代际返回，安装前核对；代际已变的结果整体丢弃，保证旧筛选的数据
//   永远不会混入新筛选的列表。
type ListingFeed struct {
	mu       sync.Mutex
	svc      ListingService
	logger   *core.ZapLogger
	pageSize int

	category string
	search   string

	items          []*vo.ListingVO
	page           int
	hasMore        bool
	loadingInitial bool
	loadingMore    bool
	generation     uint64
}

// NewListingFeed 创建一个信息流状态机，初始为空且认为还有数据可加载。
func NewListingFeed(svc ListingService, pageSize int, category, search string, logger *core.ZapLogger) *ListingFeed {
	return &ListingFeed{
		svc:      svc,
		logger:   logger,
		pageSize: pageSize,
		category: category,
		search:   search,
		items:    []*vo.ListingVO{},
		page:     0,
		hasMore:  true,
	}
}

// LoadInitial 加载第 0 页，覆盖当前累积的条目。
// 会话打开时与筛选条件变更后调用。
func (f *ListingFeed) LoadInitial(ctx context.Context) error {
	f.mu.Lock()
	f.loadingInitial = true
	f.items = []*vo.ListingVO{}
	f.page = 0
	f.hasMore = true
	gen := f.generation
	query := &dto.ListListingsQueryDTO{
		Page:     0,
		PageSize: f.pageSize,
		Category: f.category,
		Search:   f.search,
	}
	f.mu.Unlock()

	pageVO, err := f.svc.GetListingsPage(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()

	// 加载期间筛选条件变了: 本次结果已过时，整体丢弃。
	// loadingInitial 不在这里清除，由取代本次加载的新一轮负责。
	if gen != f.generation {
		f.logger.Debug("信息流首屏加载结果已过时，丢弃", zap.Uint64("generation", gen))
		return myErrors.ErrStaleFeed
	}

	f.loadingInitial = false
	if err != nil {
		// 失败只清除加载标记，items/page/hasMore 保持原状，调用方可重试首屏。
		f.logger.Error("信息流首屏加载失败", zap.Error(err))
		return err
	}

	f.items = pageVO.Listings
	f.page = 0
	f.hasMore = pageVO.HasMore
	return nil
}

// LoadMore 追加加载下一页。
// - 首屏或追加加载进行中、或已确认没有更多数据时，本调用是无操作。
func (f *ListingFeed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loadingInitial || f.loadingMore || !f.hasMore {
		f.mu.Unlock()
		return nil
	}
	f.loadingMore = true
	gen := f.generation
	nextPage := f.page + 1
	query := &dto.ListListingsQueryDTO{
		Page:     nextPage,
		PageSize: f.pageSize,
		Category: f.category,
		Search:   f.search,
	}
	f.mu.Unlock()

	pageVO, err := f.svc.GetListingsPage(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		f.loadingMore = false
		f.logger.Debug("信息流追加加载结果已过时，丢弃", zap.Uint64("generation", gen), zap.Int("page", nextPage))
		return myErrors.ErrStaleFeed
	}

	f.loadingMore = false
	if err != nil {
		f.logger.Error("信息流追加加载失败", zap.Error(err), zap.Int("page", nextPage))
		return err
	}

	f.items = append(f.items, pageVO.Listings...)
	f.page = nextPage
	f.hasMore = pageVO.HasMore
	return nil
}

// SetCategory 更新分类并立即重新加载第 0 页。
func (f *ListingFeed) SetCategory(ctx context.Context, category string) error {
	f.mu.Lock()
	if f.category == category {
		f.mu.Unlock()
		return nil
	}
	f.category = category
	f.generation++
	f.mu.Unlock()

	return f.LoadInitial(ctx)
}

// SetSearch 更新关键词并立即重新加载第 0 页。
// 防抖由会话管理层负责，本方法收到的已是静默期后的最终值。
func (f *ListingFeed) SetSearch(ctx context.Context, search string) error {
	f.mu.Lock()
	if f.search == search {
		f.mu.Unlock()
		return nil
	}
	f.search = search
	f.generation++
	f.mu.Unlock()

	return f.LoadInitial(ctx)
}

// Snapshot 返回信息流的当前快照。
func (f *ListingFeed) Snapshot() *vo.FeedSnapshotVO {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]*vo.ListingVO, len(f.items))
	copy(items, f.items)

	return &vo.FeedSnapshotVO{
		Items:          items,
		Page:           f.page,
		HasMore:        f.hasMore,
		LoadingInitial: f.loadingInitial,
		LoadingMore:    f.loadingMore,
		Category:       f.category,
		Search:         f.search,
	}
}
