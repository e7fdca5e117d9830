package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/vo"
	"github.com/Xushengqwer/listing_service/myErrors"
)

// pageOf 构造一个包含 count 条条目的页面结果。
func pageOf(count, page int, hasMore bool) *vo.ListingPageVO {
	items := make([]*vo.ListingVO, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, &vo.ListingVO{ID: uint64(page*100 + i + 1)})
	}
	return &vo.ListingPageVO{Listings: items, Page: page, HasMore: hasMore}
}

func TestListingFeed_LoadInitialPopulatesItems(t *testing.T) {
	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		assert.Equal(t, 0, query.Page)
		assert.Equal(t, 10, query.PageSize)
		return pageOf(10, 0, true), nil
	}
	feed := NewListingFeed(svc, 10, "", "", newTestLogger(t))

	require.NoError(t, feed.LoadInitial(context.Background()))

	snap := feed.Snapshot()
	assert.Len(t, snap.Items, 10)
	assert.Equal(t, 0, snap.Page)
	assert.True(t, snap.HasMore)
	assert.False(t, snap.LoadingInitial)
}

func TestListingFeed_LoadMoreAppends(t *testing.T) {
	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		if query.Page == 0 {
			return pageOf(10, 0, true), nil
		}
		// 第二页不满: 到达末尾。
		return pageOf(4, 1, false), nil
	}
	feed := NewListingFeed(svc, 10, "", "", newTestLogger(t))

	require.NoError(t, feed.LoadInitial(context.Background()))
	require.NoError(t, feed.LoadMore(context.Background()))

	snap := feed.Snapshot()
	assert.Len(t, snap.Items, 14)
	assert.Equal(t, 1, snap.Page)
	assert.False(t, snap.HasMore)

	// 已确认没有更多数据，追加加载是无操作。
	require.NoError(t, feed.LoadMore(context.Background()))
	assert.Len(t, feed.Snapshot().Items, 14)
}

func TestListingFeed_TwoPerPageFiveItemsAccumulation(t *testing.T) {
	// 五条帖子按创建时间降序为 E,D,C,B,A，每页 2 条分三页取完。
	pages := [][]string{{"E", "D"}, {"C", "B"}, {"A"}}
	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		require.Less(t, query.Page, len(pages), "第三页之后不应再有请求")
		items := make([]*vo.ListingVO, 0, 2)
		for i, title := range pages[query.Page] {
			items = append(items, &vo.ListingVO{ID: uint64(query.Page*2 + i + 1), Title: title})
		}
		return &vo.ListingPageVO{
			Listings: items,
			Page:     query.Page,
			HasMore:  len(items) == query.PageSize,
		}, nil
	}
	feed := NewListingFeed(svc, 2, "", "", newTestLogger(t))

	titlesOf := func() []string {
		snap := feed.Snapshot()
		out := make([]string, 0, len(snap.Items))
		for _, item := range snap.Items {
			out = append(out, item.Title)
		}
		return out
	}

	require.NoError(t, feed.LoadInitial(context.Background()))
	assert.Equal(t, []string{"E", "D"}, titlesOf())
	assert.True(t, feed.Snapshot().HasMore)

	require.NoError(t, feed.LoadMore(context.Background()))
	assert.Equal(t, []string{"E", "D", "C", "B"}, titlesOf())
	assert.True(t, feed.Snapshot().HasMore)

	require.NoError(t, feed.LoadMore(context.Background()))
	assert.Equal(t, []string{"E", "D", "C", "B", "A"}, titlesOf())
	assert.False(t, feed.Snapshot().HasMore)

	// 数据已取尽，再次追加是无操作。
	require.NoError(t, feed.LoadMore(context.Background()))
	assert.Equal(t, []string{"E", "D", "C", "B", "A"}, titlesOf())
}

func TestListingFeed_LoadMoreNoopWhileLoading(t *testing.T) {
	svc := &fakeListingService{t: t} // getListingsPageFn 未设置: 任何调用都会失败测试
	feed := NewListingFeed(svc, 10, "", "", newTestLogger(t))

	feed.mu.Lock()
	feed.loadingInitial = true
	feed.mu.Unlock()
	require.NoError(t, feed.LoadMore(context.Background()))

	feed.mu.Lock()
	feed.loadingInitial = false
	feed.loadingMore = true
	feed.mu.Unlock()
	require.NoError(t, feed.LoadMore(context.Background()))
}

func TestListingFeed_StaleInitialLoadIsDiscarded(t *testing.T) {
	feed := &ListingFeed{}
	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		// 加载进行期间筛选条件被变更: 模拟并发的 SetSearch。
		feed.mu.Lock()
		feed.generation++
		feed.mu.Unlock()
		return pageOf(10, 0, true), nil
	}
	*feed = ListingFeed{
		svc:      svc,
		logger:   newTestLogger(t),
		pageSize: 10,
		items:    []*vo.ListingVO{},
		hasMore:  true,
	}

	err := feed.LoadInitial(context.Background())
	assert.ErrorIs(t, err, myErrors.ErrStaleFeed)

	// 过时结果不得安装。
	snap := feed.Snapshot()
	assert.Empty(t, snap.Items)
}

func TestListingFeed_StaleLoadMoreIsDiscarded(t *testing.T) {
	feed := &ListingFeed{}
	svc := &fakeListingService{t: t}
	calls := 0
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		calls++
		if query.Page == 0 {
			return pageOf(10, 0, true), nil
		}
		feed.mu.Lock()
		feed.generation++
		feed.mu.Unlock()
		return pageOf(10, 1, true), nil
	}
	*feed = ListingFeed{
		svc:      svc,
		logger:   newTestLogger(t),
		pageSize: 10,
		items:    []*vo.ListingVO{},
		hasMore:  true,
	}

	require.NoError(t, feed.LoadInitial(context.Background()))
	err := feed.LoadMore(context.Background())
	assert.ErrorIs(t, err, myErrors.ErrStaleFeed)

	snap := feed.Snapshot()
	assert.Len(t, snap.Items, 10, "过时的第二页不得追加")
	assert.Equal(t, 0, snap.Page)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestListingFeed_SetCategoryReloadsFromPageZero(t *testing.T) {
	var lastQuery *dto.ListListingsQueryDTO
	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		lastQuery = query
		return pageOf(5, query.Page, false), nil
	}
	feed := NewListingFeed(svc, 10, "", "", newTestLogger(t))
	require.NoError(t, feed.LoadInitial(context.Background()))

	require.NoError(t, feed.SetCategory(context.Background(), "Muebles"))

	require.NotNil(t, lastQuery)
	assert.Equal(t, "Muebles", lastQuery.Category)
	assert.Equal(t, 0, lastQuery.Page)
	assert.Equal(t, "Muebles", feed.Snapshot().Category)
}

func TestListingFeed_SetCategoryUnchangedIsNoop(t *testing.T) {
	svc := &fakeListingService{t: t} // 未设置: 任何查询都会失败测试
	feed := NewListingFeed(svc, 10, "Hogar", "", newTestLogger(t))

	require.NoError(t, feed.SetCategory(context.Background(), "Hogar"))
}

func TestListingFeed_SetSearchUnchangedIsNoop(t *testing.T) {
	svc := &fakeListingService{t: t}
	feed := NewListingFeed(svc, 10, "", "sofa", newTestLogger(t))

	require.NoError(t, feed.SetSearch(context.Background(), "sofa"))
}

func TestListingFeed_LoadInitialErrorOnlyClearsLoadingFlag(t *testing.T) {
	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		return nil, assert.AnError
	}
	feed := NewListingFeed(svc, 10, "", "", newTestLogger(t))

	err := feed.LoadInitial(context.Background())
	assert.Error(t, err)

	// 失败只清除加载标记，其余状态不动: hasMore 保持初始的 true，重试仍然可行。
	snap := feed.Snapshot()
	assert.Empty(t, snap.Items)
	assert.False(t, snap.LoadingInitial)
	assert.True(t, snap.HasMore)
}
