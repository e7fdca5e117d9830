package service

import (
	"context"
	"testing"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/myErrors"
	"github.com/Xushengqwer/listing_service/repo/cache"
)

func newTestStore(t *testing.T, repo *fakeListingRepo) (*listingStore, cache.ListingCache) {
	t.Helper()
	if repo == nil {
		repo = &fakeListingRepo{t: t}
	}
	logger := newTestLogger(t)
	listingCache := cache.NewListingCache(time.Minute, logger)
	store := NewListingStore(nil, repo, listingCache, &fakeCOSClient{}, &fakeViewRepo{}, nil, logger).(*listingStore)
	return store, listingCache
}

func TestListingStore_RefreshReplacesProjections(t *testing.T) {
	fresh := []*entities.Listing{
		makeListing(3, "user-a"),
		makeListing(2, "user-b"),
		makeListing(1, "user-a"),
	}
	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return fresh, nil
	}
	store, listingCache := newTestStore(t, repo)

	require.NoError(t, store.Refresh(context.Background()))

	// 权威集合整体取代，保持数据库给出的降序。
	listings := store.Listings()
	require.Len(t, listings, 3)
	assert.Equal(t, uint64(3), listings[0].ID)

	// 用户投影按发布者重建。
	assert.Len(t, store.UserListings("user-a"), 2)
	assert.Len(t, store.UserListings("user-b"), 1)
	assert.Empty(t, store.UserListings("desconocido"))

	// 缓存由新数据整体重建。
	assert.Equal(t, 3, listingCache.Len())
	got, err := listingCache.Get(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.ID)

	assert.False(t, store.IsRefreshing())
}

func TestListingStore_RefreshSkipsWhenAlreadyRefreshing(t *testing.T) {
	// listAllFn 未设置: 有任何拉取都会失败测试。
	store, _ := newTestStore(t, nil)

	store.mu.Lock()
	store.refreshing = true
	store.mu.Unlock()

	assert.NoError(t, store.Refresh(context.Background()))
	assert.True(t, store.IsRefreshing())
}

func TestListingStore_RefreshClearsFlagOnError(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return nil, assert.AnError
	}
	store, _ := newTestStore(t, repo)

	assert.Error(t, store.Refresh(context.Background()))
	// 进行中标记无论成败都被清除。
	assert.False(t, store.IsRefreshing())
}

func TestListingStore_GetByIDCacheFirst(t *testing.T) {
	listing := makeListing(5, "user-1")
	repoCalls := 0
	repo := &fakeListingRepo{t: t}
	repo.getListingByIDFn = func(ctx context.Context, id uint64) (*entities.Listing, error) {
		repoCalls++
		return listing, nil
	}
	store, listingCache := newTestStore(t, repo)

	// 首次未命中，回源并写回缓存。
	got, err := store.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Same(t, listing, got)
	assert.Equal(t, 1, repoCalls)

	// 第二次直接命中缓存。
	_, err = store.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, repoCalls)

	// 作废后再次回源。
	listingCache.Invalidate(5)
	_, err = store.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, repoCalls)
}

func TestListingStore_GetByIDsBatchesCacheMisses(t *testing.T) {
	cached := makeListing(1, "user-a")
	var batchCalls [][]uint64
	repo := &fakeListingRepo{t: t}
	repo.getListingsByIDsFn = func(ctx context.Context, ids []uint64) ([]*entities.Listing, error) {
		batchCalls = append(batchCalls, ids)
		// 数据库中不存在 4，结果按 Find 的行为直接缺席。
		return []*entities.Listing{makeListing(2, "user-a"), makeListing(3, "user-b")}, nil
	}
	store, listingCache := newTestStore(t, repo)
	listingCache.Put(cached)

	got, err := store.GetByIDs(context.Background(), []uint64{1, 2, 3, 4})
	require.NoError(t, err)

	// 命中缓存的不回源，未命中的合并为一次批量查询。
	require.Len(t, batchCalls, 1)
	assert.Equal(t, []uint64{2, 3, 4}, batchCalls[0])

	// 结果保持入参顺序，缺失的 4 被静默跳过。
	require.Len(t, got, 3)
	assert.Same(t, cached, got[0])
	assert.Equal(t, uint64(2), got[1].ID)
	assert.Equal(t, uint64(3), got[2].ID)

	// 回源结果写回缓存。
	_, err = listingCache.Get(3)
	assert.NoError(t, err)
}

func TestListingStore_DeleteCascadeClearsDerivedState(t *testing.T) {
	target := makeListing(2, "user-a")
	target.Images = datatypes.JSONSlice[string]{
		"https://example.com/listings/images/a.jpg",
		"https://example.com/listings/images/b.jpg",
	}

	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return []*entities.Listing{makeListing(3, "user-a"), target, makeListing(1, "user-b")}, nil
	}
	repo.getListingByIDFn = func(ctx context.Context, id uint64) (*entities.Listing, error) {
		return target, nil
	}
	var deletedID uint64
	var deletedOwner string
	repo.deleteListingFn = func(ctx context.Context, db *gorm.DB, listingID uint64, ownerID string) error {
		deletedID = listingID
		deletedOwner = ownerID
		return nil
	}

	var rankRemoved []uint64
	viewRepo := &fakeViewRepo{removeFromRankFn: func(ctx context.Context, listingID uint64) error {
		rankRemoved = append(rankRemoved, listingID)
		return nil
	}}
	cosClient := &fakeCOSClient{}
	logger := newTestLogger(t)
	listingCache := cache.NewListingCache(time.Minute, logger)
	store := NewListingStore(nil, repo, listingCache, cosClient, viewRepo, nil, logger).(*listingStore)
	store.runInTx = func(ctx context.Context, fn func(tx *gorm.DB) error) error {
		return fn(nil)
	}

	require.NoError(t, store.Refresh(context.Background()))
	_, err := listingCache.Get(2)
	require.NoError(t, err, "删除前缓存应持有该帖子")

	require.NoError(t, store.DeleteListing(context.Background(), 2, "user-a"))

	// 数据库删除带着 (id, owner) 双列条件。
	assert.Equal(t, uint64(2), deletedID)
	assert.Equal(t, "user-a", deletedOwner)

	// 缓存条目已作废。
	_, err = listingCache.Get(2)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)

	// 权威集合与用户投影都不再包含该帖子。
	listings := store.Listings()
	require.Len(t, listings, 2)
	assert.Equal(t, uint64(3), listings[0].ID)
	assert.Equal(t, uint64(1), listings[1].ID)
	userLs := store.UserListings("user-a")
	require.Len(t, userLs, 1)
	assert.Equal(t, uint64(3), userLs[0].ID)

	// 图片逐张清理，热榜条目移除，删除标记已清。
	assert.Len(t, cosClient.deleteCalls, 2)
	assert.Equal(t, []uint64{2}, rankRemoved)
	assert.False(t, store.IsDeleting(2))
}

func TestListingStore_DeleteRejectsConcurrentDelete(t *testing.T) {
	// 仓库方法未设置: 重入拒绝必须发生在任何远程调用之前。
	store, _ := newTestStore(t, nil)

	store.mu.Lock()
	store.deleting[9] = true
	store.mu.Unlock()

	err := store.DeleteListing(context.Background(), 9, "user-1")
	assert.ErrorIs(t, err, myErrors.ErrDeleteFailed)
	assert.True(t, store.IsDeleting(9), "已有的删除标记不得被本次拒绝清除")
}

func TestListingStore_DeleteRejectsNonOwnerBeforeCleanup(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.getListingByIDFn = func(ctx context.Context, id uint64) (*entities.Listing, error) {
		return makeListing(id, "dueño-real"), nil
	}
	logger := newTestLogger(t)
	cosClient := &fakeCOSClient{}
	store := NewListingStore(nil, repo, cache.NewListingCache(time.Minute, logger), cosClient, &fakeViewRepo{}, nil, logger).(*listingStore)

	err := store.DeleteListing(context.Background(), 9, "otro-usuario")
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
	// 所有权校验失败时不得清理任何图片。
	assert.Empty(t, cosClient.deleteCalls)
	assert.False(t, store.IsDeleting(9))
}

func TestListingStore_ApplyCreatedPrepends(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return []*entities.Listing{makeListing(1, "user-a")}, nil
	}
	store, listingCache := newTestStore(t, repo)
	require.NoError(t, store.Refresh(context.Background()))

	created := makeListing(2, "user-a")
	store.ApplyCreated(created)

	listings := store.Listings()
	require.Len(t, listings, 2)
	assert.Equal(t, uint64(2), listings[0].ID, "新帖子应插到集合头部")

	userLs := store.UserListings("user-a")
	require.Len(t, userLs, 2)
	assert.Equal(t, uint64(2), userLs[0].ID)

	_, err := listingCache.Get(2)
	assert.NoError(t, err)
}

func TestListingStore_ApplyUpdatedReplacesInPlace(t *testing.T) {
	original := makeListing(1, "user-a")
	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return []*entities.Listing{original}, nil
	}
	store, listingCache := newTestStore(t, repo)
	require.NoError(t, store.Refresh(context.Background()))

	updated := makeListing(1, "user-a")
	updated.Title = "Título corregido"
	store.ApplyUpdated(updated)

	listings := store.Listings()
	require.Len(t, listings, 1)
	assert.Equal(t, "Título corregido", listings[0].Title)

	userLs := store.UserListings("user-a")
	require.Len(t, userLs, 1)
	assert.Equal(t, "Título corregido", userLs[0].Title)

	got, err := listingCache.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Título corregido", got.Title)
}

func TestListingStore_RemoveFromProjections(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return []*entities.Listing{
			makeListing(2, "user-a"),
			makeListing(1, "user-a"),
		}, nil
	}
	store, _ := newTestStore(t, repo)
	require.NoError(t, store.Refresh(context.Background()))

	store.removeFromProjections(2, "user-a")

	listings := store.Listings()
	require.Len(t, listings, 1)
	assert.Equal(t, uint64(1), listings[0].ID)
	assert.Len(t, store.UserListings("user-a"), 1)
}

func TestListingStore_SearchListingsInMemory(t *testing.T) {
	sofa := makeListing(1, "user-a")
	sofa.Title = "Sofá de tres plazas"
	bike := makeListing(2, "user-b")
	bike.Description = "Bicicleta con sofá incluido, es broma"
	lamp := makeListing(3, "user-a")
	lamp.Title = "Lámpara de pie"
	lamp.Description = "Luz cálida"

	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return []*entities.Listing{sofa, bike, lamp}, nil
	}
	store, _ := newTestStore(t, repo)
	require.NoError(t, store.Refresh(context.Background()))

	// 标题或描述均参与匹配，大小写不敏感。
	matched := store.SearchListings("SOFÁ")
	require.Len(t, matched, 2)
	assert.Equal(t, uint64(1), matched[0].ID)
	assert.Equal(t, uint64(2), matched[1].ID)

	assert.Empty(t, store.SearchListings("nevera"))
	// 空关键词返回完整快照，不发起任何查询。
	assert.Len(t, store.SearchListings(""), 3)
}

func TestListingStore_FilterByCategoryInMemory(t *testing.T) {
	furniture := makeListing(1, "user-a")
	furniture.Category = datatypes.JSONSlice[string]{"Muebles", "Hogar"}
	toy := makeListing(2, "user-b")
	toy.Category = datatypes.JSONSlice[string]{"Juguetes"}

	repo := &fakeListingRepo{t: t}
	repo.listAllFn = func(ctx context.Context) ([]*entities.Listing, error) {
		return []*entities.Listing{furniture, toy}, nil
	}
	store, _ := newTestStore(t, repo)
	require.NoError(t, store.Refresh(context.Background()))

	matched := store.FilterByCategory("Hogar")
	require.Len(t, matched, 1)
	assert.Equal(t, uint64(1), matched[0].ID)

	// "全部" 标记与空串都表示不过滤。
	assert.Len(t, store.FilterByCategory(constant.CategoryAll), 2)
	assert.Len(t, store.FilterByCategory(""), 2)
	assert.Empty(t, store.FilterByCategory("Coches"))
}

func TestListingStore_RefreshUserListings(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.getListingsByUserIDFn = func(ctx context.Context, userID string) ([]*entities.Listing, int64, error) {
		return makeListings(2, userID), 2, nil
	}
	store, _ := newTestStore(t, repo)

	require.NoError(t, store.RefreshUserListings(context.Background(), "user-a"))
	assert.Len(t, store.UserListings("user-a"), 2)

	// 空用户 (登出) 清空全部用户投影，不发起查询。
	repo.getListingsByUserIDFn = func(ctx context.Context, userID string) ([]*entities.Listing, int64, error) {
		t.Fatal("登出路径不应发起查询")
		return nil, 0, nil
	}
	require.NoError(t, store.RefreshUserListings(context.Background(), ""))
	assert.Empty(t, store.UserListings("user-a"))
}
