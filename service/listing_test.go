package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/listing_service/config"
	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/myErrors"
)

func newTestListingService(t *testing.T, repo *fakeListingRepo, catRepo *fakeCategoryRepo, store *fakeStore, cosClient *fakeCOSClient, viewRepo *fakeViewRepo, rules config.ListingRules) ListingService {
	t.Helper()
	if repo == nil {
		repo = &fakeListingRepo{t: t}
	}
	if catRepo == nil {
		catRepo = &fakeCategoryRepo{}
	}
	if store == nil {
		store = &fakeStore{}
	}
	if cosClient == nil {
		cosClient = &fakeCOSClient{}
	}
	if viewRepo == nil {
		viewRepo = &fakeViewRepo{}
	}
	return NewListingService(nil, repo, catRepo, store, cosClient, viewRepo, nil, newTestLogger(t), rules)
}

func validCreateRequest() *dto.CreateListingRequest {
	return &dto.CreateListingRequest{
		Title:       "Lámpara de pie",
		Description: "Funciona perfectamente",
		Price:       25,
		Category:    []string{"Hogar"},
	}
}

// fakeImageHeaders 返回占位的图片文件头。
// 只用于通过数量校验的路径: 配额拒绝发生在 Open 之前，文件内容不会被读取。
func fakeImageHeaders(count int) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &multipart.FileHeader{Filename: "foto.jpg"})
	}
	return out
}

func TestCreateListing_ValidationRejectsBeforeAnyRemoteCall(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(req *dto.CreateListingRequest)
	}{
		{"标题为空", func(r *dto.CreateListingRequest) { r.Title = "   " }},
		{"描述为空", func(r *dto.CreateListingRequest) { r.Description = "" }},
		{"价格为负", func(r *dto.CreateListingRequest) { r.Price = -1 }},
		{"无分类", func(r *dto.CreateListingRequest) { r.Category = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// 仓库的所有方法都未设置: 任何远程调用都会使测试失败。
			cosClient := &fakeCOSClient{}
			svc := newTestListingService(t, nil, nil, nil, cosClient, nil, config.ListingRules{})

			req := validCreateRequest()
			tc.mutate(req)

			_, err := svc.CreateListing(context.Background(), "user-1", req, fakeImageHeaders(1))
			assert.True(t, myErrors.IsValidationError(err), "期望校验错误，实际: %v", err)
			assert.Zero(t, cosClient.uploadCalls)
		})
	}
}

func TestCreateListing_RejectsWithoutImages(t *testing.T) {
	svc := newTestListingService(t, nil, nil, nil, nil, nil, config.ListingRules{})

	_, err := svc.CreateListing(context.Background(), "user-1", validCreateRequest(), nil)
	assert.True(t, myErrors.IsValidationError(err))
}

func TestCreateListing_QuotaExceeded(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.countByUserIDFn = func(ctx context.Context, userID string) (int64, error) {
		return 5, nil
	}
	cosClient := &fakeCOSClient{}
	svc := newTestListingService(t, repo, nil, nil, cosClient, nil, config.ListingRules{MaxListingsPerUser: 5})

	_, err := svc.CreateListing(context.Background(), "user-1", validCreateRequest(), fakeImageHeaders(1))

	assert.ErrorIs(t, err, myErrors.ErrQuotaExceeded)
	// 配额拒绝发生在任何上传之前。
	assert.Zero(t, cosClient.uploadCalls)
}

func TestCreateListing_QuotaFallsBackToDefaultLimit(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.countByUserIDFn = func(ctx context.Context, userID string) (int64, error) {
		// 未配置上限时默认配额是 5。
		return 5, nil
	}
	svc := newTestListingService(t, repo, nil, nil, nil, nil, config.ListingRules{})

	_, err := svc.CreateListing(context.Background(), "user-1", validCreateRequest(), fakeImageHeaders(1))
	assert.ErrorIs(t, err, myErrors.ErrQuotaExceeded)
}

func TestCreateListing_UnderQuotaProceedsToUpload(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.countByUserIDFn = func(ctx context.Context, userID string) (int64, error) {
		return 2, nil
	}
	// 占位文件头没有底层文件，Open 会失败，上传在第一张图片处中止。
	// 这里只断言配额检查放行后确实进入了图片处理阶段。
	svc := newTestListingService(t, repo, nil, nil, nil, nil, config.ListingRules{MaxListingsPerUser: 5})

	_, err := svc.CreateListing(context.Background(), "user-1", validCreateRequest(), fakeImageHeaders(1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, myErrors.ErrQuotaExceeded)
	assert.False(t, myErrors.IsValidationError(err))
}

func TestUpdateListing_ValidationOnProvidedFields(t *testing.T) {
	svc := newTestListingService(t, nil, nil, nil, nil, nil, config.ListingRules{})

	empty := "  "
	_, err := svc.UpdateListing(context.Background(), 1, "user-1", &dto.UpdateListingRequest{Title: &empty})
	assert.True(t, myErrors.IsValidationError(err))

	negative := -3.0
	_, err = svc.UpdateListing(context.Background(), 1, "user-1", &dto.UpdateListingRequest{Price: &negative})
	assert.True(t, myErrors.IsValidationError(err))

	noImages := []string{}
	_, err = svc.UpdateListing(context.Background(), 1, "user-1", &dto.UpdateListingRequest{Images: &noImages})
	assert.True(t, myErrors.IsValidationError(err))
}

func TestUpdateListing_NotOwnerSurfacesNotFound(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.updateListingFn = func(ctx context.Context, listingID uint64, ownerID string, update *dto.UpdateListingRequest) error {
		// 双列匹配命中 0 行: 不存在与非本人不作区分。
		return commonerrors.ErrRepoNotFound
	}
	svc := newTestListingService(t, repo, nil, nil, nil, nil, config.ListingRules{})

	title := "Nuevo título"
	_, err := svc.UpdateListing(context.Background(), 1, "otro-usuario", &dto.UpdateListingRequest{Title: &title})
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
}

func TestUpdateListing_SuccessRefreshesProjection(t *testing.T) {
	updated := makeListing(7, "user-1")
	repo := &fakeListingRepo{t: t}
	repo.updateListingFn = func(ctx context.Context, listingID uint64, ownerID string, update *dto.UpdateListingRequest) error {
		return nil
	}
	repo.getListingByIDFn = func(ctx context.Context, id uint64) (*entities.Listing, error) {
		return updated, nil
	}
	store := &fakeStore{}
	svc := newTestListingService(t, repo, nil, store, nil, nil, config.ListingRules{})

	title := "Bicicleta eléctrica"
	got, err := svc.UpdateListing(context.Background(), 7, "user-1", &dto.UpdateListingRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	require.Len(t, store.updated, 1)
	assert.Same(t, updated, store.updated[0])
}

func TestToggleVisibility_SuccessRefreshesProjection(t *testing.T) {
	updated := makeListing(4, "user-1")
	updated.ShowInHomepage = false
	repo := &fakeListingRepo{t: t}
	repo.toggleShowInHomepageFn = func(ctx context.Context, listingID uint64, ownerID string, visible bool) error {
		assert.False(t, visible)
		return nil
	}
	repo.getListingByIDFn = func(ctx context.Context, id uint64) (*entities.Listing, error) {
		return updated, nil
	}
	store := &fakeStore{}
	svc := newTestListingService(t, repo, nil, store, nil, nil, config.ListingRules{})

	got, err := svc.ToggleVisibility(context.Background(), 4, "user-1", false)
	require.NoError(t, err)
	assert.False(t, got.ShowInHomepage)
	require.Len(t, store.updated, 1)
}

func TestGetListingsPage_HasMoreWhenPageIsFull(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.fetchPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) ([]*entities.Listing, error) {
		return makeListings(query.PageSize, "user-1"), nil
	}
	svc := newTestListingService(t, repo, nil, nil, nil, nil, config.ListingRules{})

	page, err := svc.GetListingsPage(context.Background(), &dto.ListListingsQueryDTO{Page: 0, PageSize: 10})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Len(t, page.Listings, 10)
}

func TestGetListingsPage_NoMoreWhenPagePartiallyFilled(t *testing.T) {
	repo := &fakeListingRepo{t: t}
	repo.fetchPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) ([]*entities.Listing, error) {
		return makeListings(3, "user-1"), nil
	}
	svc := newTestListingService(t, repo, nil, nil, nil, nil, config.ListingRules{})

	page, err := svc.GetListingsPage(context.Background(), &dto.ListListingsQueryDTO{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Equal(t, 2, page.Page)
}

func TestGetListingsPage_NormalizesPageSize(t *testing.T) {
	var seenPageSize int
	repo := &fakeListingRepo{t: t}
	repo.fetchPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) ([]*entities.Listing, error) {
		seenPageSize = query.PageSize
		return nil, nil
	}
	svc := newTestListingService(t, repo, nil, nil, nil, nil, config.ListingRules{DefaultPageSize: 15})

	_, err := svc.GetListingsPage(context.Background(), &dto.ListListingsQueryDTO{PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 15, seenPageSize)

	// 超过上限被压到 MaxPageSize。
	_, err = svc.GetListingsPage(context.Background(), &dto.ListListingsQueryDTO{PageSize: 9999})
	require.NoError(t, err)
	assert.Equal(t, 100, seenPageSize)
}

func TestGetListingDetail_AnonymousSkipsViewCount(t *testing.T) {
	listing := makeListing(3, "user-1")
	store := &fakeStore{getByIDFn: func(ctx context.Context, id uint64) (*entities.Listing, error) {
		return listing, nil
	}}
	viewRepo := &fakeViewRepo{incrementViewCountFn: func(ctx context.Context, listingID uint64, userID string) error {
		t.Error("匿名访问不应增加浏览量")
		return nil
	}}
	svc := newTestListingService(t, nil, nil, store, nil, viewRepo, config.ListingRules{})

	got, err := svc.GetListingDetail(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.ID)

	// 给潜在的异步误调用留出触发窗口。
	time.Sleep(50 * time.Millisecond)
}

func TestGetListingDetail_LoggedInIncrementsViewCountAsync(t *testing.T) {
	listing := makeListing(3, "user-1")
	store := &fakeStore{getByIDFn: func(ctx context.Context, id uint64) (*entities.Listing, error) {
		return listing, nil
	}}

	incremented := make(chan struct{}, 1)
	viewRepo := &fakeViewRepo{incrementViewCountFn: func(ctx context.Context, listingID uint64, userID string) error {
		assert.Equal(t, uint64(3), listingID)
		assert.Equal(t, "viewer-1", userID)
		incremented <- struct{}{}
		return nil
	}}
	svc := newTestListingService(t, nil, nil, store, nil, viewRepo, config.ListingRules{})

	_, err := svc.GetListingDetail(context.Background(), 3, "viewer-1")
	require.NoError(t, err)

	select {
	case <-incremented:
	case <-time.After(2 * time.Second):
		t.Fatal("浏览量计数未被调用")
	}
}

func TestGetListingDetail_NotFound(t *testing.T) {
	store := &fakeStore{getByIDFn: func(ctx context.Context, id uint64) (*entities.Listing, error) {
		return nil, commonerrors.ErrRepoNotFound
	}}
	svc := newTestListingService(t, nil, nil, store, nil, nil, config.ListingRules{})

	_, err := svc.GetListingDetail(context.Background(), 404, "viewer-1")
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
}

func TestGetPopularListings_SkipsMissingListings(t *testing.T) {
	viewRepo := &fakeViewRepo{getTopListingIDsFn: func(ctx context.Context, limit int) ([]uint64, error) {
		return []uint64{1, 2, 3}, nil
	}}
	var requested []uint64
	store := &fakeStore{getByIDsFn: func(ctx context.Context, ids []uint64) ([]*entities.Listing, error) {
		requested = ids
		// 刚被删除的帖子 2 可能仍在热榜上，批量结果中直接缺席。
		return []*entities.Listing{makeListing(1, "user-1"), makeListing(3, "user-1")}, nil
	}}
	svc := newTestListingService(t, nil, nil, store, nil, viewRepo, config.ListingRules{})

	got, err := svc.GetPopularListings(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, requested, "热榜 ID 应一次性批量补全")
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)
}

func TestGetPopularListings_PropagatesUnexpectedErrors(t *testing.T) {
	dbErr := errors.New("db down")
	viewRepo := &fakeViewRepo{getTopListingIDsFn: func(ctx context.Context, limit int) ([]uint64, error) {
		return []uint64{1}, nil
	}}
	store := &fakeStore{getByIDsFn: func(ctx context.Context, ids []uint64) ([]*entities.Listing, error) {
		return nil, dbErr
	}}
	svc := newTestListingService(t, nil, nil, store, nil, viewRepo, config.ListingRules{})

	_, err := svc.GetPopularListings(context.Background(), 1)
	assert.ErrorIs(t, err, dbErr)
}

func TestGetCategories(t *testing.T) {
	catRepo := &fakeCategoryRepo{fetchCategoriesFn: func(ctx context.Context) ([]string, error) {
		return []string{"Hogar", "Muebles"}, nil
	}}
	svc := newTestListingService(t, nil, catRepo, nil, nil, nil, config.ListingRules{})

	got, err := svc.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Hogar", "Muebles"}, got.Categories)
}

func TestGetUserListings_ServedFromProjection(t *testing.T) {
	store := &fakeStore{
		userListingsFn: func(userID string) []*entities.Listing {
			return makeListings(2, userID)
		},
		refreshUserListingsFn: func(ctx context.Context, userID string) error {
			t.Fatal("投影已有数据时不应重建")
			return nil
		},
	}
	svc := newTestListingService(t, nil, nil, store, nil, nil, config.ListingRules{})

	got, err := svc.GetUserListings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, got.Listings, 2)
	assert.Equal(t, int64(2), got.Total)
}

func TestGetUserListings_RebuildsEmptyProjection(t *testing.T) {
	// 首次访问: 投影为空，先重建一次再读。
	var rebuilt bool
	store := &fakeStore{}
	store.userListingsFn = func(userID string) []*entities.Listing {
		if !rebuilt {
			return nil
		}
		return makeListings(3, userID)
	}
	store.refreshUserListingsFn = func(ctx context.Context, userID string) error {
		assert.Equal(t, "user-1", userID)
		rebuilt = true
		return nil
	}
	svc := newTestListingService(t, nil, nil, store, nil, nil, config.ListingRules{})

	got, err := svc.GetUserListings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Len(t, got.Listings, 3)
	assert.Equal(t, int64(3), got.Total)
}
