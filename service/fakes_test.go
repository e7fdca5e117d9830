package service

import (
	"context"
	"io"
	"mime/multipart"
	"testing"

	sharedConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/require"
	"github.com/tencentyun/cos-go-sdk-v5"
	"gorm.io/gorm"

	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/models/vo"
)

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(sharedConfig.ZapConfig{})
	require.NoError(t, err)
	return logger
}

// ---- mysql.ListingRepository ----

// fakeListingRepo 以函数字段实现仓库接口，未设置的方法直接失败测试。
type fakeListingRepo struct {
	t *testing.T

	createListingFn        func(ctx context.Context, db *gorm.DB, listing *entities.Listing) error
	fetchPageFn            func(ctx context.Context, query *dto.ListListingsQueryDTO) ([]*entities.Listing, error)
	getListingByIDFn       func(ctx context.Context, id uint64) (*entities.Listing, error)
	getListingsByIDsFn     func(ctx context.Context, ids []uint64) ([]*entities.Listing, error)
	getListingsByUserIDFn  func(ctx context.Context, userID string) ([]*entities.Listing, int64, error)
	countByUserIDFn        func(ctx context.Context, userID string) (int64, error)
	updateListingFn        func(ctx context.Context, listingID uint64, ownerID string, update *dto.UpdateListingRequest) error
	toggleShowInHomepageFn func(ctx context.Context, listingID uint64, ownerID string, visible bool) error
	deleteListingFn        func(ctx context.Context, db *gorm.DB, listingID uint64, ownerID string) error
	listAllFn              func(ctx context.Context) ([]*entities.Listing, error)
}

func (f *fakeListingRepo) CreateListing(ctx context.Context, db *gorm.DB, listing *entities.Listing) error {
	if f.createListingFn == nil {
		f.t.Fatal("unexpected call: CreateListing")
	}
	return f.createListingFn(ctx, db, listing)
}

func (f *fakeListingRepo) FetchPage(ctx context.Context, query *dto.ListListingsQueryDTO) ([]*entities.Listing, error) {
	if f.fetchPageFn == nil {
		f.t.Fatal("unexpected call: FetchPage")
	}
	return f.fetchPageFn(ctx, query)
}

func (f *fakeListingRepo) GetListingByID(ctx context.Context, id uint64) (*entities.Listing, error) {
	if f.getListingByIDFn == nil {
		f.t.Fatal("unexpected call: GetListingByID")
	}
	return f.getListingByIDFn(ctx, id)
}

func (f *fakeListingRepo) GetListingsByIDs(ctx context.Context, ids []uint64) ([]*entities.Listing, error) {
	if f.getListingsByIDsFn == nil {
		f.t.Fatal("unexpected call: GetListingsByIDs")
	}
	return f.getListingsByIDsFn(ctx, ids)
}

func (f *fakeListingRepo) GetListingsByUserID(ctx context.Context, userID string) ([]*entities.Listing, int64, error) {
	if f.getListingsByUserIDFn == nil {
		f.t.Fatal("unexpected call: GetListingsByUserID")
	}
	return f.getListingsByUserIDFn(ctx, userID)
}

func (f *fakeListingRepo) CountByUserID(ctx context.Context, userID string) (int64, error) {
	if f.countByUserIDFn == nil {
		f.t.Fatal("unexpected call: CountByUserID")
	}
	return f.countByUserIDFn(ctx, userID)
}

func (f *fakeListingRepo) UpdateListing(ctx context.Context, listingID uint64, ownerID string, update *dto.UpdateListingRequest) error {
	if f.updateListingFn == nil {
		f.t.Fatal("unexpected call: UpdateListing")
	}
	return f.updateListingFn(ctx, listingID, ownerID, update)
}

func (f *fakeListingRepo) ToggleShowInHomepage(ctx context.Context, listingID uint64, ownerID string, visible bool) error {
	if f.toggleShowInHomepageFn == nil {
		f.t.Fatal("unexpected call: ToggleShowInHomepage")
	}
	return f.toggleShowInHomepageFn(ctx, listingID, ownerID, visible)
}

func (f *fakeListingRepo) DeleteListing(ctx context.Context, db *gorm.DB, listingID uint64, ownerID string) error {
	if f.deleteListingFn == nil {
		f.t.Fatal("unexpected call: DeleteListing")
	}
	return f.deleteListingFn(ctx, db, listingID, ownerID)
}

func (f *fakeListingRepo) ListAll(ctx context.Context) ([]*entities.Listing, error) {
	if f.listAllFn == nil {
		f.t.Fatal("unexpected call: ListAll")
	}
	return f.listAllFn(ctx)
}

// ---- mysql.CategoryRepository ----

type fakeCategoryRepo struct {
	fetchCategoriesFn func(ctx context.Context) ([]string, error)
}

func (f *fakeCategoryRepo) FetchCategories(ctx context.Context) ([]string, error) {
	return f.fetchCategoriesFn(ctx)
}

// ---- redis.ListingViewRepository ----

type fakeViewRepo struct {
	incrementViewCountFn func(ctx context.Context, listingID uint64, userID string) error
	getAllViewCountsFn   func(ctx context.Context) (map[uint64]int64, error)
	getTopListingIDsFn   func(ctx context.Context, limit int) ([]uint64, error)
	removeFromRankFn     func(ctx context.Context, listingID uint64) error
}

func (f *fakeViewRepo) IncrementViewCount(ctx context.Context, listingID uint64, userID string) error {
	if f.incrementViewCountFn == nil {
		return nil
	}
	return f.incrementViewCountFn(ctx, listingID, userID)
}

func (f *fakeViewRepo) GetAllViewCounts(ctx context.Context) (map[uint64]int64, error) {
	if f.getAllViewCountsFn == nil {
		return map[uint64]int64{}, nil
	}
	return f.getAllViewCountsFn(ctx)
}

func (f *fakeViewRepo) GetTopListingIDs(ctx context.Context, limit int) ([]uint64, error) {
	if f.getTopListingIDsFn == nil {
		return nil, nil
	}
	return f.getTopListingIDsFn(ctx, limit)
}

func (f *fakeViewRepo) RemoveFromRank(ctx context.Context, listingID uint64) error {
	if f.removeFromRankFn == nil {
		return nil
	}
	return f.removeFromRankFn(ctx, listingID)
}

// ---- dependencies.COSClientInterface ----

type fakeCOSClient struct {
	uploadCalls int
	deleteCalls []string

	uploadFileFn             func(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	objectKeyFromPublicURLFn func(publicURL string) (string, error)
}

func (f *fakeCOSClient) GetClient() *cos.Client { return nil }

func (f *fakeCOSClient) UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	f.uploadCalls++
	if f.uploadFileFn == nil {
		return "https://example.com/" + objectKey, nil
	}
	return f.uploadFileFn(ctx, objectKey, reader, size, contentType)
}

func (f *fakeCOSClient) DeleteObject(ctx context.Context, objectKey string) error {
	f.deleteCalls = append(f.deleteCalls, objectKey)
	return nil
}

func (f *fakeCOSClient) ObjectKeyFromPublicURL(publicURL string) (string, error) {
	if f.objectKeyFromPublicURLFn == nil {
		return publicURL, nil
	}
	return f.objectKeyFromPublicURLFn(publicURL)
}

// ---- ListingService (供信息流测试使用) ----

type fakeListingService struct {
	t *testing.T

	getListingsPageFn func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error)
}

func (f *fakeListingService) CreateListing(ctx context.Context, userID string, req *dto.CreateListingRequest, imageFiles []*multipart.FileHeader) (*vo.ListingVO, error) {
	f.t.Fatal("unexpected call: CreateListing")
	return nil, nil
}

func (f *fakeListingService) UpdateListing(ctx context.Context, listingID uint64, ownerID string, req *dto.UpdateListingRequest) (*vo.ListingVO, error) {
	f.t.Fatal("unexpected call: UpdateListing")
	return nil, nil
}

func (f *fakeListingService) ToggleVisibility(ctx context.Context, listingID uint64, ownerID string, visible bool) (*vo.ListingVO, error) {
	f.t.Fatal("unexpected call: ToggleVisibility")
	return nil, nil
}

func (f *fakeListingService) GetListingsPage(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
	if f.getListingsPageFn == nil {
		f.t.Fatal("unexpected call: GetListingsPage")
	}
	return f.getListingsPageFn(ctx, query)
}

func (f *fakeListingService) GetListingDetail(ctx context.Context, listingID uint64, userID string) (*vo.ListingVO, error) {
	f.t.Fatal("unexpected call: GetListingDetail")
	return nil, nil
}

func (f *fakeListingService) GetUserListings(ctx context.Context, userID string) (*vo.UserListingsVO, error) {
	f.t.Fatal("unexpected call: GetUserListings")
	return nil, nil
}

func (f *fakeListingService) GetPopularListings(ctx context.Context, limit int) ([]*vo.ListingVO, error) {
	f.t.Fatal("unexpected call: GetPopularListings")
	return nil, nil
}

func (f *fakeListingService) GetCategories(ctx context.Context) (*vo.CategoryListVO, error) {
	f.t.Fatal("unexpected call: GetCategories")
	return nil, nil
}

// ---- ListingStore (供服务层测试使用) ----

type fakeStore struct {
	applied []*entities.Listing
	updated []*entities.Listing

	getByIDFn             func(ctx context.Context, id uint64) (*entities.Listing, error)
	getByIDsFn            func(ctx context.Context, ids []uint64) ([]*entities.Listing, error)
	userListingsFn        func(userID string) []*entities.Listing
	refreshUserListingsFn func(ctx context.Context, userID string) error
}

func (f *fakeStore) Refresh(ctx context.Context) error { return nil }

func (f *fakeStore) RefreshUserListings(ctx context.Context, userID string) error {
	if f.refreshUserListingsFn == nil {
		return nil
	}
	return f.refreshUserListingsFn(ctx, userID)
}

func (f *fakeStore) GetByID(ctx context.Context, id uint64) (*entities.Listing, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeStore) GetByIDs(ctx context.Context, ids []uint64) ([]*entities.Listing, error) {
	return f.getByIDsFn(ctx, ids)
}

func (f *fakeStore) DeleteListing(ctx context.Context, listingID uint64, ownerID string) error {
	return nil
}

func (f *fakeStore) Listings() []*entities.Listing { return nil }

func (f *fakeStore) SearchListings(query string) []*entities.Listing { return nil }

func (f *fakeStore) FilterByCategory(category string) []*entities.Listing { return nil }

func (f *fakeStore) UserListings(userID string) []*entities.Listing {
	if f.userListingsFn == nil {
		return nil
	}
	return f.userListingsFn(userID)
}

func (f *fakeStore) ApplyCreated(listing *entities.Listing) {
	f.applied = append(f.applied, listing)
}

func (f *fakeStore) ApplyUpdated(listing *entities.Listing) {
	f.updated = append(f.updated, listing)
}

func (f *fakeStore) IsRefreshing() bool { return false }

func (f *fakeStore) IsDeleting(listingID uint64) bool { return false }

// ---- 实体构造辅助 ----

func makeListing(id uint64, userID string) *entities.Listing {
	l := &entities.Listing{
		Title:          "Bicicleta de montaña",
		Description:    "Poco uso",
		Price:          350,
		UserID:         userID,
		ShowInHomepage: true,
	}
	l.ID = id
	return l
}

func makeListings(count int, userID string) []*entities.Listing {
	out := make([]*entities.Listing, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, makeListing(uint64(i+1), userID))
	}
	return out
}
