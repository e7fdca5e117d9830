package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/dependencies"
	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/mq/producer"
	"github.com/Xushengqwer/listing_service/myErrors"
	"github.com/Xushengqwer/listing_service/repo/cache"
	"github.com/Xushengqwer/listing_service/repo/mysql"
	"github.com/Xushengqwer/listing_service/repo/redis"
)

// ListingStore 是帖子数据的进程内权威持有者。
// - 持有两份投影: 全量帖子集合 (首页与搜索的数据源快照) 和按用户分组的
//   "我的帖子" 投影，两者都只能通过本对象的操作路径变更。
// - 单条详情走 TTL 缓存优先、未命中回源数据库的路径。
// - 进行中标记 (refreshing / deleting) 防止同一操作并发重入，
//   无论成败都在 defer 中清除。
type ListingStore interface {
	// Refresh 从数据库整表拉取并整体取代当前的权威集合。
	// - 已有刷新在进行时直接返回 nil，不排队不叠加。
	// - 成功后旧缓存整体作废，由新数据重建。
	Refresh(ctx context.Context) error

	// RefreshUserListings 重新拉取指定用户的 "我的帖子" 投影。
	// - 用户登录或切换后调用。用户为空串时清空不拉取。
	RefreshUserListings(ctx context.Context, userID string) error

	// GetByID 按缓存优先策略获取单条帖子。
	// - 缓存命中且未过期直接返回；否则回源数据库，成功后写回缓存。
	// - 帖子不存在返回 commonerrors.ErrRepoNotFound。
	GetByID(ctx context.Context, id uint64) (*entities.Listing, error)

	// GetByIDs 批量按缓存优先策略获取帖子，结果保持入参顺序。
	// - 先逐个查缓存，全部未命中的 ID 汇总为一次批量回源，回源结果写回缓存。
	// - 数据库中已不存在的 ID 被静默跳过，不视为错误。
	GetByIDs(ctx context.Context, ids []uint64) ([]*entities.Listing, error)

	// DeleteListing 删除指定帖子并清理其派生数据。
	// - 授权: 先按快照校验所有权，数据库删除再以 (id, user_id) 双列匹配兜底，
	//   非本人删除返回 ErrRepoNotFound。
	// - 顺序: 先逐张清理 COS 图片 (尽力而为，失败只记日志)，再删数据库行；
	//   行删除失败时图片可能已缺失，属于接受的不一致窗口。
	// - 成功后: 作废缓存条目、从两份投影中移除、清理 Redis 热榜、发送 Kafka 删除事件。
	// - 同一帖子已有删除在进行时返回 myErrors.ErrDeleteFailed。
	DeleteListing(ctx context.Context, listingID uint64, ownerID string) error

	// Listings 返回权威集合的当前快照 (按创建时间降序)。
	Listings() []*entities.Listing

	// SearchListings 在已加载的权威集合上做纯内存检索。
	// - 标题或描述的不区分大小写子串匹配，不发起任何远程查询。
	// - 与分页接口的数据库端检索互不替代: 这里只服务已加载数据的即时过滤。
	SearchListings(query string) []*entities.Listing

	// FilterByCategory 在已加载的权威集合上按分类做纯内存过滤。
	// - 分类为空或为 "全部" 标记时返回完整快照。
	FilterByCategory(category string) []*entities.Listing

	// UserListings 返回指定用户投影的当前快照。
	UserListings(userID string) []*entities.Listing

	// ApplyCreated 将新建的帖子并入两份投影并写入缓存。
	// - 创建事务提交成功后由服务层调用，新帖子插到集合头部。
	ApplyCreated(listing *entities.Listing)

	// ApplyUpdated 用更新后的帖子替换投影中的旧版本并覆盖缓存。
	ApplyUpdated(listing *entities.Listing)

	// IsRefreshing 报告整表刷新是否正在进行。
	IsRefreshing() bool

	// IsDeleting 报告指定帖子的删除是否正在进行。
	IsDeleting(listingID uint64) bool
}

// listingStore 是 ListingStore 接口的具体实现。
type listingStore struct {
	mu           sync.RWMutex
	listings     []*entities.Listing            // 权威集合，按创建时间降序
	userListings map[string][]*entities.Listing // 用户 -> "我的帖子" 投影
	refreshing   bool                           // 整表刷新进行中标记
	deleting     map[uint64]bool                // 帖子ID -> 删除进行中标记

	listingRepo  mysql.ListingRepository
	listingCache cache.ListingCache
	cosClient    dependencies.COSClientInterface
	viewRepo     redis.ListingViewRepository
	kafkaSvc     *producer.KafkaProducer
	logger       *core.ZapLogger

	// runInTx 在数据库事务中执行 fn，仓库方法按调用接收事务句柄。
	runInTx func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NewListingStore 是 listingStore 的构造函数，通过依赖注入初始化。
func NewListingStore(
	db *gorm.DB,
	listingRepo mysql.ListingRepository,
	listingCache cache.ListingCache,
	cosClient dependencies.COSClientInterface,
	viewRepo redis.ListingViewRepository,
	kafkaSvc *producer.KafkaProducer,
	logger *core.ZapLogger,
) ListingStore {
	return &listingStore{
		userListings: make(map[string][]*entities.Listing),
		deleting:     make(map[uint64]bool),
		listingRepo:  listingRepo,
		listingCache: listingCache,
		cosClient:    cosClient,
		viewRepo:     viewRepo,
		kafkaSvc:     kafkaSvc,
		logger:       logger,
		runInTx: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return db.WithContext(ctx).Transaction(fn)
		},
	}
}

// Refresh 实现整表刷新。
func (s *listingStore) Refresh(ctx context.Context) error {
	// 1. 抢占刷新标记，已有刷新在进行时直接返回。
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		s.logger.Debug("整表刷新已在进行中，跳过本次请求")
		return nil
	}
	s.refreshing = true
	s.mu.Unlock()

	// 标记无论成败都要清除。
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	// 2. 整表拉取。
	fresh, err := s.listingRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("整表刷新：从数据库拉取帖子失败", zap.Error(err))
		return fmt.Errorf("整表刷新失败: %w", err)
	}

	// 3. 整体取代: 新集合、重建用户投影、缓存作废后重建。
	userProjection := make(map[string][]*entities.Listing)
	for _, l := range fresh {
		userProjection[l.UserID] = append(userProjection[l.UserID], l)
	}

	s.mu.Lock()
	s.listings = fresh
	s.userListings = userProjection
	s.mu.Unlock()

	s.listingCache.Clear()
	for _, l := range fresh {
		s.listingCache.Put(l)
	}

	s.logger.Info("整表刷新完成", zap.Int("帖子总数", len(fresh)))
	return nil
}

// RefreshUserListings 实现用户投影的重建。
func (s *listingStore) RefreshUserListings(ctx context.Context, userID string) error {
	if userID == "" {
		// 登出: 不保留任何用户投影之外的状态。
		s.mu.Lock()
		s.userListings = make(map[string][]*entities.Listing)
		s.mu.Unlock()
		return nil
	}

	listings, _, err := s.listingRepo.GetListingsByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("重建用户帖子投影失败", zap.Error(err), zap.String("userID", userID))
		return err
	}

	s.mu.Lock()
	s.userListings[userID] = listings
	s.mu.Unlock()
	return nil
}

// GetByID 实现缓存优先的单条获取。
func (s *listingStore) GetByID(ctx context.Context, id uint64) (*entities.Listing, error) {
	// 1. 先查缓存。
	if cached, err := s.listingCache.Get(id); err == nil {
		s.logger.Debug("帖子缓存命中", zap.Uint64("listingID", id))
		return cached, nil
	} else if !errors.Is(err, myErrors.ErrCacheMiss) {
		// 当前实现只会返回 ErrCacheMiss，这里兜底记录未知错误。
		s.logger.Warn("帖子缓存读取返回未知错误，按未命中处理", zap.Error(err), zap.Uint64("listingID", id))
	}

	// 2. 未命中回源数据库。
	listing, err := s.listingRepo.GetListingByID(ctx, id)
	if err != nil {
		// 不存在的判定由数据库给出，缓存未命中不代表不存在。
		return nil, err
	}

	// 3. 回源成功后写回缓存。
	s.listingCache.Put(listing)
	return listing, nil
}

// GetByIDs 实现缓存优先的批量获取。
func (s *listingStore) GetByIDs(ctx context.Context, ids []uint64) ([]*entities.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found := make(map[uint64]*entities.Listing, len(ids))
	misses := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if cached, err := s.listingCache.Get(id); err == nil {
			found[id] = cached
		} else {
			misses = append(misses, id)
		}
	}

	// 未命中的 ID 合并为一次批量查询，缺失的行不会出现在结果中。
	if len(misses) > 0 {
		fetched, err := s.listingRepo.GetListingsByIDs(ctx, misses)
		if err != nil {
			return nil, err
		}
		for _, l := range fetched {
			s.listingCache.Put(l)
			found[l.ID] = l
		}
	}

	out := make([]*entities.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := found[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// DeleteListing 实现帖子删除与派生数据清理。
func (s *listingStore) DeleteListing(ctx context.Context, listingID uint64, ownerID string) error {
	// 1. 抢占该帖子的删除标记。
	s.mu.Lock()
	if s.deleting[listingID] {
		s.mu.Unlock()
		s.logger.Warn("帖子删除已在进行中，拒绝重复请求", zap.Uint64("listingID", listingID))
		return myErrors.ErrDeleteFailed
	}
	s.deleting[listingID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, listingID)
		s.mu.Unlock()
	}()

	// 2. 先取帖子快照，图片清理需要它的 URL 列表。
	listing, err := s.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			s.logger.Warn("尝试删除不存在的帖子", zap.Uint64("listingID", listingID))
		}
		return err
	}

	// 图片清理先于数据库删除执行，必须在这里就确认所有权，
	// 否则非本人的删除请求会在数据库拒绝之前就清掉别人的图片。
	// 与数据库双列匹配一致: 非本人与不存在不作区分。
	if listing.UserID != ownerID {
		s.logger.Warn("删除帖子所有权校验未通过",
			zap.Uint64("listingID", listingID), zap.String("ownerID", ownerID))
		return commonerrors.ErrRepoNotFound
	}

	// 3. 逐张清理 COS 图片。尽力而为: 单张失败只记日志，不中止后续清理。
	for _, imageURL := range listing.Images {
		objectKey, keyErr := s.cosClient.ObjectKeyFromPublicURL(imageURL)
		if keyErr != nil {
			s.logger.Warn("无法从图片 URL 反推对象键，跳过清理",
				zap.String("imageURL", imageURL), zap.Error(keyErr))
			continue
		}
		if delErr := s.cosClient.DeleteObject(ctx, objectKey); delErr != nil {
			s.logger.Warn("清理帖子图片 COS 对象失败",
				zap.String("objectKey", objectKey), zap.Error(delErr))
		}
	}

	// 4. 数据库软删除，(id, user_id) 双列匹配兜底授权。
	// 此时图片可能已被清掉: 若行删除失败，帖子仍可见但图片缺失，
	// 这是两个后端之间接受的不一致窗口，不做跨系统补偿。
	err = s.runInTx(ctx, func(tx *gorm.DB) error {
		return s.listingRepo.DeleteListing(ctx, tx, listingID, ownerID)
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			s.logger.Warn("删除帖子未命中记录 (不存在或非本人)",
				zap.Uint64("listingID", listingID), zap.String("ownerID", ownerID))
		} else {
			s.logger.Error("删除帖子数据库操作失败，图片可能已被提前清理",
				zap.Error(err), zap.Uint64("listingID", listingID))
		}
		return err
	}

	// 5. 作废缓存并从两份投影中移除。
	s.listingCache.Invalidate(listingID)
	s.removeFromProjections(listingID, listing.UserID)

	// 6. 清理 Redis 热榜与计数器 (尽力而为)。
	if rankErr := s.viewRepo.RemoveFromRank(ctx, listingID); rankErr != nil {
		s.logger.Warn("清理帖子热榜数据失败", zap.Error(rankErr), zap.Uint64("listingID", listingID))
	}

	// 7. 异步发送 Kafka 删除事件。
	go func(id uint64) {
		bgCtx := context.Background()
		if kafkaErr := s.kafkaSvc.SendListingDeletedEvent(bgCtx, id); kafkaErr != nil {
			s.logger.Error("发送 Kafka 帖子删除事件失败", zap.Error(kafkaErr), zap.Uint64("listing_id", id))
		}
	}(listingID)

	s.logger.Info("帖子删除处理完成", zap.Uint64("listingID", listingID))
	return nil
}

// removeFromProjections 从权威集合和用户投影中移除指定帖子。
func (s *listingStore) removeFromProjections(listingID uint64, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.listings[:0]
	for _, l := range s.listings {
		if l.ID != listingID {
			filtered = append(filtered, l)
		}
	}
	s.listings = filtered

	if userLs, ok := s.userListings[userID]; ok {
		userFiltered := userLs[:0]
		for _, l := range userLs {
			if l.ID != listingID {
				userFiltered = append(userFiltered, l)
			}
		}
		s.userListings[userID] = userFiltered
	}
}

// Listings 实现权威集合的快照读取。
func (s *listingStore) Listings() []*entities.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*entities.Listing, len(s.listings))
	copy(snapshot, s.listings)
	return snapshot
}

// SearchListings 实现内存内的关键词检索。
func (s *listingStore) SearchListings(query string) []*entities.Listing {
	if query == "" {
		return s.Listings()
	}
	needle := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*entities.Listing, 0)
	for _, l := range s.listings {
		if strings.Contains(strings.ToLower(l.Title), needle) ||
			strings.Contains(strings.ToLower(l.Description), needle) {
			matched = append(matched, l)
		}
	}
	return matched
}

// FilterByCategory 实现内存内的分类过滤。
func (s *listingStore) FilterByCategory(category string) []*entities.Listing {
	if category == "" || category == constant.CategoryAll {
		return s.Listings()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*entities.Listing, 0)
	for _, l := range s.listings {
		for _, c := range l.Category {
			if c == category {
				matched = append(matched, l)
				break
			}
		}
	}
	return matched
}

// UserListings 实现用户投影的快照读取。
func (s *listingStore) UserListings(userID string) []*entities.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userLs := s.userListings[userID]
	snapshot := make([]*entities.Listing, len(userLs))
	copy(snapshot, userLs)
	return snapshot
}

// ApplyCreated 实现新建帖子的投影并入。
func (s *listingStore) ApplyCreated(listing *entities.Listing) {
	if listing == nil {
		return
	}

	s.mu.Lock()
	// 集合按创建时间降序，新帖子插到头部。
	s.listings = append([]*entities.Listing{listing}, s.listings...)
	s.userListings[listing.UserID] = append([]*entities.Listing{listing}, s.userListings[listing.UserID]...)
	s.mu.Unlock()

	s.listingCache.Put(listing)
}

// ApplyUpdated 实现更新后帖子的投影替换。
func (s *listingStore) ApplyUpdated(listing *entities.Listing) {
	if listing == nil {
		return
	}

	s.mu.Lock()
	for i, l := range s.listings {
		if l.ID == listing.ID {
			s.listings[i] = listing
			break
		}
	}
	if userLs, ok := s.userListings[listing.UserID]; ok {
		for i, l := range userLs {
			if l.ID == listing.ID {
				userLs[i] = listing
				break
			}
		}
	}
	s.mu.Unlock()

	s.listingCache.Put(listing)
}

// IsRefreshing 实现刷新标记查询。
func (s *listingStore) IsRefreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// IsDeleting 实现删除标记查询。
func (s *listingStore) IsDeleting(listingID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deleting[listingID]
}
