package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Xushengqwer/listing_service/config"
	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/dependencies"
	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/models/events"
	"github.com/Xushengqwer/listing_service/models/vo"
	"github.com/Xushengqwer/listing_service/mq/producer"
	"github.com/Xushengqwer/listing_service/myErrors"
	"github.com/Xushengqwer/listing_service/repo/mysql"
	"github.com/Xushengqwer/listing_service/repo/redis"
)

// ListingService 定义了处理帖子核心业务逻辑的接口。
type ListingService interface {
	// CreateListing 处理用户发布新帖子的业务流程。
	// - 校验顺序固定: 先字段校验，再配额校验，全部通过才上传图片和写库。
	//   校验失败时不会发起任何远程调用。
	// - 图片按接收顺序上传 COS，公开 URL 依次写入帖子。
	// - 成功创建后并入 store 投影，并异步发送 Kafka 创建事件。
	CreateListing(ctx context.Context, userID string, req *dto.CreateListingRequest, imageFiles []*multipart.FileHeader) (*vo.ListingVO, error)

	// UpdateListing 处理用户编辑帖子。
	// - 授权由网关层 (id, user_id) 双列匹配保证，非本人返回 ErrRepoNotFound。
	// - 成功后重新读取帖子并替换 store 投影。
	UpdateListing(ctx context.Context, listingID uint64, ownerID string, req *dto.UpdateListingRequest) (*vo.ListingVO, error)

	// ToggleVisibility 切换帖子的首页可见性。
	// - 与 UpdateListing 相同的授权语义。
	ToggleVisibility(ctx context.Context, listingID uint64, ownerID string, visible bool) (*vo.ListingVO, error)

	// GetListingsPage 分页浏览首页信息流，支持分类与关键词过滤。
	// - hasMore 由 "本页是否满页" 推导。
	GetListingsPage(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error)

	// GetListingDetail 获取单条帖子详情 (缓存优先)。
	// - 登录用户访问时异步增加浏览计数。
	GetListingDetail(ctx context.Context, listingID uint64, userID string) (*vo.ListingVO, error)

	// GetUserListings 获取当前用户的 "我的帖子" 列表及持有总数。
	// - 优先读 store 维护的用户投影，投影为空时先重建再读。
	GetUserListings(ctx context.Context, userID string) (*vo.UserListingsVO, error)

	// GetPopularListings 从 Redis 热榜取 Top N 帖子 ID，经缓存优先的批量路径补全数据。
	// - 热榜里已不存在的帖子 (刚被删除) 会被静默跳过。
	GetPopularListings(ctx context.Context, limit int) ([]*vo.ListingVO, error)

	// GetCategories 获取按名称升序的分类词表。
	GetCategories(ctx context.Context) (*vo.CategoryListVO, error)
}

// listingService 是 ListingService 接口的具体实现。
type listingService struct {
	listingRepo  mysql.ListingRepository
	categoryRepo mysql.CategoryRepository
	store        ListingStore
	cosClient    dependencies.COSClientInterface
	viewRepo     redis.ListingViewRepository
	db           *gorm.DB
	kafkaSvc     *producer.KafkaProducer
	logger       *core.ZapLogger
	rules        config.ListingRules
}

// NewListingService 是 listingService 的构造函数，通过依赖注入初始化服务实例。
// - 这种方式便于单元测试和组件替换。
func NewListingService(
	db *gorm.DB,
	listingRepo mysql.ListingRepository,
	categoryRepo mysql.CategoryRepository,
	store ListingStore,
	cosClient dependencies.COSClientInterface,
	viewRepo redis.ListingViewRepository,
	kafkaSvc *producer.KafkaProducer,
	logger *core.ZapLogger,
	rules config.ListingRules,
) ListingService {
	return &listingService{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		store:        store,
		cosClient:    cosClient,
		viewRepo:     viewRepo,
		db:           db,
		kafkaSvc:     kafkaSvc,
		logger:       logger,
		rules:        rules,
	}
}

// maxListingsPerUser 返回生效的配额上限。
func (s *listingService) maxListingsPerUser() int {
	if s.rules.MaxListingsPerUser > 0 {
		return s.rules.MaxListingsPerUser
	}
	return constant.DefaultMaxListingsPerUser
}

// defaultPageSize 返回生效的默认每页数量。
func (s *listingService) defaultPageSize() int {
	if s.rules.DefaultPageSize > 0 {
		return s.rules.DefaultPageSize
	}
	return constant.DefaultPageSize
}

// validateCreateRequest 在任何远程调用之前做字段校验。
func (s *listingService) validateCreateRequest(req *dto.CreateListingRequest, imageCount int) error {
	if strings.TrimSpace(req.Title) == "" {
		return myErrors.NewValidationError("title", "标题不能为空")
	}
	if strings.TrimSpace(req.Description) == "" {
		return myErrors.NewValidationError("description", "描述不能为空")
	}
	if req.Price < 0 {
		return myErrors.NewValidationError("price", "标价不能为负数")
	}
	if len(req.Category) == 0 {
		return myErrors.NewValidationError("category", "至少选择一个分类")
	}
	if imageCount == 0 {
		return myErrors.NewValidationError("images", "至少上传一张图片")
	}
	return nil
}

// generateListingImageObjectKey 创建一个唯一的 COS 对象键。
// 规则: listings/images/YYYYMMDD/userID_uuid.ext，userID 为 UUID 格式，可安全用于路径。
func (s *listingService) generateListingImageObjectKey(originalFilename string, userID string) string {
	datePrefix := time.Now().Format("20060102")
	randomUUID := uuid.NewString()
	extension := strings.ToLower(filepath.Ext(originalFilename))

	return fmt.Sprintf("%s%s/%s_%s%s",
		constant.COSObjectKeyPrefixListingImages,
		datePrefix,
		userID,
		randomUUID,
		extension,
	)
}

// CreateListing 处理用户创建新帖子的请求，包括图片上传和数据库操作。
func (s *listingService) CreateListing(ctx context.Context, userID string, req *dto.CreateListingRequest, imageFiles []*multipart.FileHeader) (*vo.ListingVO, error) {
	// 1. 字段校验，失败时不发起任何远程调用。
	if err := s.validateCreateRequest(req, len(imageFiles)); err != nil {
		s.logger.Warn("创建帖子字段校验失败", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	// 2. 配额校验: 持有数达到上限时直接拒绝。
	count, err := s.listingRepo.CountByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("创建帖子：配额校验查询失败", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("配额校验失败: %w", err)
	}
	if limit := int64(s.maxListingsPerUser()); count >= limit {
		s.logger.Warn("创建帖子：用户配额已满",
			zap.String("userID", userID),
			zap.Int64("current", count),
			zap.Int64("limit", limit),
		)
		return nil, myErrors.ErrQuotaExceeded
	}

	// 3. 图片按接收顺序上传到 COS。
	type uploadedImageInfo struct {
		ImageURL  string
		ObjectKey string
	}
	uploadedImages := make([]uploadedImageInfo, 0, len(imageFiles))

	for _, fileHeader := range imageFiles {
		file, err := fileHeader.Open()
		if err != nil {
			s.logger.Error("打开图片文件以上传失败",
				zap.String("filename", fileHeader.Filename),
				zap.Error(err))
			return nil, fmt.Errorf("打开图片文件 %s 失败: %w", fileHeader.Filename, err)
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
			s.logger.Warn("未提供图片的内容类型，使用默认值",
				zap.String("filename", fileHeader.Filename),
				zap.String("defaultContentType", contentType))
		}

		objectKey := s.generateListingImageObjectKey(fileHeader.Filename, userID)

		imageURL, err := s.cosClient.UploadFile(ctx, objectKey, file, fileHeader.Size, contentType)
		file.Close()
		if err != nil {
			s.logger.Error("上传图片到 COS 失败",
				zap.String("filename", fileHeader.Filename),
				zap.String("objectKey", objectKey),
				zap.Error(err))
			// 之前已上传成功的图片此时成为孤立文件，立即尽力清理。
			for _, imgInfo := range uploadedImages {
				if cleanupErr := s.cosClient.DeleteObject(context.Background(), imgInfo.ObjectKey); cleanupErr != nil {
					s.logger.Error("清理孤立的 COS 文件失败", zap.String("objectKey", imgInfo.ObjectKey), zap.Error(cleanupErr))
				}
			}
			return nil, fmt.Errorf("上传图片 %s 到 COS 失败: %w", fileHeader.Filename, err)
		}

		uploadedImages = append(uploadedImages, uploadedImageInfo{
			ImageURL:  imageURL,
			ObjectKey: objectKey,
		})
	}

	imageURLs := make([]string, len(uploadedImages))
	for i, imgInfo := range uploadedImages {
		imageURLs[i] = imgInfo.ImageURL
	}

	showInHomepage := true
	if req.ShowInHomepage != nil {
		showInHomepage = *req.ShowInHomepage
	}

	// 4. 在事务中创建帖子记录。
	var createdListing *entities.Listing
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing := &entities.Listing{
			Title:          strings.TrimSpace(req.Title),
			Description:    req.Description,
			Price:          req.Price,
			Category:       datatypes.JSONSlice[string](req.Category),
			Images:         datatypes.JSONSlice[string](imageURLs),
			UserID:         userID,
			ShowInHomepage: showInHomepage,
			ViewCount:      0,
		}
		if repoErr := s.listingRepo.CreateListing(ctx, tx, listing); repoErr != nil {
			return fmt.Errorf("创建帖子失败: %w", repoErr)
		}
		createdListing = listing
		return nil
	})

	if err != nil {
		s.logger.Error("创建帖子事务失败", zap.Error(err))
		// 数据库失败后已上传的图片成为孤立文件，尽力清理。
		for _, imgInfo := range uploadedImages {
			s.logger.Warn("由于数据库事务失败，尝试清理孤立的 COS 文件", zap.String("objectKey", imgInfo.ObjectKey))
			if cleanupErr := s.cosClient.DeleteObject(context.Background(), imgInfo.ObjectKey); cleanupErr != nil {
				s.logger.Error("清理孤立的 COS 文件失败", zap.String("objectKey", imgInfo.ObjectKey), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	// --- 事务成功 ---

	// 5. 并入 store 投影 (权威集合头部 + 用户投影 + 缓存)。
	s.store.ApplyCreated(createdListing)

	// 6. 异步发送 Kafka 创建事件。
	listingDataForKafka := events.ListingData{
		ID:             createdListing.ID,
		Title:          createdListing.Title,
		Description:    createdListing.Description,
		Price:          createdListing.Price,
		Category:       []string(createdListing.Category),
		Images:         []string(createdListing.Images),
		UserID:         createdListing.UserID,
		ShowInHomepage: createdListing.ShowInHomepage,
		CreatedAt:      createdListing.CreatedAt.UnixMilli(),
		UpdatedAt:      createdListing.UpdatedAt.UnixMilli(),
	}

	go func(ld events.ListingData) {
		bgCtx := context.Background()
		if kafkaErr := s.kafkaSvc.SendListingCreatedEvent(bgCtx, ld); kafkaErr != nil {
			s.logger.Error("发送 Kafka 帖子创建事件失败", zap.Error(kafkaErr), zap.Uint64("listing_id", ld.ID))
		} else {
			s.logger.Info("成功发送 Kafka 帖子创建事件", zap.Uint64("listing_id", ld.ID))
		}
	}(listingDataForKafka)

	return vo.NewListingVO(createdListing), nil
}

// UpdateListing 实现帖子编辑。
func (s *listingService) UpdateListing(ctx context.Context, listingID uint64, ownerID string, req *dto.UpdateListingRequest) (*vo.ListingVO, error) {
	// 1. 对传入的可选字段做与创建一致的形状校验。
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, myErrors.NewValidationError("title", "标题不能为空")
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return nil, myErrors.NewValidationError("description", "描述不能为空")
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, myErrors.NewValidationError("price", "标价不能为负数")
	}
	if req.Category != nil && len(*req.Category) == 0 {
		return nil, myErrors.NewValidationError("category", "至少选择一个分类")
	}
	if req.Images != nil && len(*req.Images) == 0 {
		return nil, myErrors.NewValidationError("images", "至少保留一张图片")
	}

	// 2. 网关层双列匹配更新，非本人命中 0 行。
	if err := s.listingRepo.UpdateListing(ctx, listingID, ownerID, req); err != nil {
		return nil, err
	}

	// 3. 重新读取更新后的帖子并替换投影。
	updated, err := s.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		s.logger.Error("更新后重新读取帖子失败", zap.Error(err), zap.Uint64("listingID", listingID))
		return nil, err
	}
	s.store.ApplyUpdated(updated)

	return vo.NewListingVO(updated), nil
}

// ToggleVisibility 实现首页可见性切换。
func (s *listingService) ToggleVisibility(ctx context.Context, listingID uint64, ownerID string, visible bool) (*vo.ListingVO, error) {
	if err := s.listingRepo.ToggleShowInHomepage(ctx, listingID, ownerID, visible); err != nil {
		return nil, err
	}

	updated, err := s.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		s.logger.Error("切换可见性后重新读取帖子失败", zap.Error(err), zap.Uint64("listingID", listingID))
		return nil, err
	}
	s.store.ApplyUpdated(updated)

	return vo.NewListingVO(updated), nil
}

// GetListingsPage 实现首页信息流的分页浏览。
func (s *listingService) GetListingsPage(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize()
	}
	if pageSize > constant.MaxPageSize {
		pageSize = constant.MaxPageSize
	}
	normalized := &dto.ListListingsQueryDTO{
		Page:     query.Page,
		PageSize: pageSize,
		Category: query.Category,
		Search:   query.Search,
	}

	listings, err := s.listingRepo.FetchPage(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &vo.ListingPageVO{
		Listings: vo.MapListingsToVOs(listings),
		Page:     normalized.Page,
		HasMore:  len(listings) == pageSize,
	}, nil
}

// GetListingDetail 实现缓存优先的详情获取，并在登录态下异步计浏览量。
func (s *listingService) GetListingDetail(ctx context.Context, listingID uint64, userID string) (*vo.ListingVO, error) {
	listing, err := s.store.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			s.logger.Warn("帖子详情未找到", zap.Uint64("listingID", listingID))
		} else {
			s.logger.Error("获取帖子详情失败", zap.Error(err), zap.Uint64("listingID", listingID))
		}
		return nil, err
	}

	if userID == "" {
		s.logger.Debug("未提供 UserID，跳过增加浏览量", zap.Uint64("listingID", listingID))
	} else {
		// 增加浏览量不应阻塞主流程，生命周期独立于原始请求。
		go func(lID uint64, uID string) {
			if redisErr := s.viewRepo.IncrementViewCount(context.Background(), lID, uID); redisErr != nil {
				s.logger.Error("异步增加浏览量失败",
					zap.Error(redisErr),
					zap.Uint64("listing_id", lID),
					zap.String("user_id", uID))
			}
		}(listingID, userID)
	}

	return vo.NewListingVO(listing), nil
}

// GetUserListings 实现 "我的帖子" 查询。
// 读的是 store 维护的用户投影，创建/更新/删除的级联维护在这里直接可见；
// 投影为空 (进程刚启动或用户首次访问) 时先重建一次再读。
func (s *listingService) GetUserListings(ctx context.Context, userID string) (*vo.UserListingsVO, error) {
	listings := s.store.UserListings(userID)
	if len(listings) == 0 {
		if err := s.store.RefreshUserListings(ctx, userID); err != nil {
			return nil, err
		}
		listings = s.store.UserListings(userID)
	}

	return &vo.UserListingsVO{
		Listings: vo.MapListingsToVOs(listings),
		Total:    int64(len(listings)),
	}, nil
}

// GetPopularListings 实现热门帖子查询。
func (s *listingService) GetPopularListings(ctx context.Context, limit int) ([]*vo.ListingVO, error) {
	if limit <= 0 {
		limit = s.defaultPageSize()
	}

	ids, err := s.viewRepo.GetTopListingIDs(ctx, limit)
	if err != nil {
		return nil, err
	}

	// 缓存未命中的 ID 由 store 合并为一次批量回源。热榜与 MySQL 之间
	// 存在同步窗口，刚被删除的帖子可能仍在榜上，批量结果中不会出现。
	listings, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return vo.MapListingsToVOs(listings), nil
}

// GetCategories 实现分类词表查询。
func (s *listingService) GetCategories(ctx context.Context) (*vo.CategoryListVO, error) {
	names, err := s.categoryRepo.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &vo.CategoryListVO{Categories: names}, nil
}
