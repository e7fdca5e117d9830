package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/entities"
)

// ListingRepository 定义了帖子数据在 MySQL 中的持久化操作接口。
// 接口的设计旨在将数据访问逻辑与业务逻辑（服务层）解耦。
type ListingRepository interface {
	// CreateListing 持久化一个新的帖子记录。
	// - 这是帖子生命周期的起点，对应用户发布帖子的操作。
	// - 接收 db 参数以便在服务层事务中执行。
	CreateListing(ctx context.Context, db *gorm.DB, listing *entities.Listing) error

	// FetchPage 实现首页信息流的页码分页查询。
	// - 排序: created_at DESC，时间相同再按 id DESC 保证稳定。
	// - 行范围: [page*pageSize, page*pageSize+pageSize-1]，页码从 0 开始。
	// - 过滤链固定三段: show_in_homepage 等值、分类包含 (constant.CategoryAll 或空则跳过)、
	//   标题/描述不区分大小写的关键词子串匹配 (空则跳过)。
	FetchPage(ctx context.Context, query *dto.ListListingsQueryDTO) ([]*entities.Listing, error)

	// GetListingByID 根据单个 ID 检索帖子信息。
	// - 如果未找到帖子，返回 commonerrors.ErrRepoNotFound 错误。
	GetListingByID(ctx context.Context, id uint64) (*entities.Listing, error)

	// GetListingsByIDs 根据 ID 列表批量检索帖子。
	// - 服务于热门帖子等需要一次性加载多个已知 ID 的场景。
	GetListingsByIDs(ctx context.Context, ids []uint64) ([]*entities.Listing, error)

	// GetListingsByUserID 查询指定用户发布的全部帖子，按创建时间降序。
	// - 返回帖子列表及该用户持有的帖子总数。
	GetListingsByUserID(ctx context.Context, userID string) ([]*entities.Listing, int64, error)

	// CountByUserID 统计指定用户当前持有的帖子数量。
	// - 创建前的配额检查依赖此方法。
	CountByUserID(ctx context.Context, userID string) (int64, error)

	// UpdateListing 更新指定帖子的可编辑字段，传入 nil 表示不更新对应字段。
	// - 授权语义: WHERE 同时匹配 id 和 user_id，非本人的更新命中 0 行，
	//   返回 commonerrors.ErrRepoNotFound，不区分 "不存在" 与 "无权限"。
	UpdateListing(ctx context.Context, listingID uint64, ownerID string, update *dto.UpdateListingRequest) error

	// ToggleShowInHomepage 将指定帖子的首页可见性翻转为目标值。
	// - 与 UpdateListing 相同的 (id, user_id) 双列授权语义。
	ToggleShowInHomepage(ctx context.Context, listingID uint64, ownerID string, visible bool) error

	// DeleteListing 对指定帖子执行软删除，同样以 (id, user_id) 双列匹配授权。
	// - 接收 db 参数以便在服务层事务中执行。
	DeleteListing(ctx context.Context, db *gorm.DB, listingID uint64, ownerID string) error

	// ListAll 检索全部未删除的帖子，按创建时间降序。
	// - 服务于 store 的整表刷新，刷新结果作为权威集合整体取代旧状态。
	ListAll(ctx context.Context) ([]*entities.Listing, error)
}

// listingRepository 是 ListingRepository 接口针对 MySQL 的具体实现。
type listingRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewListingRepository 是 listingRepository 的构造函数。
func NewListingRepository(db *gorm.DB, logger *core.ZapLogger) ListingRepository {
	return &listingRepository{
		db:     db,
		logger: logger,
	}
}

// CreateListing 实现帖子的数据库插入操作。
func (r *listingRepository) CreateListing(ctx context.Context, db *gorm.DB, listing *entities.Listing) error {
	// 使用传入的 db 对象（通常是事务对象 tx）执行数据库操作。
	// GORM 会自动填充 BaseModel 中的 ID、CreatedAt 和 UpdatedAt。
	if err := db.WithContext(ctx).Create(listing).Error; err != nil {
		// 仓库层直接返回数据库错误，由服务层决定如何包装。
		return err
	}
	return nil
}

// FetchPage 实现首页信息流的分页查询。
func (r *listingRepository) FetchPage(ctx context.Context, params *dto.ListListingsQueryDTO) ([]*entities.Listing, error) {
	var listings []*entities.Listing

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
		r.logger.Warn("FetchPage 接收到的 PageSize 无效，使用默认值",
			zap.Int("receivedPageSize", params.PageSize),
			zap.Int("defaultPageSize", pageSize),
		)
	}

	// 基础查询: 只看首页可见的帖子。
	query := r.db.WithContext(ctx).
		Model(&entities.Listing{}).
		Where("show_in_homepage = ?", true)

	// 分类过滤: "全部" 标记或空串表示不过滤。
	// 分类列是 JSON 数组，包含判定用 JSON_CONTAINS。
	if params.Category != "" && params.Category != constant.CategoryAll {
		query = query.Where("JSON_CONTAINS(category, JSON_QUOTE(?))", params.Category)
	}

	// 关键词过滤: 标题或描述的不区分大小写子串匹配。
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	// 排序必须在范围截取之前固定，否则各页之间会互相重叠。
	query = query.Order("created_at DESC").Order("id DESC")

	// 页码换算为行偏移，页码从 0 开始。
	offset := params.Page * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&listings).Error; err != nil {
		r.logger.Error("分页获取帖子列表数据库查询失败",
			zap.Error(err),
			zap.Any("queryParams", params),
		)
		return nil, err
	}

	return listings, nil
}

// GetListingByID 实现根据单个 ID 获取帖子。
func (r *listingRepository) GetListingByID(ctx context.Context, id uint64) (*entities.Listing, error) {
	var listing entities.Listing

	// First 会自动添加 "WHERE id = ?" 和 "LIMIT 1" 条件，
	// 未找到时返回 gorm.ErrRecordNotFound。
	err := r.db.WithContext(ctx).First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("根据 ID 获取帖子未找到", zap.Uint64("listingID", id))
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取帖子数据库查询失败", zap.Uint64("listingID", id), zap.Error(err))
		return nil, err
	}

	return &listing, nil
}

// GetListingsByIDs 实现根据 ID 列表批量获取帖子。
func (r *listingRepository) GetListingsByIDs(ctx context.Context, ids []uint64) ([]*entities.Listing, error) {
	var listings []*entities.Listing

	if len(ids) == 0 {
		return listings, nil
	}

	// Find 会自动过滤软删除的记录。
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		r.logger.Error("根据 ID 列表批量获取帖子失败", zap.Error(err), zap.Int("id数量", len(ids)))
		return nil, err
	}

	return listings, nil
}

// GetListingsByUserID 实现用户帖子列表查询。
func (r *listingRepository) GetListingsByUserID(ctx context.Context, userID string) ([]*entities.Listing, int64, error) {
	var listings []*entities.Listing
	var totalCount int64

	// 先计数，再查列表。计数值同时用于配额展示。
	if err := r.db.WithContext(ctx).
		Model(&entities.Listing{}).
		Where("user_id = ?", userID).
		Count(&totalCount).Error; err != nil {
		r.logger.Error("获取用户帖子列表：计数查询失败",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, 0, fmt.Errorf("计数用户帖子失败: %w", err)
	}

	if totalCount == 0 {
		return listings, 0, nil
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&listings).Error; err != nil {
		r.logger.Error("获取用户帖子列表：列表查询失败",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, 0, fmt.Errorf("查询用户帖子列表失败: %w", err)
	}

	return listings, totalCount, nil
}

// CountByUserID 实现用户持有帖子数的统计。
func (r *listingRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Listing{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		r.logger.Error("统计用户帖子数量失败", zap.Error(err), zap.String("userID", userID))
		return 0, err
	}
	return count, nil
}

// UpdateListing 实现帖子可编辑字段的更新。
func (r *listingRepository) UpdateListing(ctx context.Context, listingID uint64, ownerID string, update *dto.UpdateListingRequest) error {
	updateMap := make(map[string]interface{})

	if update.Title != nil {
		updateMap["title"] = *update.Title
	}
	if update.Description != nil {
		updateMap["description"] = *update.Description
	}
	if update.Price != nil {
		updateMap["price"] = *update.Price
	}
	if update.Category != nil {
		updateMap["category"] = datatypes.JSONSlice[string](*update.Category)
	}
	if update.Images != nil {
		updateMap["images"] = datatypes.JSONSlice[string](*update.Images)
	}
	if update.ShowInHomepage != nil {
		updateMap["show_in_homepage"] = *update.ShowInHomepage
	}

	if len(updateMap) == 0 {
		r.logger.Info("没有提供任何有效的字段来更新帖子 (所有可选参数均为nil)",
			zap.Uint64("listingID", listingID),
		)
		return nil
	}

	// 总是更新 updated_at 字段
	updateMap["updated_at"] = time.Now()

	// 双列匹配: 非本人的请求在这里命中 0 行。
	result := r.db.WithContext(ctx).
		Model(&entities.Listing{}).
		Where("id = ? AND user_id = ?", listingID, ownerID).
		Updates(updateMap)

	if result.Error != nil {
		r.logger.Error("更新帖子数据库操作失败",
			zap.Error(result.Error),
			zap.Uint64("listingID", listingID),
			zap.Any("updateData", updateMap),
		)
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("尝试更新帖子但未命中记录 (不存在或非本人)",
			zap.Uint64("listingID", listingID),
			zap.String("ownerID", ownerID),
		)
		return commonerrors.ErrRepoNotFound
	}

	r.logger.Info("帖子信息更新成功", zap.Uint64("listingID", listingID))
	return nil
}

// ToggleShowInHomepage 实现首页可见性的更新。
func (r *listingRepository) ToggleShowInHomepage(ctx context.Context, listingID uint64, ownerID string, visible bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Listing{}).
		Where("id = ? AND user_id = ?", listingID, ownerID).
		Updates(map[string]interface{}{
			"show_in_homepage": visible,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("切换帖子首页可见性数据库操作失败",
			zap.Error(result.Error),
			zap.Uint64("listingID", listingID),
			zap.Bool("visible", visible),
		)
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("尝试切换帖子首页可见性但未命中记录 (不存在或非本人)",
			zap.Uint64("listingID", listingID),
			zap.String("ownerID", ownerID),
		)
		return commonerrors.ErrRepoNotFound
	}

	return nil
}

// DeleteListing 实现帖子的软删除。
// db 参数是执行此操作的数据库句柄 (可以是普通连接，也可以是事务 tx)。
func (r *listingRepository) DeleteListing(ctx context.Context, db *gorm.DB, listingID uint64, ownerID string) error {
	// entities.Listing 嵌入了 DeletedAt，Delete 实际执行软删除。
	result := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", listingID, ownerID).
		Delete(&entities.Listing{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// ListAll 实现整表检索。
func (r *listingRepository) ListAll(ctx context.Context) ([]*entities.Listing, error) {
	var listings []*entities.Listing

	if err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Find(&listings).Error; err != nil {
		r.logger.Error("检索全部帖子失败", zap.Error(err))
		return nil, err
	}

	return listings, nil
}
