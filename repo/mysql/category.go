package mysql

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/listing_service/models/entities"
)

// CategoryRepository 定义了分类词表的读取接口。
// 词表由运营侧维护，服务端只读，前端筛选器在词表之外自行追加 "全部" 项。
type CategoryRepository interface {
	// FetchCategories 返回按名称升序的全部分类名。
	FetchCategories(ctx context.Context) ([]string, error)
}

type categoryRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewCategoryRepository 是 categoryRepository 的构造函数。
func NewCategoryRepository(db *gorm.DB, logger *core.ZapLogger) CategoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

// FetchCategories 实现分类词表查询。
func (r *categoryRepository) FetchCategories(ctx context.Context) ([]string, error) {
	var names []string

	// Pluck 只取 name 列，词表量级很小，不做分页。
	if err := r.db.WithContext(ctx).
		Model(&entities.Category{}).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		r.logger.Error("获取分类词表失败", zap.Error(err))
		return nil, err
	}

	return names, nil
}
