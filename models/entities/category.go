package entities

import "github.com/Xushengqwer/go-common/models/entities"

// Category 分类词表实体
// - 使用场景: 帖子分类筛选栏与发帖表单的可选分类，作为查找表整体拉取
// - 表名: categories
// - 注意: 词表没有独立的生命周期管理，仅在种子数据或运维脚本中写入
type Category struct {
	entities.BaseModel

	// 分类名称，唯一
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}
