package entities

import (
	"github.com/Xushengqwer/go-common/models/entities"
	"gorm.io/datatypes"
)

// Listing 帖子实体
// - 使用场景: 社区二手集市的单条帖子，列表页与详情页共用同一张表
// - 表名: listings (GORM 默认使用结构体名复数形式)
type Listing struct {
	entities.BaseModel // 嵌入自定义的 BaseModel ,包含 ID, CreatedAt, UpdatedAt, DeletedAt，支持软删除

	// 标题，必填，最大长度255个字符
	// - GORM 标签: type:varchar(255) 指定数据库类型，not null 表示非空
	Title string `gorm:"type:varchar(255);not null"`

	// 描述，支持多行文本
	// - 类型: text，适合较长的帖子描述，保留换行符由前端渲染
	Description string `gorm:"type:text;not null"`

	// 价格，存储帖子标价（单位：元）
	// - GORM 标签: type:decimal(10,2) 指定数据库类型，default:0 设置默认值
	// - 约束: 业务上要求非负，由服务层在写入前校验
	Price float64 `gorm:"type:decimal(10,2);default:0"`

	// 分类标签集合，取值来自 categories 词表
	// - 类型: JSON 数组，例如 ["Muebles","Hogar"]
	// - 查询: 分类筛选使用 JSON_CONTAINS，见 repo/mysql/listing.go
	// - 约束: 合法帖子至少包含一个分类，由服务层校验
	Category datatypes.JSONSlice[string] `gorm:"type:json;not null"`

	// 图片公开访问 URL 的有序列表
	// - 类型: JSON 数组。URL 由对象存储(COS)上传后返回，本服务视为不透明字符串
	// - 约束: 对外可见的帖子至少包含一张图片，由服务层校验
	// - 注意: 删除帖子时会按 URL 反推对象键并逐张清理 COS 文件 (尽力而为)
	Images datatypes.JSONSlice[string] `gorm:"type:json;not null"`

	// 发布者用户ID，关联用户服务，创建后不可变更
	// - 类型: char(36)，用户ID为UUID格式（36个字符）
	// - 授权: 编辑/删除/切换可见性均以 (id, user_id) 双列匹配实现，
	//   非本人操作命中 0 行，不依赖应用层判断
	UserID string `gorm:"type:char(36);not null;index"`

	// 是否在首页展示，发布者可独立开关
	// - 首页信息流查询固定带 show_in_homepage = true 过滤
	ShowInHomepage bool `gorm:"default:true"`

	// 浏览量，统计帖子的浏览次数
	// - 实时计数在 Redis 中累积，由定时任务批量回写本列，
	//   因此该值是同步周期粒度的快照
	ViewCount int64 `gorm:"type:bigint;default:0"`
}
