package constant

import "time"

// 服务标识，用于追踪与日志。
const (
	ServiceName    = "listing_service"
	ServiceVersion = "1.0.0"
)

// 帖子业务相关常量
const (
	// CategoryAll 是分类筛选器中 "全部" 项的标记值。
	// 词表本身不包含该项，查询收到它时跳过分类过滤。
	CategoryAll = "Todos"

	// ListingCacheTTL 是帖子内存缓存条目的默认存活时长。
	ListingCacheTTL = 5 * time.Minute

	// DefaultPageSize 是分页接口的默认每页数量。
	DefaultPageSize = 10

	// MaxPageSize 是分页接口允许的每页数量上限。
	MaxPageSize = 100

	// DefaultMaxListingsPerUser 是单个用户可同时持有的帖子数量上限的默认值。
	DefaultMaxListingsPerUser = 5

	// COSObjectKeyPrefixListingImages 是帖子图片在 COS 中的对象键前缀。
	COSObjectKeyPrefixListingImages = "listings/images/"
)

// 定时任务调度表达式 (cron, 分钟级精度)
const (
	// SyncViewCountInterval 是浏览量从 Redis 回写 MySQL 的调度周期。
	SyncViewCountInterval = "*/5 * * * *"

	// FeedJanitorInterval 是信息流会话清理任务的调度周期。
	FeedJanitorInterval = "* * * * *"
)
