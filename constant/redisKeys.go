package constant

// Redis Key 相关常量 (导出)
const (
	// --- Key 前缀 (用于动态生成 Key) ---

	// ListingViewBloomPrefix 是帖子浏览记录 Bloom Filter 的 Key 前缀。
	// 每个帖子会有一个对应的 Bloom Filter Key。
	// 用于快速判断某个用户是否在一定时间内浏览过某帖子，以实现防刷。
	// 示例 Key: "listing_view_bloom:123" (其中 123 是 listingID)
	// Redis 类型: String (由 RedisBloom 模块管理)
	ListingViewBloomPrefix = "listing_view_bloom:"

	// ListingViewCountPrefix 是帖子浏览量计数器的 Key 前缀。
	// 每个帖子会有一个对应的 String 类型的 Key，用于原子性计数。
	// 示例 Key: "listing_view_count:123" (其中 123 是 listingID)
	// Redis 类型: String
	// 示例值: "58" (表示帖子 123 的浏览量为 58)
	ListingViewCountPrefix = "listing_view_count:"

	// --- 固定 Key 名称 (全局使用的 Key) ---

	// ListingsRankKey 是全局帖子热度排行榜的 Key 名称。
	// 这是一个 Sorted Set (ZSet)，成员是帖子 ID (listingID)，分数是浏览量 (viewCount)。
	// 热门帖子接口从该榜单截取 Top N。
	// Redis 类型: Sorted Set
	// 示例成员与分数: Member="123", Score=58; Member="456", Score=102
	ListingsRankKey = "listing_rank"
)
