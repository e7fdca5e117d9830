package events

import "time"

// ListingData 是帖子事件携带的核心数据快照。
// 下游 (搜索索引、推荐) 以此为准同步数据，时间戳使用毫秒级 Unix 时间。
type ListingData struct {
	ID             uint64   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Category       []string `json:"category"`
	Images         []string `json:"images"`
	UserID         string   `json:"user_id"`
	ShowInHomepage bool     `json:"show_in_homepage"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
}

// ListingCreatedEvent 在帖子创建事务提交成功后发布。
type ListingCreatedEvent struct {
	EventID   string      `json:"event_id"`  // 事件唯一ID (UUID)
	Timestamp time.Time   `json:"timestamp"` // 事件产生时间
	Listing   ListingData `json:"listing"`   // 帖子数据快照
}

// ListingDeletedEvent 在帖子删除成功后发布。
type ListingDeletedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	ListingID uint64    `json:"listing_id"` // 被删除的帖子ID
}
