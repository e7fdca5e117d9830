package vo

import (
	"time"

	"github.com/Xushengqwer/listing_service/models/entities"
)

// ListingVO 定义了帖子的响应数据结构
type ListingVO struct {
	ID             uint64    `json:"id"`               // 帖子ID
	Title          string    `json:"title"`            // 标题
	Description    string    `json:"description"`      // 描述
	Price          float64   `json:"price"`            // 标价
	Category       []string  `json:"category"`         // 分类标签集合
	Images         []string  `json:"images"`           // 图片公开 URL 有序列表
	UserID         string    `json:"user_id"`          // 发布者ID
	ShowInHomepage bool      `json:"show_in_homepage"` // 是否在首页展示
	ViewCount      int64     `json:"view_count"`       // 浏览量 (同步周期粒度快照)
	CreatedAt      time.Time `json:"created_at"`       // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`       // 更新时间，与创建时间相等表示从未编辑过
}

// ListingPageVO 定义了页码分页查询的响应结构。
// - HasMore 由 "本页是否满页" 推导: len(listings) == pageSize 即认为还有下一页。
//   剩余条数恰为页大小整数倍时会多发一次确认请求，这是已知的边界近似，保持原行为。
type ListingPageVO struct {
	Listings []*ListingVO `json:"listings"` // 当前页帖子列表
	Page     int          `json:"page"`     // 当前页码 (从0开始)
	HasMore  bool         `json:"has_more"` // 是否可能还有下一页
}

// UserListingsVO 定义了 "我的帖子" 查询的响应结构。
type UserListingsVO struct {
	Listings []*ListingVO `json:"listings"` // 当前用户的帖子列表
	Total    int64        `json:"total"`    // 当前用户持有的帖子总数
}

// CategoryListVO 定义了分类词表查询的响应结构。
type CategoryListVO struct {
	Categories []string `json:"categories"` // 按名称升序的分类词表
}

// FeedSnapshotVO 定义了信息流会话的当前快照。
// - Items 是自第 0 页起累积的全部条目
type FeedSnapshotVO struct {
	SessionID      string       `json:"session_id"`      // 会话ID
	Items          []*ListingVO `json:"items"`           // 已累积条目
	Page           int          `json:"page"`            // 已加载到的页码
	HasMore        bool         `json:"has_more"`        // 是否可能还有下一页
	LoadingInitial bool         `json:"loading_initial"` // 首页加载中
	LoadingMore    bool         `json:"loading_more"`    // 追加加载中
	Category       string       `json:"category"`        // 会话当前生效的分类
	Search         string       `json:"search"`          // 会话当前生效的关键词 (防抖后)
}

// NewListingVO 将帖子实体转换为响应 VO。
func NewListingVO(l *entities.Listing) *ListingVO {
	if l == nil {
		return nil
	}
	return &ListingVO{
		ID:             l.ID,
		Title:          l.Title,
		Description:    l.Description,
		Price:          l.Price,
		Category:       []string(l.Category),
		Images:         []string(l.Images),
		UserID:         l.UserID,
		ShowInHomepage: l.ShowInHomepage,
		ViewCount:      l.ViewCount,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// MapListingsToVOs 是一个辅助函数，用于将帖子实体列表转换为响应VO列表。
func MapListingsToVOs(listings []*entities.Listing) []*ListingVO {
	if len(listings) == 0 {
		return []*ListingVO{} // 返回空切片而不是nil，便于前端处理
	}
	vos := make([]*ListingVO, 0, len(listings))
	for _, l := range listings {
		if l == nil { // 安全检查，尽管不太可能发生
			continue
		}
		vos = append(vos, NewListingVO(l))
	}
	return vos
}
