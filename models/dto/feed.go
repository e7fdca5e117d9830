package dto

// OpenFeedRequest 定义了打开一个信息流会话的请求
// - 每个会话对应一份独立的无限滚动状态 (已累积条目/页码/hasMore)
type OpenFeedRequest struct {
	PageSize int    `json:"pageSize" form:"pageSize" binding:"omitempty,gt=0,lte=100"` // 每页数量，缺省用配置默认值
	Category string `json:"category" form:"category" binding:"omitempty,max=100"`      // 初始分类
	Search   string `json:"search" form:"search" binding:"omitempty,max=255"`          // 初始关键词
}

// UpdateFeedFilterRequest 定义了更新会话筛选条件的请求
// - 分类变更立即生效并重置到第 0 页
// - 关键词经过会话内防抖后才真正触发查询，连续输入只保留最后一次
type UpdateFeedFilterRequest struct {
	Category *string `json:"category" form:"category" binding:"omitempty,max=100"`
	Search   *string `json:"search" form:"search" binding:"omitempty,max=255"`
}
