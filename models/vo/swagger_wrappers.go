package vo

// --- 用于成功响应且包含具体 Data 的包装器 ---

// ListingResponseWrapper 对应 response.APIResponse[vo.ListingVO]
type ListingResponseWrapper struct {
	Code    int       `json:"code" example:"0"`
	Message string    `json:"message,omitempty" example:"success"`
	Data    ListingVO `json:"data"`
}

// ListingPageResponseWrapper 对应 response.APIResponse[vo.ListingPageVO]
// 用于首页信息流分页接口的成功响应。
type ListingPageResponseWrapper struct {
	Code    int           `json:"code" example:"0"`
	Message string        `json:"message,omitempty" example:"success"`
	Data    ListingPageVO `json:"data"`
}

// UserListingsResponseWrapper 对应 response.APIResponse[vo.UserListingsVO]
// 用于 "我的帖子" 接口的成功响应。
type UserListingsResponseWrapper struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message,omitempty" example:"success"`
	Data    UserListingsVO `json:"data"`
}

// CategoryListResponseWrapper 对应 response.APIResponse[vo.CategoryListVO]
type CategoryListResponseWrapper struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message,omitempty" example:"success"`
	Data    CategoryListVO `json:"data"`
}

// PopularListingsResponseWrapper 对应 response.APIResponse[[]vo.ListingVO]
type PopularListingsResponseWrapper struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message,omitempty" example:"success"`
	Data    []ListingVO `json:"data"`
}

// FeedSnapshotResponseWrapper 对应 response.APIResponse[vo.FeedSnapshotVO]
// 用于信息流会话相关接口的成功响应。
type FeedSnapshotResponseWrapper struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message,omitempty" example:"success"`
	Data    FeedSnapshotVO `json:"data"`
}

// --- 用于错误响应 或 简单成功响应（只有 Code 和 Message） ---

// BaseResponseWrapper 代表一个只包含 Code 和 Message 的响应。
// 适用于错误情况（RespondError 返回时 Data 为 nil 且 omitempty）
// 或某些成功操作（如 DELETE）可能也只返回 Code 和 Message。
type BaseResponseWrapper struct {
	Code    int    `json:"code" example:"0"`          // 成功时为 0, 错误时为具体错误码
	Message string `json:"message" example:"success"` // 成功或错误消息
}
