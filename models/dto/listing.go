package dto

// CreateListingRequest 定义了创建帖子的请求数据结构
// - 添加了 binding 标签用于输入验证
// - 注意: 这里没有图片文件字段，图片作为 multipart/form-data 的文件部分上传，
//   后端按接收顺序处理并在上传 COS 成功后把公开 URL 写入帖子
type CreateListingRequest struct {
	Title          string   `json:"title" form:"title" binding:"required,max=255"`                 // 帖子标题，必填，最大255字符
	Description    string   `json:"description" form:"description" binding:"required,max=2000"`    // 帖子描述，必填，最大2000字符
	Price          float64  `json:"price" form:"price" binding:"gte=0"`                            // 标价，大于等于0
	Category       []string `json:"category" form:"category" binding:"required,min=1"`             // 分类标签集合，至少一个
	ShowInHomepage *bool    `json:"show_in_homepage" form:"show_in_homepage" binding:"omitempty"`  // 是否在首页展示，缺省为 true
}

// UpdateListingRequest 定义了编辑帖子的请求数据结构
// - 所有字段均为可选，传入 nil 表示不更新对应字段
// - 授权由网关层的 (id, user_id) 双列匹配保证，非本人更新命中 0 行
type UpdateListingRequest struct {
	Title          *string   `json:"title" form:"title" binding:"omitempty,max=255"`
	Description    *string   `json:"description" form:"description" binding:"omitempty,max=2000"`
	Price          *float64  `json:"price" form:"price" binding:"omitempty,gte=0"`
	Category       *[]string `json:"category" form:"category" binding:"omitempty,min=1"`
	Images         *[]string `json:"images" form:"images" binding:"omitempty,min=1"`
	ShowInHomepage *bool     `json:"show_in_homepage" form:"show_in_homepage" binding:"omitempty"`
}

// ToggleVisibilityRequest 定义了切换帖子首页可见性的请求
type ToggleVisibilityRequest struct {
	ShowInHomepage *bool `json:"show_in_homepage" binding:"required"` // 目标可见性，必填
}

// ListListingsQueryDTO 定义了分页浏览帖子的查询参数 (页码分页)
// - Page 从 0 开始，网关层将其换算为行范围 [page*pageSize, page*pageSize+pageSize-1]
// - Category 为 constant.CategoryAll 或空时跳过分类过滤
// - Search 为空时跳过关键词过滤；非空时对标题和描述做不区分大小写的子串匹配
type ListListingsQueryDTO struct {
	Page     int    `json:"page" form:"page" binding:"omitempty,gte=0"`                    // 页码 (从0开始)
	PageSize int    `json:"pageSize" form:"pageSize" binding:"omitempty,gt=0,lte=100"`     // 每页数量
	Category string `json:"category" form:"category" binding:"omitempty,max=100"`          // 分类筛选
	Search   string `json:"search" form:"search" binding:"omitempty,max=255"`              // 关键词
}

// PopularListingsQueryDTO 定义了热门帖子查询参数
type PopularListingsQueryDTO struct {
	Limit int `json:"limit" form:"limit" binding:"omitempty,gt=0,lte=50"` // 返回条数，默认10
}
