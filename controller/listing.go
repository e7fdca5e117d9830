package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/constants"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/models/vo"
	"github.com/Xushengqwer/listing_service/myErrors"
	"github.com/Xushengqwer/listing_service/service"
)

// ListingController 定义帖子控制器的结构体
type ListingController struct {
	listingService service.ListingService // 服务层接口，通过依赖注入传入
	listingStore   service.ListingStore   // 删除走 store，它负责缓存/投影/COS 的级联清理
}

// NewListingController 构造函数，用于创建 ListingController 实例
func NewListingController(listingService service.ListingService, listingStore service.ListingStore) *ListingController {
	return &ListingController{
		listingService: listingService,
		listingStore:   listingStore,
	}
}

// currentUserID 从 gin.Context 中取出网关透传下来的 userID。
// 必须登录的接口用 required=true，取不到直接写 401 并返回 false。
func currentUserID(c *gin.Context, required bool) (string, bool) {
	userID := c.GetString(string(constants.UserIDKey))
	if userID == "" && required {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "无法获取有效的用户 ID")
		return "", false
	}
	return userID, true
}

// respondListingError 将服务层错误统一映射为 HTTP 响应。
func respondListingError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case myErrors.IsValidationError(err):
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, err.Error())
	case errors.Is(err, myErrors.ErrQuotaExceeded):
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "您持有的帖子数量已达上限")
	case errors.Is(err, commonerrors.ErrRepoNotFound):
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "帖子不存在或无权操作")
	default:
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, fallbackMsg+": "+err.Error())
	}
}

// ListListings 获取首页信息流列表 (页码分页)
// @Summary      获取帖子列表 (公开)
// @Description  分页浏览首页可见的帖子，支持分类筛选和标题/描述关键词搜索，按创建时间倒序。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Param        page query int false "页码 (从0开始)" format(int32) minimum(0) default(0)
// @Param        pageSize query int false "每页数量" format(int32) minimum(1) maximum(100) default(10)
// @Param        category query string false "分类筛选 ('Todos' 或省略表示不过滤)" maxLength(100)
// @Param        search query string false "关键词 (对标题和描述做不区分大小写的子串匹配)" maxLength(255)
// @Success      200 {object} vo.ListingPageResponseWrapper "成功响应，包含当前页帖子列表和 has_more"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/listing/listings [get]
func (ctrl *ListingController) ListListings(c *gin.Context) {
	var reqDTO dto.ListListingsQueryDTO
	if err := c.ShouldBindQuery(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	pageVO, err := ctrl.listingService.GetListingsPage(c.Request.Context(), &reqDTO)
	if err != nil {
		respondListingError(c, err, "获取帖子列表失败")
		return
	}
	response.RespondSuccess(c, pageVO, "帖子列表获取成功")
}

// CreateListing 处理创建帖子的 HTTP 请求，包含图片上传。
// DTO 字段作为独立的表单字段提交。
// @Summary      创建新帖子 (独立表单字段及图片)
// @Description  使用提供的详情（作为独立表单字段）和图片文件创建一个新帖子。请求体应为 multipart/form-data。图片按上传顺序处理。
// @Tags         listings (帖子)
// @Accept       multipart/form-data
// @Produce      json
// @Param        title formData string true "帖子标题" maxLength(255)
// @Param        description formData string true "帖子描述" maxLength(2000)
// @Param        price formData number false "标价 (大于等于0)" minimum(0)
// @Param        category formData []string true "分类标签 (可多选)"
// @Param        show_in_homepage formData bool false "是否在首页展示 (默认 true)"
// @Param        images formData file true "帖子图片文件 (可多选，至少一张)"
// @Success      200 {object} vo.ListingResponseWrapper "帖子创建成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载、校验失败或配额已满"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权"
// @Failure      500 {object} vo.BaseResponseWrapper "创建帖子时发生内部服务器错误"
// @Router       /api/v1/listing/listings [post]
func (ctrl *ListingController) CreateListing(c *gin.Context) {
	userID, ok := currentUserID(c, true)
	if !ok {
		return
	}

	// 1. 解析 Multipart Form，设置表单解析的最大内存，超出部分会存到临时磁盘文件
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "解析表单数据失败: "+err.Error())
		return
	}

	// 2. 绑定 DTO 数据 (来自独立的表单字段)
	var req dto.CreateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	// 3. 获取图片文件部分，"images" 是前端 FormData.append("images", file) 时使用的字段名
	form := c.Request.MultipartForm
	if form == nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "未能获取 multipart form 数据")
		return
	}
	imageFiles := form.File["images"]

	// 4. 调用服务层处理 (字段校验与配额校验都在服务层完成)
	listingVO, serviceErr := ctrl.listingService.CreateListing(c.Request.Context(), userID, &req, imageFiles)
	if serviceErr != nil {
		respondListingError(c, serviceErr, "创建帖子失败")
		return
	}

	response.RespondSuccess(c, listingVO, "帖子创建成功")
}

// UpdateListing 处理编辑帖子的 HTTP 请求
// @Summary      编辑指定ID的帖子
// @Description  更新帖子的可编辑字段，只有发布者本人可操作；非本人或帖子不存在统一返回 404。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Param        body body dto.UpdateListingRequest true "要更新的字段 (省略的字段不变)"
// @Success      200 {object} vo.ListingResponseWrapper "帖子更新成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的帖子 ID 或请求负载"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在或无权操作"
// @Failure      500 {object} vo.BaseResponseWrapper "更新帖子时发生内部服务器错误"
// @Router       /api/v1/listing/listings/{id} [put]
func (ctrl *ListingController) UpdateListing(c *gin.Context) {
	userID, ok := currentUserID(c, true)
	if !ok {
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	listingVO, serviceErr := ctrl.listingService.UpdateListing(c.Request.Context(), id, userID, &req)
	if serviceErr != nil {
		respondListingError(c, serviceErr, "更新帖子失败")
		return
	}

	response.RespondSuccess(c, listingVO, "帖子更新成功")
}

// ToggleVisibility 处理切换帖子首页可见性的 HTTP 请求
// @Summary      切换帖子的首页可见性
// @Description  将帖子的 show_in_homepage 设置为目标值，只有发布者本人可操作。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Param        body body dto.ToggleVisibilityRequest true "目标可见性"
// @Success      200 {object} vo.ListingResponseWrapper "可见性切换成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的帖子 ID 或请求负载"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在或无权操作"
// @Failure      500 {object} vo.BaseResponseWrapper "切换可见性时发生内部服务器错误"
// @Router       /api/v1/listing/listings/{id}/visibility [patch]
func (ctrl *ListingController) ToggleVisibility(c *gin.Context) {
	userID, ok := currentUserID(c, true)
	if !ok {
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	var req dto.ToggleVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	listingVO, serviceErr := ctrl.listingService.ToggleVisibility(c.Request.Context(), id, userID, *req.ShowInHomepage)
	if serviceErr != nil {
		respondListingError(c, serviceErr, "切换可见性失败")
		return
	}

	response.RespondSuccess(c, listingVO, "可见性切换成功")
}

// DeleteListing 处理删除帖子的 HTTP 请求
// @Summary      删除指定ID的帖子
// @Description  软删除帖子并尽力清理其 COS 图片，只有发布者本人可操作。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Success      200 {object} vo.BaseResponseWrapper "帖子删除成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的帖子 ID 格式"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在或无权操作"
// @Failure      500 {object} vo.BaseResponseWrapper "删除帖子时发生内部服务器错误"
// @Router       /api/v1/listing/listings/{id} [delete]
func (ctrl *ListingController) DeleteListing(c *gin.Context) {
	userID, ok := currentUserID(c, true)
	if !ok {
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	if serviceErr := ctrl.listingStore.DeleteListing(c.Request.Context(), id, userID); serviceErr != nil {
		if errors.Is(serviceErr, myErrors.ErrDeleteFailed) {
			response.RespondError(c, http.StatusConflict, response.ErrCodeServerInternal, "该帖子的删除正在进行中，请稍后重试")
			return
		}
		respondListingError(c, serviceErr, "删除帖子失败")
		return
	}
	response.RespondSuccess[any](c, nil, "帖子删除成功")
}

// GetMyListings 获取当前用户自己的帖子列表
// @Summary      获取我的帖子列表
// @Description  获取当前登录用户发布的全部帖子及持有总数。UserID 从请求上下文中获取。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Success      200 {object} vo.UserListingsResponseWrapper "成功响应，包含用户帖子列表和总数"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权或认证失败"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/listing/listings/mine [get]
func (ctrl *ListingController) GetMyListings(c *gin.Context) {
	userID, ok := currentUserID(c, true)
	if !ok {
		return
	}

	userListingsVO, err := ctrl.listingService.GetUserListings(c.Request.Context(), userID)
	if err != nil {
		respondListingError(c, err, "获取我的帖子列表失败")
		return
	}
	response.RespondSuccess(c, userListingsVO, "我的帖子列表获取成功")
}

// GetPopularListings 获取热门帖子列表
// @Summary      获取热门帖子列表 (公开)
// @Description  从浏览量热榜截取 Top N 帖子，逐条经缓存优先路径补全数据。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Param        limit query int false "返回条数" format(int32) minimum(1) maximum(50) default(10)
// @Success      200 {object} vo.PopularListingsResponseWrapper "热门帖子获取成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/listing/listings/popular [get]
func (ctrl *ListingController) GetPopularListings(c *gin.Context) {
	var reqDTO dto.PopularListingsQueryDTO
	if err := c.ShouldBindQuery(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	listings, err := ctrl.listingService.GetPopularListings(c.Request.Context(), reqDTO.Limit)
	if err != nil {
		respondListingError(c, err, "获取热门帖子失败")
		return
	}
	response.RespondSuccess(c, listings, "热门帖子获取成功")
}

// BrowseLoadedListings 在已加载的权威集合上做即时筛选
// @Summary      浏览已加载的帖子 (公开)
// @Description  对进程内已加载的权威集合做纯内存筛选，不发起数据库查询。提供 search 时按标题/描述做不区分大小写的子串匹配；否则按 category 过滤 ('Todos' 或省略表示全部)。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Param        category query string false "分类筛选 ('Todos' 或省略表示不过滤)" maxLength(100)
// @Param        search query string false "关键词 (对标题和描述做不区分大小写的子串匹配)" maxLength(255)
// @Success      200 {object} vo.PopularListingsResponseWrapper "筛选结果"
// @Router       /api/v1/listing/listings/loaded [get]
func (ctrl *ListingController) BrowseLoadedListings(c *gin.Context) {
	search := c.Query("search")
	category := c.Query("category")

	var listings []*entities.Listing
	if search != "" {
		listings = ctrl.listingStore.SearchListings(search)
	} else {
		listings = ctrl.listingStore.FilterByCategory(category)
	}

	response.RespondSuccess(c, vo.MapListingsToVOs(listings), "帖子筛选成功")
}

// GetListingDetail 处理获取帖子详情的 HTTP 请求
// @Summary      获取指定ID的帖子详情 (公开)
// @Description  缓存优先获取帖子详情。如果用户已登录（通过中间件注入UserID），则会异步增加浏览量。
// @Tags         listings (帖子)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Param        X-User-ID header string false "用户 ID (由网关/中间件注入)"
// @Success      200 {object} vo.ListingResponseWrapper "帖子详情检索成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的帖子 ID 格式"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "检索帖子详情时发生内部服务器错误"
// @Router       /api/v1/listing/listings/{id} [get]
func (ctrl *ListingController) GetListingDetail(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	// 未登录用户 userID 为空串，服务层会跳过浏览量计数。
	userID, _ := currentUserID(c, false)

	detail, err := ctrl.listingService.GetListingDetail(c.Request.Context(), id, userID)
	if err != nil {
		respondListingError(c, err, "检索帖子详情失败")
		return
	}

	response.RespondSuccess(c, detail, "帖子详情检索成功")
}

// GetCategories 获取分类词表
// @Summary      获取分类词表 (公开)
// @Description  返回按名称升序的全部分类名，前端筛选器在词表之外自行追加 "Todos" 项。
// @Tags         categories (分类)
// @Accept       json
// @Produce      json
// @Success      200 {object} vo.CategoryListResponseWrapper "分类词表获取成功"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/listing/categories [get]
func (ctrl *ListingController) GetCategories(c *gin.Context) {
	categoriesVO, err := ctrl.listingService.GetCategories(c.Request.Context())
	if err != nil {
		respondListingError(c, err, "获取分类词表失败")
		return
	}
	response.RespondSuccess(c, categoriesVO, "分类词表获取成功")
}

// RegisterRoutes 注册 ListingController 的路由
func (ctrl *ListingController) RegisterRoutes(group *gin.RouterGroup) {
	listings := group.Group("/listings")
	{
		listings.GET("", ctrl.ListListings)                       // GET    /api/v1/listing/listings
		listings.POST("", ctrl.CreateListing)                     // POST   /api/v1/listing/listings
		listings.GET("/mine", ctrl.GetMyListings)                 // GET    /api/v1/listing/listings/mine
		listings.GET("/popular", ctrl.GetPopularListings)         // GET    /api/v1/listing/listings/popular
		listings.GET("/loaded", ctrl.BrowseLoadedListings)        // GET    /api/v1/listing/listings/loaded
		listings.GET("/:id", ctrl.GetListingDetail)               // GET    /api/v1/listing/listings/:id
		listings.PUT("/:id", ctrl.UpdateListing)                  // PUT    /api/v1/listing/listings/:id
		listings.PATCH("/:id/visibility", ctrl.ToggleVisibility)  // PATCH  /api/v1/listing/listings/:id/visibility
		listings.DELETE("/:id", ctrl.DeleteListing)               // DELETE /api/v1/listing/listings/:id
	}
	group.GET("/categories", ctrl.GetCategories) // GET /api/v1/listing/categories
}
