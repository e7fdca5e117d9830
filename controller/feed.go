package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/service"
)

// FeedController 暴露信息流会话的 HTTP 接口。
// 每个会话对应一份服务端持有的无限滚动状态 (累积条目/页码/hasMore)，
// 客户端只需携带会话 ID 即可翻页或调整筛选。
type FeedController struct {
	feedManager *service.FeedManager
}

// NewFeedController 构造函数，用于创建 FeedController 实例
func NewFeedController(feedManager *service.FeedManager) *FeedController {
	return &FeedController{
		feedManager: feedManager,
	}
}

// OpenFeed 打开一个信息流会话
// @Summary      打开信息流会话
// @Description  创建一份服务端无限滚动状态并同步加载首屏，返回会话 ID 与首屏快照。
// @Tags         feed (信息流)
// @Accept       json
// @Produce      json
// @Param        body body dto.OpenFeedRequest true "初始筛选条件与每页数量"
// @Success      200 {object} vo.FeedSnapshotResponseWrapper "会话创建成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/listing/feed [post]
func (ctrl *FeedController) OpenFeed(c *gin.Context) {
	var req dto.OpenFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	snapshot, err := ctrl.feedManager.Open(c.Request.Context(), &req)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "创建信息流会话失败: "+err.Error())
		return
	}
	response.RespondSuccess(c, snapshot, "信息流会话创建成功")
}

// UpdateFilter 更新会话的筛选条件
// @Summary      更新信息流筛选条件
// @Description  分类变更立即生效并重置到第 0 页；关键词经过防抖后才触发查询，连续输入只保留最后一次。返回的快照可能尚未反映防抖中的关键词。
// @Tags         feed (信息流)
// @Accept       json
// @Produce      json
// @Param        session_id path string true "会话 ID"
// @Param        body body dto.UpdateFeedFilterRequest true "要更新的筛选条件 (省略的不变)"
// @Success      200 {object} vo.FeedSnapshotResponseWrapper "筛选条件已提交"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      404 {object} vo.BaseResponseWrapper "会话不存在或已过期"
// @Router       /api/v1/listing/feed/{session_id}/filter [put]
func (ctrl *FeedController) UpdateFilter(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req dto.UpdateFeedFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	snapshot, err := ctrl.feedManager.UpdateFilter(c.Request.Context(), sessionID, &req)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, err.Error())
		return
	}
	response.RespondSuccess(c, snapshot, "筛选条件已提交")
}

// LoadMore 追加加载下一页
// @Summary      信息流加载更多
// @Description  对会话追加加载下一页并返回最新快照。加载进行中或没有更多数据时为无操作。
// @Tags         feed (信息流)
// @Accept       json
// @Produce      json
// @Param        session_id path string true "会话 ID"
// @Success      200 {object} vo.FeedSnapshotResponseWrapper "加载完成 (或无操作)"
// @Failure      404 {object} vo.BaseResponseWrapper "会话不存在或已过期"
// @Router       /api/v1/listing/feed/{session_id}/more [post]
func (ctrl *FeedController) LoadMore(c *gin.Context) {
	sessionID := c.Param("session_id")

	snapshot, err := ctrl.feedManager.LoadMore(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, err.Error())
		return
	}
	response.RespondSuccess(c, snapshot, "加载完成")
}

// GetSnapshot 获取会话当前快照
// @Summary      获取信息流快照
// @Description  返回会话累积的条目与加载状态，不触发任何加载。防抖中的关键词查询完成后，快照会反映新结果。
// @Tags         feed (信息流)
// @Accept       json
// @Produce      json
// @Param        session_id path string true "会话 ID"
// @Success      200 {object} vo.FeedSnapshotResponseWrapper "快照获取成功"
// @Failure      404 {object} vo.BaseResponseWrapper "会话不存在或已过期"
// @Router       /api/v1/listing/feed/{session_id} [get]
func (ctrl *FeedController) GetSnapshot(c *gin.Context) {
	sessionID := c.Param("session_id")

	snapshot, err := ctrl.feedManager.Snapshot(sessionID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, err.Error())
		return
	}
	response.RespondSuccess(c, snapshot, "快照获取成功")
}

// CloseFeed 关闭会话
// @Summary      关闭信息流会话
// @Description  释放会话持有的状态与防抖器。关闭不存在的会话也返回成功。
// @Tags         feed (信息流)
// @Accept       json
// @Produce      json
// @Param        session_id path string true "会话 ID"
// @Success      200 {object} vo.BaseResponseWrapper "会话已关闭"
// @Router       /api/v1/listing/feed/{session_id} [delete]
func (ctrl *FeedController) CloseFeed(c *gin.Context) {
	sessionID := c.Param("session_id")
	ctrl.feedManager.Close(sessionID)
	response.RespondSuccess[any](c, nil, "会话已关闭")
}

// RegisterRoutes 注册 FeedController 的路由
func (ctrl *FeedController) RegisterRoutes(group *gin.RouterGroup) {
	feed := group.Group("/feed")
	{
		feed.POST("", ctrl.OpenFeed)                        // POST   /api/v1/listing/feed
		feed.GET("/:session_id", ctrl.GetSnapshot)          // GET    /api/v1/listing/feed/:session_id
		feed.PUT("/:session_id/filter", ctrl.UpdateFilter)  // PUT    /api/v1/listing/feed/:session_id/filter
		feed.POST("/:session_id/more", ctrl.LoadMore)       // POST   /api/v1/listing/feed/:session_id/more
		feed.DELETE("/:session_id", ctrl.CloseFeed)         // DELETE /api/v1/listing/feed/:session_id
	}
}
