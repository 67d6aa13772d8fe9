package secplan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
)

// -------------------- 通知相关接口 --------------------

// GinHandleListNotifications 通知列表（倒序分页）
// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Param only_unread query bool false "只看未读"
// @Param category query string false "SYSTEM 或 CHAT"
// @Param limit query int false "条数上限，默认 10"
// @Success 200 {object} response.Response{data=[]models.Notification}
// @Security BearerAuth
// @Router /notifications [get]
func (e *Engine) GinHandleListNotifications(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	onlyUnread := ctx.Query("only_unread") == "true"
	category := ctx.Query("category")
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

	list, err := e.NotificationService.ListForUser(uid, onlyUnread, category, limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleMarkNotificationRead 单条置已读（幂等，重复调不报错）
// @Summary 通知置已读
// @Tags 通知
// @Produce json
// @Param id path int true "通知 ID"
// @Success 200 {object} response.Response{data=models.Notification}
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (e *Engine) GinHandleMarkNotificationRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid notification id"))
		return
	}

	n, err := e.NotificationService.MarkRead(id, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(n))
}

// GinHandleMarkAllNotificationsRead 全部置已读，category 可选
// @Summary 全部置已读
// @Tags 通知
// @Produce json
// @Param category query string false "SYSTEM 或 CHAT，不传则全部"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.count"
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (e *Engine) GinHandleMarkAllNotificationsRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	count, err := e.NotificationService.MarkAllRead(uid, ctx.Query("category"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"count": count}))
}

// GinHandleUnreadCounts 未读计数，每次现算，不走缓存
// WS 推送只是提示，前端对账以这个接口为准。
// @Summary 未读计数
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response{data=service.Counts}
// @Security BearerAuth
// @Router /notifications/unread-counts [get]
func (e *Engine) GinHandleUnreadCounts(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	counts, err := e.UnreadService.ComputeCounts(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(counts))
}
