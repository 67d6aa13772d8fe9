package secplan

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
	"github.com/pelaocl/secplan-project-manager-sub000/service"
)

// -------------------- 任务聊天相关接口 --------------------

// GinHandleListChatMessages 拉取任务聊天记录
// 返回里带已读游标和未读分隔线下标，前端不用自己算。
// 注意：拉取本身不动游标也不动通知——已读由前端随后显式调
// /view 和 /read 两个接口（两者独立，见各自注释）。
// @Summary 聊天记录
// @Tags 聊天
// @Produce json
// @Param id path int true "任务 ID"
// @Param limit query int false "条数上限"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.messages + data.last_read_at + data.first_unread_index"
// @Security BearerAuth
// @Router /tasks/{id}/chat [get]
func (e *Engine) GinHandleListChatMessages(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	taskID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid task id"))
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

	msgs, err := e.ChatService.ListMessages(taskID, limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	cursor, err := e.ReadCursorService.GetCursor(uid, taskID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"messages":           msgs,
		"last_read_at":       cursor,
		"first_unread_index": service.FirstUnreadIndex(msgs, uid, cursor),
	}))
}

type SendChatMessageReq struct {
	Content         string  `json:"content" binding:"required"`
	ParentMessageID *uint64 `json:"parent_message_id"`
}

// GinHandleSendChatMessage 发送聊天消息
// @Summary 发送消息
// @Tags 聊天
// @Accept json
// @Produce json
// @Param id path int true "任务 ID"
// @Param req body SendChatMessageReq true "消息内容"
// @Success 200 {object} response.Response{data=models.TaskChatMessage}
// @Security BearerAuth
// @Router /tasks/{id}/chat [post]
func (e *Engine) GinHandleSendChatMessage(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	taskID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid task id"))
		return
	}

	var req SendChatMessageReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	msg, err := e.ChatService.SaveMessage(taskID, uid, req.Content, req.ParentMessageID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(msg))
}

type RecordViewReq struct {
	// At 可选；零值用服务器当前时间。多端乱序到达时取大者，游标不回退。
	At *time.Time `json:"at"`
}

// GinHandleRecordChatView 记录“我看到这里了”（推进已读游标）
// 管聊天分隔线，不动铃铛角标。
// @Summary 记录查看
// @Tags 聊天
// @Accept json
// @Produce json
// @Param id path int true "任务 ID"
// @Param req body RecordViewReq false "查看时间"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /tasks/{id}/chat/view [post]
func (e *Engine) GinHandleRecordChatView(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	taskID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid task id"))
		return
	}

	var req RecordViewReq
	_ = ctx.ShouldBindJSON(&req) // body 可空

	at := time.Time{}
	if req.At != nil {
		at = *req.At
	}
	if err := e.ReadCursorService.RecordView(uid, taskID, at); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleMarkTaskChatRead 把该任务聊天产生的 CHAT 通知全部置已读
// 管铃铛角标，不动已读游标。前端打开聊天时和 /view 一起调。
// @Summary 聊天通知置已读
// @Tags 聊天
// @Produce json
// @Param id path int true "任务 ID"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.count"
// @Security BearerAuth
// @Router /tasks/{id}/chat/read [post]
func (e *Engine) GinHandleMarkTaskChatRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	taskID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid task id"))
		return
	}

	count, err := e.NotificationService.MarkAllReadForTaskChat(uid, taskID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"count": count}))
}
