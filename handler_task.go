package secplan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
	"github.com/pelaocl/secplan-project-manager-sub000/service"
)

// -------------------- 任务相关接口 --------------------

// GinHandleCreateTask 创建任务
// @Summary 创建任务
// @Tags 任务
// @Accept json
// @Produce json
// @Param req body service.CreateTaskReq true "任务信息"
// @Success 200 {object} response.Response{data=models.Task}
// @Security BearerAuth
// @Router /tasks [post]
func (e *Engine) GinHandleCreateTask(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}
	if !canEdit(actor.Role) {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "read-only role"))
		return
	}

	var req service.CreateTaskReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	task, err := e.TaskService.CreateTask(actor.ID, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(task))
}

// GinHandleUpdateTask 更新任务（状态/负责人/信息变更会触发对应通知）
// @Summary 更新任务
// @Tags 任务
// @Accept json
// @Produce json
// @Param id path int true "任务 ID"
// @Param req body service.UpdateTaskReq true "变更字段"
// @Success 200 {object} response.Response{data=models.Task}
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (e *Engine) GinHandleUpdateTask(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}
	if !canEdit(actor.Role) {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "read-only role"))
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid id"))
		return
	}

	var req service.UpdateTaskReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	task, err := e.TaskService.UpdateTask(actor.ID, id, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(task))
}

// GinHandleGetTask 任务详情
// @Summary 任务详情
// @Tags 任务
// @Produce json
// @Param id path int true "任务 ID"
// @Success 200 {object} response.Response{data=models.Task}
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (e *Engine) GinHandleGetTask(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid id"))
		return
	}

	task, err := e.TaskService.GetTask(actor, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(task))
}

// GinHandleListProjectTasks 项目下任务列表
// @Summary 项目任务列表
// @Tags 任务
// @Produce json
// @Param id path int true "项目 ID"
// @Success 200 {object} response.Response{data=[]models.Task}
// @Security BearerAuth
// @Router /projects/{id}/tasks [get]
func (e *Engine) GinHandleListProjectTasks(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}

	projectID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid project id"))
		return
	}

	rows, err := e.TaskService.ListTasksByProject(actor, projectID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(rows))
}
