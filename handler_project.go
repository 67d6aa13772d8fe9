package secplan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
	"github.com/pelaocl/secplan-project-manager-sub000/service"
)

// -------------------- 项目相关接口 --------------------

// canEdit 写操作角色闸门：VISITA 一律拒绝。
func canEdit(role string) bool {
	return role == models.RoleAdmin || role == models.RoleUrbanista
}

// GinHandleCreateProject 创建项目
// @Summary 创建项目
// @Tags 项目
// @Accept json
// @Produce json
// @Param req body service.CreateProjectReq true "项目信息"
// @Success 200 {object} response.Response{data=models.Project}
// @Security BearerAuth
// @Router /projects [post]
func (e *Engine) GinHandleCreateProject(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}
	if !canEdit(actor.Role) {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "read-only role"))
		return
	}

	var req service.CreateProjectReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	p, err := e.ProjectService.CreateProject(actor.ID, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(p))
}

// GinHandleListProjects 项目列表（按角色过滤可见性）
// @Summary 项目列表
// @Tags 项目
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Project}
// @Security BearerAuth
// @Router /projects [get]
func (e *Engine) GinHandleListProjects(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}

	rows, err := e.ProjectService.ListProjects(actor)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(rows))
}

// GinHandleGetProject 项目详情
// @Summary 项目详情
// @Tags 项目
// @Produce json
// @Param id path int true "项目 ID"
// @Success 200 {object} response.Response{data=models.Project}
// @Security BearerAuth
// @Router /projects/{id} [get]
func (e *Engine) GinHandleGetProject(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid id"))
		return
	}

	p, err := e.ProjectService.GetProject(actor, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(p))
}

// GinHandleUpdateProject 更新项目
// @Summary 更新项目
// @Tags 项目
// @Accept json
// @Produce json
// @Param id path int true "项目 ID"
// @Param req body service.UpdateProjectReq true "变更字段"
// @Success 200 {object} response.Response{data=models.Project}
// @Security BearerAuth
// @Router /projects/{id} [put]
func (e *Engine) GinHandleUpdateProject(ctx *gin.Context) {
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

	var req service.UpdateProjectReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	p, err := e.ProjectService.UpdateProject(id, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(p))
}

// GinHandleDeleteProject 删除项目（软删，仅 ADMIN）
// @Summary 删除项目
// @Tags 项目
// @Produce json
// @Param id path int true "项目 ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (e *Engine) GinHandleDeleteProject(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}
	if actor.Role != models.RoleAdmin {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "admin only"))
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid id"))
		return
	}

	if err := e.ProjectService.DeleteProject(id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
