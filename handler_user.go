package secplan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
	"github.com/pelaocl/secplan-project-manager-sub000/service"
)

// -------------------- 用户相关接口 --------------------

// GinHandleRegisterUser 创建用户（仅 ADMIN）
// @Summary 创建用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "用户信息"
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Security BearerAuth
// @Router /users [post]
func (e *Engine) GinHandleRegisterUser(ctx *gin.Context) {
	actor, ok := e.currentUser(ctx)
	if !ok {
		return
	}
	if actor.Role != models.RoleAdmin {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "admin only"))
		return
	}

	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	u, err := e.UserService.Register(req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleListUsers 用户列表（任务指派下拉用）
// @Summary 用户列表
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=[]service.UserDTO}
// @Security BearerAuth
// @Router /users [get]
func (e *Engine) GinHandleListUsers(ctx *gin.Context) {
	if _, ok := currentUserID(ctx); !ok {
		return
	}

	users, err := e.UserService.ListUsers()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(users))
}

// GinHandleGetUser 按 ID 取用户
// @Summary 用户详情
// @Tags 用户
// @Produce json
// @Param id path int true "用户 ID"
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Security BearerAuth
// @Router /users/{id} [get]
func (e *Engine) GinHandleGetUser(ctx *gin.Context) {
	if _, ok := currentUserID(ctx); !ok {
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid id"))
		return
	}

	u, err := e.UserService.GetUser(id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}
