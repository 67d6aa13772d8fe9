package secplan

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
	"github.com/pelaocl/secplan-project-manager-sub000/service"
)

// -------------------- 认证相关接口 --------------------

// GinHandleLogin 登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "用户名密码"
// @Success 200 {object} response.Response{data=service.LoginResp}
// @Router /auth/login [post]
func (e *Engine) GinHandleLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := e.UserService.Login(ctx.Request.Context(), req)
	if err != nil {
		// 登录失败统一 401，不区分用户不存在/密码错误
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodePasswordError, "invalid credentials"))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleLogout 登出（注销当前 token）
// @Summary 登出
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /auth/logout [post]
func (e *Engine) GinHandleLogout(ctx *gin.Context) {
	tokenAny, exists := ctx.Get("token")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "token not found"))
		return
	}

	if err := e.AuthService.RevokeToken(ctx.Request.Context(), tokenAny.(string)); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleMe 当前用户信息（前端会话恢复用）
// @Summary 当前用户
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Security BearerAuth
// @Router /auth/me [get]
func (e *Engine) GinHandleMe(ctx *gin.Context) {
	u, ok := e.currentUser(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}
