package secplan

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
	"github.com/pelaocl/secplan-project-manager-sub000/service"
)

/* HTTP 接口按模块拆分：
- handler_auth.go
- handler_user.go
- handler_project.go
- handler_task.go
- handler_chat.go
- handler_notification.go
- handler_lookup.go
- handler_stats.go
*/

// currentUserID 从 gin context 取鉴权后的 userID；没有说明中间件没挂。
func currentUserID(ctx *gin.Context) (uint64, bool) {
	uidAny, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return 0, false
	}
	return uidAny.(uint64), true
}

// currentUser 取鉴权后的完整用户（角色判定用）。
func (e *Engine) currentUser(ctx *gin.Context) (*service.UserDTO, bool) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return nil, false
	}
	u, err := e.UserService.GetUser(uid)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user not found"))
		return nil, false
	}
	return u, true
}

// writeServiceError 把 service 哨兵错误映射为业务码。
// 业务层统一 HTTP 200 + code（中间件层才用 401/403/500）。
func writeServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrForbidden):
		ctx.JSON(http.StatusOK, response.Error(response.CodePermissionDeny, err.Error()))
	default:
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
	}
}
