package secplan

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
)

// GinHandleLookups 基础字典（任务状态、项目阶段、类型、单位）
// @Summary 字典数据
// @Tags 字典
// @Produce json
// @Success 200 {object} response.Response{data=service.Lookups}
// @Security BearerAuth
// @Router /lookups [get]
func (e *Engine) GinHandleLookups(ctx *gin.Context) {
	lookups, err := e.LookupService.ListAll()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(lookups))
}
