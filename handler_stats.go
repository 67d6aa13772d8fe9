package secplan

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelaocl/secplan-project-manager-sub000/response"
)

// GinHandleDashboard 仪表盘统计，VISITA 只统计公开项目
// @Summary 仪表盘
// @Tags 统计
// @Produce json
// @Success 200 {object} response.Response{data=service.DashboardStats}
// @Security BearerAuth
// @Router /stats/dashboard [get]
func (e *Engine) GinHandleDashboard(ctx *gin.Context) {
	viewer, ok := e.currentUser(ctx)
	if !ok {
		return
	}

	stats, err := e.StatsService.GetDashboard(viewer)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(stats))
}
