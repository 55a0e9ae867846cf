package controller

import (
	"errors"

	"interview_backend/internal/service"
	"interview_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// ListCandidates godoc
// @Summary 候选人列表
// @Description 按姓名/邮箱搜索、按状态过滤，并按分数、姓名或完成时间排序
// @Tags 面试官
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "搜索关键字"
// @Param status query string false "状态过滤 (all|in_progress|paused|completed)"
// @Param sortBy query string false "排序字段 (score|name|date)"
// @Param order query string false "排序方向 (asc|desc)"
// @Success 200 {object} util.Response{data=util.ListResponse}
// @Router /api/candidates [get]
func (c *DashboardController) ListCandidates(ctx *gin.Context) {
	var q service.CandidateQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	list, err := c.DashboardService.ListCandidates(ctx.Request.Context(), q)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.ListResponse{List: list, Total: len(list)})
}

// GetStats godoc
// @Summary 候选人统计
// @Tags 面试官
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.DashboardStats}
// @Router /api/candidates/stats [get]
func (c *DashboardController) GetStats(ctx *gin.Context) {
	stats, err := c.DashboardService.Stats(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// GetCandidate godoc
// @Summary 候选人详情
// @Tags 面试官
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "候选人ID"
// @Success 200 {object} util.Response{data=service.CandidateDetail}
// @Failure 404 {object} util.Response
// @Router /api/candidates/{id} [get]
func (c *DashboardController) GetCandidate(ctx *gin.Context) {
	detail, err := c.DashboardService.GetCandidate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCandidateNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// DeleteCandidate godoc
// @Summary 删除候选人
// @Tags 面试官
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "候选人ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/candidates/{id} [delete]
func (c *DashboardController) DeleteCandidate(ctx *gin.Context) {
	if err := c.DashboardService.DeleteCandidate(ctx.Request.Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrCandidateNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// CleanupDuplicates godoc
// @Summary 合并重复候选人
// @Description 同一邮箱只保留最新的一条记录
// @Tags 面试官
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/candidates/cleanup [post]
func (c *DashboardController) CleanupDuplicates(ctx *gin.Context) {
	removed, err := c.DashboardService.CleanupDuplicates(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"removed": removed, "count": len(removed)})
}
