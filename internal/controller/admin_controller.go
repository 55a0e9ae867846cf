package controller

import (
	"context"

	"interview_backend/internal/service"
	"interview_backend/internal/store"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	InterviewService *service.InterviewService
	Store            store.Store
}

func NewAdminController(interviewService *service.InterviewService, s store.Store) *AdminController {
	return &AdminController{InterviewService: interviewService, Store: s}
}

// ClearDatabase godoc
// @Summary 清空数据库
// @Description 删除全部候选人与会话记录，并重置当前会话
// @Tags 面试官
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/database [delete]
func (c *AdminController) ClearDatabase(ctx *gin.Context) {
	err := c.InterviewService.Wipe(ctx.Request.Context(), func(ctx context.Context) error {
		return store.ClearAll(ctx, c.Store)
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	logger.Log.Warn("Database cleared", zap.String("ip", ctx.ClientIP()))
	util.Success(ctx, nil)
}
