package controller

import (
	"context"
	"time"

	"interview_backend/internal/store"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthController struct {
	Store store.Store
}

func NewHealthController(s store.Store) *HealthController {
	return &HealthController{Store: s}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	// 检查存储连接
	if err := c.Store.Ping(pingCtx); err != nil {
		logger.Log.Warn("Store ping failed", zap.Error(err))
		util.ServiceUnavailable(ctx, "Store unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"store": "up",
		},
	})
}
