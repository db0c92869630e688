package controller

import (
	"context"
	"net/http"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/cache"
	"recruit_backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Cache cache.Cache
}

// NewHealthController accepts a nil db when the in-memory store is in use.
func NewHealthController(db *gorm.DB, c cache.Cache) *HealthController {
	return &HealthController{DB: db, Cache: c}
}

// @Summary 健康检查
// @Description 检查数据库与缓存状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{"database": "memory", "cache": c.Cache.Name()}
	healthy := true

	if c.DB != nil {
		components["database"] = "up"
		sqlDB, err := c.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(pingCtx)
		}
		if err != nil {
			logger.Log.Warn("Database health check failed", zap.Error(err))
			components["database"] = "down"
			healthy = false
		}
	}

	if err := c.Cache.Ping(pingCtx); err != nil {
		logger.Log.Warn("Cache health check failed", zap.Error(err))
		components["cache"] = "down"
		healthy = false
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "Service unavailable",
			Data:    gin.H{"status": "degraded", "components": components},
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
