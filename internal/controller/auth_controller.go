package controller

import (
	"recruit_backend/internal/config"
	"recruit_backend/internal/middleware"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/cache"
	"recruit_backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthController only handles logout. Tokens are issued by the portal's auth module.
type AuthController struct {
	Config *config.Config
	Cache  cache.Cache
	now    func() time.Time
}

func NewAuthController(cfg *config.Config, c cache.Cache) *AuthController {
	return &AuthController{Config: cfg, Cache: c, now: time.Now}
}

// Logout godoc
// @Summary 退出登录
// @Description 将当前token加入黑名单直至其过期
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	tokenString := middleware.BearerToken(ctx)
	if user == nil || tokenString == "" {
		util.Unauthorized(ctx)
		return
	}

	ttl := c.Config.JWT.ExpireTime
	if user.ExpiresAt != nil {
		ttl = user.ExpiresAt.Time.Sub(c.now())
	}
	if ttl > 0 {
		if err := c.Cache.Set(ctx.Request.Context(), util.TokenBlacklistPrefix+tokenString, []byte("1"), ttl); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	}

	logger.Log.Info("User logged out", zap.Uint("userId", user.UserID), zap.Duration("blacklistTTL", ttl))
	util.Success(ctx, gin.H{"message": "logged out"})
}
