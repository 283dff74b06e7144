package router

import (
	"fmt"
	"strings"

	"github.com/bloodlink-next/internal/cache"
	"github.com/bloodlink-next/internal/config"
	adminhandlers "github.com/bloodlink-next/internal/http/handlers/admin"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bl"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口（无需会话）
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), handler.Login)
			auth.GET("/captcha", handler.Captcha)
		}

		// 需要会话鉴权的接口
		authorized := apiV1.Group("")
		authorized.Use(SessionAuthMiddleware(c.AuthService, cfg.Session.CookieName), RBACMiddleware(c.AuthzService))
		{
			authorized.POST("/auth/logout", handler.Logout)
			authorized.GET("/me", handler.Me)
			authorized.PUT("/me/password", handler.ChangePassword)

			// 库存管理（按血液成分分库）
			authorized.GET("/inventory/:kind", handler.ListInventory)
			authorized.POST("/inventory/:kind", handler.CreateInventoryUnit)
			authorized.GET("/inventory/:kind/:bag_id", handler.GetInventoryUnit)
			authorized.PUT("/inventory/:kind/:bag_id", handler.UpdateInventoryUnit)
			authorized.DELETE("/inventory/:kind/:bag_id", handler.SoftDeleteInventoryUnit)
			authorized.POST("/inventory/:kind/:bag_id/restore", handler.RestoreInventoryUnit)

			// 富余检测与调拨台账
			authorized.GET("/surplus", handler.GetSurplus)
			authorized.GET("/surplus/needs", handler.GetNeeds)
			authorized.GET("/surplus/transfers", handler.ListTransfers)
			authorized.POST("/surplus/transfers", handler.RecordTransfer)

			// 医院目录与管理员管理
			authorized.GET("/hospitals", handler.ListHospitals)
			authorized.POST("/hospitals", handler.CreateHospital)
			authorized.GET("/admins", handler.ListAdmins)
			authorized.POST("/admins", handler.CreateAdmin)

			// 仪表盘与系统诊断
			authorized.GET("/dashboard", handler.Dashboard)
			authorized.GET("/system/status", handler.SystemStatus)
			authorized.GET("/system/inventory", handler.SystemInventory)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
