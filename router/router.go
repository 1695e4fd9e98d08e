package router

import (
	"net/http"

	"financeiro/admin"
	"financeiro/api"
	"financeiro/config"
	"financeiro/currency"
	_ "financeiro/docs"
	"financeiro/middleware"
	"financeiro/service"
	"financeiro/store"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps 路由依赖，由 main 组装后显式传入
type Deps struct {
	Config     *config.Config
	Stores     *store.Stores
	Auth       *service.AuthService
	Reconciler *admin.Reconciler
	Sheets     *service.SheetsSyncer
	Codec      *currency.Codec
}

// SetupRouter 设置路由
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	// 设置运行模式
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := api.NewAuthHandler(cfg, d.Auth)
	expenseHandler := api.NewExpenseHandler(d.Stores, d.Auth, d.Sheets, d.Codec)
	profileHandler := api.NewProfileHandler(d.Stores, d.Auth, d.Sheets, d.Codec)
	contributionHandler := api.NewContributionHandler(d.Stores, d.Codec)
	dashboardHandler := api.NewDashboardHandler(d.Stores, d.Codec)
	exportHandler := api.NewExportHandler(d.Stores, d.Codec)
	currencyHandler := api.NewCurrencyHandler(d.Codec)
	adminHandler := api.NewAdminHandler(d.Stores, d.Reconciler, d.Sheets, d.Codec)

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow), authHandler.Login)
		}

		// 无需登录
		v1.GET("/categories", api.ListCategories)
		v1.GET("/currency/format", currencyHandler.Format)

		// 需要 JWT 认证且账号处于启用状态
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(), middleware.RequireActiveUser(d.Auth))
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.POST("/auth/logout", authHandler.Logout)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 消费记录相关
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 财务档案
			authorized.GET("/profile", profileHandler.Get)
			authorized.PUT("/profile", profileHandler.Update)

			// 应急金
			contributions := authorized.Group("/contributions")
			{
				contributions.GET("", contributionHandler.List)
				contributions.POST("", contributionHandler.Create)
				contributions.DELETE("/:id", contributionHandler.Delete)
			}

			authorized.GET("/dashboard", dashboardHandler.Get)

			// 导出相关
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 后台管理 API（JWT + 管理员）
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuth(), middleware.AdminRequired())
	{
		adminGroup.GET("/users", adminHandler.GetAllUsers)
		adminGroup.PUT("/users/:id/toggle-status", adminHandler.ToggleUserStatus)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		adminGroup.GET("/users/:id/dashboard", adminHandler.GetUserDashboard)
		adminGroup.GET("/activities", adminHandler.GetActivities)
		adminGroup.GET("/export/excel", adminHandler.ExportExcel)
		adminGroup.POST("/sheets/setup", adminHandler.SetupSheets)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
