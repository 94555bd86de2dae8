package api

import (
	"context"
	"time"

	"snap2cook/internal/api/handlers"
	authHandler "snap2cook/internal/api/handlers/auth"
	cookbookHandler "snap2cook/internal/api/handlers/cookbook"
	feedbackHandler "snap2cook/internal/api/handlers/feedback"
	"snap2cook/internal/api/handlers/health"
	recipeHandler "snap2cook/internal/api/handlers/recipe"
	"snap2cook/internal/api/middleware"
	"snap2cook/internal/core/ai/cache"
	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/core/ai/service"
	"snap2cook/internal/core/auth"
	"snap2cook/internal/core/cookbook"
	"snap2cook/internal/core/feedback"
	"snap2cook/internal/core/image"
	recipeService "snap2cook/internal/core/recipe"
	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/infrastructure/database"
	"snap2cook/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies 路由需要的外部資源
type Dependencies struct {
	DB       *gorm.DB
	Provider provider.Provider
	// Cache 為 nil 時停用快取
	Cache cache.Store
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()
	router.MaxMultipartMemory = cfg.Image.MaxSizeBytes

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.RequestContext())
	router.Use(middleware.Logger())

	// CORS 設置
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", recipeHandler.SourceHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 初始化服務
	aiService := service.NewService(deps.Provider, deps.Cache, cfg.LLM)
	imageService := image.NewService(cfg.Image.MaxSizeBytes, cfg.Image.MaxDimension)
	ingredientSvc := recipeService.NewIngredientService(aiService, imageService, cfg.LLM, deps.Cache != nil)
	recipeSvc := recipeService.NewRecipeService(aiService, cfg.LLM)
	authSvc := auth.NewService(deps.DB, cfg.Auth)
	cookbookSvc := cookbook.NewService(deps.DB)
	feedbackSvc := feedback.NewService(deps.DB)

	common.LogInfo("Services initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.String("vision_model", cfg.LLM.VisionModelName()),
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.String("database", cfg.Database.Driver),
	)

	// 健康檢查路由
	checks := map[string]health.Pinger{
		"database": health.PingerFunc(func(ctx context.Context) error { return database.Ping(ctx, deps.DB) }),
	}
	if deps.Cache != nil {
		checks["cache"] = deps.Cache
	}
	healthHandler := health.NewHandler(cfg.App.Version, cfg.LLM.Model, checks)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	requireAuth := middleware.RequireAuth(authSvc)

	recipes := recipeHandler.NewHandler(recipeSvc, ingredientSvc, authSvc, imageService.MaxSizeBytes())
	router.POST("/ingredients/recognize", recipes.HandleRecognize)

	cookbooks := cookbookHandler.NewHandler(cookbookSvc)
	recipeGroup := router.Group("/recipes")
	{
		recipeGroup.POST("/generate", middleware.OptionalAuth(authSvc), recipes.HandleGenerate)
		recipeGroup.POST("/save", requireAuth, cookbooks.HandleSave)
		recipeGroup.GET("/my", requireAuth, cookbooks.HandleList)
		recipeGroup.DELETE("/delete/:id", requireAuth, cookbooks.HandleDelete)
	}

	auths := authHandler.NewHandler(authSvc)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", auths.HandleSignup)
		authGroup.POST("/login", auths.HandleLogin)
		authGroup.GET("/me", requireAuth, auths.HandleMe)
		authGroup.PATCH("/me", requireAuth, auths.HandleUpdateMe)
	}

	submitFeedback := feedbackHandler.Handle(feedbackSvc)
	router.POST("/feedback/", submitFeedback)
	router.POST("/feedback", submitFeedback)

	// 未註冊的路徑與方法同樣回傳 ErrorResponse
	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, common.ErrNotFound)
	})
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		handlers.RespondError(c, common.ErrMethodNotAllowed)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Strings("cors_origins", cfg.CORS.AllowedOrigins),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
