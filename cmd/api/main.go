package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snap2cook/internal/api"
	"snap2cook/internal/core/ai/cache"
	"snap2cook/internal/core/ai/service"
	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/infrastructure/database"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.Log.Level, cfg.Log.Dir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("api_key", config.MaskAPIKey(cfg.LLM.APIKey)),
		zap.String("model", cfg.LLM.Model),
		zap.String("database", cfg.Database.Driver),
	)
	if cfg.LLM.APIKey == "" {
		common.LogWarn("未設定模型 API Key，食譜將使用備用結果，圖片辨識會失敗")
	}

	if err := run(cfg); err != nil {
		common.LogError("Server stopped with error", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
}

// run 初始化依賴並啟動服務，返回前會關閉所有已開啟的資源
func run(cfg *config.Config) error {
	// 初始化資料庫
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			common.LogError("Failed to close database", zap.Error(err))
		}
	}()

	// 初始化快取
	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	// 初始化模型供應商
	provider, err := service.NewProvider(context.Background(), cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize model provider: %w", err)
	}
	defer provider.Close()

	// 設置路由
	router := api.SetupRouter(cfg, api.Dependencies{
		DB:       db,
		Provider: provider,
		Cache:    store,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	common.LogInfo("Server exited")
	return nil
}
