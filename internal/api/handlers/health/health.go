package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"snap2cook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RootMessage 根路徑回應
const RootMessage = "Snap2Cook Backend Running"

// Pinger 可檢查連線狀態的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc 讓一般函式實作 Pinger
type PingerFunc func(ctx context.Context) error

// Ping 實作 Pinger
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Model     string                 `json:"model"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	model   string
	deps    map[string]Pinger
}

// NewHandler 創建健康檢查處理器；deps 中為 nil 的項目會被略過
func NewHandler(version, model string, deps map[string]Pinger) *Handler {
	filtered := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			filtered[name] = p
		}
	}
	return &Handler{version: version, model: model, deps: filtered}
}

// Root 根路徑
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": RootMessage})
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Model:     h.model,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
	})
}

// ReadinessCheck 就緒檢查處理器，逐一檢查資料庫與快取
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	ready := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			ready = false
			checks[name] = err.Error()
			common.LogWarn("依賴服務未就緒", zap.String("dependency", name), zap.Error(err))
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
