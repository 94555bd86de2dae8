package middleware

import (
	"net/http"
	"time"

	"snap2cook/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestContext 將請求 ID 放入 request context，供下游服務記錄日誌
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestid.Get(c)
		if id == "" {
			id = common.GenerateUUID()
		}
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Logger 日誌中間件
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 開始時間
		start := time.Now()
		path := c.Request.URL.Path

		// 處理請求
		c.Next()

		status := c.Writer.Status()

		// 構建基本日誌字段
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestid.Get(c)),
		}

		// 添加錯誤信息（如果有）
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		// 根據狀態碼記錄不同級別的日誌
		switch {
		case status >= 500:
			common.LogError("伺服器錯誤", fields...)
		case status >= 400:
			common.LogWarn("用戶端錯誤", fields...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// Recovery 恢復中間件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", requestid.Get(c)),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{
					Code:    common.ErrCodeInternalError,
					Message: common.ErrInternalError.Message,
				})
			}
		}()

		c.Next()
	}
}
