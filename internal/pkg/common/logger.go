package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger 全局日誌實例，InitLogger 之前為 no-op
	Logger = zap.NewNop()

	// 定義日誌級別的顏色
	levelColors = map[zapcore.Level]string{
		zapcore.DebugLevel: "\033[36m", // 青色
		zapcore.InfoLevel:  "\033[32m", // 綠色
		zapcore.WarnLevel:  "\033[33m", // 黃色
		zapcore.ErrorLevel: "\033[31m", // 紅色
		zapcore.FatalLevel: "\033[35m", // 紫色
	}
	resetColor = "\033[0m"
)

// 自定義編碼器配置
func getEncoderConfig(colored bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if colored {
		cfg.EncodeLevel = customLevelEncoder
		cfg.EncodeTime = customTimeEncoder
	}
	return cfg
}

// 自定義時間格式
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// 自定義級別編碼器（添加顏色）
func customLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	level := l.CapitalString()
	switch l {
	case zapcore.DebugLevel:
		level = "DBG"
	case zapcore.InfoLevel:
		level = "INF"
	case zapcore.WarnLevel:
		level = "WRN"
	case zapcore.ErrorLevel:
		level = "ERR"
	case zapcore.FatalLevel:
		level = "FAT"
	}
	enc.AppendString(levelColors[l] + level + resetColor)
}

// ParseLevel 將字串轉為日誌級別，無法辨識時為 info
func ParseLevel(logLevel string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger 初始化日誌系統；dir 為空時只輸出到 console
func InitLogger(logLevel, dir string) error {
	level := ParseLevel(logLevel)

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(getEncoderConfig(true)),
		zapcore.AddSync(os.Stdout),
		level,
	)
	cores := []zapcore.Core{consoleCore}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile, err := os.OpenFile(filepath.Join(dir, "app.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(getEncoderConfig(false)),
			zapcore.AddSync(logFile),
			level,
		))
	}

	Logger = zap.New(zapcore.NewTee(cores...),
		zap.AddCallerSkip(1),
		zap.Fields(zap.String("service", "snap2cook")),
	)
	zap.ReplaceGlobals(Logger)

	return nil
}

// filterFields 過濾掉包含圖片數據的字段
func filterFields(fields []zap.Field) []zap.Field {
	filtered := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.ToLower(field.Key)
		if key == "image" || strings.Contains(key, "image_data") || strings.Contains(key, "base64") {
			continue
		}
		filtered = append(filtered, field)
	}
	return filtered
}

// LogInfo 記錄信息日誌
func LogInfo(msg string, fields ...zap.Field) {
	Logger.Info(msg, filterFields(fields)...)
}

// LogError 記錄錯誤日誌
func LogError(msg string, fields ...zap.Field) {
	Logger.Error(msg, filterFields(fields)...)
}

// LogWarn 記錄警告日誌
func LogWarn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, filterFields(fields)...)
}

// LogDebug 記錄調試日誌
func LogDebug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, filterFields(fields)...)
}

// Sync 同步日誌緩衝
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// LogCacheHit 記錄快取命中
func LogCacheHit(cacheType string) {
	LogDebug("快取命中", zap.String("type", cacheType))
}

// LogCacheMiss 記錄快取未命中
func LogCacheMiss(cacheType string) {
	LogDebug("快取未命中", zap.String("type", cacheType))
}

// LogAICall 記錄 AI 調用
func LogAICall(operation, model string, duration time.Duration, err error, requestID string) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("model", model),
		zap.Duration("latency", duration),
		zap.String("request_id", requestID),
	}
	if err != nil {
		LogError("AI 請求失敗", append(fields, zap.Error(err))...)
		return
	}
	LogInfo("AI 請求成功", fields...)
}

// LogModelOutput 記錄無法解析的模型原始輸出
func LogModelOutput(msg, raw string, err error, requestID string) {
	LogWarn(msg,
		zap.Error(err),
		zap.String("raw_output", Truncate(raw, 500)),
		zap.String("request_id", requestID),
	)
}
