package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// User 使用者帳號
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex;not null;size:100"`
	HashedPassword string `gorm:"not null"`
	DietPreference string `gorm:"size:100"`
	CreatedAt      time.Time
}

// SavedRecipe 使用者收藏的食譜，RecipeData 為序列化後的 JSON
type SavedRecipe struct {
	ID         uint    `gorm:"primaryKey"`
	Username   string  `gorm:"index;not null;size:100"`
	Title      string  `gorm:"not null"`
	RecipeData string  `gorm:"type:text"`
	Rating     float64 `gorm:"default:0"`
	CreatedAt  time.Time
}

// Feedback 使用者意見回饋
type Feedback struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	Message   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// Open 依設定連線資料庫並自動建立資料表
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// SQLite 只允許單一寫入連線
	if cfg.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	common.LogInfo("資料庫連線成功", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate 建立或更新資料表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &SavedRecipe{}, &Feedback{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping 檢查資料庫連線
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 關閉資料庫連線
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
