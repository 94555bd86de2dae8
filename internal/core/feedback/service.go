package feedback

import (
	"context"
	"fmt"
	"strings"

	"snap2cook/internal/infrastructure/database"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnonymousName 未填寫名稱時使用
const AnonymousName = "Anonymous"

// Request 意見回饋內容
type Request struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Service 意見回饋服務
type Service struct {
	db *gorm.DB
}

// NewService 創建新的意見回饋服務
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Submit 記錄並保存意見回饋
func (s *Service) Submit(ctx context.Context, req Request) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = AnonymousName
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return common.NewFieldError("message", "is required")
	}

	common.LogInfo("收到意見回饋",
		zap.String("name", name),
		zap.String("message", common.Truncate(message, 200)),
		zap.String("request_id", common.RequestIDFrom(ctx)),
	)

	if err := s.db.WithContext(ctx).Create(&database.Feedback{Name: name, Message: message}).Error; err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	return nil
}
