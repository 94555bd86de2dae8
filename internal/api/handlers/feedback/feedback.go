package feedback

import (
	"context"
	"net/http"

	"snap2cook/internal/api/handlers"
	feedbackService "snap2cook/internal/core/feedback"

	"github.com/gin-gonic/gin"
)

// Submitter 提交意見回饋
type Submitter interface {
	Submit(ctx context.Context, req feedbackService.Request) error
}

// Handle 處理意見回饋
func Handle(svc Submitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req feedbackService.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			handlers.RespondBindError(c, err)
			return
		}

		if err := svc.Submit(c.Request.Context(), req); err != nil {
			handlers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Feedback received!"})
	}
}
