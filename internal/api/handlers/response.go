package handlers

import (
	"errors"
	"net/http"

	"snap2cook/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將錯誤轉換為對應的 HTTP 狀態碼與 ErrorResponse
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

// RespondBindError 處理請求解析失敗
func RespondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(c, common.ErrRequestTooLarge.WithError(err))
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: common.ErrInvalidRequest.Message,
		Details: err.Error(),
	})
}

func errorBody(err error) (int, common.ErrorResponse) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: verr.Error(),
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, common.ErrorResponse{
			Code:    common.ErrCodeRequestTooLarge,
			Message: common.ErrRequestTooLarge.Message,
		}
	}

	ce, ok := common.AsCustomError(err)
	if !ok {
		ce = common.ErrInternalError.WithError(err)
	}

	resp := common.ErrorResponse{Code: ce.Code, Message: ce.Message}
	// 模型相關錯誤一律附上原因，其餘僅在除錯模式顯示
	upstream := errors.Is(ce, common.ErrAIServiceError) || errors.Is(ce, common.ErrInvalidModelOutput)
	if ce.Err != nil && (upstream || gin.IsDebugging()) {
		resp.Details = ce.Err.Error()
	}
	return ce.Status, resp
}
