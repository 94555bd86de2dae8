package recipe

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"snap2cook/internal/api/handlers"
	recipeService "snap2cook/internal/core/recipe"
	"snap2cook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecognizeResponse 食材識別響應
type RecognizeResponse struct {
	Ingredients []common.IngredientObservation `json:"ingredients"`
}

// recognizeJSONRequest 以 JSON 傳送食材清單時使用
type recognizeJSONRequest struct {
	Ingredients []string `json:"ingredients"`
}

// HandleRecognize 處理食材識別請求：表單欄位 ingredients 或圖片檔 image
func (h *Handler) HandleRecognize(c *gin.Context) {
	var in recipeService.RecognitionInput

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var req recognizeJSONRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handlers.RespondBindError(c, err)
			return
		}
		in.Ingredients = req.Ingredients
	} else {
		in.Ingredients = c.PostFormArray("ingredients")

		// 有食材清單時不讀取圖片
		if !in.HasManualIngredients() {
			data, err := h.readImage(c)
			if err != nil {
				handlers.RespondError(c, err)
				return
			}
			in.Image = data
		}
	}

	observations, err := h.ingredients.Recognize(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("食材識別完成",
		zap.Int("count", len(observations)),
		zap.Int("upload_bytes", len(in.Image)),
		zap.String("request_id", common.RequestIDFrom(c.Request.Context())),
	)

	c.JSON(http.StatusOK, RecognizeResponse{Ingredients: observations})
}

// readImage 讀取上傳的圖片，沒有上傳時回傳 nil
func (h *Handler) readImage(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.ErrRequestTooLarge.WithError(err)
		}
		return nil, common.ErrInvalidRequest.WithError(err)
	}

	if h.maxImageBytes > 0 && file.Size > h.maxImageBytes {
		return nil, common.ErrInvalidImageSize
	}

	f, err := file.Open()
	if err != nil {
		return nil, common.ErrInvalidRequest.WithError(err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxImageBytes > 0 {
		r = io.LimitReader(f, h.maxImageBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, common.ErrInvalidRequest.WithError(err)
	}
	return data, nil
}
