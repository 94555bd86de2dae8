package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	_ "image/gif"  // 支援 GIF
	_ "image/png"  // 支援 PNG

	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/pkg/common"

	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP
)

const jpegQuality = 85

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
	maxDimension int
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64, maxDimension int) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
		maxDimension: maxDimension,
	}
}

// MaxSizeBytes 上傳圖片大小上限
func (s *Service) MaxSizeBytes() int64 {
	return s.maxSizeBytes
}

// Normalize 驗證上傳的圖片，縮小並重新編碼為 JPEG。
// 無法解碼但確實是圖片類型（例如 HEIC）時原樣送出。
func (s *Service) Normalize(data []byte) (provider.Image, error) {
	if len(data) == 0 {
		return provider.Image{}, common.ErrInvalidImageType.WithMessage("Image file is empty")
	}
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return provider.Image{}, common.ErrInvalidImageSize.WithError(
			fmt.Errorf("image is %d bytes, limit is %d", len(data), s.maxSizeBytes))
	}

	contentType := detectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return provider.Image{}, common.ErrInvalidImageType.WithError(
			fmt.Errorf("detected content type %s", contentType))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		common.LogWarn("圖片無法解碼，直接送出原始資料",
			zap.String("content_type", contentType),
			zap.Error(err),
		)
		return provider.Image{MIMEType: contentType, Data: data}, nil
	}

	bounds := img.Bounds()
	if s.maxDimension > 0 && (bounds.Dx() > s.maxDimension || bounds.Dy() > s.maxDimension) {
		img = resize.Thumbnail(uint(s.maxDimension), uint(s.maxDimension), img, resize.Lanczos3)
	}

	// 將圖片轉換為 JPEG 格式
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return provider.Image{}, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	common.LogDebug("圖片處理完成",
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("original_bytes", len(data)),
		zap.Int("encoded_bytes", buf.Len()),
	)

	return provider.Image{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// isoBrands HEIF 容器 ftyp 品牌對應的 MIME 類型
var isoBrands = map[string]string{
	"heic": "image/heic",
	"heix": "image/heic",
	"hevc": "image/heic",
	"hevx": "image/heic",
	"mif1": "image/heif",
	"msf1": "image/heif",
	"avif": "image/avif",
	"avis": "image/avif",
}

// detectContentType 判斷內容類型，補上 http.DetectContentType 不認得的 HEIC/AVIF
func detectContentType(data []byte) string {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		if mime, ok := isoBrands[string(data[8:12])]; ok {
			return mime
		}
	}
	return http.DetectContentType(data)
}
