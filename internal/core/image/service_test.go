package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"snap2cook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, G: 40, B: 40, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize_DownscalesAndReencodes(t *testing.T) {
	svc := NewService(10<<20, 400)

	out, err := svc.Normalize(encodePNG(t, 1600, 800))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)

	decoded, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 400, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestNormalize_KeepsSmallImageSize(t *testing.T) {
	svc := NewService(10<<20, 400)

	out, err := svc.Normalize(encodePNG(t, 120, 90))
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 120, decoded.Bounds().Dx())
	assert.Equal(t, 90, decoded.Bounds().Dy())
}

func TestNormalize_RejectsNonImage(t *testing.T) {
	svc := NewService(10<<20, 400)

	_, err := svc.Normalize([]byte("name,qty\ntomato,2\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidImageType))
}

func TestNormalize_RejectsEmpty(t *testing.T) {
	_, err := NewService(10<<20, 400).Normalize(nil)
	assert.True(t, errors.Is(err, common.ErrInvalidImageType))
}

func TestNormalize_RejectsOversized(t *testing.T) {
	data := encodePNG(t, 64, 64)
	svc := NewService(int64(len(data)-1), 400)

	_, err := svc.Normalize(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidImageSize))
}

func TestNormalize_PassesThroughUndecodableImage(t *testing.T) {
	// GIF 標頭但內容不完整
	data := append([]byte("GIF89a"), make([]byte, 32)...)

	out, err := NewService(10<<20, 400).Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", out.MIMEType)
	assert.Equal(t, data, out.Data)
}

func TestNormalize_PassesThroughHEIC(t *testing.T) {
	data := append([]byte{0, 0, 0, 0x18}, []byte("ftypheic")...)
	data = append(data, make([]byte, 32)...)

	out, err := NewService(10<<20, 400).Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "image/heic", out.MIMEType)
	assert.Equal(t, data, out.Data)
}

func TestDetectContentType(t *testing.T) {
	avif := append([]byte{0, 0, 0, 0x1c}, []byte("ftypavif")...)
	assert.Equal(t, "image/avif", detectContentType(avif))

	mp4 := append([]byte{0, 0, 0, 0x18}, []byte("ftypisom")...)
	assert.NotContains(t, detectContentType(mp4), "image/")

	assert.Equal(t, "image/png", detectContentType(encodePNG(t, 4, 4)))
}
