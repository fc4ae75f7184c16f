package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestAnalyzeExtractsDimensionsAndHash(t *testing.T) {
	meta, err := BlurhashAnalyzer{}.Analyze(encodePNG(t, 100, 50))
	require.NoError(t, err)

	assert.Equal(t, 100, meta.Width)
	assert.Equal(t, 50, meta.Height)
	assert.NotEmpty(t, meta.Hash)
}

func TestAnalyzePortraitOrientation(t *testing.T) {
	meta, err := BlurhashAnalyzer{}.Analyze(encodePNG(t, 40, 120))
	require.NoError(t, err)

	assert.Equal(t, 40, meta.Width)
	assert.Equal(t, 120, meta.Height)
	assert.NotEmpty(t, meta.Hash)
}

func TestAnalyzeTinyImageSkipsHash(t *testing.T) {
	meta, err := BlurhashAnalyzer{}.Analyze(encodePNG(t, 3, 2))
	require.NoError(t, err)

	assert.Equal(t, 3, meta.Width)
	assert.Equal(t, 2, meta.Height)
	assert.Empty(t, meta.Hash)
}

func TestAnalyzeRejectsGarbage(t *testing.T) {
	_, err := BlurhashAnalyzer{}.Analyze(strings.NewReader("definitely not an image"))
	assert.Error(t, err)
}

func TestStorageKeys(t *testing.T) {
	assert.Equal(t, "42/abc-def", AttachmentKey(42, "abc-def"))
	assert.Equal(t, "42/__thumbnail", ThumbnailKey(42))
}
