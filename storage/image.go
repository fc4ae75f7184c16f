package storage

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/bbrks/go-blurhash"
)

// ImageMeta is the display metadata of an uploaded image. The hash is a
// blurhash string for the frontend; the backend threads it through to
// storage without interpreting it.
type ImageMeta struct {
	Width  int
	Height int
	Hash   string
}

// Analyzer extracts display metadata from uploaded image bytes.
type Analyzer interface {
	Analyze(r io.Reader) (ImageMeta, error)
}

// BlurhashAnalyzer decodes the image and encodes a blurhash with component
// counts derived from the aspect ratio (longer side gets five components).
type BlurhashAnalyzer struct{}

func (BlurhashAnalyzer) Analyze(r io.Reader) (ImageMeta, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return ImageMeta{}, err
	}

	bounds := img.Bounds()
	meta := ImageMeta{Width: bounds.Dx(), Height: bounds.Dy()}
	if meta.Width == 0 || meta.Height == 0 {
		return meta, nil
	}

	maxDim := meta.Width
	minDim := meta.Height
	if minDim > maxDim {
		maxDim, minDim = minDim, maxDim
	}
	// Below five pixels on the long side the divisor floors to zero; such
	// images keep their dimensions but get no hash.
	if maxDim < 5 {
		return meta, nil
	}
	minComponents := int(math.Round(float64(minDim) / math.Floor(float64(maxDim)/5)))
	if minComponents < 1 {
		return meta, nil
	}

	componentX, componentY := 5, minComponents
	if maxDim == meta.Height {
		componentX, componentY = minComponents, 5
	}

	hash, err := blurhash.Encode(componentX, componentY, img)
	if err != nil {
		return ImageMeta{}, err
	}
	meta.Hash = hash
	return meta, nil
}
