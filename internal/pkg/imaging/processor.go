package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	// gif decoder registration
	_ "image/gif"

	"github.com/disintegration/imaging"
)

// Evidence is a normalised screenshot ready for storage.
type Evidence struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Config for evidence processing
type Config struct {
	MaxWidth  int // Max width kept (default 1600)
	MaxHeight int // Max height kept (default 1600)
	Quality   int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:  1600,
		MaxHeight: 1600,
		Quality:   85,
	}
}

// Processor normalises uploaded screenshots.
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Normalize decodes an image, shrinks it to fit the configured bounds and
// re-encodes it. PNG stays PNG, everything else becomes JPEG. Re-encoding
// drops any embedded metadata.
func (p *Processor) Normalize(data []byte) (*Evidence, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > p.config.MaxWidth || b.Dy() > p.config.MaxHeight {
		img = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if format == "png" {
		contentType = "image/png"
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Evidence{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}, nil
}
