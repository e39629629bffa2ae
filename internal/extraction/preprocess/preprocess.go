// Package preprocess normalizes photographed documents before OCR.
package preprocess

import (
	"bytes"
	"log"

	"github.com/disintegration/imaging"

	"cverve/internal/port"
)

var _ port.ImagePreprocessor = (*Preprocessor)(nil)

// Options controls the preprocessing pipeline.
type Options struct {
	MaxDimension  int     // longest side in pixels; larger images are downscaled, never upscaled
	ContrastBoost float64 // percentage passed to imaging.AdjustContrast
	SharpenSigma  float64 // 0 disables sharpening
}

// DefaultOptions matches the settings tesseract handles best for phone photos of text.
func DefaultOptions() Options {
	return Options{MaxDimension: 2000, ContrastBoost: 20, SharpenSigma: 1.0}
}

// Preprocessor resizes, grayscales, boosts contrast, sharpens and re-encodes images as PNG.
type Preprocessor struct {
	opts Options
}

// New creates a Preprocessor. Zero-valued options fall back to DefaultOptions.
func New(opts Options) *Preprocessor {
	def := DefaultOptions()
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = def.MaxDimension
	}
	if opts.ContrastBoost == 0 {
		opts.ContrastBoost = def.ContrastBoost
	}
	return &Preprocessor{opts: opts}
}

// Preprocess returns the normalized PNG, or data unchanged when any stage fails.
func (p *Preprocessor) Preprocess(data []byte) (out []byte) {
	out = data
	defer func() {
		if r := recover(); r != nil {
			log.Printf("preprocess.Preprocess: recovered from panic: %v", r)
			out = data
		}
	}()

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("preprocess.Preprocess: decode failed, using original bytes: %v", err)
		return data
	}

	b := img.Bounds()
	if b.Dx() > p.opts.MaxDimension || b.Dy() > p.opts.MaxDimension {
		img = imaging.Fit(img, p.opts.MaxDimension, p.opts.MaxDimension, imaging.Lanczos)
	}
	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, p.opts.ContrastBoost)
	if p.opts.SharpenSigma > 0 {
		img = imaging.Sharpen(img, p.opts.SharpenSigma)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		log.Printf("preprocess.Preprocess: encode failed, using original bytes: %v", err)
		return data
	}
	return buf.Bytes()
}
