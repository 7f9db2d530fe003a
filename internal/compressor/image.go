// Package compressor holds the two size-targeted compression searches: a
// binary search over JPEG quality for still images, and an iterative
// multi-parameter search (scale, CRF, bitrate) over an external encoder for
// video.
package compressor

import (
	"bytes"
	"math"

	"github.com/rs/zerolog"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/processor"
)

const (
	imageMaxIterations = 8
	imageStartQuality  = 85
	imageTolerance     = 0.05 // accept within ±5% of target
)

// JPEGEncoder re-encodes source bytes as JPEG at a quality level in [1, 100].
type JPEGEncoder interface {
	Encode(src []byte, ext string, quality int) ([]byte, error)
}

// processorEncoder backs JPEGEncoder with the image processor.
type processorEncoder struct{}

func (processorEncoder) Encode(src []byte, ext string, quality int) ([]byte, error) {
	p := &processor.ImageProcessor{}
	if err := p.Load(ext, bytes.NewReader(src)); err != nil {
		return nil, err
	}
	return p.EncodeJPEG(quality)
}

type Image struct {
	enc JPEGEncoder
	log zerolog.Logger
}

func NewImage(log zerolog.Logger) *Image {
	return &Image{enc: processorEncoder{}, log: log}
}

// NewImageWithEncoder injects a custom encoder. Tests use this to script
// output sizes.
func NewImageWithEncoder(enc JPEGEncoder, log zerolog.Logger) *Image {
	return &Image{enc: enc, log: log}
}

// Compress binary-searches the JPEG quality parameter until the encoded size
// lands within ±5% of targetKB, bounded at 8 encoder runs. Encoder output is
// monotonically non-increasing as quality drops, which is what makes the
// bisection valid. If no quality converges, the largest under-target encode
// seen is returned (or the original bytes if every encode overshot) — the
// image path is best-effort and never fails on tolerance.
func (c *Image) Compress(src []byte, ext string, targetKB float64) (entities.CompressionResult, error) {
	low, high := 1, 100
	quality := imageStartQuality
	best := src

	for i := 0; i < imageMaxIterations && low <= high; i++ {
		encoded, err := c.enc.Encode(src, ext, quality)
		if err != nil {
			return entities.CompressionResult{}, err
		}

		currentKB := float64(len(encoded)) / 1024
		switch {
		case currentKB > targetKB*(1+imageTolerance):
			high = quality - 1
		case currentKB < targetKB*(1-imageTolerance):
			low = quality + 1
			best = encoded
		default:
			c.log.Debug().Int("quality", quality).Float64("kb", currentKB).Int("iterations", i+1).
				Msg("image compression converged")
			return entities.CompressionResult{
				Bytes:            encoded,
				SizeReductionPct: entities.ReductionPercent(len(src), len(encoded)),
			}, nil
		}

		quality = int(math.Round(float64(low+high) / 2))
	}

	c.log.Debug().Float64("target_kb", targetKB).Float64("best_kb", float64(len(best))/1024).
		Msg("image compression returning best-effort result")

	return entities.CompressionResult{
		Bytes:            best,
		SizeReductionPct: entities.ReductionPercent(len(src), len(best)),
	}, nil
}
