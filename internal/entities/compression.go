package entities

import (
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
)

// SizeKind distinguishes absolute targets ("5") from percentage targets ("50%").
type SizeKind int

const (
	SizeAbsolute SizeKind = iota
	SizePercentage
)

var ErrInvalidSize = errors.New("invalid size parameter")

// SizeSpec is the parsed form of the `size` query parameter. Absolute values
// are KB for images and MB for video; percentages are relative to the
// original size. Immutable after ParseSizeSpec.
type SizeSpec struct {
	Kind  SizeKind
	Value float64
	Raw   string
}

// ParseSizeSpec parses "50%" into a percentage spec and "5" into an absolute
// spec. Absolute values below 1 are rejected; percentage bounds are enforced
// per media kind in Validate.
func ParseSizeSpec(raw string) (SizeSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return SizeSpec{}, fmt.Errorf("%w: empty", ErrInvalidSize)
	}

	kind := SizeAbsolute
	if strings.HasSuffix(s, "%") {
		kind = SizePercentage
		s = strings.TrimSuffix(s, "%")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return SizeSpec{}, fmt.Errorf("%w: %q is not numeric", ErrInvalidSize, raw)
	}
	// ParseFloat accepts "NaN" and "Inf", and every comparison against NaN is
	// false — both would sail past the bound checks below.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return SizeSpec{}, fmt.Errorf("%w: %q is not a finite number", ErrInvalidSize, raw)
	}

	switch kind {
	case SizeAbsolute:
		if v < 1 {
			return SizeSpec{}, fmt.Errorf("%w: absolute size must be >= 1, got %v", ErrInvalidSize, v)
		}
	case SizePercentage:
		if v <= 0 || v > 100 {
			return SizeSpec{}, fmt.Errorf("%w: percentage must be in (0, 100], got %v", ErrInvalidSize, v)
		}
	}

	return SizeSpec{Kind: kind, Value: v, Raw: raw}, nil
}

// Validate enforces the per-media bounds: images require percentages in
// [5, 100]; video percentages are only bounded by the encoder's ratio clamp.
func (s SizeSpec) Validate(kind MediaKind) error {
	if kind == MediaImage && s.Kind == SizePercentage && s.Value < 5 {
		return fmt.Errorf("%w: image percentage must be >= 5, got %v", ErrInvalidSize, s.Value)
	}
	return nil
}

// Resolve returns the absolute target in the caller's units, applying the
// percentage against originalSize when the spec is relative.
func (s SizeSpec) Resolve(originalSize float64) float64 {
	if s.Kind == SizePercentage {
		return originalSize * s.Value / 100
	}
	return s.Value
}

// MediaKind classifies a source by file extension.
type MediaKind int

const (
	MediaUnknown MediaKind = iota
	MediaImage
	MediaVideo
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ClassifyURL maps the URL path's extension to a media kind. Anything outside
// the supported set is an error, not a best guess.
func ClassifyURL(rawURL string) (MediaKind, string, error) {
	ext := strings.ToLower(path.Ext(strings.SplitN(rawURL, "?", 2)[0]))
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return MediaImage, ext, nil
	case ".mp4", ".mov", ".avi":
		return MediaVideo, ext, nil
	default:
		return MediaUnknown, ext, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// CompressionResult is what a compressor (or a cache hit) hands back to the
// orchestrator. Consumed once to build the HTTP response.
type CompressionResult struct {
	Bytes            []byte
	Link             string
	SizeReductionPct float64
	FromCache        bool
}

// ReductionPercent computes how much smaller compressed is than original.
func ReductionPercent(originalLen, compressedLen int) float64 {
	if originalLen <= 0 {
		return 0
	}
	return float64(originalLen-compressedLen) / float64(originalLen) * 100
}
