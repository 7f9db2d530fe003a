package compressor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/ffmpeg"
)

const (
	videoMaxAttempts = 5
	videoMinRatio    = 0.6
	videoMinHeight   = 360
	videoMinCRF      = 18
	videoMaxCRF      = 32
	videoMinBitrate  = 1200 // kbps

	// Probe fallbacks when ffprobe yields nothing usable.
	defaultDuration = 1.0
	defaultWidth    = 1280
	defaultHeight   = 720
)

var ErrNonConvergence = errors.New("video compression did not converge")

type Prober interface {
	Probe(ctx context.Context, path string) (ffmpeg.ProbeInfo, error)
}

type Encoder interface {
	Encode(ctx context.Context, in, out string, p ffmpeg.EncodeParams) error
}

type Video struct {
	prober      Prober
	encoder     Encoder
	scratchDir  string
	toleranceMB float64
	audioKbps   int
	log         zerolog.Logger
}

func NewVideo(prober Prober, encoder Encoder, scratchDir string, toleranceMB float64, audioKbps int, log zerolog.Logger) *Video {
	return &Video{
		prober:      prober,
		encoder:     encoder,
		scratchDir:  scratchDir,
		toleranceMB: toleranceMB,
		audioKbps:   audioKbps,
		log:         log,
	}
}

// Compress iteratively re-encodes src until the output lands within the
// tolerance window around the resolved target size. Each attempt derives
// scale, CRF and bitrate from the current working target; the working target
// is widened (x1.2) when the output undershoots the window and tightened
// (x0.8) when it overshoots. Unlike the image path this one refuses to return
// an out-of-tolerance artifact: exhausting the attempt budget is an error.
//
// Scratch input and output files are removed on every exit path.
func (c *Video) Compress(ctx context.Context, src []byte, spec entities.SizeSpec, ext string, originalMB float64) (entities.CompressionResult, error) {
	targetMB := spec.Resolve(originalMB)
	tolLow, tolHigh := targetMB-c.toleranceMB, targetMB+c.toleranceMB

	inPath := c.scratchPath("in", ext)
	if err := os.WriteFile(inPath, src, 0o644); err != nil {
		return entities.CompressionResult{}, fmt.Errorf("writing scratch input: %w", err)
	}
	defer os.Remove(inPath)

	info, err := c.prober.Probe(ctx, inPath)
	if err != nil {
		c.log.Warn().Err(err).Msg("probe failed, using defaults")
	}
	duration := info.DurationSeconds
	if duration <= 0 {
		duration = defaultDuration
	}
	origW, origH := info.Width, info.Height
	if origW <= 0 {
		origW = defaultWidth
	}
	if origH <= 0 {
		origH = defaultHeight
	}

	workingMB := targetMB
	var outPath string
	var actualMB float64
	converged := false

	defer func() {
		if outPath != "" {
			os.Remove(outPath)
		}
	}()

	for attempt := 1; attempt <= videoMaxAttempts; attempt++ {
		if outPath != "" {
			os.Remove(outPath)
		}
		outPath = c.scratchPath("out", ".mp4")

		params := c.deriveParams(workingMB, originalMB, duration, origW, origH)

		c.log.Info().Int("attempt", attempt).Float64("working_target_mb", workingMB).
			Int("width", params.Width).Int("height", params.Height).
			Int("crf", params.CRF).Int("video_kbps", params.VideoBitrateKbps).
			Msg("video encode attempt")

		if err := c.encoder.Encode(ctx, inPath, outPath, params); err != nil {
			return entities.CompressionResult{}, err
		}

		st, err := os.Stat(outPath)
		if err != nil {
			return entities.CompressionResult{}, fmt.Errorf("measuring output: %w", err)
		}
		actualMB = float64(st.Size()) / (1024 * 1024)

		switch {
		case actualMB < tolLow:
			workingMB *= 1.2
		case actualMB > tolHigh:
			workingMB *= 0.8
		default:
			converged = true
		}
		if converged {
			break
		}
	}

	if actualMB < tolLow || actualMB > tolHigh {
		return entities.CompressionResult{}, fmt.Errorf("%w: %.2fMB after %d attempts, wanted [%.2f, %.2f]",
			ErrNonConvergence, actualMB, videoMaxAttempts, tolLow, tolHigh)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return entities.CompressionResult{}, fmt.Errorf("reading output: %w", err)
	}

	originalBytes := originalMB * 1024 * 1024
	return entities.CompressionResult{
		Bytes:            out,
		SizeReductionPct: entities.ReductionPercent(int(originalBytes), len(out)),
	}, nil
}

func (c *Video) deriveParams(workingMB, originalMB, duration float64, origW, origH int) ffmpeg.EncodeParams {
	ratio := math.Max(videoMinRatio, workingMB/originalMB)

	height := int(math.Round(float64(origH) * math.Pow(ratio, 0.8)))
	if height < videoMinHeight {
		height = videoMinHeight
	}
	if height > origH {
		height = origH
	}
	height -= height % 2

	width := int(math.Round(float64(origW) * float64(height) / float64(origH)))
	width -= width % 2

	crf := int(math.Round(24 - (originalMB-workingMB)*0.5))
	if crf < videoMinCRF {
		crf = videoMinCRF
	}
	if crf > videoMaxCRF {
		crf = videoMaxCRF
	}

	// 1.1 reserves headroom for container overhead.
	videoKbps := (workingMB*8*1024*1.1 - float64(c.audioKbps)*duration) / duration
	if videoKbps < videoMinBitrate {
		videoKbps = videoMinBitrate
	}

	return ffmpeg.EncodeParams{
		Width:            width,
		Height:           height,
		CRF:              crf,
		VideoBitrateKbps: int(videoKbps),
		AudioBitrateKbps: c.audioKbps,
	}
}

// Per-job names carry a timestamp and a uuid so concurrent or crashed jobs
// can never collide on scratch files.
func (c *Video) scratchPath(tag, ext string) string {
	name := fmt.Sprintf("compress-%s-%d-%s%s", tag, time.Now().UnixNano(), uuid.NewString(), ext)
	return filepath.Join(c.scratchDir, name)
}
