// Package ffmpeg wraps the external ffmpeg/ffprobe binaries behind explicit
// process handles: captured stderr, a hard wall-clock timeout, and guaranteed
// termination via context cancellation.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrEncodeProcess = errors.New("encoder process failed")

// ProbeInfo holds the subset of stream/container metadata the video search
// needs. Zero fields mean the probe produced no value for them.
type ProbeInfo struct {
	DurationSeconds float64
	Width           int
	Height          int
}

type EncodeParams struct {
	Width            int
	Height           int
	CRF              int
	VideoBitrateKbps int
	AudioBitrateKbps int
}

type FFmpeg struct {
	ffmpegBin  string
	ffprobeBin string
	timeout    time.Duration
	log        zerolog.Logger
}

func New(ffmpegBin, ffprobeBin string, timeout time.Duration, log zerolog.Logger) *FFmpeg {
	return &FFmpeg{
		ffmpegBin:  ffmpegBin,
		ffprobeBin: ffprobeBin,
		timeout:    timeout,
		log:        log,
	}
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads duration and dimensions of the video at path. A failed probe is
// not fatal to the caller: missing values stay zero and the caller applies its
// own defaults.
func (f *FFmpeg) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.ffprobeBin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return ProbeInfo{}, fmt.Errorf("ffprobe: %v: %s", err, lastLine(string(ee.Stderr)))
		}
		return ProbeInfo{}, fmt.Errorf("ffprobe: %v", err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return ProbeInfo{}, fmt.Errorf("ffprobe: parsing output: %v", err)
	}

	info := ProbeInfo{}
	if len(parsed.Streams) > 0 {
		info.Width = parsed.Streams[0].Width
		info.Height = parsed.Streams[0].Height
	}
	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		info.DurationSeconds = d
	}
	return info, nil
}

// Encode transcodes in to out as H.264/AAC with the given scale, CRF and
// bitrate. An abnormal process exit (or hitting the timeout) surfaces as an
// error wrapping ErrEncodeProcess with the tail of stderr attached.
func (f *FFmpeg) Encode(ctx context.Context, in, out string, p EncodeParams) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-i", in,
		"-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height),
		"-c:v", "libx264",
		"-crf", strconv.Itoa(p.CRF),
		"-b:v", fmt.Sprintf("%dk", p.VideoBitrateKbps),
		"-maxrate", fmt.Sprintf("%dk", p.VideoBitrateKbps),
		"-bufsize", fmt.Sprintf("%dk", p.VideoBitrateKbps*2),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", p.AudioBitrateKbps),
		"-y",
		out,
	}

	f.log.Debug().Strs("args", args).Msg("starting ffmpeg")

	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: timed out after %v", ErrEncodeProcess, f.timeout)
		}
		return fmt.Errorf("%w: %v: %s", ErrEncodeProcess, err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
