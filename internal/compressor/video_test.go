package compressor

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/ffmpeg"
)

type fakeProber struct {
	info ffmpeg.ProbeInfo
	err  error
}

func (p fakeProber) Probe(ctx context.Context, path string) (ffmpeg.ProbeInfo, error) {
	return p.info, p.err
}

// fakeVideoEncoder writes outputs of scripted sizes, one per attempt.
type fakeVideoEncoder struct {
	sizesMB []float64
	params  []ffmpeg.EncodeParams
	err     error
}

func (e *fakeVideoEncoder) Encode(ctx context.Context, in, out string, p ffmpeg.EncodeParams) error {
	if e.err != nil {
		return e.err
	}
	e.params = append(e.params, p)
	idx := len(e.params) - 1
	if idx >= len(e.sizesMB) {
		idx = len(e.sizesMB) - 1
	}
	return os.WriteFile(out, make([]byte, int(e.sizesMB[idx]*1024*1024)), 0o644)
}

func mustSpec(t *testing.T, raw string) entities.SizeSpec {
	t.Helper()
	spec, err := entities.ParseSizeSpec(raw)
	require.NoError(t, err)
	return spec
}

func probe720p60s() fakeProber {
	return fakeProber{info: ffmpeg.ProbeInfo{DurationSeconds: 60, Width: 1280, Height: 720}}
}

func TestVideoCompressConvergesAfterAdjustment(t *testing.T) {
	dir := t.TempDir()
	enc := &fakeVideoEncoder{sizesMB: []float64{2.0, 1.2}}
	c := NewVideo(probe720p60s(), enc, dir, 0.5, 64, zerolog.Nop())

	res, err := c.Compress(context.Background(), []byte("source video"), mustSpec(t, "1"), ".mp4", 10)
	require.NoError(t, err)
	require.Len(t, enc.params, 2)
	require.InDelta(t, 1.2, float64(len(res.Bytes))/(1024*1024), 0.01)

	// Scratch files must be gone on success.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestVideoCompressDerivedParamsStayInBounds(t *testing.T) {
	enc := &fakeVideoEncoder{sizesMB: []float64{5.0}}
	c := NewVideo(probe720p60s(), enc, t.TempDir(), 0.5, 64, zerolog.Nop())

	// 10MB original, absolute 5MB target: the end-to-end scenario.
	_, err := c.Compress(context.Background(), []byte("source video"), mustSpec(t, "5"), ".mp4", 10)
	require.NoError(t, err)
	require.Len(t, enc.params, 1)

	p := enc.params[0]
	require.LessOrEqual(t, p.Height, 720)
	require.Zero(t, p.Height%2)
	require.Zero(t, p.Width%2)
	require.GreaterOrEqual(t, p.CRF, videoMinCRF)
	require.LessOrEqual(t, p.CRF, videoMaxCRF)
	require.GreaterOrEqual(t, p.VideoBitrateKbps, videoMinBitrate)
	require.Equal(t, 64, p.AudioBitrateKbps)
}

func TestVideoCompressFailsWithoutConvergence(t *testing.T) {
	dir := t.TempDir()
	enc := &fakeVideoEncoder{sizesMB: []float64{3.0}} // always far above 1 +/- 0.5
	c := NewVideo(probe720p60s(), enc, dir, 0.5, 64, zerolog.Nop())

	_, err := c.Compress(context.Background(), []byte("source video"), mustSpec(t, "1"), ".mp4", 10)
	require.ErrorIs(t, err, ErrNonConvergence)
	require.Len(t, enc.params, videoMaxAttempts)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestVideoCompressCleansUpOnEncoderFailure(t *testing.T) {
	dir := t.TempDir()
	enc := &fakeVideoEncoder{err: errors.New("encoder exploded")}
	c := NewVideo(probe720p60s(), enc, dir, 0.5, 64, zerolog.Nop())

	_, err := c.Compress(context.Background(), []byte("source video"), mustSpec(t, "1"), ".mp4", 10)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestVideoCompressUsesProbeDefaults(t *testing.T) {
	enc := &fakeVideoEncoder{sizesMB: []float64{1.0}}
	c := NewVideo(fakeProber{err: errors.New("probe failed")}, enc, t.TempDir(), 0.5, 64, zerolog.Nop())

	_, err := c.Compress(context.Background(), []byte("source video"), mustSpec(t, "1"), ".mp4", 10)
	require.NoError(t, err)
	require.Len(t, enc.params, 1)

	// Defaults are 1280x720; the ratio clamp keeps the scale at or above 60%.
	require.LessOrEqual(t, enc.params[0].Height, 720)
	require.GreaterOrEqual(t, enc.params[0].Height, videoMinHeight)
}
