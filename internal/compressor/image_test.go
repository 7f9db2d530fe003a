package compressor

import (
	"bytes"
	"image"
	"image/jpeg"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
)

// fakeEncoder produces quality*1000 bytes, a monotone size curve.
type fakeEncoder struct {
	calls int
}

func (f *fakeEncoder) Encode(src []byte, ext string, quality int) ([]byte, error) {
	f.calls++
	return make([]byte, quality*1000), nil
}

func TestImageCompressConverges(t *testing.T) {
	enc := &fakeEncoder{}
	c := NewImageWithEncoder(enc, zerolog.Nop())

	src := make([]byte, 500*1024)
	res, err := c.Compress(src, ".jpg", 50)
	require.NoError(t, err)

	kb := float64(len(res.Bytes)) / 1024
	require.GreaterOrEqual(t, kb, 50*0.95)
	require.LessOrEqual(t, kb, 50*1.05)
	require.LessOrEqual(t, enc.calls, imageMaxIterations)
	require.InDelta(t, entities.ReductionPercent(len(src), len(res.Bytes)), res.SizeReductionPct, 0.001)
}

func TestImageCompressFallsBackToOriginalWhenEverythingOvershoots(t *testing.T) {
	enc := &fakeEncoder{}
	c := NewImageWithEncoder(enc, zerolog.Nop())

	// Even quality 1 produces ~1KB, far above a 0.1KB target.
	src := []byte("original")
	res, err := c.Compress(src, ".jpg", 0.1)
	require.NoError(t, err)
	require.Equal(t, src, res.Bytes)
	require.LessOrEqual(t, enc.calls, imageMaxIterations)
}

func TestImageCompressKeepsLargestUnderTargetCandidate(t *testing.T) {
	enc := &fakeEncoder{}
	c := NewImageWithEncoder(enc, zerolog.Nop())

	// Every encode is under a huge target; the search walks quality up to 100
	// and must keep the largest candidate.
	src := make([]byte, 500*1024)
	res, err := c.Compress(src, ".jpg", 1000)
	require.NoError(t, err)
	require.Equal(t, 100*1000, len(res.Bytes))
	require.LessOrEqual(t, enc.calls, imageMaxIterations)
}

func TestImageCompressWithRealCodec(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	src := buf.Bytes()

	c := NewImage(zerolog.Nop())
	res, err := c.Compress(src, ".jpg", float64(len(src))/1024/2)
	require.NoError(t, err)
	require.NotEmpty(t, res.Bytes)
	require.LessOrEqual(t, len(res.Bytes), len(src))
}
