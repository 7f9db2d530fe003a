package use_case

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/cache"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/metrics"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/queue"
)

type CacheStore interface {
	Get(key string) ([]byte, error)
	Store(key string, data []byte) error
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type ImageCompressor interface {
	Compress(src []byte, ext string, targetKB float64) (entities.CompressionResult, error)
}

type VideoCompressor interface {
	Compress(ctx context.Context, src []byte, spec entities.SizeSpec, ext string, originalMB float64) (entities.CompressionResult, error)
}

type Uploader interface {
	Upload(ctx context.Context, key string, contentType string, payload []byte) (string, error)
}

type useCase struct {
	cache    CacheStore
	fetcher  Fetcher
	image    ImageCompressor
	video    VideoCompressor
	uploader Uploader
	wqueue   *queue.Queue
	log      zerolog.Logger
}

func New(cache CacheStore, fetcher Fetcher, image ImageCompressor, video VideoCompressor, uploader Uploader, wqueue *queue.Queue, log zerolog.Logger) *useCase {
	return &useCase{
		cache:    cache,
		fetcher:  fetcher,
		image:    image,
		video:    video,
		uploader: uploader,
		wqueue:   wqueue,
		log:      log,
	}
}

// Compress validates the request, then dispatches the whole
// cache-fetch-compress-upload pipeline through the job queue so only one
// compression runs at a time. Both cache-hit and miss paths upload the
// artifact; the CDN link in the response always points at a fresh object.
func (c *useCase) Compress(ctx context.Context, rawURL, rawSize string) (entities.CompressionResult, error) {
	spec, err := entities.ParseSizeSpec(rawSize)
	if err != nil {
		return entities.CompressionResult{}, err
	}
	kind, ext, err := entities.ClassifyURL(rawURL)
	if err != nil {
		return entities.CompressionResult{}, err
	}
	if err := spec.Validate(kind); err != nil {
		return entities.CompressionResult{}, err
	}

	key := cache.Key(rawURL, rawSize)

	done, err := c.wqueue.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
		start := time.Now()
		res, err := c.run(ctx, key, rawURL, spec, kind, ext)

		label := "image"
		if kind == entities.MediaVideo {
			label = "video"
		}
		metrics.JobDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.JobsTotal.WithLabelValues(label, outcome).Inc()

		return res, err
	})
	if err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			metrics.QueueRejections.Inc()
		}
		return entities.CompressionResult{}, err
	}

	select {
	case r := <-done:
		return r.Res, r.Err
	case <-ctx.Done():
		return entities.CompressionResult{}, ctx.Err()
	}
}

func (c *useCase) run(ctx context.Context, key, rawURL string, spec entities.SizeSpec, kind entities.MediaKind, ext string) (entities.CompressionResult, error) {
	res, err := c.resolve(ctx, key, rawURL, spec, kind, ext)
	if err != nil {
		return entities.CompressionResult{}, err
	}

	contentType := mimetype.Detect(res.Bytes).String()
	link, err := c.uploader.Upload(ctx, objectKey(key, kind), contentType, res.Bytes)
	if err != nil {
		return entities.CompressionResult{}, err
	}
	res.Link = link
	return res, nil
}

func (c *useCase) resolve(ctx context.Context, key, rawURL string, spec entities.SizeSpec, kind entities.MediaKind, ext string) (entities.CompressionResult, error) {
	cached, err := c.cache.Get(key)
	if err == nil {
		c.log.Info().Str("key", key).Msg("serving compressed artifact from cache")
		metrics.CacheHits.Inc()
		return entities.CompressionResult{Bytes: cached, FromCache: true}, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		return entities.CompressionResult{}, err
	}
	metrics.CacheMisses.Inc()

	src, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return entities.CompressionResult{}, err
	}

	var res entities.CompressionResult
	switch kind {
	case entities.MediaImage:
		targetKB := spec.Resolve(float64(len(src)) / 1024)
		res, err = c.image.Compress(src, ext, targetKB)
	case entities.MediaVideo:
		originalMB := float64(len(src)) / (1024 * 1024)
		res, err = c.video.Compress(ctx, src, spec, ext, originalMB)
	default:
		err = fmt.Errorf("%w: %q", entities.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return entities.CompressionResult{}, err
	}

	if err := c.cache.Store(key, res.Bytes); err != nil {
		// A cache write failure costs a recompute later, not the response.
		c.log.Warn().Err(err).Str("key", key).Msg("failed to cache compressed artifact")
	}
	return res, nil
}

// The output container is fixed per media kind regardless of input extension.
func objectKey(key string, kind entities.MediaKind) string {
	if kind == entities.MediaVideo {
		return key + ".mp4"
	}
	return key + ".jpg"
}
