// Package metrics exposes prometheus instrumentation for the compression
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compress_jobs_total",
		Help: "Compression jobs by media kind and outcome.",
	}, []string{"kind", "outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compress_cache_hits_total",
		Help: "Requests served from the artifact cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compress_cache_misses_total",
		Help: "Requests that had to run a compression.",
	})

	QueueRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compress_queue_rejections_total",
		Help: "Jobs rejected because the queue was at capacity.",
	})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compress_job_duration_seconds",
		Help:    "End-to-end compression job duration by media kind.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"kind"})
)
