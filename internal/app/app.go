package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/cache"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/compressor"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/config"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/fetcher"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/ffmpeg"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/middleware"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/queue"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/r2"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/transport/handler"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/transport/router"
	use_case "github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/use-case"
)

type App struct {
	HttpServer *http.Server

	wqueue  *queue.Queue
	limiter *middleware.RateLimiter
	cancel  context.CancelFunc
	log     zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	store, err := cache.NewCache(cfg.Cache.Dir, cfg.Cache.TTLSeconds*time.Second)
	if err != nil {
		cancel()
		return nil, err
	}

	f := fetcher.New(cfg.Fetch.Timeout*time.Second, cfg.Fetch.MaxSizeMB, log)

	ff := ffmpeg.New(cfg.Compression.FFmpegBin, cfg.Compression.FFprobeBin,
		cfg.Compression.EncodeTimeout*time.Second, log)

	img := compressor.NewImage(log)
	vid := compressor.NewVideo(ff, ff, cfg.Compression.ScratchDir,
		cfg.Compression.ToleranceMB, cfg.Compression.AudioBitrateKbps, log)

	wqueue := queue.New(ctx, cfg.Queue.Capacity, log)

	r2Storage, err := r2.NewStorage(&cfg.R2, log)
	if err != nil {
		cancel()
		return nil, err
	}

	uc := use_case.New(store, f, img, vid, r2Storage, wqueue, log)

	var rl *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rl = middleware.NewRateLimiter(cfg.RateLimit.GlobalRate, cfg.RateLimit.GlobalBurst,
			cfg.RateLimit.PerIPRate, cfg.RateLimit.PerIPBurst)
	}

	h := handler.New(uc, log)
	r := router.NewRouter(h, rl)

	s := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout * time.Second,
	}

	return &App{
		HttpServer: s,
		wqueue:     wqueue,
		limiter:    rl,
		cancel:     cancel,
		log:        log,
	}, nil
}

func (a *App) Run() error {
	a.log.Info().Str("addr", a.HttpServer.Addr).Msg("starting server")
	if err := a.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drains the job queue and releases the
// worker and the limiter's cleanup goroutine.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.HttpServer.Shutdown(ctx)
	a.wqueue.Close()
	a.cancel()
	if a.limiter != nil {
		a.limiter.Stop()
	}
	return err
}
