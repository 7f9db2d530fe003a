package config

import "time"

type Config struct {
	Server      ServerConfig      `json:"server"`
	Fetch       FetchConfig       `json:"fetch"`
	Cache       CacheConfig       `json:"cache"`
	Compression CompressionConfig `json:"compression"`
	Queue       QueueConfig       `json:"queue"`
	R2          R2Config          `json:"r2"`
	RateLimit   RateLimitConfig   `json:"rate_limit"`
	Sentry      SentryConfig      `json:"sentry"`
}

type ServerConfig struct {
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type FetchConfig struct {
	Timeout   time.Duration `json:"timeout"`     // per-request deadline in seconds
	MaxSizeMB int64         `json:"max_size_mb"` // hard response cap
}

type CacheConfig struct {
	Dir        string        `json:"dir"`
	TTLSeconds time.Duration `json:"ttl_seconds"`
}

type CompressionConfig struct {
	ScratchDir       string        `json:"scratch_dir"`
	FFmpegBin        string        `json:"ffmpeg_bin"`
	FFprobeBin       string        `json:"ffprobe_bin"`
	EncodeTimeout    time.Duration `json:"encode_timeout"` // wall-clock ceiling per encoder run, seconds
	ToleranceMB      float64       `json:"tolerance_mb"`   // video tolerance half-width
	AudioBitrateKbps int           `json:"audio_bitrate_kbps"`
}

type QueueConfig struct {
	Capacity int `json:"capacity"`
}

type R2Config struct {
	AccountID   string `json:"account_id"`
	BucketName  string `json:"bucket_name"`
	AccessKeyID string `json:"access_key_id"`
	SecretKey   string `json:"secret_key"`
	PublicBase  string `json:"public_base"` // public URL prefix for uploaded objects
}

type RateLimitConfig struct {
	Enabled     bool    `json:"enabled"`
	GlobalRate  float64 `json:"global_rate"`
	GlobalBurst int     `json:"global_burst"`
	PerIPRate   float64 `json:"per_ip_rate"`
	PerIPBurst  int     `json:"per_ip_burst"`
}

type SentryConfig struct {
	SentryDSN   string `json:"sentry_dsn"`
	Environment string `json:"environment"`
}
