package config

import (
	"encoding/json"
	"os"
)

// Create new config instance
func NewConfig() *Config {
	return &Config{}
}

// Load configuration file in json format
func (c *Config) Read(file string) error {
	data, err := os.ReadFile(file)
	if err == nil {
		_ = json.Unmarshal(data, c)
	}
	c.applyDefaults()
	return err
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 45
	}
	if c.Fetch.MaxSizeMB == 0 {
		c.Fetch.MaxSizeMB = 500
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 3600
	}
	if c.Compression.ScratchDir == "" {
		c.Compression.ScratchDir = os.TempDir()
	}
	if c.Compression.FFmpegBin == "" {
		c.Compression.FFmpegBin = "ffmpeg"
	}
	if c.Compression.FFprobeBin == "" {
		c.Compression.FFprobeBin = "ffprobe"
	}
	if c.Compression.EncodeTimeout == 0 {
		c.Compression.EncodeTimeout = 600
	}
	if c.Compression.ToleranceMB == 0 {
		c.Compression.ToleranceMB = 0.5
	}
	if c.Compression.AudioBitrateKbps == 0 {
		c.Compression.AudioBitrateKbps = 64
	}
	if c.Queue.Capacity == 0 {
		c.Queue.Capacity = 10
	}
}
