package module

import (
	"time"

	"chatmirror/internal/platform/config"
)

// Options holds configuration options for the backfill service
type Options struct {
	Workers        int
	RetryDelay     time.Duration
	WindowDelay    time.Duration
	MaxRetryPasses int
	Cron           string
	ChunkSize      int

	WindowTimeout  time.Duration
	ChannelTimeout time.Duration
	FlushTimeout   time.Duration
}

// FromConfig reads the backfill options from config with CORE_BACKFILL_ prefix
func FromConfig(cfg config.Conf) Options {
	bf := cfg.Prefix("CORE_BACKFILL_")
	return Options{
		Workers:        bf.MayInt("WORKERS", 4),
		RetryDelay:     bf.MayDuration("RETRY_DELAY", 3*time.Second),
		WindowDelay:    bf.MayDuration("WINDOW_DELAY", 2*time.Second),
		MaxRetryPasses: bf.MayInt("MAX_RETRY_PASSES", 10),
		Cron:           bf.MayString("CRON", "0 3 * * 1"),
		ChunkSize:      bf.MayInt("CHUNK_SIZE", 550),
		WindowTimeout:  bf.MayDuration("WINDOW_TIMEOUT", 30*time.Minute),
		ChannelTimeout: bf.MayDuration("CHANNEL_TIMEOUT", 10*time.Minute),
		FlushTimeout:   bf.MayDuration("FLUSH_TIMEOUT", 2*time.Minute),
	}
}
