package module

import (
	"chatmirror/internal/platform/config"
)

// Options configures the archive mirror
type Options struct {
	Enabled   bool
	ChunkSize int
}

// FromConfig loads archive options from env config
func FromConfig(cfg config.Conf) Options {
	a := cfg.Prefix("CORE_ARCHIVE_")
	return Options{
		Enabled:   a.MayBool("ENABLED", true),
		ChunkSize: a.MayInt("CHUNK_SIZE", 550),
	}
}
