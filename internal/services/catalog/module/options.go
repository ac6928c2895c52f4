package module

import "chatmirror/internal/platform/config"

// Options holds configuration settings for the catalog module
type Options struct {
	ChunkSize int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CORE_CATALOG_")
	return Options{
		ChunkSize: cf.MayInt("CHUNK_SIZE", 550),
	}
}
