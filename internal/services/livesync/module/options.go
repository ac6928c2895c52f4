package module

import (
	"time"

	"chatmirror/internal/platform/config"
)

// Options holds configuration options for the livesync flusher
type Options struct {
	Interval     time.Duration
	InsertBudget int
	UpdateBudget int
	DeleteBudget int
}

// FromConfig reads the flusher options from config with CORE_FLUSH_ prefix
func FromConfig(cfg config.Conf) Options {
	fl := cfg.Prefix("CORE_FLUSH_")
	return Options{
		Interval:     fl.MayDuration("INTERVAL", 5*time.Minute),
		InsertBudget: fl.MayInt("INSERT_BUDGET", 1000),
		UpdateBudget: fl.MayInt("UPDATE_BUDGET", 2000),
		DeleteBudget: fl.MayInt("DELETE_BUDGET", 1000),
	}
}
