// Package modkit provides module wiring and the shared dep bundle
package modkit

import (
	"chatmirror/internal/modkit/repokit"
	"chatmirror/internal/platform/config"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/metrics"
	"chatmirror/internal/platform/store"
)

// Deps holds the core dependencies handed to every module.
// Wiring only, no behavior lives here.
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
	Met *metrics.Metrics
}

// ZeroOK reports that zero-value deps are usable in tests.
// Consumers still nil check the optional stores.
func (d Deps) ZeroOK() bool { return true }
