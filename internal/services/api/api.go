// Package api assembles the sync modules and their HTTP surface
package api

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatmirror/internal/platform/config"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/metrics"
	phttp "chatmirror/internal/platform/net/http"
	"chatmirror/internal/platform/net/middleware"
	"chatmirror/internal/platform/store"

	"chatmirror/internal/modkit"
	"chatmirror/internal/modkit/httpkit"
	"chatmirror/internal/modkit/module"
	"chatmirror/internal/modkit/swaggerkit"

	"chatmirror/internal/adapters/source"

	metamod "chatmirror/internal/services/api/meta/module"
	opsmod "chatmirror/internal/services/api/ops/module"
	archivemod "chatmirror/internal/services/archive/module"
	bfdom "chatmirror/internal/services/backfill/domain"
	backfillmod "chatmirror/internal/services/backfill/module"
	catalogmod "chatmirror/internal/services/catalog/module"
	livesyncmod "chatmirror/internal/services/livesync/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount assembles the service modules, registers their ports and mounts
// the HTTP surface. The long-running loops (flush ticker, backfill cron)
// stay with the caller: pull the Runner ports from the module registry
// after Mount returns and drive them from main
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
		Met: opt.Metrics,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// one client per process keeps token rotation and rate-limit state
	// coherent across catalog resync and backfill streaming
	src := sourceFromConfig(opt.Config, opt.Metrics)

	catalogMod := catalogmod.New(deps, modkit.WithPorts(catalogmod.In{
		Source: src,
	}))
	catPorts := catalogMod.Ports().(catalogmod.Ports)

	archiveMod := archivemod.New(deps)
	var extra []bfdom.CollectorFactory
	if f := archiveMod.Ports().(archivemod.Ports).Factory; f != nil {
		extra = append(extra, f)
	}

	backfillMod := backfillmod.New(deps, modkit.WithPorts(backfillmod.In{
		History: src,
		Store:   catPorts.Store,
		Resync:  catPorts.Resync,
		Extra:   extra,
	}))
	bfPorts := backfillMod.Ports().(backfillmod.Ports)

	livesyncMod := livesyncmod.New(deps, modkit.WithPorts(livesyncmod.In{
		Store:  catPorts.Store,
		Backup: bfPorts.Backup,
	}))
	lsPorts := livesyncMod.Ports().(livesyncmod.Ports)

	opsMod := opsmod.New(deps, modkit.WithPorts(opsmod.In{
		Trigger:  bfPorts.Trigger,
		Windows:  bfPorts.Status,
		Catalog:  catPorts.Status,
		Dispatch: lsPorts.Dispatch,
		Flush:    lsPorts.Flush,
		Queues:   lsPorts.Status,
	}))

	metaMod := metamod.New(deps)

	// ports land in the process registry so main can pull the runners
	mods := []module.Module{metaMod, catalogMod, archiveMod, backfillMod, livesyncMod, opsMod}
	for _, m := range mods {
		module.Register(m.Name(), m.Ports())
	}

	// unversioned surfaces: probes, metrics, docs, profiler
	metaMod.MountRoutes(r)
	r.Handle("/metrics", promhttp.Handler())
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned ops surface behind the shared internal key
	key := opt.Config.MayString("CORE_OPS_INTERNAL_KEY", "")
	mws := httpkit.CommonStack()
	// cap in-flight ops requests so an event flood queues at the edge
	// instead of piling goroutines onto the flusher
	if lim := opt.Config.MayInt("CORE_OPS_THROTTLE", 0); lim > 0 {
		mws = append(mws, middleware.Throttle(lim))
	}
	httpkit.MountV1(r, mws, func(api httpkit.Router) {
		httpkit.Protected(api, key, func(pr httpkit.Router) {
			opsMod.MountRoutes(pr)
		})
	})
}

// sourceFromConfig builds the shared platform API client
func sourceFromConfig(cfg config.Conf, met *metrics.Metrics) *source.Client {
	s := cfg.Prefix("CORE_SOURCE_")
	return source.NewClient(source.Options{
		BaseURL:    s.MustString("BASE_URL"),
		UserAgent:  s.MayString("USER_AGENT", ""),
		Timeout:    s.MayDuration("TIMEOUT", 0),
		TokensCSV:  s.MayString("TOKENS", ""),
		MaxRetries: s.MayInt("MAX_RETRIES", 0),
		RetryBase:  s.MayDuration("RETRY_BASE", 0),
		Metrics:    met,
	})
}
