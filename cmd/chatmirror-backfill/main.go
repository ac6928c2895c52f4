package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chatmirror/internal/adapters/source"
	"chatmirror/internal/modkit"
	"chatmirror/internal/modkit/module"
	"chatmirror/internal/modkit/repokit"
	"chatmirror/internal/platform/config"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/store"

	archivemod "chatmirror/internal/services/archive/module"
	bfdom "chatmirror/internal/services/backfill/domain"
	backfillmod "chatmirror/internal/services/backfill/module"
	catalogmod "chatmirror/internal/services/catalog/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	_ = godotenv.Load()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	var (
		fTenant     = flag.Int64("tenant", 0, "tenant snowflake id to back up")
		fAll        = flag.Bool("all", false, "back up every known tenant")
		fResyncOnly = flag.Bool("resync-only", false, "refresh the structural catalog for -tenant and exit")
		fLoop       = flag.Bool("loop", false, "run the cron schedule in the foreground instead of a one-shot")
		fWorkers    = flag.Int("workers", 0, "concurrent tenants during -all (0 = config default)")
		fTokens     = flag.String("tokens", "", "comma-separated source API tokens (overrides env)")
	)
	flag.Parse()

	if *fTenant != 0 && *fAll {
		l.Panic().Msg("-tenant and -all are mutually exclusive")
	}
	if *fResyncOnly && *fTenant == 0 {
		l.Panic().Msg("-resync-only requires -tenant")
	}
	if !*fLoop && !*fAll && !*fResyncOnly && *fTenant == 0 {
		l.Panic().Msg("one of -tenant, -all, -resync-only or -loop is required")
	}

	// surface flag overrides to the modules that read FromConfig
	if *fWorkers > 0 {
		mustSetEnv("CORE_BACKFILL_WORKERS", strconv.Itoa(*fWorkers))
	}
	mustSetEnv("CORE_SOURCE_TOKENS", *fTokens)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	st, err := store.Open(ctx, store.Config{
		AppName: "chatmirror-backfill",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", false),
			URL:        chCfg.MayString("DBURL", ""),
			ClientRole: "backfill",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	guardCtx, cancelGuard := context.WithTimeout(ctx, 10*time.Second)
	repokit.MustGuard(guardCtx, st)
	cancelGuard()

	deps := modkit.Deps{
		Cfg: root,
		Log: *l,
		PG:  st.PG,
		CH:  st.CH,
	}

	srcCfg := root.Prefix("CORE_SOURCE_")
	src := source.NewClient(source.Options{
		BaseURL:    srcCfg.MustString("BASE_URL"),
		UserAgent:  srcCfg.MayString("USER_AGENT", ""),
		Timeout:    srcCfg.MayDuration("TIMEOUT", 0),
		TokensCSV:  srcCfg.MayString("TOKENS", ""),
		MaxRetries: srcCfg.MayInt("MAX_RETRIES", 0),
		RetryBase:  srcCfg.MayDuration("RETRY_BASE", 0),
	})

	cat := catalogmod.New(deps, modkit.WithPorts(catalogmod.In{Source: src}))
	catPorts := cat.Ports().(catalogmod.Ports)

	arc := archivemod.New(deps)
	var extra []bfdom.CollectorFactory
	if f := arc.Ports().(archivemod.Ports).Factory; f != nil {
		extra = append(extra, f)
	}

	bf := backfillmod.New(deps, modkit.WithPorts(backfillmod.In{
		History: src,
		Store:   catPorts.Store,
		Resync:  catPorts.Resync,
		Extra:   extra,
	}))

	module.Register(cat.Name(), cat.Ports())
	module.Register(arc.Name(), arc.Ports())
	module.Register(bf.Name(), bf.Ports())

	ports := bf.Ports().(backfillmod.Ports)

	switch {
	case *fResyncOnly:
		if err := catPorts.Resync.Resync(ctx, *fTenant); err != nil {
			l.Fatal().Err(err).Int64("tenant_id", *fTenant).Msg("catalog resync failed")
		}

	case *fLoop:
		l.Info().Msg("running backfill schedule in the foreground")
		if err := ports.Runner.Loop(ctx); err != nil && ctx.Err() == nil {
			l.Fatal().Err(err).Msg("backfill schedule stopped")
		}

	case *fAll:
		if err := ports.Backup.BackupAll(ctx); err != nil {
			l.Fatal().Err(err).Msg("fleet backup failed")
		}

	default:
		if err := ports.Backup.BackupTenant(ctx, *fTenant); err != nil {
			l.Fatal().Err(err).Int64("tenant_id", *fTenant).Msg("tenant backup failed")
		}
	}
}
