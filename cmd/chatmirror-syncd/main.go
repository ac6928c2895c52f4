// @title         Chatmirror Ops API
// @version       0.1.0
// @description   Operational endpoints for the chat platform sync daemon

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chatmirror/internal/modkit/module"
	"chatmirror/internal/modkit/repokit"
	"chatmirror/internal/platform/config"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/metrics"
	phttp "chatmirror/internal/platform/net/http"
	"chatmirror/internal/platform/store"

	"chatmirror/internal/services/api"
	backfillmod "chatmirror/internal/services/backfill/module"
	livesyncmod "chatmirror/internal/services/livesync/module"
)

func main() {
	// .env is developer convenience; the real environment always wins
	_ = godotenv.Load()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	opsCfg := root.Prefix("CORE_")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "chatmirror-syncd",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", false),
			URL:        chCfg.MayString("DBURL", ""),
			ClientRole: "syncd",
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

	guardCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = st.Guard(guardCtx)
	cancel()
	if err != nil {
		l.Panic().Err(err).Msg("store readiness guard failed")
	}

	// every transaction carries a statement timeout so one wedged upsert
	// cannot hold a sync window open forever
	st.PG = repokit.WithBeginHooks(st.PG, repokit.StatementTimeout(
		pgCfg.MayDuration("STMT_TIMEOUT", 30*time.Second),
	))

	met := metrics.New(nil)
	if err := met.Register(); err != nil {
		l.Panic().Err(err).Msg("metrics registration failed")
	}

	// http server reads CORE_OPS_ADDR
	srv := phttp.NewServer(opsCfg)

	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		Metrics:        met,
		EnableSwagger:  opsCfg.MayBool("OPS_SWAGGER", false),
		EnableProfiler: opsCfg.MayBool("OPS_PROFILER", false),
	})

	bf, ok := module.PortsAs[backfillmod.Ports]("backfill")
	if !ok {
		l.Panic().Msg("backfill ports missing from registry")
	}
	ls, ok := module.PortsAs[livesyncmod.Ports]("livesync")
	if !ok {
		l.Panic().Msg("livesync ports missing from registry")
	}

	go func() {
		if err := ls.Runner.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error().Err(err).Msg("flush loop stopped")
			stop()
		}
	}()
	go func() {
		if err := bf.Runner.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error().Err(err).Msg("backfill cron stopped")
			stop()
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("chatmirror-syncd stopped")
}
