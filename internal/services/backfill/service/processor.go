package service

import (
	"context"
	"errors"
	"io"

	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/services/backfill/domain"
	"chatmirror/internal/services/backfill/guardrails"
)

// Processor runs one window to completion: it streams every live channel's
// history inside the window bounds, fans each message out to every collector,
// flushes at channel boundaries, and marks the checkpoint finished once all
// channels pass. A Forbidden or NotFound channel is skipped; any other error
// leaves the window unfinished for the next retry pass
type Processor struct {
	History     domain.HistoryPort
	Channels    domain.ChannelsPort
	Checkpoints domain.CheckpointPort
	Collectors  domain.CollectorFactory
	Budget      guardrails.Timeouts
}

// NewProcessor constructs a processor. Nil deps are programmer error
func NewProcessor(
	history domain.HistoryPort,
	channels domain.ChannelsPort,
	checkpoints domain.CheckpointPort,
	collectors domain.CollectorFactory,
	budget guardrails.Timeouts,
) *Processor {
	if history == nil {
		panic("backfill.NewProcessor: nil history")
	}
	if channels == nil {
		panic("backfill.NewProcessor: nil channels")
	}
	if checkpoints == nil {
		panic("backfill.NewProcessor: nil checkpoints")
	}
	if collectors == nil {
		panic("backfill.NewProcessor: nil collector factory")
	}
	return &Processor{
		History:     history,
		Channels:    channels,
		Checkpoints: checkpoints,
		Collectors:  collectors,
		Budget:      budget,
	}
}

// Process implements domain.ProcessorPort
func (p *Processor) Process(ctx context.Context, w domain.SyncWindow, isFirst bool) error {
	ctx, cancel := guardrails.WithWindow(ctx, p.Budget)
	defer cancel()

	l := logger.C(ctx).With().
		Str("mod", "backfill").
		Int64("tenant_id", w.TenantID).
		Time("from", w.From).
		Time("to", w.To).
		Logger()

	chans, err := p.Channels.Channels(ctx, w.TenantID)
	if err != nil {
		return err
	}

	cols := p.Collectors(w.TenantID)
	var drained, skipped int
	for _, ch := range chans {
		if ch.LastMessageID == nil {
			// never held a message, nothing to stream
			continue
		}

		streamErr := p.drainChannel(ctx, ch.ID, w, cols)

		// flush whatever this channel contributed before judging the error,
		// so per-channel progress is durable even when a later channel fails
		if err := p.flushAll(ctx, cols); err != nil {
			return err
		}

		if streamErr != nil {
			if skippable(streamErr) {
				l.Warn().Int64("channel_id", ch.ID).Err(streamErr).Msg("backfill: channel skipped")
				skipped++
				continue
			}
			return streamErr
		}
		drained++
	}

	if err := p.Checkpoints.FinishWindow(ctx, w.TenantID, w.From, w.To, isFirst); err != nil {
		return err
	}

	l.Info().
		Int("channels", drained).
		Int("skipped", skipped).
		Bool("is_first", isFirst).
		Msg("backfill: window finished")
	return nil
}

// drainChannel streams one channel's slice of the window into the collectors
func (p *Processor) drainChannel(
	ctx context.Context,
	channelID int64,
	w domain.SyncWindow,
	cols []domain.Collector,
) error {
	cctx, cancel := guardrails.ForChannel(ctx, p.Budget)
	defer cancel()

	stream, err := p.History.History(cctx, channelID, w.From, w.To)
	if err != nil {
		return err
	}
	for {
		m, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, c := range cols {
			c.Add(m)
		}
	}
}

// flushAll drains every collector in registration order
func (p *Processor) flushAll(ctx context.Context, cols []domain.Collector) error {
	fctx, cancel := guardrails.ForFlush(ctx, p.Budget)
	defer cancel()

	for _, c := range cols {
		if err := c.Flush(fctx); err != nil {
			return perr.WithOp(err, "backfill.flush."+c.Name())
		}
	}
	return nil
}

// skippable reports channel-scoped failures that abort only the channel
func skippable(err error) bool {
	return perr.IsCode(err, perr.ErrorCodeForbidden) || perr.IsCode(err, perr.ErrorCodeNotFound)
}
