package service

import (
	"context"

	"chatmirror/internal/services/livesync/domain"
)

// Service is the livesync surface other modules consume
type Service interface {
	domain.DispatchPort
	domain.FlushPort
	domain.StatusPort

	// Loop runs scheduled flush ticks until the context ends
	Loop(ctx context.Context) error
}

// Svc composes the queue registry, the budgeted flusher and the dispatcher
type Svc struct {
	Reg  *Registry
	Disp *Dispatcher
	Fl   *Flusher
}

// New constructs the livesync service. Nil parts are programmer error
func New(reg *Registry, disp *Dispatcher, fl *Flusher) *Svc {
	if reg == nil {
		panic("livesync.New: nil registry")
	}
	if disp == nil {
		panic("livesync.New: nil dispatcher")
	}
	if fl == nil {
		panic("livesync.New: nil flusher")
	}
	return &Svc{Reg: reg, Disp: disp, Fl: fl}
}

// Dispatch implements domain.DispatchPort
func (s *Svc) Dispatch(ctx context.Context, ev domain.Event) error {
	return s.Disp.Dispatch(ctx, ev)
}

// Flush implements domain.FlushPort
func (s *Svc) Flush(ctx context.Context) error { return s.Fl.Flush(ctx) }

// Loop implements Service
func (s *Svc) Loop(ctx context.Context) error { return s.Fl.Loop(ctx) }

// QueueDepths implements domain.StatusPort
func (s *Svc) QueueDepths() map[string]int { return s.Reg.Depths() }
