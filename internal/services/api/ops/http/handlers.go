// Package http provides http transport for the ops surface
package http

import (
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"chatmirror/internal/modkit/httpkit"
	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/logger"

	"chatmirror/internal/services/api/ops/domain"
	bfdom "chatmirror/internal/services/backfill/domain"
	catdom "chatmirror/internal/services/catalog/domain"
	lsdom "chatmirror/internal/services/livesync/domain"
)

// Ports are the injected service surfaces the handlers drive
type Ports struct {
	Trigger  bfdom.TriggerPort
	Windows  bfdom.StatusPort
	Catalog  catdom.StatusPort
	Dispatch lsdom.DispatchPort
	Flush    lsdom.FlushPort
	Queues   lsdom.StatusPort
}

// Register mounts the ops routes
func Register(r httpkit.Router, p Ports) {
	h := &handlers{p: p}
	r.Post("/backup", httpkit.JSON[domain.BackupRequest](h.backup))
	r.Post("/flush", httpkit.Call(h.flush))
	r.Post("/events", httpkit.JSON[lsdom.Envelope](h.events))
	httpkit.Get(r, "/status", h.status)
}

type handlers struct{ p Ports }

// swagger:route POST /ops/backup Ops opsBackup
// @Summary Trigger a full backup pass for one tenant or the fleet
// @Tags Ops
// @Accept json
// @Produce json
// @Param payload body domain.BackupRequest true "Scope"
// @Success 202 {object} domain.BackupAccepted "started"
// @Failure 409 {object} httpkit.Envelope "pass already in flight"
// @Router /ops/backup [post]
func (h *handlers) backup(r *stdhttp.Request, in domain.BackupRequest) (any, error) {
	runID := uuid.NewString()
	ctx := logger.WithRequest(r.Context(), runID, "")

	if in.TenantID == 0 {
		if err := h.p.Trigger.StartBackupAll(ctx); err != nil {
			return nil, err
		}
		return httpkit.Accepted(domain.BackupAccepted{RunID: runID, Scope: "all"}), nil
	}

	if err := h.p.Trigger.StartBackup(ctx, in.TenantID); err != nil {
		return nil, err
	}
	return httpkit.Accepted(domain.BackupAccepted{
		RunID:    runID,
		Scope:    "tenant",
		TenantID: in.TenantID,
	}), nil
}

// swagger:route POST /ops/flush Ops opsFlush
// @Summary Run one queue flush tick now
// @Tags Ops
// @Produce json
// @Success 200 {object} domain.FlushResult "flushed"
// @Failure 409 {object} httpkit.Envelope "tick already running"
// @Router /ops/flush [post]
func (h *handlers) flush(r *stdhttp.Request) (any, error) {
	if err := h.p.Flush.Flush(r.Context()); err != nil {
		return nil, err
	}
	return domain.FlushResult{Status: "ok", At: time.Now().UTC()}, nil
}

// swagger:route POST /ops/events Ops opsEvents
// @Summary Ingest one tagged live event into the dispatcher
// @Tags Ops
// @Accept json
// @Produce json
// @Param payload body lsdom.Envelope true "Event envelope"
// @Success 202 {object} domain.EventAccepted "queued"
// @Failure 400 {object} httpkit.Envelope "malformed envelope"
// @Router /ops/events [post]
func (h *handlers) events(r *stdhttp.Request, env lsdom.Envelope) (any, error) {
	ev, err := lsdom.DecodeEvent(env)
	if err != nil {
		return nil, err
	}
	if err := h.p.Dispatch.Dispatch(r.Context(), ev); err != nil {
		return nil, err
	}
	return httpkit.Accepted(domain.EventAccepted{Type: env.Type, TenantID: env.TenantID}), nil
}

// swagger:route GET /ops/status Ops opsStatus
// @Summary Sync status for one tenant
// @Tags Ops
// @Produce json
// @Param tenant_id query string true "Tenant snowflake id"
// @Success 200 {object} domain.StatusResponse "ok"
// @Router /ops/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	raw, err := httpkit.QueryTenant(r)
	if err != nil {
		return nil, err
	}
	tenantID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, perr.InvalidArgf("tenant_id is out of range")
	}
	ctx := r.Context()

	windows, err := h.p.Windows.WindowStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	catalog, err := h.p.Catalog.TenantStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return domain.StatusResponse{
		Windows: windows,
		Catalog: catalog,
		Queues:  h.p.Queues.QueueDepths(),
	}, nil
}
