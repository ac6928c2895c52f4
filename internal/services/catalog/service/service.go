package service

import (
	"context"
	"strconv"
	"time"

	"chatmirror/internal/adapters/source"
	"chatmirror/internal/core/sanitize"
	"chatmirror/internal/modkit/repokit"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/store"
	"chatmirror/internal/services/catalog/domain"
)

// Directory is the slice of the source client the resync flow needs
type Directory interface {
	Tenant(ctx context.Context, id int64) (source.Tenant, error)
	Categories(ctx context.Context, tenantID int64) ([]source.Category, error)
	Channels(ctx context.Context, tenantID int64) ([]source.Channel, error)
	Roles(ctx context.Context, tenantID int64) ([]source.Role, error)
	Members(ctx context.Context, tenantID int64) ([]source.Member, error)
}

// Service is the catalog surface other modules consume
type Service interface {
	domain.ResyncPort
	domain.StatusPort
}

// Config carries the resync knobs
type Config struct {
	// ChunkSize bounds rows per storage statement (parameter-count limit)
	ChunkSize int
}

// Svc implements Service
type Svc struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StoragePort]
	Source Directory
	Cfg    Config

	norm *sanitize.Normalizer
}

// New constructs the catalog service. Nil deps are programmer error
func New(db repokit.TxRunner, b repokit.Binder[domain.StoragePort], src Directory, cfg Config) *Svc {
	if db == nil {
		panic("catalog.New: nil db")
	}
	if b == nil {
		panic("catalog.New: nil binder")
	}
	if src == nil {
		panic("catalog.New: nil source directory")
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 550
	}
	return &Svc{DB: db, Binder: b, Source: src, Cfg: cfg, norm: sanitize.New()}
}

// Normalizer exposes the shared content normalizer for prepare call sites
func (s *Svc) Normalizer() *sanitize.Normalizer { return s.norm }

// Resync refreshes one tenant's structural catalog from the source: tenant
// row, categories, roles, members (chunked), channels, in that order.
// Idempotent; safe to run at any time, including concurrently with a live
// event stream, because every write is an upsert keyed by id
func (s *Svc) Resync(ctx context.Context, tenantID int64) error {
	ctx = store.WithTenant(ctx, strconv.FormatInt(tenantID, 10))
	l := logger.C(ctx).With().Str("mod", "catalog").Int64("tenant_id", tenantID).Logger()
	start := time.Now()

	t, err := s.Source.Tenant(ctx, tenantID)
	if err != nil {
		return err
	}

	rw := s.Binder.Bind(s.DB)
	if err := rw.UpsertTenant(ctx, PrepareTenant(t)); err != nil {
		return err
	}

	cats, err := s.Source.Categories(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := rw.UpsertCategories(ctx, PrepareCategories(tenantID, cats)); err != nil {
		return err
	}

	roles, err := s.Source.Roles(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := rw.UpsertRoles(ctx, PrepareRoles(tenantID, roles)); err != nil {
		return err
	}

	members, err := s.Source.Members(ctx, tenantID)
	if err != nil {
		return err
	}
	rows := PrepareMembers(tenantID, members)
	for off := 0; off < len(rows); off += s.Cfg.ChunkSize {
		end := min(off+s.Cfg.ChunkSize, len(rows))
		if err := rw.UpsertMembers(ctx, rows[off:end]); err != nil {
			return err
		}
	}

	chans, err := s.Source.Channels(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := rw.UpsertChannels(ctx, PrepareChannels(tenantID, chans)); err != nil {
		return err
	}

	l.Info().
		Int("categories", len(cats)).
		Int("roles", len(roles)).
		Int("members", len(members)).
		Int("channels", len(chans)).
		Dur("took", time.Since(start)).
		Msg("catalog: resync complete")
	return nil
}

// TenantStatus implements domain.StatusPort
func (s *Svc) TenantStatus(ctx context.Context, tenantID int64) (domain.TenantStatus, error) {
	return s.Binder.Bind(s.DB).TenantStatus(ctx, tenantID)
}
