package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/idgen"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/metrics"
)

// snapshotStore is the persistence collaborator for register snapshots.
type snapshotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SnapshotKey(registerID string) string
}

// Service hands out register sessions and persists their basket snapshots.
type Service interface {
	Session(ctx context.Context, registerID string) (*Session, error)
	SaveSnapshot(ctx context.Context, session *Session)
	QuickSaleTotals(items []LineItem) Totals
	Close() error
}

type service struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg       config.CheckoutConfig
	taxRate   decimal.Decimal
	quickRate decimal.Decimal

	catalog   productLoader
	recorder  saleRecorder
	snapshots snapshotStore
	ids       idgen.Generator
	now       func() time.Time
	logg      *logger.Logger
	metrics   *metrics.CheckoutMetrics
}

// Deps wires the checkout service's collaborators. Snapshots and metrics
// are optional; catalog is not.
type Deps struct {
	Catalog   productLoader
	Recorder  saleRecorder
	Snapshots snapshotStore
	IDs       idgen.Generator
	Now       func() time.Time
	Logger    *logger.Logger
	Metrics   *metrics.CheckoutMetrics
}

// NewService builds the register session manager.
func NewService(cfg config.CheckoutConfig, deps Deps) (Service, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if deps.IDs == nil {
		deps.IDs = idgen.NewUUID()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	taxRate, err := decimal.NewFromString(cfg.VATRate)
	if err != nil {
		return nil, fmt.Errorf("parsing vat rate %q: %w", cfg.VATRate, err)
	}
	quickRate, err := decimal.NewFromString(cfg.QuickSaleVATRate)
	if err != nil {
		return nil, fmt.Errorf("parsing quick-sale vat rate %q: %w", cfg.QuickSaleVATRate, err)
	}

	return &service{
		sessions:  map[string]*Session{},
		cfg:       cfg,
		taxRate:   taxRate,
		quickRate: quickRate,
		catalog:   deps.Catalog,
		recorder:  deps.Recorder,
		snapshots: deps.Snapshots,
		ids:       deps.IDs,
		now:       deps.Now,
		logg:      deps.Logger,
		metrics:   deps.Metrics,
	}, nil
}

// Session returns the live session for a register, creating it on first use
// and restoring its baskets from the snapshot store when one exists.
func (s *service) Session(ctx context.Context, registerID string) (*Session, error) {
	if registerID == "" {
		return nil, fmt.Errorf("register id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[registerID]; ok {
		return existing, nil
	}

	session := NewSession(registerID, SessionConfig{
		MaxBaskets: s.cfg.MaxBaskets,
		HoldSlots:  s.cfg.HoldSlots,
		TaxRate:    s.taxRate,
	}, s.catalog, s.recorder, s.ids, s.now, s.logg, s.metrics)

	if s.snapshots != nil {
		if raw, err := s.snapshots.Get(ctx, s.snapshots.SnapshotKey(registerID)); err == nil && raw != "" {
			if err := session.RestoreSnapshot([]byte(raw)); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithRegisterID(ctx, registerID), "discarding unreadable register snapshot")
			}
		}
	}

	s.sessions[registerID] = session
	return session, nil
}

// SaveSnapshot persists the session's baskets, best-effort.
func (s *service) SaveSnapshot(ctx context.Context, session *Session) {
	if s.snapshots == nil || session == nil {
		return
	}
	data, err := session.Snapshot()
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "serializing register snapshot", err)
		}
		return
	}
	key := s.snapshots.SnapshotKey(session.RegisterID())
	if err := s.snapshots.Set(ctx, key, string(data), s.cfg.SnapshotTTL); err != nil && s.logg != nil {
		s.logg.Error(ctx, "storing register snapshot", err)
	}
}

// QuickSaleTotals runs the VAT-charging totals variant over ad hoc items.
func (s *service) QuickSaleTotals(items []LineItem) Totals {
	return CalculateTotals(items, s.quickRate)
}

// Close flushes a final snapshot for every live session.
func (s *service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for id, session := range s.sessions {
		if s.snapshots == nil {
			continue
		}
		data, err := session.Snapshot()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("register %s: %w", id, err))
			continue
		}
		if err := s.snapshots.Set(ctx, s.snapshots.SnapshotKey(id), string(data), s.cfg.SnapshotTTL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("register %s: %w", id, err))
		}
	}
	return errs
}
