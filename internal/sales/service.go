package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/internal/checkout"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// eventPublisher emits sale events. Optional; nil disables publishing.
type eventPublisher interface {
	PublishSale(ctx context.Context, data []byte) error
}

// Service consumes finalized baskets and serves the sales read side.
type Service interface {
	RecordFinalized(ctx context.Context, registerID string, entry checkout.HistoryEntry, supersededID string) error
	GetSale(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error)
	ListSales(ctx context.Context, registerID string, limit int) ([]models.SaleRecord, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher eventPublisher
	logg      *logger.Logger
}

// NewService builds the sales service. The publisher may be nil when event
// publishing is not configured.
func NewService(repo Repository, tx txRunner, publisher eventPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, publisher: publisher, logg: logg}, nil
}

// saleEvent is the wire payload for sale.finalized notifications.
type saleEvent struct {
	Event        string    `json:"event"`
	SaleID       string    `json:"sale_id"`
	RegisterID   string    `json:"register_id"`
	Total        string    `json:"total"`
	LineCount    int       `json:"line_count"`
	SupersededID string    `json:"superseded_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordFinalized stores a finalized sale atomically, replacing the
// superseded record when a recalled sale was resaved, then publishes a
// sale.finalized event best-effort.
func (s *service) RecordFinalized(ctx context.Context, registerID string, entry checkout.HistoryEntry, supersededID string) error {
	if registerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "register id is required")
	}
	saleID, err := uuid.Parse(entry.ID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale id must be a uuid")
	}
	if len(entry.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale must contain at least one line")
	}

	record := toSaleRecord(saleID, registerID, entry)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if supersededID != "" {
			oldID, err := uuid.Parse(supersededID)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "superseded sale id must be a uuid")
			}
			if err := repo.DeleteSale(ctx, oldID); err != nil {
				return fmt.Errorf("removing superseded sale: %w", err)
			}
		}
		if _, err := repo.CreateSale(ctx, record); err != nil {
			return fmt.Errorf("storing sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, registerID, entry, supersededID)
	return nil
}

// GetSale loads one sale with its line items.
func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading sale")
	}
	return sale, nil
}

// ListSales returns sales newest first, optionally per register.
func (s *service) ListSales(ctx context.Context, registerID string, limit int) ([]models.SaleRecord, error) {
	sales, err := s.repo.List(ctx, registerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing sales")
	}
	return sales, nil
}

func (s *service) publishEvent(ctx context.Context, registerID string, entry checkout.HistoryEntry, supersededID string) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(saleEvent{
		Event:        "sale.finalized",
		SaleID:       entry.ID,
		RegisterID:   registerID,
		Total:        entry.Total.String(),
		LineCount:    len(entry.Items),
		SupersededID: supersededID,
		CreatedAt:    entry.CreatedAt,
	})
	if err != nil {
		return
	}
	if err := s.publisher.PublishSale(ctx, payload); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithSaleID(ctx, entry.ID), "publishing sale event", err)
	}
}

func toSaleRecord(saleID uuid.UUID, registerID string, entry checkout.HistoryEntry) *models.SaleRecord {
	record := &models.SaleRecord{
		ID:            saleID,
		RegisterID:    registerID,
		ClientName:    entry.ClientName,
		CashierName:   entry.CashierName,
		PaymentMethod: entry.PaymentMethod,
		Total:         entry.Total,
		CreatedAt:     entry.CreatedAt,
	}
	for _, item := range entry.Items {
		record.LineItems = append(record.LineItems, models.SaleLineItem{
			ID:            uuid.New(),
			SaleID:        saleID,
			ProductID:     item.ID,
			Barcode:       item.Barcode,
			Name:          item.Name,
			SKU:           item.SKU,
			Unit:          item.Unit,
			Qty:           item.Qty,
			Price:         item.Price,
			SellPrice:     item.SellPrice,
			Category:      item.Category,
			DiscountValue: item.DiscountValue,
			DiscountLabel: item.DiscountLabel,
		})
	}
	return record
}
