package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
)

// Repository persists finalized sale records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.SaleRecord) (*models.SaleRecord, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error)
	List(ctx context.Context, registerID string, limit int) ([]models.SaleRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.SaleRecord) (*models.SaleRecord, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *repository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", id).
		Delete(&models.SaleLineItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.SaleRecord{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	var sale models.SaleRecord
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) List(ctx context.Context, registerID string, limit int) ([]models.SaleRecord, error) {
	query := r.db.WithContext(ctx).
		Preload("LineItems").
		Order("created_at DESC")
	if registerID != "" {
		query = query.Where("register_id = ?", registerID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sales []models.SaleRecord
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
