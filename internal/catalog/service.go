package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/internal/checkout"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
)

// productFinder is the repository surface the service consumes.
type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	List(ctx context.Context, input ListInput) ([]models.Product, error)
}

// Service resolves scanner and manual input against the catalog and serves
// the product browser. It implements the checkout core's product loader.
type Service interface {
	ProductByBarcode(ctx context.Context, barcode string) (*checkout.Product, error)
	ProductByRef(ctx context.Context, ref string) (*checkout.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, input ListInput) ([]models.Product, error)
}

type service struct {
	repo productFinder
}

// NewService builds the catalog read service.
func NewService(repo productFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ProductByBarcode resolves a scanned code.
func (s *service) ProductByBarcode(ctx context.Context, barcode string) (*checkout.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	product, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFoundOr(err, "no product matches the barcode")
	}
	return toCheckoutProduct(product), nil
}

// ProductByRef resolves manual entry and product taps: a product id first,
// then a SKU.
func (s *service) ProductByRef(ctx context.Context, ref string) (*checkout.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product reference is required")
	}

	if id, err := uuid.Parse(ref); err == nil {
		if product, err := s.repo.FindByID(ctx, id); err == nil {
			return toCheckoutProduct(product), nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("loading product %s: %w", id, err)
		}
	}

	product, err := s.repo.FindBySKU(ctx, ref)
	if err != nil {
		return nil, notFoundOr(err, "no product matches the reference")
	}
	return toCheckoutProduct(product), nil
}

// GetProduct loads one catalog row for the product browser.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found")
	}
	return product, nil
}

// ListProducts serves the filtered, sorted product browser.
func (s *service) ListProducts(ctx context.Context, input ListInput) ([]models.Product, error) {
	return s.repo.List(ctx, input)
}

func toCheckoutProduct(m *models.Product) *checkout.Product {
	return &checkout.Product{
		ID:        m.ID.String(),
		SKU:       m.SKU,
		Barcode:   m.Barcode,
		Name:      m.Name,
		Unit:      m.Unit,
		Price:     m.Price,
		SellPrice: m.SellPrice,
		Category:  m.Category,
		StockQty:  m.StockQty,
	}
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog lookup failed")
}
