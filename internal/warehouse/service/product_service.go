package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/dao"
	"github.com/warehouse-management/warehouse/internal/warehouse/model"
)

const dashboardLowStockLimit = 5

// ProductInput carries the writable fields of a product. Status is not
// accepted from callers; it is always derived from Quantity.
type ProductInput struct {
	Name     string
	SKU      string
	Quantity int
	Location string
}

type ProductService struct {
	*core.BaseComponent
	Dao     dao.ProductDao `infra:"dep:dao_product"`
	Metrics *Metrics       `infra:"dep:warehouse_metrics?"`
}

func NewProductService() *ProductService {
	return &ProductService{BaseComponent: core.NewBaseComponent(bizConsts.COMP_SVC_PRODUCT)}
}

func (s *ProductService) Start(ctx context.Context) error { return s.BaseComponent.Start(ctx) }
func (s *ProductService) Stop(ctx context.Context) error  { return s.BaseComponent.Stop(ctx) }

func (s *ProductService) List(ctx context.Context, f *model.ProductFilters) ([]*model.Product, error) {
	return s.Dao.List(ctx, f)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*model.Product, error) {
	return s.Dao.Get(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := s.ensureSKUFree(ctx, in.SKU, 0); err != nil {
		return nil, err
	}
	p := &model.Product{Name: in.Name, SKU: in.SKU, Quantity: in.Quantity, Location: in.Location}
	p.UpdateStatus()
	if err := s.Dao.Create(ctx, p); err != nil {
		return nil, duplicate(err)
	}
	logging.Info(ctx, "product created", zap.Uint("id", p.ID), zap.String("sku", p.SKU), zap.String("status", string(p.Status)))
	s.Metrics.ProductMutation("create")
	return p, nil
}

// Update replaces every writable field of product id.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	p, err := s.Dao.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSKUFree(ctx, in.SKU, id); err != nil {
		return nil, err
	}
	p.Name, p.SKU, p.Quantity, p.Location = in.Name, in.SKU, in.Quantity, in.Location
	p.UpdateStatus()
	if err := s.Dao.Save(ctx, p); err != nil {
		return nil, duplicate(err)
	}
	logging.Info(ctx, "product updated", zap.Uint("id", p.ID), zap.Int("quantity", p.Quantity), zap.String("status", string(p.Status)))
	s.Metrics.ProductMutation("update")
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.Dao.Delete(ctx, id); err != nil {
		return err
	}
	logging.Info(ctx, "product deleted", zap.Uint("id", id))
	s.Metrics.ProductMutation("delete")
	return nil
}

// All returns every product ordered by id.
func (s *ProductService) All(ctx context.Context) ([]*model.Product, error) {
	return s.Dao.ListAll(ctx)
}

func (s *ProductService) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var (
		stats model.DashboardStats
		err   error
	)
	if stats.TotalProducts, err = s.Dao.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalStock, err = s.Dao.SumQuantity(ctx); err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.Dao.CountByStatus(ctx, bizConsts.ProductLowStock); err != nil {
		return nil, err
	}
	if stats.LowStockProducts, err = s.Dao.ListByStatus(ctx, bizConsts.ProductLowStock, dashboardLowStockLimit); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ProductService) ensureSKUFree(ctx context.Context, sku string, excludeID uint) error {
	taken, err := s.Dao.SKUTaken(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("sku %q: %w", sku, ErrDuplicate)
	}
	return nil
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%v: %w", err, ErrDuplicate)
	}
	return err
}
