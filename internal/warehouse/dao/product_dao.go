package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/warehouse-management/warehouse/internal/application/components/gormdb"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/model"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("record not found")

type ProductDao interface {
	core.Component

	Create(ctx context.Context, p *model.Product) error
	Get(ctx context.Context, id uint) (*model.Product, error)
	Save(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uint) error
	// List is ordered by created_at desc.
	List(ctx context.Context, f *model.ProductFilters) ([]*model.Product, error)
	// ListAll is ordered by id, for exports.
	ListAll(ctx context.Context) ([]*model.Product, error)
	SKUTaken(ctx context.Context, sku string, excludeID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status bizConsts.ProductStatus) (int64, error)
	SumQuantity(ctx context.Context) (int64, error)
	ListByStatus(ctx context.Context, status bizConsts.ProductStatus, limit int) ([]*model.Product, error)
}

type productDaoImpl struct {
	*core.BaseComponent
	GormComp *gormdb.GormComponent `infra:"dep:database"`
	db       *gorm.DB
	dsName   string
}

func NewProductDao(dsName string) ProductDao {
	return &productDaoImpl{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_DAO_PRODUCT),
		dsName:        dsName,
	}
}

// Start binds the data source and migrates the products table.
func (d *productDaoImpl) Start(ctx context.Context) error {
	db, err := d.GormComp.GetDB(d.dsName)
	if err != nil {
		return fmt.Errorf("get gorm db %s failed: %w", d.dsName, err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&model.Product{}); err != nil {
		return fmt.Errorf("migrate products failed: %w", err)
	}
	d.db = db
	return d.BaseComponent.Start(ctx)
}

func (d *productDaoImpl) Stop(ctx context.Context) error { return d.BaseComponent.Stop(ctx) }

func normalizeProduct(p *model.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
	p.Location = strings.TrimSpace(p.Location)
}

func (d *productDaoImpl) Create(ctx context.Context, p *model.Product) error {
	normalizeProduct(p)
	return d.db.WithContext(ctx).Create(p).Error
}

func (d *productDaoImpl) Get(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	if err := d.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (d *productDaoImpl) Save(ctx context.Context, p *model.Product) error {
	normalizeProduct(p)
	return d.db.WithContext(ctx).Save(p).Error
}

func (d *productDaoImpl) Delete(ctx context.Context, id uint) error {
	res := d.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *productDaoImpl) List(ctx context.Context, f *model.ProductFilters) ([]*model.Product, error) {
	q := d.db.WithContext(ctx).Model(&model.Product{})
	if f != nil {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.LowStock {
			q = q.Where("status = ?", bizConsts.ProductLowStock)
		}
	}
	list := make([]*model.Product, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *productDaoImpl) ListAll(ctx context.Context) ([]*model.Product, error) {
	list := make([]*model.Product, 0)
	if err := d.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *productDaoImpl) SKUTaken(ctx context.Context, sku string, excludeID uint) (bool, error) {
	q := d.db.WithContext(ctx).Model(&model.Product{}).Where("sku = ?", strings.TrimSpace(sku))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *productDaoImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (d *productDaoImpl) CountByStatus(ctx context.Context, status bizConsts.ProductStatus) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&model.Product{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (d *productDaoImpl) SumQuantity(ctx context.Context) (int64, error) {
	var total int64
	err := d.db.WithContext(ctx).Model(&model.Product{}).Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

func (d *productDaoImpl) ListByStatus(ctx context.Context, status bizConsts.ProductStatus, limit int) ([]*model.Product, error) {
	list := make([]*model.Product, 0)
	q := d.db.WithContext(ctx).Where("status = ?", status).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
