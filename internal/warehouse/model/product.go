package model

import (
	"time"

	"github.com/warehouse-management/warehouse/internal/warehouse/consts"
)

// Product is one inventory item. Status is derived from Quantity.
type Product struct {
	ID        uint                 `json:"id" gorm:"primaryKey"`
	Name      string               `json:"name" gorm:"not null"`
	SKU       string               `json:"sku" gorm:"uniqueIndex;not null"`
	Quantity  int                  `json:"quantity" gorm:"not null"`
	Location  string               `json:"location" gorm:"not null"`
	Status    consts.ProductStatus `json:"status" gorm:"type:varchar(20);index;not null"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// UpdateStatus recomputes Status: 0 is out of stock, up to
// LowStockThreshold is low stock.
func (p *Product) UpdateStatus() {
	switch {
	case p.Quantity <= 0:
		p.Status = consts.ProductOutOfStock
	case p.Quantity <= consts.LowStockThreshold:
		p.Status = consts.ProductLowStock
	default:
		p.Status = consts.ProductInStock
	}
}

// ProductFilters narrows a product listing. Zero values mean no filter.
type ProductFilters struct {
	Status   consts.ProductStatus
	LowStock bool
}

type DashboardStats struct {
	TotalProducts    int64      `json:"total_products"`
	TotalStock       int64      `json:"total_stock"`
	LowStockCount    int64      `json:"low_stock_count"`
	LowStockProducts []*Product `json:"low_stock_products"`
}
