package consts

type ProductStatus string

const (
	ProductInStock    ProductStatus = "in_stock"
	ProductLowStock   ProductStatus = "low_stock"
	ProductOutOfStock ProductStatus = "out_of_stock"
)

// LowStockThreshold is the highest quantity still reported as low stock.
const LowStockThreshold = 10

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductInStock, ProductLowStock, ProductOutOfStock:
		return true
	}
	return false
}
