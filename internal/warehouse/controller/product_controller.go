package controller

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/model"
	"github.com/warehouse-management/warehouse/internal/warehouse/service"
)

// productRequest is the body of create and update. A status sent by the
// client is ignored.
type productRequest struct {
	Name     string `json:"name" validate:"required"`
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Location string `json:"location" validate:"required"`
}

func (p productRequest) input() service.ProductInput {
	return service.ProductInput{Name: p.Name, SKU: p.SKU, Quantity: p.Quantity, Location: p.Location}
}

type ProductController struct {
	*core.BaseComponent
	Svc *service.ProductService `infra:"dep:product_service"`
}

func NewProductController() *ProductController {
	return &ProductController{BaseComponent: core.NewBaseComponent(bizConsts.COMP_CTRL_PRODUCT)}
}

func (c *ProductController) Start(ctx context.Context) error { return c.BaseComponent.Start(ctx) }
func (c *ProductController) Stop(ctx context.Context) error  { return c.BaseComponent.Stop(ctx) }

// GET /api/products?status=&low_stock=true
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := &model.ProductFilters{
		Status:   bizConsts.ProductStatus(q.Get("status")),
		LowStock: q.Get("low_stock") == "true",
	}
	if f.Status != "" && !f.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown status " + string(f.Status)})
		return
	}
	list, err := c.Svc.List(r.Context(), f)
	if err != nil {
		c.fail(w, r, "Failed to fetch products", err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse[[]*model.Product]{Data: list})
}

// GET /api/products/{id}
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseID(rawID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	p, err := c.Svc.Get(r.Context(), id)
	if err != nil {
		c.fail(w, r, "Failed to fetch product", err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse[*model.Product]{Data: p})
}

// POST /api/products
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	p, err := c.Svc.Create(r.Context(), req.input())
	if err != nil {
		c.fail(w, r, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, apiResponse[*model.Product]{Data: p})
}

// PUT /api/products/{id}
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseID(rawID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	p, err := c.Svc.Update(r.Context(), id, req.input())
	if err != nil {
		c.fail(w, r, "Failed to update product", err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse[*model.Product]{Data: p})
}

// DELETE /api/products/{id}
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseID(rawID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if err := c.Svc.Delete(r.Context(), id); err != nil {
		c.fail(w, r, "Failed to delete product", err)
		return
	}
	writeJSON(w, http.StatusOK, apiMessage{Message: "Product deleted successfully"})
}

// fail maps service errors to status codes; anything unexpected is logged
// and reported with msg.
func (c *ProductController) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, apiError{Error: "Product not found"})
	case errors.Is(err, service.ErrDuplicate):
		writeJSON(w, http.StatusBadRequest, apiError{Error: "SKU already exists"})
	default:
		logging.Error(r.Context(), msg, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: msg})
	}
}
