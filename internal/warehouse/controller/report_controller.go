package controller

import (
	"bytes"
	"context"
	"encoding/csv"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"go.uber.org/zap"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/service"
)

const (
	csvTimeLayout = "2006-01-02 15:04:05"
	barcodeWidth  = 200
	barcodeHeight = 100
)

var csvHeader = []string{"ID", "Name", "SKU", "Quantity", "Location", "Status", "Created At", "Updated At"}

// ReportController serves the dashboard, the CSV export and barcodes.
type ReportController struct {
	*core.BaseComponent
	Svc     *service.ProductService `infra:"dep:product_service"`
	Metrics *service.Metrics        `infra:"dep:warehouse_metrics?"`
}

func NewReportController() *ReportController {
	return &ReportController{BaseComponent: core.NewBaseComponent(bizConsts.COMP_CTRL_REPORT)}
}

func (c *ReportController) Start(ctx context.Context) error { return c.BaseComponent.Start(ctx) }
func (c *ReportController) Stop(ctx context.Context) error  { return c.BaseComponent.Stop(ctx) }

// GET /api/dashboard/stats
func (c *ReportController) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Svc.DashboardStats(r.Context())
	if err != nil {
		logging.Error(r.Context(), "dashboard stats failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "Failed to compute statistics"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/export/csv
func (c *ReportController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	products, err := c.Svc.All(r.Context())
	if err != nil {
		logging.Error(r.Context(), "export csv failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "Failed to fetch products"})
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(csvHeader)
	for _, p := range products {
		_ = cw.Write([]string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			p.SKU,
			strconv.Itoa(p.Quantity),
			p.Location,
			string(p.Status),
			p.CreatedAt.Format(csvTimeLayout),
			p.UpdatedAt.Format(csvTimeLayout),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "Failed to write CSV"})
		return
	}
	c.Metrics.ObserveExport("csv", started)

	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Disposition", "attachment; filename=products.csv")
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GET /api/barcode/{sku}
func (c *ReportController) Barcode(w http.ResponseWriter, r *http.Request, sku string) {
	if sku == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "SKU is required"})
		return
	}
	started := time.Now()
	img, err := renderBarcode(sku)
	if err != nil {
		logging.Warn(r.Context(), "barcode render failed", zap.String("sku", sku), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "Failed to generate barcode"})
		return
	}
	c.Metrics.ObserveExport("barcode", started)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "inline; filename=barcode-"+sku+".png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// renderBarcode encodes sku as Code 128 and scales it to 200x100.
func renderBarcode(sku string) ([]byte, error) {
	code, err := code128.Encode(sku)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, barcodeWidth, barcodeHeight)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
