package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warehouse-management/warehouse/internal/application/components/http_server"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/controller"
)

func init() {
	http_server.RegisterRoutes(Routes)
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func resolve[T any](c *core.Container, name string) (T, error) {
	var zero T
	comp, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := comp.(T)
	if !ok {
		return zero, fmt.Errorf("%s type assertion failed", name)
	}
	return typed, nil
}

// Routes mounts the warehouse API on r. Nothing is mounted when the
// warehouse components are not registered (no database configured).
func Routes(r chi.Router, c *core.Container) error {
	if !c.Has(bizConsts.COMP_CTRL_AUTH) {
		return nil
	}
	authCtrl, err := resolve[*controller.AuthController](c, bizConsts.COMP_CTRL_AUTH)
	if err != nil {
		return err
	}
	productCtrl, err := resolve[*controller.ProductController](c, bizConsts.COMP_CTRL_PRODUCT)
	if err != nil {
		return err
	}
	reportCtrl, err := resolve[*controller.ReportController](c, bizConsts.COMP_CTRL_REPORT)
	if err != nil {
		return err
	}
	logsCtrl, err := resolve[*controller.LogsController](c, bizConsts.COMP_CTRL_LOGS)
	if err != nil {
		return err
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","message":"Warehouse Management API is running"}` + "\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authCtrl.Login)
		r.Post("/auth/register", authCtrl.Register)

		r.Post("/logs", logsCtrl.Ingest)
		r.Get("/logs/stream", logsCtrl.Stream)

		r.Group(func(r chi.Router) {
			r.Use(authCtrl.RequireAuth)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productCtrl.List)
				r.Post("/", productCtrl.Create)
				r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
					productCtrl.Get(w, req, chi.URLParam(req, "id"))
				})
				r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
					productCtrl.Update(w, req, chi.URLParam(req, "id"))
				})
				r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
					productCtrl.Delete(w, req, chi.URLParam(req, "id"))
				})
			})

			r.Get("/dashboard/stats", reportCtrl.DashboardStats)
			r.Get("/export/csv", reportCtrl.ExportCSV)
			r.Get("/barcode/{sku}", func(w http.ResponseWriter, req *http.Request) {
				reportCtrl.Barcode(w, req, chi.URLParam(req, "sku"))
			})
		})
	})
	return nil
}
