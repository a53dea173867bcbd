package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/model"
)

// SampleProducts is the catalogue inserted into an empty database.
func SampleProducts() []ProductInput {
	return []ProductInput{
		{Name: "Laptop Dell XPS 15", SKU: "LAPTOP-001", Quantity: 25, Location: "Warehouse A, Shelf 12"},
		{Name: "Wireless Mouse Logitech MX Master 3", SKU: "MOUSE-001", Quantity: 3, Location: "Warehouse A, Shelf 3"},
		{Name: "Mechanical Keyboard RGB", SKU: "KEYB-001", Quantity: 50, Location: "Warehouse B, Shelf 7"},
		{Name: "Monitor 27 inch 4K", SKU: "MON-001", Quantity: 0, Location: "Warehouse A, Shelf 15"},
		{Name: "USB-C Hub Multiport", SKU: "USB-001", Quantity: 15, Location: "Warehouse B, Shelf 2"},
	}
}

// Seeder fills an empty database on start: the admin account when there
// are no users, the sample catalogue when there are no products.
type Seeder struct {
	*core.BaseComponent
	Auth     *AuthService    `infra:"dep:auth_service"`
	Products *ProductService `infra:"dep:product_service"`

	enabled bool
}

func NewSeeder(enabled bool) *Seeder {
	return &Seeder{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_SVC_SEEDER),
		enabled:       enabled,
	}
}

func (s *Seeder) Start(ctx context.Context) error {
	if s.enabled {
		if err := s.Seed(ctx); err != nil {
			return err
		}
	}
	return s.BaseComponent.Start(ctx)
}

func (s *Seeder) Stop(ctx context.Context) error { return s.BaseComponent.Stop(ctx) }

func (s *Seeder) Seed(ctx context.Context) error {
	created, err := s.Auth.EnsureAdmin(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logging.Info(ctx, "seeded default admin user", zap.String("username", s.Auth.cfg.Admin.Username))
	}

	n, err := s.Products.Dao.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		logging.Infof(ctx, "products already exist (%d), skipping seeding", n)
		return nil
	}
	for _, in := range SampleProducts() {
		p := &model.Product{Name: in.Name, SKU: in.SKU, Quantity: in.Quantity, Location: in.Location}
		p.UpdateStatus()
		if err := s.Products.Dao.Create(ctx, p); err != nil {
			logging.Error(ctx, "seed product failed", zap.String("sku", in.SKU), zap.Error(err))
			continue
		}
		logging.Info(ctx, "seeded product", zap.String("name", p.Name), zap.Int("quantity", p.Quantity), zap.String("status", string(p.Status)))
	}
	return nil
}
