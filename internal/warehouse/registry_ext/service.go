package registry_ext

import (
	"github.com/warehouse-management/warehouse/internal/application/config"
	"github.com/warehouse-management/warehouse/internal/application/core"
	"github.com/warehouse-management/warehouse/internal/application/registry"
	bizConfig "github.com/warehouse-management/warehouse/internal/warehouse/config"
	"github.com/warehouse-management/warehouse/internal/warehouse/service"
)

func init() {
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), service.NewMetrics(), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), service.NewAuthService(bizConfig.From(cfg.BizConfig)), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), service.NewProductService(), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), service.NewSeeder(bizConfig.From(cfg.BizConfig).SeedData), nil
	})
}
