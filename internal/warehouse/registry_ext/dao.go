package registry_ext

import (
	"github.com/warehouse-management/warehouse/internal/application/components/gormdb"
	"github.com/warehouse-management/warehouse/internal/application/config"
	"github.com/warehouse-management/warehouse/internal/application/core"
	"github.com/warehouse-management/warehouse/internal/application/registry"
	"github.com/warehouse-management/warehouse/internal/warehouse/dao"
)

// databaseEnabled gates the whole domain: without a database there is
// nothing to serve.
func databaseEnabled(cfg *config.AppConfig) bool {
	return cfg.Database != nil && cfg.Database.Enabled
}

func init() {
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), dao.NewProductDao(gormdb.DefaultDataSource), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), dao.NewUserDao(gormdb.DefaultDataSource), nil
	})
}
