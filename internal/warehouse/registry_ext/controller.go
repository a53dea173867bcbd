package registry_ext

import (
	"github.com/warehouse-management/warehouse/internal/application/config"
	appconsts "github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/application/core"
	"github.com/warehouse-management/warehouse/internal/application/registry"
	_ "github.com/warehouse-management/warehouse/internal/warehouse/api"
	"github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/controller"
)

func init() {
	// serve only once the data is migrated and seeded
	registry.ExtendRuntimeDependencies(appconsts.COMPONENT_HTTP_SERVER,
		consts.COMP_CTRL_AUTH+"?", consts.COMP_CTRL_PRODUCT+"?", consts.COMP_CTRL_REPORT+"?",
		consts.COMP_CTRL_LOGS+"?", consts.COMP_SVC_SEEDER+"?",
	)

	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), controller.NewAuthController(), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), controller.NewProductController(), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), controller.NewReportController(), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return databaseEnabled(cfg), controller.NewLogsController(), nil
	})
}
