package config

import (
	"path/filepath"

	"github.com/warehouse-management/warehouse/internal/application/components/gormdb"
	"github.com/warehouse-management/warehouse/internal/application/components/http_server"
	"github.com/warehouse-management/warehouse/internal/application/components/prometheus"
	"github.com/warehouse-management/warehouse/internal/application/components/telemetry"
)

const DefaultAppName = "warehouse-management"

// Default returns the configuration used when no file exists. Relative
// paths are anchored at baseDir.
func Default(env, baseDir string) *AppConfig {
	return &AppConfig{
		APPInfo: &APPInfo{APPName: DefaultAppName, ENV: env},
		HTTPServer: &http_server.HTTPServerConfig{
			Enabled:      true,
			Address:      ":8080",
			EnableHealth: true,
		},
		Database: &gormdb.Config{
			Enabled:  true,
			Driver:   gormdb.DriverSQLite,
			LogLevel: "warn",
			DataSources: map[string]*gormdb.DataSourceConfig{
				gormdb.DefaultDataSource: {DSN: filepath.Join(baseDir, "data", "warehouse.db")},
			},
		},
		Prometheus: &prometheus.Config{
			Enabled:          true,
			Path:             "/metrics",
			Namespace:        "warehouse",
			CollectGoMetrics: true,
			CollectProcess:   true,
		},
		Telemetry: &telemetry.Config{
			Enabled:  true,
			Exporter: telemetry.ExporterNone,
		},
	}
}
