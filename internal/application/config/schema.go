// config/schema.go
package config

import (
	"github.com/warehouse-management/warehouse/internal/application/components/gormdb"
	"github.com/warehouse-management/warehouse/internal/application/components/http_server"
	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/components/prometheus"
	"github.com/warehouse-management/warehouse/internal/application/components/telemetry"
)

// AppConfig is the whole configuration tree. Every section is optional.
type AppConfig struct {
	APPInfo    *APPInfo                      `yaml:"app_info" json:"app_info" validate:"required"`
	Logging    *logging.LoggingConfig        `yaml:"logging" json:"logging"`
	HTTPServer *http_server.HTTPServerConfig `yaml:"http_server" json:"http_server"`
	Database   *gormdb.Config                `yaml:"database" json:"database"`
	Prometheus *prometheus.Config            `yaml:"prometheus" json:"prometheus"`
	Telemetry  *telemetry.Config             `yaml:"telemetry" json:"telemetry"`
	// BizConfig is replaced by the pointer given to SetBizConfig.
	BizConfig any `yaml:"biz_config" json:"biz_config" validate:"-"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name" validate:"required"`
	ENV     string `yaml:"env" json:"env" validate:"omitempty,oneof=production development test"`
}

// EnvOverrider is implemented by biz configs that read their own
// environment variables after the file has been decoded.
type EnvOverrider interface {
	ApplyEnv(lookup func(string) (string, bool))
}
