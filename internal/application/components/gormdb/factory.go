package gormdb

import (
	"fmt"

	"github.com/warehouse-management/warehouse/internal/application/core"
)

type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

// Create expects *gormdb.Config.
func (f *Factory) Create(cfg interface{}) (core.Component, error) {
	dbCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for database component (need *gormdb.Config)")
	}
	if dbCfg == nil || !dbCfg.Enabled {
		return nil, fmt.Errorf("database component disabled")
	}
	if len(dbCfg.DataSources) == 0 {
		return nil, fmt.Errorf("database component has no data_sources")
	}
	for name, ds := range dbCfg.DataSources {
		if ds == nil {
			return nil, fmt.Errorf("datasource %s config is nil", name)
		}
	}
	return NewGormComponent(dbCfg), nil
}
