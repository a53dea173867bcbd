// components/logging/factory.go
package logging

import (
	"fmt"

	"github.com/warehouse-management/warehouse/internal/application/core"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// Create fills defaults, validates and builds the component.
func (f *Factory) Create(cfg interface{}) (core.Component, error) {
	loggingConfig, ok := cfg.(*LoggingConfig)
	if !ok {
		return nil, fmt.Errorf("invalid config type for logging component, expected *LoggingConfig")
	}
	if !loggingConfig.Enabled {
		return nil, fmt.Errorf("logging component is disabled")
	}

	applyDefaults(loggingConfig)
	if err := validate(loggingConfig); err != nil {
		return nil, err
	}
	return NewLoggerComponent(loggingConfig), nil
}
