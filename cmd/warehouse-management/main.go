package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/warehouse-management/warehouse/internal/application"
	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/bootstrap"
	bizConfig "github.com/warehouse-management/warehouse/internal/warehouse/config"
	_ "github.com/warehouse-management/warehouse/internal/warehouse/registry_ext"
)

func main() {
	base, err := bootstrap.BaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot determine application directory: %v\n", err)
		os.Exit(1)
	}

	env := os.Getenv(consts.ENV_APP_ENV)
	if env == "" {
		env = consts.ENV_PRODUCTION
	}

	app := application.NewApp(env, filepath.Join(base, consts.DEFAULT_CONFIG_PATH)).
		Plugin(logging.NewLoggerComponent(bootstrap.LoggingConfiguration(bootstrap.LogDirectory(base)))).
		SetBizConfig(bizConfig.Default())

	os.Exit(bootstrap.Launch(app, os.Stderr))
}
