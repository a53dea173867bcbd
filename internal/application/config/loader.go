// config/loader.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/warehouse-management/warehouse/internal/application/components/gormdb"
	"github.com/warehouse-management/warehouse/internal/application/components/http_server"
	"github.com/warehouse-management/warehouse/internal/application/consts"
)

// Loader reads the optional config file over the defaults, then applies
// .env and environment overrides.
type Loader struct {
	env        string
	configPath string
	bizConfig  any
	lookupEnv  func(string) (string, bool)
}

func NewLoader(env string, configPath string) *Loader {
	if env == "" {
		env = consts.ENV_DEVELOPMENT
	}
	if configPath == "" {
		configPath = consts.DEFAULT_CONFIG_PATH
	}
	return &Loader{env: env, configPath: configPath, lookupEnv: os.LookupEnv}
}

// SetBizConfig takes a pointer (e.g. &MyBizConfig{}) that receives the
// biz_config section. Values already in it act as defaults.
func (l *Loader) SetBizConfig(b any) {
	if b == nil {
		return
	}
	if reflect.TypeOf(b).Kind() != reflect.Ptr {
		panic("SetBizConfig expects a pointer, e.g. &MyBizConfig{}")
	}
	l.bizConfig = b
}

func (l *Loader) baseDir() string {
	return filepath.Dir(l.configPath)
}

func (l *Loader) LoadConfig() (*AppConfig, error) {
	l.loadDotEnv()

	cfg := Default(l.env, l.baseDir())
	ext := strings.ToLower(filepath.Ext(l.configPath))

	if fileExists(l.configPath) {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		switch ext {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case ".json":
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse JSON config: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported config file format: %s", ext)
		}
	}

	// biz_config is decoded as a generic tree first, then re-decoded into the
	// caller's struct so its defaults survive
	if l.bizConfig != nil && cfg.BizConfig != nil {
		if err := decodeBizSection(ext, cfg.BizConfig, l.bizConfig); err != nil {
			return nil, fmt.Errorf("decode biz_config failed: %w", err)
		}
	}
	if l.bizConfig != nil {
		cfg.BizConfig = l.bizConfig
	}

	if cfg.APPInfo == nil {
		cfg.APPInfo = &APPInfo{}
	}
	if cfg.APPInfo.APPName == "" {
		cfg.APPInfo.APPName = DefaultAppName
	}
	if cfg.APPInfo.ENV == "" {
		cfg.APPInfo.ENV = l.env
	}

	l.mergeEnvVars(cfg)
	return cfg, nil
}

// loadDotEnv reads .env next to the config file, then in the working
// directory. Variables already set in the process win.
func (l *Loader) loadDotEnv() {
	seen := map[string]bool{}
	for _, p := range []string{filepath.Join(l.baseDir(), ".env"), ".env"} {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] || !fileExists(abs) {
			continue
		}
		seen[abs] = true
		_ = godotenv.Load(abs)
	}
}

func decodeBizSection(ext string, raw any, target any) error {
	if ext == ".json" {
		b, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("re-marshal biz_config failed: %w", err)
		}
		return json.Unmarshal(b, target)
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("re-marshal biz_config failed: %w", err)
	}
	return yaml.Unmarshal(b, target)
}

func (l *Loader) mergeEnvVars(cfg *AppConfig) {
	if v, ok := l.lookupEnv(consts.ENV_HTTP_ADDRESS); ok && v != "" {
		if cfg.HTTPServer == nil {
			cfg.HTTPServer = &http_server.HTTPServerConfig{Enabled: true, EnableHealth: true}
		}
		cfg.HTTPServer.Address = v
	}

	driver, hasDriver := l.lookupEnv(consts.ENV_DB_DRIVER)
	dsn, hasDSN := l.lookupEnv(consts.ENV_DB_DSN)
	if (hasDriver && driver != "") || (hasDSN && dsn != "") {
		if cfg.Database == nil {
			cfg.Database = &gormdb.Config{Enabled: true}
		}
		if cfg.Database.DataSources == nil {
			cfg.Database.DataSources = map[string]*gormdb.DataSourceConfig{}
		}
		ds := cfg.Database.DataSources[gormdb.DefaultDataSource]
		if ds == nil {
			ds = &gormdb.DataSourceConfig{}
			cfg.Database.DataSources[gormdb.DefaultDataSource] = ds
		}
		if driver != "" {
			cfg.Database.Driver = driver
			ds.Driver = driver
		}
		if dsn != "" {
			ds.DSN = dsn
		}
	}

	if o, ok := cfg.BizConfig.(EnvOverrider); ok {
		o.ApplyEnv(l.lookupEnv)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
