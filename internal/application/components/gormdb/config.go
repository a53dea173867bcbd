package gormdb

import "time"

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	DefaultDataSource = "default"
)

// Config holds one or more named data sources. Each source picks its own
// driver and falls back to Driver when it does not.
type Config struct {
	Enabled       bool                         `yaml:"enabled" json:"enabled"`
	Driver        string                       `yaml:"driver" json:"driver" validate:"omitempty,oneof=sqlite mysql postgres"`
	DataSources   map[string]*DataSourceConfig `yaml:"data_sources" json:"data_sources" validate:"dive"`
	LogLevel      string                       `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=silent error warn warning info debug"`
	SlowThreshold time.Duration                `yaml:"slow_threshold" json:"slow_threshold"` // e.g. 200ms
}

type DataSourceConfig struct {
	Driver string `yaml:"driver" json:"driver" validate:"omitempty,oneof=sqlite mysql postgres"`
	DSN    string `yaml:"dsn" json:"dsn"` // sqlite: file path or ":memory:"

	Host     string            `yaml:"host" json:"host"`
	Port     int               `yaml:"port" json:"port" validate:"gte=0,lte=65535"`
	User     string            `yaml:"user" json:"user"`
	Password string            `yaml:"password" json:"password"`
	Database string            `yaml:"database" json:"database"`
	Params   map[string]string `yaml:"params" json:"params"`

	MaxOpenConns int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLife  time.Duration `yaml:"conn_max_life" json:"conn_max_life"`
	ConnMaxIdle  time.Duration `yaml:"conn_max_idle" json:"conn_max_idle"`
	PingOnStart  bool          `yaml:"ping_on_start" json:"ping_on_start"`

	SkipDefaultTransaction bool `yaml:"skip_default_tx" json:"skip_default_tx"`
	PrepareStmt            bool `yaml:"prepare_stmt" json:"prepare_stmt"`

	// .sql files in MigrateDir run in lexical order, non-recursively
	MigrateEnabled bool   `yaml:"migrate_enabled" json:"migrate_enabled"`
	MigrateDir     string `yaml:"migrate_dir" json:"migrate_dir"`
}

func (c *Config) driverOf(ds *DataSourceConfig) string {
	if ds.Driver != "" {
		return ds.Driver
	}
	if c.Driver != "" {
		return c.Driver
	}
	return DriverSQLite
}
