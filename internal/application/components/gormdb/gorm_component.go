package gormdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/application/core"
)

// GormComponent manages one *gorm.DB per named data source.
type GormComponent struct {
	*core.BaseComponent
	cfg   *Config
	dbs   map[string]*gorm.DB
	mutex sync.RWMutex
	log   logger.Interface
}

func NewGormComponent(cfg *Config) *GormComponent {
	return &GormComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_DATABASE, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		dbs:           make(map[string]*gorm.DB),
		log:           newGormLogger(cfg),
	}
}

func (c *GormComponent) Start(ctx context.Context) error {
	if c.cfg == nil || !c.cfg.Enabled {
		return fmt.Errorf("database component disabled or nil config")
	}
	if len(c.cfg.DataSources) == 0 {
		return fmt.Errorf("database no data_sources configured")
	}

	names := make([]string, 0, len(c.cfg.DataSources))
	for name := range c.cfg.DataSources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.open(ctx, name, c.cfg.DataSources[name]); err != nil {
			c.closeAll(ctx)
			return err
		}
	}
	logging.Infof(ctx, "[database] started. data sources=%v", c.listNames())
	return c.BaseComponent.Start(ctx)
}

func (c *GormComponent) open(ctx context.Context, name string, ds *DataSourceConfig) error {
	if ds == nil {
		return fmt.Errorf("datasource %s config is nil", name)
	}
	driver := c.cfg.driverOf(ds)
	dialector, err := buildDialector(driver, ds)
	if err != nil {
		return fmt.Errorf("build dialector for %s failed: %w", name, err)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   c.log,
		SkipDefaultTransaction:                   ds.SkipDefaultTransaction,
		PrepareStmt:                              ds.PrepareStmt,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return fmt.Errorf("open %s db %s failed: %w", driver, name, err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB for %s failed: %w", name, err)
	}
	applyPool(sqlDB, driver, ds)

	if ds.PingOnStart {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := sqlDB.PingContext(pingCtx)
		cancel()
		if err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("ping %s db %s failed: %w", driver, name, err)
		}
	}

	if ds.MigrateEnabled {
		if strings.TrimSpace(ds.MigrateDir) == "" {
			_ = sqlDB.Close()
			return fmt.Errorf("database datasource %s migrate_enabled=true but migrate_dir empty", name)
		}
		migStart := time.Now()
		if err := runMigrations(ctx, sqlDB, ds.MigrateDir); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("database datasource %s migrations failed: %w", name, err)
		}
		logging.Infof(ctx, "[database] datasource %s migrations completed dur=%s", name, time.Since(migStart))
	}

	c.mutex.Lock()
	c.dbs[name] = gormDB
	c.mutex.Unlock()
	logging.Infof(ctx, "[database] datasource %s initialized driver=%s", name, driver)
	return nil
}

func applyPool(sqlDB *sql.DB, driver string, ds *DataSourceConfig) {
	maxOpen, maxIdle := 50, 10
	if driver == DriverSQLite {
		// one writer; also keeps ":memory:" a single database
		maxOpen, maxIdle = 1, 1
	}
	if ds.MaxOpenConns > 0 {
		maxOpen = ds.MaxOpenConns
	}
	if ds.MaxIdleConns > 0 {
		maxIdle = ds.MaxIdleConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if ds.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(ds.ConnMaxLife)
	} else if driver != DriverSQLite {
		sqlDB.SetConnMaxLifetime(60 * time.Minute)
	}
	if ds.ConnMaxIdle > 0 {
		sqlDB.SetConnMaxIdleTime(ds.ConnMaxIdle)
	}
}

func (c *GormComponent) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()
	c.closeAll(ctx)
	return nil
}

func (c *GormComponent) closeAll(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for name, gdb := range c.dbs {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logging.Infof(ctx, "[database] datasource %s closed", name)
	}
	c.dbs = make(map[string]*gorm.DB)
}

func (c *GormComponent) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for name, gdb := range c.dbs {
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("datasource %s get sql.DB failed: %w", name, err)
		}
		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("datasource %s ping failed: %w", name, err)
		}
	}
	return nil
}

func (c *GormComponent) GetDB(name string) (*gorm.DB, error) {
	c.mutex.RLock()
	db, ok := c.dbs[name]
	c.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("database datasource %s not found", name)
	}
	return db, nil
}

func (c *GormComponent) listNames() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	names := make([]string, 0, len(c.dbs))
	for k := range c.dbs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func buildDialector(driver string, ds *DataSourceConfig) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		dsn := strings.TrimSpace(ds.DSN)
		if dsn == "" {
			return nil, errors.New("sqlite requires dsn (file path or :memory:)")
		}
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		dsn, err := buildMySQLDSN(ds)
		if err != nil {
			return nil, err
		}
		return mysqlDriver.New(mysqlDriver.Config{DSN: dsn}), nil
	case DriverPostgres:
		dsn, err := buildPostgresDSN(ds)
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// ensureSQLiteDir creates the parent directory of a file database.
func ensureSQLiteDir(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}
	return nil
}

func buildMySQLDSN(ds *DataSourceConfig) (string, error) {
	if strings.TrimSpace(ds.DSN) != "" {
		return ds.DSN, nil
	}
	if ds.Host == "" || ds.User == "" || ds.Database == "" {
		return "", errors.New("host, user, database required when dsn not provided")
	}
	port := ds.Port
	if port == 0 {
		port = 3306
	}
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("charset", "utf8mb4")
	params.Set("loc", "Local")
	for k, v := range ds.Params {
		params.Set(k, v)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", ds.User, ds.Password, ds.Host, port, ds.Database, params.Encode()), nil
}

func buildPostgresDSN(ds *DataSourceConfig) (string, error) {
	if strings.TrimSpace(ds.DSN) != "" {
		return ds.DSN, nil
	}
	if ds.Host == "" || ds.User == "" || ds.Database == "" {
		return "", errors.New("host, user, database required when dsn not provided")
	}
	port := ds.Port
	if port == 0 {
		port = 5432
	}
	base := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d", ds.Host, ds.User, ds.Password, ds.Database, port)
	keys := make([]string, 0, len(ds.Params))
	for k := range ds.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		base += fmt.Sprintf(" %s=%s", k, ds.Params[k])
	}
	return base, nil
}

func runMigrations(ctx context.Context, db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		for _, stmt := range strings.Split(string(b), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("exec %s failed: %w", f, err)
			}
		}
	}
	return nil
}
