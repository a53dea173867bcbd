package consts

const (
	ENV_PRODUCTION  = "production"
	ENV_DEVELOPMENT = "development"
	ENV_TEST        = "test"

	DEFAULT_CONFIG_PATH = "config.yaml"

	KEY_TraceID   = "trace_id"
	KEY_RequestID = "request_id"

	// Environment overrides applied after the config file.
	ENV_HTTP_ADDRESS = "WAREHOUSE_HTTP_ADDRESS"
	ENV_DB_DRIVER    = "WAREHOUSE_DB_DRIVER"
	ENV_DB_DSN       = "WAREHOUSE_DB_DSN"
	ENV_JWT_SECRET   = "WAREHOUSE_JWT_SECRET"
	ENV_APP_ENV      = "WAREHOUSE_ENV"

	// Shutdown behaviour of App.Run.
	ENV_FORCE_ENHANCED     = "WAREHOUSE_FORCE_ENHANCED"
	ENV_DISABLE_ENHANCED   = "WAREHOUSE_DISABLE_ENHANCED"
	ENV_DISABLE_FORCE_EXIT = "WAREHOUSE_DISABLE_FORCE_EXIT"
	ENV_FORCE_EXIT_CODE    = "WAREHOUSE_FORCE_EXIT_CODE"
)
