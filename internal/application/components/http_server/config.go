package http_server

import "time"

// HTTPServerConfig defines server settings.
type HTTPServerConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Address         string        `yaml:"address" json:"address" validate:"omitempty,listen_addr"` // e.g. ":8080"
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"` // 0 keeps the log stream websocket open
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	GracefulTimeout time.Duration `yaml:"graceful_timeout" json:"graceful_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"` // per request context deadline

	// Built-in endpoints
	EnableHealth bool `yaml:"enable_health" json:"enable_health"`

	// Origins allowed by the CORS middleware. Empty allows any origin, which
	// the desktop web view needs when it loads pages from a custom scheme.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// ServiceName injected from APPInfo.APPName
	ServiceName string `yaml:"-" json:"-"`
}
