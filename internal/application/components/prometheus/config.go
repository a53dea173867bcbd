package prometheus

// Config for the Prometheus metrics exporter.
type Config struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Address of a dedicated metrics listener, e.g. ":9090". Empty mounts
	// Path on the main http_server instead.
	Address          string `yaml:"address" json:"address" validate:"omitempty,listen_addr"`
	Path             string `yaml:"path" json:"path" validate:"omitempty,startswith=/"` // default /metrics
	Namespace        string `yaml:"namespace" json:"namespace"`
	Subsystem        string `yaml:"subsystem" json:"subsystem"`
	CollectGoMetrics bool   `yaml:"collect_go_metrics" json:"collect_go_metrics"`
	CollectProcess   bool   `yaml:"collect_process" json:"collect_process"`
}
