package telemetry

type ExporterType string

const (
	ExporterStdout ExporterType = "stdout"
	// ExporterNone keeps a real tracer provider so trace ids still reach the
	// logs, but exports nothing.
	ExporterNone ExporterType = "none"
)

type Config struct {
	Enabled        bool         `yaml:"enabled"         json:"enabled"`
	ServiceName    string       `yaml:"service_name"    json:"service_name"`
	Exporter       ExporterType `yaml:"exporter"        json:"exporter" validate:"omitempty,oneof=stdout none"`
	SampleRatio    float64      `yaml:"sample_ratio"    json:"sample_ratio" validate:"gte=0,lte=1"`
	StdoutPretty   bool         `yaml:"stdout_pretty"   json:"stdout_pretty"`
	StdoutFile     string       `yaml:"stdout_file"     json:"stdout_file"` // if set, exporter output goes here
	MetricsEnabled bool         `yaml:"metrics_enabled" json:"metrics_enabled"`
}

func (c *Config) applyDefaults() {
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1.0
	}
	if c.Exporter == "" {
		c.Exporter = ExporterStdout
	}
}
