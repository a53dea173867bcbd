package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warehouse-management/warehouse/internal/application/components/http_server"
	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/application/core"
)

func init() {
	// serves Path on the main router when no dedicated address is set
	http_server.RegisterRoutes(func(r chi.Router, c *core.Container) error {
		raw, err := c.Resolve(consts.COMPONENT_PROMETHEUS)
		if err != nil {
			return nil
		}
		pc, ok := raw.(*Component)
		if !ok || pc.cfg.Address != "" {
			return nil
		}
		r.Handle(pc.cfg.Path, pc.Handler())
		return nil
	})
}

// Component owns a private registry; metrics may be created before Start.
type Component struct {
	*core.BaseComponent
	cfg      *Config
	server   *http.Server
	registry *prometheus.Registry
	started  bool

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

func NewComponent(cfg *Config) *Component {
	c := &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_PROMETHEUS, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		registry:      prometheus.NewRegistry(),
		counters:      make(map[string]*prometheus.CounterVec),
		histograms:    make(map[string]*prometheus.HistogramVec),
	}
	if cfg.CollectGoMetrics {
		_ = c.registry.Register(collectors.NewGoCollector())
	}
	if cfg.CollectProcess {
		_ = c.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return c
}

func (c *Component) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Component) Start(ctx context.Context) error {
	if c.cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle(c.cfg.Path, c.Handler())
		c.server = &http.Server{
			Addr:              c.cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logging.Infof(ctx, "prometheus metrics listening on %s%s", c.cfg.Address, c.cfg.Path)
			if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Errorf(ctx, "prometheus server error: %v", err)
			}
		}()
	} else {
		logging.Infof(ctx, "prometheus metrics served by http_server at %s", c.cfg.Path)
	}

	registerGlobal(c)
	c.started = true
	return c.BaseComponent.Start(ctx)
}

func (c *Component) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()
	unregisterGlobal(c)
	c.started = false
	if c.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("prometheus server shutdown: %w", err)
	}
	logging.Info(ctx, "prometheus component stopped")
	return nil
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if !c.started {
		return fmt.Errorf("prometheus not started")
	}
	return nil
}

func (c *Component) fqName(name string) string {
	return prometheus.BuildFQName(c.cfg.Namespace, c.cfg.Subsystem, name)
}

// NewCounter registers a counter vector. Asking twice for the same name
// returns the first vector.
func (c *Component) NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cv, ok := c.counters[name]; ok {
		return cv
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: c.fqName(name),
		Help: help,
	}, labels)
	_ = c.registry.Register(cv)
	c.counters[name] = cv
	return cv
}

func (c *Component) NewHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hv, ok := c.histograms[name]; ok {
		return hv
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    c.fqName(name),
		Help:    help,
		Buckets: buckets,
	}, labels)
	_ = c.registry.Register(hv)
	c.histograms[name] = hv
	return hv
}
