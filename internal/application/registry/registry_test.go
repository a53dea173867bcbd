package registry

import (
	"context"
	"testing"

	"github.com/warehouse-management/warehouse/internal/application/config"
	"github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/application/core"
)

type plainComponent struct {
	*core.BaseComponent
}

func (p *plainComponent) Start(ctx context.Context) error { return p.BaseComponent.Start(ctx) }

func TestTopoSortBuilders(t *testing.T) {
	list := []*Builder{
		{Name: "web", Deps: []string{"db", "cache"}},
		{Name: "db", Deps: []string{"logging"}},
		{Name: "logging"},
		{Name: "cache"},
	}
	ordered, err := topoSortBuilders(list)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, b := range ordered {
		got = append(got, b.Name)
	}
	want := []string{"cache", "logging", "db", "web"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}

	_, err = topoSortBuilders([]*Builder{{Name: "a", Deps: []string{"b"}}, {Name: "b", Deps: []string{"a"}}})
	if err == nil {
		t.Fatal("expected cycle error")
	}
}

type taggedComponent struct {
	*core.BaseComponent
	DB    any `infra:"dep:database"`
	Trace any `infra:"dep:telemetry?"`
	Again any `infra:"dep:database"`
}

func TestInferTagDependencies(t *testing.T) {
	deps := inferTagDependencies(&taggedComponent{BaseComponent: core.NewBaseComponent("x")})
	if len(deps) != 2 || deps[0] != "database" || deps[1] != "telemetry" {
		t.Fatalf("deps %v", deps)
	}
}

func TestPluginWinsOverBuilder(t *testing.T) {
	c := core.NewContainer()
	plugin := &plainComponent{core.NewBaseComponent(consts.COMPONENT_LOGGING)}
	if err := c.Register(consts.COMPONENT_LOGGING, plugin); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default(consts.ENV_TEST, t.TempDir())
	cfg.HTTPServer.Enabled = false
	cfg.Database.Enabled = false
	cfg.Telemetry.Enabled = false
	cfg.Prometheus.Enabled = false

	if err := BuildAndRegisterAll(cfg, c); err != nil {
		t.Fatal(err)
	}
	got, err := c.Resolve(consts.COMPONENT_LOGGING)
	if err != nil || got != plugin {
		t.Fatalf("plugin replaced: %v %v", got, err)
	}
	if len(c.ListRegistered()) != 1 {
		t.Fatalf("disabled sections must not register: %v", c.ListRegistered())
	}
}

func TestExtendRuntimeDependencies(t *testing.T) {
	c := core.NewContainer()
	comp := &plainComponent{core.NewBaseComponent("web")}
	if err := c.Register("web", comp); err != nil {
		t.Fatal(err)
	}
	ExtendRuntimeDependencies("web", "database")
	applyRuntimeDepExtensions(c)
	if deps := comp.Dependencies(); len(deps) != 1 || deps[0] != "database" {
		t.Fatalf("deps %v", deps)
	}
}
