package autowire

import (
	"strings"
	"testing"

	"github.com/warehouse-management/warehouse/internal/application/core"
)

type store interface {
	core.Component
	Kind() string
}

type sqlStore struct{ *core.BaseComponent }

func (s *sqlStore) Kind() string { return "sql" }

type service struct {
	*core.BaseComponent
	Store   store               `infra:"dep:store"`
	Metrics *core.BaseComponent `infra:"dep:metrics?"`
	hidden  store               `infra:"dep:store"`
}

type broken struct {
	*core.BaseComponent
	Store *service `infra:"dep:store"`
}

func TestInjectAssignsAndExtendsDependencies(t *testing.T) {
	c := core.NewContainer()
	st := &sqlStore{core.NewBaseComponent("store")}
	svc := &service{BaseComponent: core.NewBaseComponent("service")}
	for _, comp := range []core.Component{st, svc} {
		if err := c.Register(comp.Name(), comp); err != nil {
			t.Fatal(err)
		}
	}

	if err := InjectAll(c); err != nil {
		t.Fatalf("inject: %v", err)
	}
	if svc.Store == nil || svc.Store.Kind() != "sql" {
		t.Fatalf("store not injected: %#v", svc.Store)
	}
	if svc.Metrics != nil {
		t.Fatalf("optional missing dependency should stay nil")
	}
	if svc.hidden != nil {
		t.Fatalf("unexported field must be ignored")
	}
	if got := svc.Dependencies(); len(got) != 1 || got[0] != "store" {
		t.Fatalf("deps = %v", got)
	}

	ordered, err := c.SortComponentsByDependencies()
	if err != nil {
		t.Fatal(err)
	}
	if ordered[0].Name() != "store" {
		t.Fatalf("store should start first, got %s", ordered[0].Name())
	}
}

func TestInjectReportsMissingAndIncompatible(t *testing.T) {
	c := core.NewContainer()
	svc := &service{BaseComponent: core.NewBaseComponent("service")}
	_ = c.Register("service", svc)

	err := InjectAll(c)
	if err == nil || !strings.Contains(err.Error(), "service: resolve store failed") {
		t.Fatalf("err = %v", err)
	}

	c = core.NewContainer()
	_ = c.Register("store", &sqlStore{core.NewBaseComponent("store")})
	_ = c.Register("broken", &broken{BaseComponent: core.NewBaseComponent("broken")})
	err = InjectAll(c)
	if err == nil || !strings.Contains(err.Error(), "incompatible types") {
		t.Fatalf("err = %v", err)
	}
}
