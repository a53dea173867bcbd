package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/warehouse-management/warehouse/internal/application/hooks"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.events, ",")
}

type stubComponent struct {
	*BaseComponent
	rec      *recorder
	startErr error
}

func newStub(rec *recorder, name string, deps ...string) *stubComponent {
	return &stubComponent{BaseComponent: NewBaseComponent(name, deps...), rec: rec}
}

func (s *stubComponent) Start(ctx context.Context) error {
	if s.startErr != nil {
		s.rec.add("fail:" + s.Name())
		return s.startErr
	}
	s.rec.add("start:" + s.Name())
	return s.BaseComponent.Start(ctx)
}

func (s *stubComponent) Stop(ctx context.Context) error {
	s.rec.add("stop:" + s.Name())
	return s.BaseComponent.Stop(ctx)
}

func mustRegister(t *testing.T, c *Container, comps ...Component) {
	t.Helper()
	for _, comp := range comps {
		if err := c.Register(comp.Name(), comp); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStartAllFollowsDependencies(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	mustRegister(t, c,
		newStub(rec, "http_server", "logging", "database", "telemetry?"),
		newStub(rec, "database", "logging"),
		newStub(rec, "logging"),
	)
	lm := NewLifecycleManager(c)
	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	lm.StopAll(context.Background())
	lm.StopAll(context.Background()) // second call is a no-op

	want := "start:logging,start:database,start:http_server,stop:http_server,stop:database,stop:logging"
	if rec.String() != want {
		t.Fatalf("order\n got %s\nwant %s", rec, want)
	}
}

func TestStartAllRollsBackOnFailure(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	broken := newStub(rec, "http_server", "database")
	broken.startErr = errors.New("bind: address already in use")
	mustRegister(t, c, newStub(rec, "logging"), newStub(rec, "database", "logging"), broken)

	lm := NewLifecycleManager(c)
	err := lm.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to start component http_server") {
		t.Fatalf("unexpected error %v", err)
	}
	if !errors.Is(err, broken.startErr) {
		t.Fatal("start error must be wrapped")
	}
	want := "start:logging,start:database,fail:http_server,stop:database,stop:logging"
	if rec.String() != want {
		t.Fatalf("rollback\n got %s\nwant %s", rec, want)
	}
}

func TestValidateDependenciesReportsMissing(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	mustRegister(t, c, newStub(rec, "http_server", "logging", "telemetry?"))
	_, err := c.ValidateDependencies()
	if err == nil || !strings.Contains(err.Error(), "http_server -> [logging]") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSortDetectsCycle(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	mustRegister(t, c, newStub(rec, "a", "b"), newStub(rec, "b", "a"))
	if _, err := c.SortComponentsByDependencies(); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestContainerRegisterRejectsDuplicates(t *testing.T) {
	c := NewContainer()
	comp := newStub(&recorder{}, "logging")
	if err := c.Register("logging", comp); err != nil {
		t.Fatal(err)
	}
	if err := c.Register("logging", comp); err == nil {
		t.Fatal("duplicate must fail")
	}
	if err := c.Register("", comp); err == nil {
		t.Fatal("empty name must fail")
	}
}

func TestHooksRunAroundLifecycle(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	mustRegister(t, c, newStub(rec, "logging"))
	lm := NewLifecycleManager(c)
	for _, p := range []hooks.Phase{hooks.AfterShutdown, hooks.BeforeStart, hooks.AfterStart, hooks.BeforeShutdown} {
		phase := p
		if err := lm.AddHook(string(phase), phase, func(ctx context.Context) error {
			rec.add(string(phase))
			return nil
		}, 10); err != nil {
			t.Fatal(err)
		}
	}
	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	lm.StopAll(context.Background())
	want := "before_start,start:logging,after_start,before_shutdown,stop:logging,after_shutdown"
	if rec.String() != want {
		t.Fatalf("got %s want %s", rec, want)
	}
}

func TestParseDependency(t *testing.T) {
	if n, opt := ParseDependency("telemetry?"); n != "telemetry" || !opt {
		t.Fatalf("got %s %v", n, opt)
	}
	if n, opt := ParseDependency("logging"); n != "logging" || opt {
		t.Fatalf("got %s %v", n, opt)
	}
}
