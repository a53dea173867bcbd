package application

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/application/core"
)

type fakeLogger struct {
	*core.BaseComponent
	started, stopped bool
}

func (f *fakeLogger) Start(ctx context.Context) error {
	f.started = true
	return f.BaseComponent.Start(ctx)
}

func (f *fakeLogger) Stop(ctx context.Context) error {
	f.stopped = true
	return f.BaseComponent.Stop(ctx)
}

func writeConfig(t *testing.T, address string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "http_server:\n  enabled: true\n  address: \"" + address + "\"\n" +
		"database:\n  enabled: false\n" +
		"prometheus:\n  enabled: false\n" +
		"telemetry:\n  enabled: false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPluginTakesPrecedenceAndRuns(t *testing.T) {
	fake := &fakeLogger{BaseComponent: core.NewBaseComponent(consts.COMPONENT_LOGGING)}
	app := NewApp(consts.ENV_TEST, writeConfig(t, "127.0.0.1:0")).Plugin(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.RunWithContext(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := app.GetComponent(consts.COMPONENT_LOGGING)
	if err != nil {
		t.Fatal(err)
	}
	if got != fake {
		t.Fatalf("logging component was rebuilt instead of using the plugin")
	}
	if !fake.started || !fake.stopped {
		t.Fatalf("plugin lifecycle not driven: started=%v stopped=%v", fake.started, fake.stopped)
	}
	if !app.Container().Has(consts.COMPONENT_HTTP_SERVER) {
		t.Fatalf("http_server not built from config")
	}
	if app.GetConfig().APPInfo.ENV != consts.ENV_TEST {
		t.Fatalf("env = %q", app.GetConfig().APPInfo.ENV)
	}
}

func TestRunReportsStartFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()

	fake := &fakeLogger{BaseComponent: core.NewBaseComponent(consts.COMPONENT_LOGGING)}
	app := NewApp(consts.ENV_TEST, writeConfig(t, busy.Addr().String())).Plugin(fake)

	err = app.RunWithContext(context.Background())
	if err == nil {
		t.Fatal("expected start failure")
	}
	if !fake.stopped {
		t.Fatal("started plugin was not rolled back")
	}
}

func TestPluginNilIsReported(t *testing.T) {
	app := NewApp(consts.ENV_TEST, writeConfig(t, "127.0.0.1:0")).Plugin(nil)
	err := app.RunWithContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "nil") {
		t.Fatalf("err = %v", err)
	}
}

func TestWatchSecondSignal(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	returned := make(chan struct{})
	fired := false
	go func() {
		watchSecondSignal(sigCh, done, func() { fired = true })
		close(returned)
	}()
	close(done)
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher still running after shutdown finished")
	}
	if fired {
		t.Fatal("no signal arrived, force exit must not fire")
	}

	sigCh <- os.Interrupt
	hit := make(chan struct{})
	watchSecondSignal(sigCh, make(chan struct{}), func() { close(hit) })
	select {
	case <-hit:
	default:
		t.Fatal("second signal did not trigger force exit")
	}
}
