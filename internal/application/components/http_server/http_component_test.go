package http_server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/core"
)

func TestHTTPServerServesHealthAndRegistrars(t *testing.T) {
	hc := NewHTTPServerComponent(&HTTPServerConfig{
		Enabled:      true,
		Address:      "127.0.0.1:0",
		EnableHealth: true,
	}, core.NewContainer())

	var seenID string
	if err := hc.AddRouteRegistrar(func(r chi.Router, c *core.Container) error {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			seenID = logging.RequestID(r.Context())
			_, _ = w.Write([]byte("pong"))
		})
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := hc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer hc.Stop(ctx)

	resp, err := http.Get("http://" + hc.Addr() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("healthz: %d %q", resp.StatusCode, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	hc.Handler().ServeHTTP(rec, req)
	if rec.Body.String() != "pong" || seenID != "abc-123" {
		t.Fatalf("body=%q request id=%q", rec.Body.String(), seenID)
	}
	if rec.Header().Get(requestIDHeader) != "abc-123" {
		t.Fatal("request id must be echoed")
	}

	if err := hc.AddRouteRegistrar(func(chi.Router, *core.Container) error { return nil }); err == nil {
		t.Fatal("adding routes after start must fail")
	}
}

func TestRequestIDIsGeneratedWhenMissing(t *testing.T) {
	var got string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logging.RequestID(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(got) != 36 || rec.Header().Get(requestIDHeader) != got {
		t.Fatalf("generated id %q header %q", got, rec.Header().Get(requestIDHeader))
	}
}

func TestStartFailsOnBusyAddress(t *testing.T) {
	first := NewHTTPServerComponent(&HTTPServerConfig{Enabled: true, Address: "127.0.0.1:0"}, core.NewContainer())
	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer first.Stop(context.Background())

	second := NewHTTPServerComponent(&HTTPServerConfig{Enabled: true, Address: first.Addr()}, core.NewContainer())
	if err := second.Start(context.Background()); err == nil {
		_ = second.Stop(context.Background())
		t.Fatal("expected listen error")
	}
	if second.IsActive() {
		t.Fatal("failed component must not be active")
	}
}
