package api_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/warehouse-management/warehouse/internal/application/autowire"
	"github.com/warehouse-management/warehouse/internal/application/components/gormdb"
	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/components/prometheus"
	"github.com/warehouse-management/warehouse/internal/application/core"
	"github.com/warehouse-management/warehouse/internal/warehouse/api"
	bizConfig "github.com/warehouse-management/warehouse/internal/warehouse/config"
	"github.com/warehouse-management/warehouse/internal/warehouse/controller"
	"github.com/warehouse-management/warehouse/internal/warehouse/dao"
	"github.com/warehouse-management/warehouse/internal/warehouse/service"
)

type fixture struct {
	srv    *httptest.Server
	logger *logging.LoggerComponent
	prom   *prometheus.Component
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := bizConfig.Default()
	cfg.JWTSecret = "test-secret"
	cfg.BcryptCost = 4

	logger := logging.NewLoggerComponent(logging.NewConfig(
		logging.WithTarget(logging.NewTarget(logging.TargetWebview)),
		logging.WithLevel("info"),
	))
	prom := prometheus.NewComponent(&prometheus.Config{Enabled: true, Path: "/metrics", Namespace: "warehouse"})
	db := gormdb.NewGormComponent(&gormdb.Config{
		Enabled: true,
		Driver:  gormdb.DriverSQLite,
		DataSources: map[string]*gormdb.DataSourceConfig{
			gormdb.DefaultDataSource: {DSN: ":memory:"},
		},
	})

	c := core.NewContainer()
	for _, comp := range []core.Component{
		logger, prom, db,
		dao.NewProductDao(gormdb.DefaultDataSource),
		dao.NewUserDao(gormdb.DefaultDataSource),
		service.NewMetrics(),
		service.NewAuthService(cfg),
		service.NewProductService(),
		service.NewSeeder(cfg.SeedData),
		controller.NewAuthController(),
		controller.NewProductController(),
		controller.NewReportController(),
		controller.NewLogsController(),
	} {
		if err := c.Register(comp.Name(), comp); err != nil {
			t.Fatal(err)
		}
	}
	if err := autowire.InjectAll(c); err != nil {
		t.Fatal(err)
	}
	lm := core.NewLifecycleManager(c)
	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	r := chi.NewRouter()
	if err := api.Routes(r, c); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		lm.StopAll(context.Background())
	})
	return &fixture{srv: srv, logger: logger, prom: prom}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, []byte, http.Header) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out, resp.Header
}

func (f *fixture) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body, _ := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, status, body)
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" || resp.User.Username != username {
		t.Fatalf("login response %s", body)
	}
	return resp.Token
}

type product struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return env.Data
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	status, body, _ := f.do(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	var resp map[string]string
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" || resp["message"] != "Warehouse Management API is running" {
		t.Fatalf("body %s", body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/products", "/api/dashboard/stats", "/api/export/csv", "/api/barcode/LAPTOP-001"} {
		if status, _, _ := f.do(t, http.MethodGet, path, "", nil); status != http.StatusUnauthorized {
			t.Errorf("%s without token: %d", path, status)
		}
		if status, _, _ := f.do(t, http.MethodGet, path, "not-a-jwt", nil); status != http.StatusUnauthorized {
			t.Errorf("%s with bad token: %d", path, status)
		}
	}
	if status, _, _ := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong-password",
	}); status != http.StatusUnauthorized {
		t.Fatalf("bad credentials: %d", status)
	}
}

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "admin", "admin123")

	status, body, _ := f.do(t, http.MethodGet, "/api/products", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %s", status, body)
	}
	list := decodeData[[]product](t, body)
	if len(list) != 5 {
		t.Fatalf("seeded %d products", len(list))
	}
	if list[0].SKU != "USB-001" {
		t.Fatalf("newest first expected, got %s", list[0].SKU)
	}

	_, body, _ = f.do(t, http.MethodGet, "/api/products?status=out_of_stock", token, nil)
	if got := decodeData[[]product](t, body); len(got) != 1 || got[0].SKU != "MON-001" {
		t.Fatalf("out_of_stock filter: %+v", got)
	}
	_, body, _ = f.do(t, http.MethodGet, "/api/products?low_stock=true", token, nil)
	if got := decodeData[[]product](t, body); len(got) != 1 || got[0].SKU != "MOUSE-001" {
		t.Fatalf("low_stock filter: %+v", got)
	}

	newProduct := map[string]any{
		"name": "Label Printer", "sku": "PRN-001", "quantity": 7,
		"location": "Warehouse C, Shelf 1", "status": "in_stock",
	}
	status, body, _ = f.do(t, http.MethodPost, "/api/products", token, newProduct)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %s", status, body)
	}
	created := decodeData[product](t, body)
	if created.Status != "low_stock" {
		t.Fatalf("status must follow quantity, got %s", created.Status)
	}
	if got := testutil.ToFloat64(f.prom.NewCounter("product_mutations_total", "", []string{"operation"}).WithLabelValues("create")); got != 1 {
		t.Fatalf("create counter = %v", got)
	}

	if status, _, _ = f.do(t, http.MethodPost, "/api/products", token, newProduct); status != http.StatusBadRequest {
		t.Fatalf("duplicate sku: %d", status)
	}
	if status, _, _ = f.do(t, http.MethodPost, "/api/products", token, map[string]any{"sku": "X"}); status != http.StatusBadRequest {
		t.Fatalf("missing fields: %d", status)
	}

	path := "/api/products/" + jsonNumber(created.ID)
	newProduct["quantity"] = 0
	status, body, _ = f.do(t, http.MethodPut, path, token, newProduct)
	if status != http.StatusOK {
		t.Fatalf("update: %d %s", status, body)
	}
	if updated := decodeData[product](t, body); updated.Status != "out_of_stock" || updated.Quantity != 0 {
		t.Fatalf("updated %+v", updated)
	}

	newProduct["sku"] = "LAPTOP-001"
	if status, _, _ = f.do(t, http.MethodPut, path, token, newProduct); status != http.StatusBadRequest {
		t.Fatalf("update onto taken sku: %d", status)
	}

	if status, _, _ = f.do(t, http.MethodGet, "/api/products/abc", token, nil); status != http.StatusBadRequest {
		t.Fatalf("invalid id: %d", status)
	}
	if status, _, _ = f.do(t, http.MethodGet, "/api/products/9999", token, nil); status != http.StatusNotFound {
		t.Fatalf("unknown id: %d", status)
	}

	if status, _, _ = f.do(t, http.MethodDelete, path, token, nil); status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
	if status, _, _ = f.do(t, http.MethodGet, path, token, nil); status != http.StatusNotFound {
		t.Fatalf("get after delete: %d", status)
	}
	if status, _, _ = f.do(t, http.MethodDelete, path, token, nil); status != http.StatusNotFound {
		t.Fatalf("delete twice: %d", status)
	}
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	user := map[string]string{"username": "bob", "email": "bob@example.com", "password": "hunter22"}

	status, body, _ := f.do(t, http.MethodPost, "/api/auth/register", "", user)
	if status != http.StatusCreated {
		t.Fatalf("register: %d %s", status, body)
	}
	if strings.Contains(string(body), "password") {
		t.Fatalf("password leaked: %s", body)
	}
	if status, _, _ = f.do(t, http.MethodPost, "/api/auth/register", "", user); status != http.StatusBadRequest {
		t.Fatalf("duplicate: %d", status)
	}
	short := map[string]string{"username": "carol", "email": "carol@example.com", "password": "123"}
	if status, _, _ = f.do(t, http.MethodPost, "/api/auth/register", "", short); status != http.StatusBadRequest {
		t.Fatalf("short password: %d", status)
	}
	badEmail := map[string]string{"username": "dave", "email": "nope", "password": "123456"}
	if status, _, _ = f.do(t, http.MethodPost, "/api/auth/register", "", badEmail); status != http.StatusBadRequest {
		t.Fatalf("bad email: %d", status)
	}

	token := f.login(t, "bob", "hunter22")
	if status, _, _ = f.do(t, http.MethodGet, "/api/products", token, nil); status != http.StatusOK {
		t.Fatalf("registered user token rejected: %d", status)
	}
}

func TestDashboardAndExports(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "admin", "admin123")

	status, body, _ := f.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	if status != http.StatusOK {
		t.Fatalf("stats: %d %s", status, body)
	}
	var stats struct {
		TotalProducts    int64     `json:"total_products"`
		TotalStock       int64     `json:"total_stock"`
		LowStockCount    int64     `json:"low_stock_count"`
		LowStockProducts []product `json:"low_stock_products"`
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalProducts != 5 || stats.TotalStock != 93 || stats.LowStockCount != 1 || len(stats.LowStockProducts) != 1 {
		t.Fatalf("stats %+v", stats)
	}

	status, body, hdr := f.do(t, http.MethodGet, "/api/export/csv", token, nil)
	if status != http.StatusOK || hdr.Get("Content-Type") != "text/csv" {
		t.Fatalf("csv: %d %s", status, hdr.Get("Content-Type"))
	}
	if !strings.Contains(hdr.Get("Content-Disposition"), "products.csv") {
		t.Fatalf("disposition %q", hdr.Get("Content-Disposition"))
	}
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 || strings.Join(rows[0], ",") != "ID,Name,SKU,Quantity,Location,Status,Created At,Updated At" {
		t.Fatalf("csv rows %v", rows)
	}
	if rows[1][2] != "LAPTOP-001" || rows[1][4] != "Warehouse A, Shelf 12" {
		t.Fatalf("first row %v", rows[1])
	}

	status, body, hdr = f.do(t, http.MethodGet, "/api/barcode/LAPTOP-001", token, nil)
	if status != http.StatusOK || hdr.Get("Content-Type") != "image/png" {
		t.Fatalf("barcode: %d %s", status, hdr.Get("Content-Type"))
	}
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("barcode size %v", b)
	}
}

func TestLogIngestionHonoursThreshold(t *testing.T) {
	f := newFixture(t)

	status, body, _ := f.do(t, http.MethodPost, "/api/logs", "", map[string]any{
		"level": "debug", "message": "ui-debug-marker",
	})
	if status != http.StatusNoContent {
		t.Fatalf("debug ingest: %d %s", status, body)
	}
	status, _, _ = f.do(t, http.MethodPost, "/api/logs", "", map[string]any{
		"level": "warn", "message": "ui-warn-marker", "fields": map[string]any{"view": "products"},
	})
	if status != http.StatusNoContent {
		t.Fatalf("warn ingest: %d", status)
	}
	if status, _, _ = f.do(t, http.MethodPost, "/api/logs", "", map[string]any{
		"level": "verbose", "message": "x",
	}); status != http.StatusBadRequest {
		t.Fatalf("unknown level: %d", status)
	}

	var sawWarn bool
	for _, rec := range f.logger.Console().Backlog() {
		s := string(rec)
		if strings.Contains(s, "ui-debug-marker") {
			t.Fatalf("debug record passed an info threshold: %s", s)
		}
		if strings.Contains(s, "ui-warn-marker") {
			sawWarn = true
			var m map[string]any
			if err := json.Unmarshal(rec, &m); err != nil {
				t.Fatal(err)
			}
			if m["origin"] != "webview" || m["view"] != "products" {
				t.Fatalf("record fields %s", s)
			}
		}
	}
	if !sawWarn {
		t.Fatal("warn record missing from the console")
	}
}

func TestLogStream(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/logs/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)

	// the backlog holds the records written while starting
	_, first, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(first) {
		t.Fatalf("not a json record: %s", first)
	}

	for time.Now().Before(deadline) {
		logging.Info(context.Background(), "stream-live-marker")
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(msg), "stream-live-marker") {
			return
		}
	}
	t.Fatal("live record not streamed")
}
