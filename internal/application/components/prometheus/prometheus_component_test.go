package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterIsExposed(t *testing.T) {
	comp, err := NewFactory().Create(&Config{Enabled: true, Namespace: "warehouse"})
	if err != nil {
		t.Fatal(err)
	}
	c := comp.(*Component)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer c.Stop(context.Background())
	if C() != c {
		t.Fatal("global component not registered")
	}

	cv := c.NewCounter("product_mutations_total", "product writes", []string{"operation"})
	if again := c.NewCounter("product_mutations_total", "product writes", []string{"operation"}); again != cv {
		t.Fatal("same name must return the same vector")
	}
	cv.WithLabelValues("create").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `warehouse_product_mutations_total{operation="create"} 1`) {
		t.Fatalf("metric missing:\n%s", rec.Body.String())
	}
}
