package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-sitekit/internal/diagnostics"
)

func TestObserveResolution(t *testing.T) {
	r := NewRecorder()

	r.ObserveResolution("page", 3*time.Millisecond, []diagnostics.Diagnostic{
		{Kind: diagnostics.KindUnresolvedBinding},
		{Kind: diagnostics.KindUnresolvedBinding},
		{Kind: diagnostics.KindDuplicateKey},
	}, nil)
	r.ObserveResolution("page", time.Millisecond, nil, errors.New("boom"))

	if got := testutil.ToFloat64(r.resolutions.WithLabelValues("page")); got != 2 {
		t.Fatalf("expected 2 resolutions, got %v", got)
	}
	if got := testutil.ToFloat64(r.failures.WithLabelValues("page")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(r.diagnostics.WithLabelValues("page", "unresolved_binding")); got != 2 {
		t.Fatalf("expected 2 unresolved diagnostics, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveResolution("site", time.Millisecond, nil, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), `sitekit_resolutions_total{operation="site"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", rec.Body.String())
	}
}
