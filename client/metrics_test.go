package client

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tgmarket/miniapp-client/pkg/testutil"
)

func TestMetricsTransport_RecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	rec := testutil.NewRecordingTransport(200, `[]`)
	c := newTestClient(t, rec, func(cfg *Config) { cfg.Metrics = metrics })

	ctx := context.Background()
	if _, err := c.Get(ctx, "/api/products"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if _, err := c.Get(ctx, "/api/admin/settings"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	standard := metrics.requests.WithLabelValues("GET", "standard", "200")
	if got := promtestutil.ToFloat64(standard); got != 1 {
		t.Errorf("standard requests counter = %v, want 1", got)
	}
	privileged := metrics.requests.WithLabelValues("GET", "privileged", "200")
	if got := promtestutil.ToFloat64(privileged); got != 1 {
		t.Errorf("privileged requests counter = %v, want 1", got)
	}
}

func TestMetricsTransport_RecordsTransportFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	rec := testutil.NewFailingTransport("dns lookup failed")
	c := newTestClient(t, rec, func(cfg *Config) { cfg.Metrics = metrics })

	if _, err := c.Get(context.Background(), "/api/products"); err == nil {
		t.Fatal("Get() expected error")
	}

	failures := metrics.transportFailures.WithLabelValues("GET", "standard")
	if got := promtestutil.ToFloat64(failures); got != 1 {
		t.Errorf("transport failures counter = %v, want 1", got)
	}
}
