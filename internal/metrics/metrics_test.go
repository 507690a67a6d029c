package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew_RegistersAndRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "dnsasync_test")

	m.QueriesSent.Inc()
	m.QueriesResolved.WithLabelValues("success").Inc()
	m.InflightQueries.Set(3)

	mf, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range mf {
		if f.GetName() == "dnsasync_test_queries_sent_total" {
			found = true
			if got := f.Metric[0].Counter.GetValue(); got != 1 {
				t.Fatalf("expected counter 1, got %v", got)
			}
		}
	}
	if !found {
		t.Fatal("expected queries_sent_total to be registered")
	}
}

func TestNewNoop_NeverPanics(t *testing.T) {
	m := NewNoop()
	m.QueriesSent.Inc()
	m.InflightQueries.Set(1)
	m.PoolSize.Set(2)
}
