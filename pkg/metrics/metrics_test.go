package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

func counterValue(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecorderCountsTurns(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg, reg)

	r.ObserveRoute(contractx.TopicFIN)
	r.ObserveRoute(contractx.TopicFIN)
	r.ObserveTurn(contractx.TopicFIN, true)
	r.ObserveTurn(contractx.TopicNone, false)
	r.ObserveAgent(contractx.TopicFIN, 0.3, true)

	if got := counterValue(t, reg, "campus_assistant_routes_total", map[string]string{"topic": "FIN"}); got != 2 {
		t.Fatalf("routes_total{FIN} = %v, want 2", got)
	}
	if got := counterValue(t, reg, "campus_assistant_turns_total", map[string]string{"topic": "FIN", "status": "error"}); got != 1 {
		t.Fatalf("turns_total{FIN,error} = %v, want 1", got)
	}
	if got := counterValue(t, reg, "campus_assistant_turns_total", map[string]string{"topic": "NONE", "status": "ok"}); got != 1 {
		t.Fatalf("turns_total{NONE,ok} = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r := New()
	r.ObserveHTTP("turns", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `campus_assistant_http_requests_total{code="200",route="turns"} 1`) {
		t.Fatalf("metrics output misses http counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatal("metrics output misses runtime collectors")
	}
}
