package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

const namespace = "campus_assistant"

// Recorder exports routing, turn, agent and HTTP measurements.
type Recorder struct {
	gatherer prometheus.Gatherer

	routesTotal   *prometheus.CounterVec
	turnsTotal    *prometheus.CounterVec
	agentDuration *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

var _ contractx.Recorder = (*Recorder)(nil)

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	r := &Recorder{
		gatherer: gatherer,
		routesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routes_total",
				Help:      "Routing decisions by topic.",
			},
			[]string{"topic"},
		),
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Finished turns by topic and status.",
			},
			[]string{"topic", "status"},
		),
		agentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "agent_duration_seconds",
				Help:      "Topic agent latency.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"topic", "status"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(r.routesTotal, r.turnsTotal, r.agentDuration, r.httpRequests, r.httpDuration)
	return r
}

func (r *Recorder) ObserveRoute(topic contractx.Topic) {
	r.routesTotal.WithLabelValues(topic.String()).Inc()
}

func (r *Recorder) ObserveTurn(topic contractx.Topic, failed bool) {
	r.turnsTotal.WithLabelValues(topic.String(), status(failed)).Inc()
}

func (r *Recorder) ObserveAgent(topic contractx.Topic, seconds float64, failed bool) {
	r.agentDuration.WithLabelValues(topic.String(), status(failed)).Observe(seconds)
}

func (r *Recorder) ObserveHTTP(route string, code int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func status(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
