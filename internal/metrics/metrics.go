package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReportRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockradar_report_runs_total", Help: "Daily report builds by outcome"},
		[]string{"status"},
	)
	ProviderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockradar_provider_failures_total", Help: "Failed market-data provider attempts"},
		[]string{"provider"},
	)
	MessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "stockradar_messages_sent_total", Help: "Telegram messages delivered"},
	)
)

func init() {
	prometheus.MustRegister(ReportRuns, ProviderFailures, MessagesSent)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
