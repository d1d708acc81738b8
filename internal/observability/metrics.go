package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetprep_runs_total",
			Help: "Total number of meeting preparation runs",
		},
		[]string{"verdict", "status"},
	)
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meetprep_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)
	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetprep_tool_calls_total",
			Help: "Total number of tool calls made by stages",
		},
		[]string{"tool", "status"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(stageDuration)
	prometheus.MustRegister(toolCallsTotal)
}

func CountRun(verdict bool, status string) {
	v := "irrelevant"
	if verdict {
		v = "relevant"
	}
	runsTotal.WithLabelValues(v, status).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func CountToolCall(tool, status string) {
	toolCallsTotal.WithLabelValues(tool, status).Inc()
}
