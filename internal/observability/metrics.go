package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	outboundLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kittehbot",
			Subsystem: "output",
			Name:      "lines_total",
			Help:      "Outbound lines written to the server.",
		},
		[]string{"bot", "priority"},
	)
	writeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kittehbot",
			Subsystem: "output",
			Name:      "write_failures_total",
			Help:      "Outbound writes that failed and were dropped.",
		},
		[]string{"bot"},
	)
	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kittehbot",
			Subsystem: "output",
			Name:      "queue_depth",
			Help:      "Lines currently waiting in the send queues.",
		},
		[]string{"bot", "priority"},
	)
	quitWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kittehbot",
			Subsystem: "output",
			Name:      "quit_writes_total",
			Help:      "Terminal QUIT lines written on shutdown.",
		},
		[]string{"bot"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(outboundLines, writeFailures, queueDepth, quitWrites)
	})
}

func RecordLineSent(bot, priority string) {
	RegisterMetrics()
	outboundLines.WithLabelValues(bot, priority).Inc()
}

func RecordWriteFailure(bot string) {
	RegisterMetrics()
	writeFailures.WithLabelValues(bot).Inc()
}

func RecordQueueDepth(bot string, high, low int) {
	RegisterMetrics()
	queueDepth.WithLabelValues(bot, "high").Set(float64(high))
	queueDepth.WithLabelValues(bot, "low").Set(float64(low))
}

func RecordQuitWrite(bot string) {
	RegisterMetrics()
	quitWrites.WithLabelValues(bot).Inc()
}
