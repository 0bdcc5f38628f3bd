package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sim-os/sim-os/sim"
)

var (
	// Prometheus metrics (gauges)
	promMetrics = struct {
		timer         prometheus.Gauge
		throughput    prometheus.Gauge
		finished      prometheus.Gauge
		avgWaiting    prometheus.Gauge
		avgTurnaround prometheus.Gauge
		coreUsage     *prometheus.GaugeVec
	}{
		timer: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simos_timer_ticks",
			Help: "Current simulation tick",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simos_throughput",
			Help: "Finished processes per tick",
		}),
		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simos_finished_processes",
			Help: "Number of finished processes",
		}),
		avgWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simos_avg_waiting_time_ticks",
			Help: "Average waiting time across finished processes",
		}),
		avgTurnaround: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simos_avg_turnaround_time_ticks",
			Help: "Average turnaround time across finished processes",
		}),
		coreUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simos_core_usage",
			Help: "Resource usage share of the running burst per core",
		}, []string{"core"}),
	}
)

func initPrometheusMetrics() {
	prometheus.MustRegister(
		promMetrics.timer,
		promMetrics.throughput,
		promMetrics.finished,
		promMetrics.avgWaiting,
		promMetrics.avgTurnaround,
		promMetrics.coreUsage,
	)
}

// updatePrometheusMetrics is called with the server mutex held.
func updatePrometheusMetrics(e *sim.Engine) {
	promMetrics.timer.Set(float64(e.Timer()))
	promMetrics.throughput.Set(e.Throughput())
	promMetrics.finished.Set(float64(len(e.Finished())))
	promMetrics.avgWaiting.Set(e.AverageWaitingTime())
	promMetrics.avgTurnaround.Set(e.AverageTurnaroundTime())
	for i := 0; i < e.NumCores(); i++ {
		promMetrics.coreUsage.WithLabelValues(strconv.Itoa(i)).Set(e.CPUUsage(i))
	}
}
