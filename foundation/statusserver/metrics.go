package statusserver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics lives on its own registry so tests and multiple instances don't
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	temperature      prometheus.Gauge
	temperatureValid prometheus.Gauge
	fanCommand       *prometheus.GaugeVec
	decisions        *prometheus.CounterVec
	writes           prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nvfans_temperature_celsius",
			Help: "Hottest sensor reading of the last decision cycle.",
		}),
		temperatureValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nvfans_temperature_valid",
			Help: "1 when at least one sensor was readable in the last cycle.",
		}),
		fanCommand: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nvfans_fan_command_info",
			Help: "Set to 1 for the command last written to the fan device.",
		}, []string{"command"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvfans_decisions_total",
			Help: "Decision cycles by outcome.",
		}, []string{"status"}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nvfans_fan_writes_total",
			Help: "Commands written to the fan device.",
		}),
	}
	m.registry.MustRegister(
		m.temperature,
		m.temperatureValid,
		m.fanCommand,
		m.decisions,
		m.writes,
	)
	return m
}

// Observe records one decision cycle.
func (m *Metrics) Observe(status string, temperatureC int64, valid bool, command string, wrote bool) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(status).Inc()
	if valid {
		m.temperature.Set(float64(temperatureC))
		m.temperatureValid.Set(1)
	} else {
		m.temperatureValid.Set(0)
	}
	if wrote {
		m.writes.Inc()
		m.fanCommand.Reset()
		m.fanCommand.WithLabelValues(command).Set(1)
	}
}
