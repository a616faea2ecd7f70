package metric

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/process"

	"sfucore/registry"
)

// Metrics contains the Prometheus metrics server and registered custom metrics.
type Metrics struct {
	httpServer *http.Server
	config     Config

	roomsTotal        prometheus.Gauge
	participantsTotal prometheus.Gauge
	producersTotal    prometheus.Gauge
	cpuUsage          prometheus.Gauge
	memoryUsage       prometheus.Gauge

	proc *process.Process
}

// New creates a new Metrics instance with the specified configuration.
func New(config Config) *Metrics {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("metric: could not attach to own process, resource gauges will stay at zero")
	}

	return &Metrics{
		config: config,
		roomsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sfucore_rooms_total",
			Help: "Current number of rooms tracked by the registry.",
		}),
		participantsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sfucore_participants_total",
			Help: "Current number of participants across all rooms.",
		}),
		producersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sfucore_producers_total",
			Help: "Current number of active producers across all rooms.",
		}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sfucore_process_cpu_percent",
			Help: "Process CPU usage percentage.",
		}),
		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sfucore_process_memory_bytes",
			Help: "Process resident memory usage in bytes.",
		}),
		proc: proc,
	}
}

// RegisterMetrics registers custom metrics with Prometheus.
func (m *Metrics) RegisterMetrics() {
	prometheus.MustRegister(m.roomsTotal)
	prometheus.MustRegister(m.participantsTotal)
	prometheus.MustRegister(m.producersTotal)
	prometheus.MustRegister(m.cpuUsage)
	prometheus.MustRegister(m.memoryUsage)
}

// Start initializes and runs the metrics HTTP server. It blocks until
// the server stops; callers run it in a goroutine.
func (m *Metrics) Start() {
	mux := http.NewServeMux()
	mux.Handle(m.config.Path, promhttp.Handler())

	m.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", m.config.Port),
		Handler: mux,
	}

	log.Info().Int("port", m.config.Port).Str("path", m.config.Path).Msg("metric: server starting")
	if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metric: server failed")
	}
}

// Stop gracefully shuts down the metrics server.
func (m *Metrics) Stop() error {
	if m.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.httpServer.Shutdown(ctx)
}

// Collect periodically samples the registry's room graph and the
// process's own resource usage, updating the gauges above. It blocks
// until ctx-less interval ticking is stopped by the caller exiting the
// process; callers run it in a goroutine.
func (m *Metrics) Collect(reg *registry.Registry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		m.sample(reg)
	}
}

func (m *Metrics) sample(reg *registry.Registry) {
	rooms := reg.Rooms()
	participants := 0
	producers := 0
	for _, room := range rooms {
		members := reg.SnapshotMembers(room.ID)
		participants += len(members)
		for _, p := range members {
			if p.HasProducer() {
				producers++
			}
		}
	}
	m.roomsTotal.Set(float64(len(rooms)))
	m.participantsTotal.Set(float64(participants))
	m.producersTotal.Set(float64(producers))

	if m.proc == nil {
		return
	}
	if pct, err := m.proc.CPUPercent(); err == nil {
		m.cpuUsage.Set(pct)
	}
	if mem, err := m.proc.MemoryInfo(); err == nil && mem != nil {
		m.memoryUsage.Set(float64(mem.RSS))
	}
}
