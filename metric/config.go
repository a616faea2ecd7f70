// Package metric exposes process and room-graph health as Prometheus
// gauges: rooms, participants, and producers tracked, plus basic process
// resource usage. It is a supplement — nothing here feeds back into
// signaling decisions.
package metric

// Config defines the configuration for the metrics server.
type Config struct {
	Port int    // Port for metrics server
	Path string // Path for metrics endpoint
}

// Default values for metrics configuration.
const (
	DefaultMetricsPort = 9090
	DefaultMetricsPath = "/metrics"
)
