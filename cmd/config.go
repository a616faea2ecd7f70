// Package cmd parses flags and environment variables into the
// configuration the rest of the process is built from.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// Default configuration values, per the external interfaces section.
const (
	DefaultHTTPPort    = 5000
	DefaultBindAddr    = "0.0.0.0"
	DefaultRTCMinPort  = 40000
	DefaultRTCMaxPort  = 49999
	DefaultMetricsPort = 9090
)

// Errors returned by Config.Validate.
var (
	ErrInvalidPort    = errors.New("invalid port")
	ErrInvalidPortRange = errors.New("invalid rtc port range")
)

// Config is the fully parsed, validated process configuration.
type Config struct {
	HTTPPort    int
	BindAddr    string
	RTCMinPort  uint16
	RTCMaxPort  uint16
	AnnouncedIP string
	MetricsPort int
	Debug       bool
}

// Validate checks that the parsed configuration is usable.
func (c Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("http port %d: %w", c.HTTPPort, ErrInvalidPort)
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("metrics port %d: %w", c.MetricsPort, ErrInvalidPort)
	}
	if c.RTCMinPort != 0 || c.RTCMaxPort != 0 {
		if c.RTCMaxPort < c.RTCMinPort {
			return fmt.Errorf("rtc port range %d-%d: %w", c.RTCMinPort, c.RTCMaxPort, ErrInvalidPortRange)
		}
	}
	return nil
}

// envOrDefault reads name from the environment, falling back to def.
func envOrDefault(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

// Parse parses command-line flags, falling back to environment variables
// and then to the documented defaults, in that precedence order (a flag
// explicitly given on the command line always wins).
func Parse(w io.Writer, args []string) (Config, error) {
	con := Config{}

	fs := flag.NewFlagSet("sfucored", flag.ContinueOnError)
	fs.SetOutput(w)

	var rtcMinPort, rtcMaxPort int

	fs.IntVar(&con.HTTPPort, "port", atoiOr(envOrDefault("SFUCORE_HTTP_PORT", ""), DefaultHTTPPort), "signaling HTTP port")
	fs.StringVar(&con.BindAddr, "bind", envOrDefault("SFUCORE_BIND_ADDR", DefaultBindAddr), "bind address")
	fs.IntVar(&rtcMinPort, "rtc-min-port", atoiOr(envOrDefault("SFUCORE_RTC_MIN_PORT", ""), DefaultRTCMinPort), "minimum RTC UDP port")
	fs.IntVar(&rtcMaxPort, "rtc-max-port", atoiOr(envOrDefault("SFUCORE_RTC_MAX_PORT", ""), DefaultRTCMaxPort), "maximum RTC UDP port")
	fs.StringVar(&con.AnnouncedIP, "announced-ip", envOrDefault("SFUCORE_ANNOUNCED_IP", ""), "publicly announced IP, if behind NAT")
	fs.IntVar(&con.MetricsPort, "metrics-port", atoiOr(envOrDefault("SFUCORE_METRICS_PORT", ""), DefaultMetricsPort), "Prometheus metrics port")
	fs.BoolVar(&con.Debug, "debug", envOrDefault("SFUCORE_DEBUG", "") == "true", "debug logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse args: %w", err)
	}
	if fs.NArg() != 0 {
		return Config{}, errors.New("some args are not parsed")
	}

	con.RTCMinPort = uint16(rtcMinPort)
	con.RTCMaxPort = uint16(rtcMaxPort)
	return con, nil
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// SetupConfig parses and validates the configuration in one step.
func SetupConfig(w io.Writer, args []string) (Config, error) {
	config, err := Parse(w, args)
	if err != nil {
		return config, err
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
