package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sfucore/broker"
	"sfucore/coordinator"
	"sfucore/facade/engine"
	"sfucore/gateway"
	"sfucore/metric"
	"sfucore/pool"
	"sfucore/registry"
	"sfucore/registry/journal"
)

// Run parses the configuration, wires the four core components together,
// and serves the signaling and metrics endpoints until the process is
// killed or the media engine fails fatally.
func Run() {
	config, err := SetupConfig(os.Stdout, os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	eng := engine.New(engine.Config{
		MinPort:     config.RTCMinPort,
		MaxPort:     config.RTCMaxPort,
		AnnouncedIP: config.AnnouncedIP,
	})
	if err := eng.Init(); err != nil {
		log.Fatal().Err(err).Msg("facade: init failed")
	}
	defer eng.Shutdown()

	j := journal.New()
	reg := registry.New(j)
	b := broker.New()
	co := coordinator.New(reg, eng)
	gw := gateway.New(gateway.DefaultConfig(), b, co)

	rooms := pool.New(reg)

	metrics := metric.New(metric.Config{
		Port: config.MetricsPort,
		Path: metric.DefaultMetricsPath,
	})
	metrics.RegisterMetrics()
	go metrics.Collect(reg, 5*time.Second)
	go metrics.Start()
	defer func() { _ = metrics.Stop() }()

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	mux.HandleFunc("/debug/rooms/top", rooms.TopRoomsHandler)

	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", config.BindAddr, config.HTTPPort),
		ReadTimeout: 2 * time.Second,
		Handler:     mux,
	}

	log.Info().Str("addr", srv.Addr).Msg("signaling server starting")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("signaling server exited")
	}
}
