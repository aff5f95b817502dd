package cmd

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/innerpeacez/sharding-sphere/config"
	"github.com/innerpeacez/sharding-sphere/datasource"
	"github.com/innerpeacez/sharding-sphere/eventbus"
	"github.com/innerpeacez/sharding-sphere/executor"
	"github.com/innerpeacez/sharding-sphere/metrics"
)

var metricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start health-checked data source pools and the execution fan-out engine",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics", ":9090", "Prometheus metrics and pprof listen address")
}

// runServe wires the ambient stack together: config, per-data-source
// pools with background health checks, the execution fan-out engine
// publishing to Prometheus, and a metrics HTTP endpoint. It blocks until
// SIGINT/SIGTERM, then drains the engine.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	metrics.Init()
	go func() {
		http.Handle("/metrics", metrics.Handler())
		log.Printf("metrics endpoint at http://localhost%s/metrics", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	registry := datasource.NewRegistry(cfg)
	log.Printf("configured %d data source(s): %v", len(registry.IDs()), registry.IDs())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.StartHealthChecks(ctx, 10*time.Second)

	bus := eventbus.New()
	bus.Subscribe(metrics.NewSink())
	engine := executor.New(cfg.ExecutorSize, bus)
	defer engine.Close()

	log.Printf("sphere-proxy serving with executor size %d. Press Ctrl+C to stop.", cfg.ExecutorSize)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down")
	return nil
}
