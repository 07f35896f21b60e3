package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/internal/server"
	"github.com/elfin-go/elfin/pkg/config"
	"github.com/elfin-go/elfin/pkg/connector"
	"github.com/elfin-go/elfin/pkg/metrics"
	"github.com/elfin-go/elfin/pkg/picture"
	"github.com/elfin-go/elfin/pkg/volume"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetOutput(cfg.Logging.Output)

	logger.Info("elfin file manager connector starting")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go serveMetrics(cfg.Metrics.Listen)
	}

	registry := volume.NewRegistry()
	for i := range cfg.Volumes {
		vol, err := config.CreateVolume(ctx, &cfg.Volumes[i])
		if err != nil {
			log.Fatalf("Failed to create volume: %v", err)
		}
		if err := registry.Mount(vol); err != nil {
			log.Fatalf("Failed to mount volume %q: %v", vol.Alias, err)
		}
		logger.Info("Volume mounted: id=%s alias=%s", vol.ID(), vol.Alias)
	}

	conn := connector.New(registry, picture.NewStdEditor(), metrics.NewConnectorMetrics())
	srv := server.New(conn, cfg.Server.Listen, cfg.Server.ShutdownTimeout)

	if err := srv.Serve(ctx); err != nil {
		logger.Error("Server error: %v", err)
		return
	}
	logger.Info("Shutdown complete")
}

func serveMetrics(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	logger.Info("Metrics server listening on %s", listen)
	if err := http.ListenAndServe(listen, mux); err != nil {
		logger.Error("Metrics server error: %v", err)
	}
}
