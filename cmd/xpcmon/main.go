// xpcmon polls an X-Plane Connect plugin for telemetry and records the
// samples to SQLite.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xpcgo/pkg/config"
	"xpcgo/pkg/logging"
	"xpcgo/pkg/probe"
	"xpcgo/pkg/recorder"
	"xpcgo/pkg/route"
	"xpcgo/pkg/sim"
	"xpcgo/pkg/sim/xplane"
	"xpcgo/pkg/version"
)

var (
	configPath = flag.String("config", "configs/xpcgo.yaml", "Path to config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	banner     = flag.String("banner", "", "Display this message on the simulator screen at startup")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("xpcmon started", "version", version.Version,
		"host", appCfg.Sim.Host, "port", appCfg.Sim.Port)

	rec, err := recorder.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to open recorder db: %w", err)
	}
	defer rec.Close()

	client, err := xplane.NewClient(appCfg.Sim.Host, appCfg.Sim.Port,
		appCfg.Sim.LocalPort, time.Duration(appCfg.Sim.Timeout))
	if err != nil {
		return fmt.Errorf("failed to create sim client: %w", err)
	}
	defer client.Close()

	// Startup Verification
	results := probe.Run(ctx, []probe.Probe{
		probe.Simulator(client, "sim/flightmodel/position/latitude", true),
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	if *banner != "" {
		if err := client.SendText(*banner, -1, -1); err != nil {
			slog.Warn("Failed to display banner", "error", err)
		}
	}

	if err := pushRoute(client, appCfg.Route.Waypoints); err != nil {
		slog.Warn("Failed to push route", "error", err)
	}

	return monitorLoop(ctx, appCfg, client, rec)
}

// pushRoute sends the configured waypoints to the simulator and logs the
// great-circle length of the resulting route.
func pushRoute(client sim.Client, wps []config.Waypoint) error {
	if len(wps) == 0 {
		return nil
	}
	points := make([]sim.Waypoint, 0, len(wps))
	for _, w := range wps {
		points = append(points, sim.Waypoint{Lat: w.Lat, Lon: w.Lon, Alt: w.Alt})
	}
	if err := client.SendWaypoints(sim.WaypointsAdd, points); err != nil {
		return err
	}
	slog.Info("Route pushed", "waypoints", len(points),
		"total_km", route.TotalDistance(points)/1000)
	return nil
}

func monitorLoop(ctx context.Context, cfg *config.Config, client sim.Client, rec *recorder.Recorder) error {
	interval := time.Duration(cfg.Monitor.Interval)
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Monitoring datarefs", "count", len(cfg.Monitor.Datarefs), "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return nil
		case <-ticker.C:
			if err := pollOnce(cfg, client, rec); err != nil {
				if errors.Is(err, sim.ErrTimeout) {
					slog.Warn("Simulator did not respond", "error", err)
					continue
				}
				return err
			}
		}
	}
}

func pollOnce(cfg *config.Config, client sim.Client, rec *recorder.Recorder) error {
	results, err := client.GetDatarefs(cfg.Monitor.Datarefs)
	if err != nil {
		return err
	}

	var lat, lon, alt float64
	var havePos int
	for i, name := range cfg.Monitor.Datarefs {
		if i >= len(results) {
			break
		}
		if err := rec.RecordDataref(name, results[i]); err != nil {
			return fmt.Errorf("failed to record %s: %w", name, err)
		}
		if len(results[i]) == 0 {
			continue
		}
		switch name {
		case "sim/flightmodel/position/latitude":
			lat, havePos = float64(results[i][0]), havePos+1
		case "sim/flightmodel/position/longitude":
			lon, havePos = float64(results[i][0]), havePos+1
		case "sim/flightmodel/position/elevation":
			alt, havePos = float64(results[i][0]), havePos+1
		}
	}

	if havePos == 3 {
		if err := rec.RecordPosition(lat, lon, alt); err != nil {
			return fmt.Errorf("failed to record position: %w", err)
		}
		slog.Debug("Recorded position", "lat", lat, "lon", lon, "alt", alt)
	}
	return nil
}
