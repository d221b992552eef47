package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/solarace/app"
	"github.com/kilianp07/solarace/config"
	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/infra/logger"
	"github.com/kilianp07/solarace/infra/metrics"
)

var sweepSpeeds []float64

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the simulation across several cruise speeds",
	RunE:  sweep,
}

func init() {
	sweepCmd.Flags().Float64SliceVar(&sweepSpeeds, "speeds", []float64{60, 70, 80, 90}, "cruise speeds to simulate, km/h")
	rootCmd.AddCommand(sweepCmd)
}

type sweepResult struct {
	speed float64
	itin  *model.RouteItinerary
	err   error
}

func sweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// File outputs would race across variants; the sweep reports to
	// stdout and the metrics sinks only.
	cfg.Output = config.OutputConfig{}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("sweep").Errorf("service close: %v", err)
		}
	}()

	if cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr, logger.New("sweep")); err != nil {
				logger.New("sweep").Errorf("prom server: %v", err)
			}
		}()
	}

	base, err := cfg.Simulation.Parameters()
	if err != nil {
		return err
	}

	results := make([]sweepResult, len(sweepSpeeds))
	var wg sync.WaitGroup
	for i, speed := range sweepSpeeds {
		wg.Add(1)
		go func(i int, speed float64) {
			defer wg.Done()
			params := base
			params.AverageSpeedKmh = speed
			itin, err := svc.Simulator.CreateRouteItinerary(ctx, params)
			results[i] = sweepResult{speed: speed, itin: itin, err: err}
		}(i, speed)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].speed < results[j].speed })
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			fmt.Printf("%5.1f km/h: error: %v\n", r.speed, r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		fmt.Printf("%5.1f km/h: %-20s %2d day(s), %8.1f km, %6.1f kWh consumed\n",
			r.speed, r.itin.Terminal, len(r.itin.Days), r.itin.TotalDistanceKm, r.itin.TotalEnergyConsumptionKWh)
	}
	return firstErr
}
