package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/solarace/core/simmetrics"
)

// PromSink records simulation progress in Prometheus metrics. Useful
// during sweeps, where many runs execute in one process.
type PromSink struct {
	runs        *prometheus.CounterVec
	dayDistance prometheus.Histogram
	chargeStops prometheus.Counter
	lastRunKm   prometheus.Gauge
	lastRunDays prometheus.Gauge
}

// NewPromSink registers the simulation metrics on the default Prometheus
// registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_runs_total",
		Help: "Finished simulation runs by terminal state",
	}, []string{"terminal"})
	dayDistance := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_day_distance_km",
		Help:    "Distance covered per simulated day",
		Buckets: prometheus.LinearBuckets(0, 100, 10),
	})
	chargeStops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_charge_stops_total",
		Help: "Low-battery charging stops across all runs",
	})
	lastRunKm := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_last_run_distance_km",
		Help: "Total distance of the most recently finished run",
	})
	lastRunDays := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_last_run_days",
		Help: "Day count of the most recently finished run",
	})

	for _, c := range []prometheus.Collector{runs, dayDistance, chargeStops, lastRunKm, lastRunDays} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{
		runs:        runs,
		dayDistance: dayDistance,
		chargeStops: chargeStops,
		lastRunKm:   lastRunKm,
		lastRunDays: lastRunDays,
	}, nil
}

// RecordDay implements simmetrics.Sink.
func (s *PromSink) RecordDay(rec simmetrics.DayRecord) error {
	s.dayDistance.Observe(rec.DistanceKm)
	s.chargeStops.Add(float64(rec.ChargeStops))
	return nil
}

// RecordRun implements simmetrics.Sink.
func (s *PromSink) RecordRun(rec simmetrics.RunRecord) error {
	s.runs.WithLabelValues(string(rec.Terminal)).Inc()
	s.lastRunKm.Set(rec.TotalDistanceKm)
	s.lastRunDays.Set(float64(rec.Days))
	return nil
}
