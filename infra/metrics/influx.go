package metrics

import (
	"context"
	"net/http"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/solarace/core/simmetrics"
	"github.com/kilianp07/solarace/infra/logger"
)

// InfluxSink writes simulation records to an InfluxDB bucket, one point
// per simulated day and per finished run, for dashboarding.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so a missing dashboard backend
// never fails a simulation.
func NewInfluxSinkWithFallback(url, token, org, bucket string) simmetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return simmetrics.NopSink{}
	}
	return sink
}

// RecordDay implements simmetrics.Sink.
func (s *InfluxSink) RecordDay(rec simmetrics.DayRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_day").
		AddTag("run_id", rec.RunID).
		AddField("day_index", rec.DayIndex).
		AddField("distance_km", rec.DistanceKm).
		AddField("energy_produced_kwh", rec.EnergyProducedKWh).
		AddField("energy_consumed_kwh", rec.EnergyConsumedKWh).
		AddField("charging_hours", rec.ChargingHours).
		AddField("end_battery_pct", rec.EndBatteryPct).
		AddField("charge_stops", rec.ChargeStops).
		SetTime(rec.Date)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun implements simmetrics.Sink.
func (s *InfluxSink) RecordRun(rec simmetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", rec.RunID).
		AddTag("terminal", string(rec.Terminal)).
		AddField("days", rec.Days).
		AddField("total_distance_km", rec.TotalDistanceKm).
		AddField("total_energy_produced_kwh", rec.TotalEnergyProductionKWh).
		AddField("total_energy_consumed_kwh", rec.TotalEnergyConsumptionKWh).
		AddField("total_charging_hours", rec.TotalChargingHours).
		AddField("average_battery_pct", rec.AverageBatteryPct).
		SetTime(rec.FinishedAt)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
