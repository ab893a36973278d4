package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/core/model"
	"github.com/kilianp07/wrsn/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving simulation points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes simulation records to InfluxDB using the official
// client. Points are stamped with the run start plus the simulated offset.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A trailing
// /api/v2/write on the URL is tolerated.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the instance and returns a NopSink if the
// health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
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
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordDispatch writes one cluster visit.
func (s *InfluxSink) RecordDispatch(rec coremetrics.DispatchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch").
		AddTag("run_id", rec.RunID).
		AddTag("policy", rec.Policy).
		AddTag("cluster", strconv.Itoa(int(rec.Cluster))).
		AddField("cycle", rec.Cycle).
		AddField("travel_energy", round3(rec.TravelEnergy)).
		AddField("transfer_energy", round3(rec.TransferEnergy)).
		AddField("replenished", round3(rec.Replenished)).
		SetTime(rec.Start.Add(rec.At))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFailure writes a peripheral failure.
func (s *InfluxSink) RecordFailure(rec coremetrics.FailureRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("peripheral_failure").
		AddTag("run_id", rec.RunID).
		AddTag("policy", rec.Policy).
		AddTag("peripheral", strconv.Itoa(int(rec.Peripheral))).
		AddField("at_ms", rec.At.Milliseconds()).
		AddField("first", rec.First).
		SetTime(rec.Start.Add(rec.At))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes the run summary.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", sum.RunID).
		AddTag("policy", sum.Policy).
		AddField("cycles", sum.Cycles).
		AddField("travel_energy", round3(sum.TravelEnergy)).
		AddField("transfer_energy", round3(sum.TransferEnergy)).
		AddField("total_energy", round3(sum.TotalEnergy)).
		AddField("failures", sum.Failures).
		AddField("first_failure_ms", sum.FirstFailure.Milliseconds()).
		AddField("average_charge_pct", round3(sum.AverageChargePct)).
		SetTime(sum.Start.Add(sum.Elapsed))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSnapshot writes one point per peripheral of a checkpoint.
func (s *InfluxSink) RecordSnapshot(runID string, cycle int, states []model.PeripheralState) error {
	if len(states) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	now := time.Now()
	points := make([]*write.Point, 0, len(states))
	for _, st := range states {
		points = append(points, write.NewPointWithMeasurement("peripheral_state").
			AddTag("run_id", runID).
			AddTag("peripheral", strconv.Itoa(int(st.ID))).
			AddField("cycle", cycle).
			AddField("charge", round3(st.Charge)).
			AddField("capacity", round3(st.Capacity)).
			AddField("failed", st.Failed).
			SetTime(now))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
