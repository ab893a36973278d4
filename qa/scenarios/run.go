package scenarios

import (
	"context"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/wrsn/app"
	"github.com/kilianp07/wrsn/core/scheduler"
	"github.com/kilianp07/wrsn/infra/logger"
	"github.com/kilianp07/wrsn/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) *scheduler.Run {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	cfg := sc.Config()
	world, err := app.BuildWorld(cfg)
	if err != nil {
		t.Fatalf("build world: %v", err)
	}
	if want := sc.Expected.Clusters; want > 0 && len(world.Clusters) != want {
		t.Fatalf("scenario %s expected %d clusters, got %d", sc.Name, want, len(world.Clusters))
	}

	sched, err := scheduler.New(world.Field, world.Clusters, cfg.Simulation, nil, logger.NopLogger{}, sink)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	run, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	exp := sc.Expected
	if len(run.Dispatches) < len(exp.Dispatches) {
		t.Fatalf("scenario %s expected at least %d dispatches, got %d", sc.Name, len(exp.Dispatches), len(run.Dispatches))
	}
	visited := map[string]struct{}{}
	for i, d := range run.Dispatches {
		visited[strconv.Itoa(int(d.Cluster))] = struct{}{}
		if i < len(exp.Dispatches) && int(d.Cluster) != exp.Dispatches[i] {
			t.Errorf("scenario %s dispatch %d: expected cluster %d, got %d", sc.Name, i, exp.Dispatches[i], d.Cluster)
		}
	}
	if len(run.Dispatches) > 0 {
		first := run.Dispatches[0]
		if exp.FirstTravel > 0 && first.TravelEnergy != exp.FirstTravel {
			t.Errorf("scenario %s first travel: expected %v, got %v", sc.Name, exp.FirstTravel, first.TravelEnergy)
		}
		if exp.MaxFirstTransfer > 0 && first.TransferEnergy > exp.MaxFirstTransfer {
			t.Errorf("scenario %s first transfer %v exceeds %v", sc.Name, first.TransferEnergy, exp.MaxFirstTransfer)
		}
	}
	if exp.Failures != nil && run.FailureCount() != *exp.Failures {
		t.Errorf("scenario %s expected %d failures, got %d", sc.Name, *exp.Failures, run.FailureCount())
	}

	n, err := testutil.GatherAndCount(reg, "wrsn_dispatches_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != len(visited) {
		t.Errorf("scenario %s expected %d dispatch series, got %d", sc.Name, len(visited), n)
	}
	return run
}
