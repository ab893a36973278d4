package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/core/model"
)

// PromSink exposes simulation metrics to Prometheus.
type PromSink struct {
	travel      *prometheus.CounterVec
	transfer    *prometheus.CounterVec
	replenished *prometheus.CounterVec
	dispatches  *prometheus.CounterVec
	energy      *prometheus.HistogramVec
	failures    *prometheus.CounterVec
	queue       *prometheus.GaugeVec

	firstFailure *prometheus.GaugeVec
	avgCharge    *prometheus.GaugeVec
	effective    *prometheus.GaugeVec
	charge       *prometheus.GaugeVec
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg. A nil registerer
// defaults to the global one. Collectors that already exist on reg are
// reused, so several sinks may share a registry.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.travel, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrsn_travel_energy_total",
		Help: "Energy spent by chargers on travel",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.transfer, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrsn_transfer_energy_total",
		Help: "Energy transferred from the master charger",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.replenished, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrsn_replenished_energy_total",
		Help: "Energy restored to the master charger at the station",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.dispatches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrsn_dispatches_total",
		Help: "Cluster visits",
	}, []string{"policy", "cluster"})); err != nil {
		return nil, err
	}
	if s.energy, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wrsn_dispatch_energy",
		Help:    "Energy spent per cluster visit",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"policy", "kind"})); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrsn_peripheral_failures_total",
		Help: "Peripherals that ran out of charge",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.queue, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wrsn_admission_queue_length",
		Help: "Peripherals waiting for a dispatch",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.firstFailure, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wrsn_run_first_failure_seconds",
		Help: "Simulated time until the first peripheral failure",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.avgCharge, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wrsn_run_average_charge_percent",
		Help: "Mean state of charge at the end of the run",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.effective, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wrsn_run_effective_ratio",
		Help: "Transfer energy over total energy",
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.charge, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wrsn_peripheral_charge_percent",
		Help: "State of charge captured at the checkpoint",
	}, []string{"peripheral"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDispatch adds the visit's energy to the counters.
func (s *PromSink) RecordDispatch(rec coremetrics.DispatchRecord) error {
	s.travel.WithLabelValues(rec.Policy).Add(rec.TravelEnergy)
	s.transfer.WithLabelValues(rec.Policy).Add(rec.TransferEnergy)
	s.replenished.WithLabelValues(rec.Policy).Add(rec.Replenished)
	s.dispatches.WithLabelValues(rec.Policy, strconv.Itoa(int(rec.Cluster))).Inc()
	s.energy.WithLabelValues(rec.Policy, "travel").Observe(rec.TravelEnergy)
	s.energy.WithLabelValues(rec.Policy, "transfer").Observe(rec.TransferEnergy)
	return nil
}

// RecordFailure counts a failed peripheral.
func (s *PromSink) RecordFailure(rec coremetrics.FailureRecord) error {
	s.failures.WithLabelValues(rec.Policy).Inc()
	return nil
}

// RecordQueueLength sets the admission queue gauge.
func (s *PromSink) RecordQueueLength(policy string, length int) error {
	s.queue.WithLabelValues(policy).Set(float64(length))
	return nil
}

// RecordRun publishes the end-of-run gauges.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	if sum.Failures > 0 {
		s.firstFailure.WithLabelValues(sum.Policy).Set(sum.FirstFailure.Seconds())
	}
	s.avgCharge.WithLabelValues(sum.Policy).Set(sum.AverageChargePct)
	if sum.TotalEnergy > 0 {
		s.effective.WithLabelValues(sum.Policy).Set(sum.TransferEnergy / sum.TotalEnergy)
	}
	return nil
}

// RecordSnapshot sets one charge gauge per peripheral.
func (s *PromSink) RecordSnapshot(_ string, _ int, states []model.PeripheralState) error {
	for _, st := range states {
		pct := 0.0
		if st.Capacity > 0 {
			pct = 100 * st.Charge / st.Capacity
		}
		s.charge.WithLabelValues(strconv.Itoa(int(st.ID))).Set(pct)
	}
	return nil
}
