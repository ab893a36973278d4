package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/wrsn/core/clock"
	"github.com/kilianp07/wrsn/core/cluster"
	"github.com/kilianp07/wrsn/core/events"
	"github.com/kilianp07/wrsn/core/field"
	"github.com/kilianp07/wrsn/core/ledger"
	"github.com/kilianp07/wrsn/core/logger"
	"github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/core/model"
)

// Publisher receives simulation events. *eventbus.TypedBus[events.Event]
// satisfies it.
type Publisher interface {
	Publish(events.Event)
}

// Termination reasons reported on Run.Reason.
const (
	ReasonBudget    = "budget"
	ReasonAllFailed = "all_failed"
	ReasonCanceled  = "canceled"
)

// Scheduler owns the loop state of one simulation run.
type Scheduler struct {
	cfg      Config
	field    *field.Field
	clusters []cluster.Cluster
	master   *model.ChargingNode
	home     model.Location

	policy  Policy
	clock   clock.Clock
	budget  clock.Budget
	logger  logger.Logger
	metrics metrics.MetricsSink
	bus     Publisher

	state State
	run   *Run
}

// New validates the setup and returns a scheduler ready to Run. The field
// must hold a station and a master charging node. A nil clock starts a
// simulated clock at the zero time; nil logger and sink discard output.
func New(f *field.Field, clusters []cluster.Cluster, cfg Config, clk clock.Clock, log logger.Logger, sink metrics.MetricsSink) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, model.Configurationf("scheduler needs a field")
	}
	station, ok := f.Station()
	if !ok {
		return nil, model.Configurationf("field has no charging station")
	}
	master, ok := f.MasterCharger()
	if !ok {
		return nil, model.Configurationf("field has no master charging node")
	}
	policy, err := NewPolicy(cfg)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.NewSimClock(time.Time{})
	}
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	s := &Scheduler{
		cfg:      cfg,
		field:    f,
		clusters: clusters,
		master:   master,
		home:     station.Location,
		policy:   policy,
		clock:    clk,
		budget:   cfg.Budget(),
		logger:   log,
		metrics:  sink,
		state:    StateIdle,
	}
	for _, c := range clusters {
		if err := s.checkReachable(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetPublisher configures where simulation events are published.
func (s *Scheduler) SetPublisher(p Publisher) { s.bus = p }

// State returns the current phase of the cycle state machine.
func (s *Scheduler) State() State { return s.state }

// Policy returns the dispatch policy in use.
func (s *Scheduler) Policy() Policy { return s.policy }

// checkReachable rejects clusters whose visit would drain a charger below
// zero even when it leaves fully charged.
func (s *Scheduler) checkReachable(c cluster.Cluster) error {
	if c.Size() == 0 {
		return model.Invariantf("cluster %d is empty", c.ID)
	}
	path := c.PathMembers()
	if c.Charger != nil {
		post := c.Charger.Location
		if need := 2 * s.home.DistanceTo(post); need > s.master.Capacity {
			return model.Configurationf("master needs %.2f to reach cluster %d, capacity is %.2f", need, c.ID, s.master.Capacity)
		}
		if need := walkCost(post, path); need > c.Charger.Capacity {
			return model.Configurationf("dedicated charger of cluster %d needs %.2f, capacity is %.2f", c.ID, need, c.Charger.Capacity)
		}
		return nil
	}
	need := 2*s.home.DistanceTo(c.Centroid) + walkCost(c.Centroid, path)
	if need > s.master.Capacity {
		return model.Configurationf("master needs %.2f to serve cluster %d, capacity is %.2f", need, c.ID, s.master.Capacity)
	}
	return nil
}

// walkCost is the distance from start through every member of path and
// back to start.
func walkCost(start model.Location, path []*model.Peripheral) float64 {
	if len(path) == 0 {
		return 0
	}
	total := start.DistanceTo(path[0].Location)
	for i := 1; i < len(path); i++ {
		total += path[i-1].Location.DistanceTo(path[i].Location)
	}
	return total + path[len(path)-1].Location.DistanceTo(start)
}

// Run drives cycles until the budget is spent, every peripheral failed (when
// configured) or ctx is canceled. The returned Run is final.
func (s *Scheduler) Run(ctx context.Context) (*Run, error) {
	s.Begin()
	s.logger.Infof("run started: %d peripherals, %d clusters", s.field.NumPeripherals(), len(s.clusters))

	var runErr error
	for {
		s.sweepFailures()
		if s.budget.Done(s.clock, s.run.Cycles) {
			s.terminate(ReasonBudget)
			break
		}
		if s.cfg.StopWhenAllFailed && s.liveCount() == 0 {
			s.terminate(ReasonAllFailed)
			break
		}
		if err := ctx.Err(); err != nil {
			s.terminate(ReasonCanceled)
			runErr = err
			break
		}
		if err := s.Step(); err != nil {
			s.terminate(err.Error())
			runErr = err
			break
		}
	}
	return s.run, runErr
}

// Step executes exactly one cycle without checking the budget.
func (s *Scheduler) Step() error {
	if s.run == nil {
		s.Begin()
	}
	if s.state == StateTerminated {
		return fmt.Errorf("scheduler terminated")
	}
	c, trigger, ok := s.policy.Next(s.field.Peripherals(), s.clusters)
	if !ok {
		s.idle()
	} else if err := s.visit(c, trigger); err != nil {
		return err
	}
	s.run.Cycles++
	if s.run.Cycles == s.cfg.CheckpointCycle {
		s.checkpoint()
	}
	if err := recordQueue(s.metrics, s.policy.Name(), s.policy.QueueLength()); err != nil {
		s.logger.Warnf("record queue length: %v", err)
	}
	return nil
}

// Begin starts a run without entering the loop. Calling it again returns
// the run in progress.
func (s *Scheduler) Begin() *Run {
	if s.run == nil {
		s.run = &Run{
			ID:              uuid.NewString(),
			Policy:          s.policy.Name(),
			Start:           s.clock.Now(),
			CheckpointCycle: s.cfg.CheckpointCycle,
		}
		s.logger = s.logger.With(map[string]any{"run_id": s.run.ID, "policy": s.run.Policy})
	}
	return s.run
}

func (s *Scheduler) enter(next State) {
	if !canTransition(s.state, next) {
		s.logger.Errorf("illegal transition %s -> %s", s.state, next)
	}
	s.state = next
}

// idle decays every peripheral by the fixed idle unit and lets one unit of
// time pass.
func (s *Scheduler) idle() {
	s.enter(StateIdle)
	s.run.IdleCycles++
	s.clock.Advance(s.cfg.unit(1))
	s.fail(ledger.Decay(s.field.Peripherals(), s.cfg.IdleDecay))
}

// visit performs the three phases of a cluster visit.
func (s *Scheduler) visit(c cluster.Cluster, trigger model.EntityID) error {
	d := Dispatch{Cycle: s.run.Cycles, Cluster: c.ID, Trigger: trigger}
	var err error
	if c.Charger != nil {
		err = s.visitDedicated(c, &d)
	} else {
		err = s.visitDirect(c, &d)
	}
	if err != nil {
		return err
	}

	s.enter(StateReplenishing)
	d.Replenished = ledger.Replenish(s.master)
	s.elapse(d.Replenished, nil)

	s.enter(StateIdle)
	s.run.Dispatches = append(s.run.Dispatches, d)
	s.logger.Debugw("dispatch", map[string]any{
		"cycle":    d.Cycle,
		"cluster":  d.Cluster,
		"trigger":  d.Trigger,
		"travel":   d.TravelEnergy,
		"transfer": d.TransferEnergy,
	})
	if err := s.metrics.RecordDispatch(metrics.DispatchRecord{
		RunID:          s.run.ID,
		Policy:         s.run.Policy,
		Cycle:          d.Cycle,
		Cluster:        d.Cluster,
		TravelEnergy:   d.TravelEnergy,
		TransferEnergy: d.TransferEnergy,
		Replenished:    d.Replenished,
		At:             s.clock.Elapsed(),
		Start:          s.run.Start,
	}); err != nil {
		s.logger.Warnf("record dispatch: %v", err)
	}
	s.publish(events.DispatchEvent{
		Run:            s.run.ID,
		Policy:         s.run.Policy,
		Cycle:          d.Cycle,
		Cluster:        d.Cluster,
		TravelEnergy:   d.TravelEnergy,
		TransferEnergy: d.TransferEnergy,
		Replenished:    d.Replenished,
		QueueLength:    s.policy.QueueLength(),
		At:             s.clock.Elapsed(),
	})
	return nil
}

// visitDirect sends the master from the station to the centroid and along
// the cluster path. The round trip station-centroid is paid up front; while
// charging, the master keeps what it needs to finish the path and return to
// the centroid.
func (s *Scheduler) visitDirect(c cluster.Cluster, d *Dispatch) error {
	s.enter(StateTraveling)
	trip := 2 * s.home.DistanceTo(c.Centroid)
	s.travel(s.master, trip, d)

	s.enter(StateTransferring)
	return s.walk(s.master, c.Centroid, c.PathMembers(), d, true)
}

// visitDedicated sends the master to the cluster's dedicated node, refills
// it, and lets the dedicated node walk the path from its post.
func (s *Scheduler) visitDedicated(c cluster.Cluster, d *Dispatch) error {
	node := c.Charger
	s.enter(StateTraveling)
	s.travel(s.master, 2*s.home.DistanceTo(node.Location), d)

	s.enter(StateTransferring)
	amount := ledger.Grant(s.master, node, 0)
	if err := ledger.Transfer(s.master, node, amount); err != nil {
		return err
	}
	d.TransferEnergy += amount
	s.run.addTransfer(amount)
	s.elapse(amount, nil)

	if need := walkCost(node.Location, c.PathMembers()); node.Available() < need {
		s.logger.Warnf("dedicated charger of cluster %d holds %.2f, walk needs %.2f", c.ID, node.Available(), need)
		return nil
	}
	// Energy handed on by the dedicated node was already counted above.
	return s.walk(node, node.Location, c.PathMembers(), d, false)
}

// travel debits distance from src, counts it as travel energy and lets the
// matching time pass for every peripheral.
func (s *Scheduler) travel(src *model.ChargingNode, distance float64, d *Dispatch) {
	if distance <= 0 {
		return
	}
	src.Debit(distance)
	d.TravelEnergy += distance
	s.run.addTravel(distance)
	s.elapse(distance, nil)
}

// walk moves src from start through path, charging each member with the
// lesser of its need and what src can spare, then returns it to start.
func (s *Scheduler) walk(src *model.ChargingNode, start model.Location, path []*model.Peripheral, d *Dispatch, countTransfer bool) error {
	pos := start
	for i, p := range path {
		s.travel(src, pos.DistanceTo(p.Location), d)
		pos = p.Location
		if p.Failed {
			continue
		}
		reserve := walkCost(start, path[i:]) - start.DistanceTo(p.Location)
		amount := ledger.Grant(src, p, reserve)
		if amount <= 0 {
			continue
		}
		if err := ledger.Transfer(src, p, amount); err != nil {
			return err
		}
		if countTransfer {
			d.TransferEnergy += amount
			s.run.addTransfer(amount)
		}
		s.elapse(amount, ledger.Only(p.ID))
	}
	s.travel(src, pos.DistanceTo(start), d)
	return nil
}

// elapse advances the clock by quantity units and drains every peripheral
// outside exclude accordingly.
func (s *Scheduler) elapse(quantity float64, exclude map[model.EntityID]struct{}) {
	if quantity <= 0 {
		return
	}
	s.clock.Advance(s.cfg.unit(quantity))
	s.fail(ledger.Leak(s.field.Peripherals(), exclude, quantity, s.cfg.LeakageMultiplier))
}

// sweepFailures catches live peripherals that start a cycle empty.
func (s *Scheduler) sweepFailures() {
	var empty []*model.Peripheral
	for _, p := range s.field.Peripherals() {
		if !p.Failed && p.Charge <= 0 {
			empty = append(empty, p)
		}
	}
	s.fail(empty)
}

// fail marks peripherals as failed. Failure is permanent.
func (s *Scheduler) fail(ps []*model.Peripheral) {
	for _, p := range ps {
		if p.Failed {
			continue
		}
		p.Fail()
		at := s.clock.Elapsed()
		first := s.run.recordFailure(p.ID, at, s.run.Cycles)
		s.logger.Warnf("peripheral %d failed at %s (cycle %d)", p.ID, at, s.run.Cycles)
		if r, ok := s.metrics.(metrics.FailureRecorder); ok {
			if err := r.RecordFailure(metrics.FailureRecord{
				RunID:      s.run.ID,
				Policy:     s.run.Policy,
				Peripheral: p.ID,
				At:         at,
				Start:      s.run.Start,
				First:      first,
			}); err != nil {
				s.logger.Warnf("record failure: %v", err)
			}
		}
		s.publish(events.FailureEvent{Run: s.run.ID, Peripheral: p.ID, Cycle: s.run.Cycles, At: at, First: first})
	}
}

func (s *Scheduler) checkpoint() {
	s.run.Checkpoint = s.field.Snapshot()
	s.logger.Infof("checkpoint taken at cycle %d", s.run.Cycles)
	s.publish(events.CheckpointEvent{Run: s.run.ID, Cycle: s.run.Cycles, Snapshot: s.run.Checkpoint})
}

func (s *Scheduler) liveCount() int {
	n := 0
	for _, p := range s.field.Peripherals() {
		if !p.Failed {
			n++
		}
	}
	return n
}

func (s *Scheduler) terminate(reason string) {
	s.enter(StateTerminated)
	s.run.Reason = reason
	s.run.Elapsed = s.clock.Elapsed()
	s.run.Final = s.field.Snapshot()
	s.logger.Infof("run terminated (%s) after %d cycles: travel=%.2f transfer=%.2f failures=%d",
		reason, s.run.Cycles, s.run.TravelEnergy, s.run.TransferEnergy, s.run.FailureCount())
	if r, ok := s.metrics.(metrics.RunRecorder); ok {
		if err := r.RecordRun(s.run.Summary()); err != nil {
			s.logger.Warnf("record run: %v", err)
		}
	}
	s.publish(events.TerminationEvent{
		Run:      s.run.ID,
		Cycles:   s.run.Cycles,
		Failures: s.run.FailureCount(),
		Elapsed:  s.run.Elapsed,
		Reason:   reason,
	})
}

func (s *Scheduler) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func recordQueue(sink metrics.MetricsSink, policy string, n int) error {
	if r, ok := sink.(metrics.QueueRecorder); ok {
		return r.RecordQueueLength(policy, n)
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)               {}
func (nopLogger) Debugw(string, map[string]any)       {}
func (nopLogger) Infof(string, ...any)                {}
func (nopLogger) Warnf(string, ...any)                {}
func (nopLogger) Errorf(string, ...any)               {}
func (n nopLogger) With(map[string]any) logger.Logger { return n }
